package auth

import (
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonwraymond/cloudcore/request"
)

// TokenPlacement selects where a JWTSigner puts the token.
type TokenPlacement int

const (
	// PlaceBearerHeader sends "Authorization: Bearer <token>".
	PlaceBearerHeader TokenPlacement = iota
	// PlaceAssertionForm replaces the body with a form carrying grant_type
	// and assertion=<token>, as used by OAuth token endpoints.
	PlaceAssertionForm
)

// DefaultGrantType is the OAuth 2.0 JWT bearer grant (RFC 7523).
const DefaultGrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// JWTConfig configures a JWTSigner.
type JWTConfig struct {
	// Method is the signing algorithm: "HS256", "HS384", "HS512" use the
	// secret as an HMAC key; "RS256" parses the secret as a PEM private key.
	// Default: "HS256"
	Method string

	// TTL sets the exp claim relative to iat.
	// Default: 1 hour
	TTL time.Duration

	// Audience sets the aud claim when non-empty.
	Audience string

	// KeyID sets the kid header when non-empty.
	KeyID string

	// Claims are merged into every token. Standard claims (iss, iat, exp,
	// aud) set by the signer take precedence.
	Claims map[string]any

	// Placement selects bearer header or assertion form.
	// Default: PlaceBearerHeader
	Placement TokenPlacement

	// GrantType is sent with PlaceAssertionForm.
	// Default: DefaultGrantType
	GrantType string
}

// JWTSigner signs requests with a compact JWT whose issuer is the
// credential identity.
type JWTSigner struct {
	config JWTConfig
	method jwt.SigningMethod
}

// NewJWTSigner creates a JWT signer.
func NewJWTSigner(config JWTConfig) (*JWTSigner, error) {
	if config.Method == "" {
		config.Method = "HS256"
	}
	if config.TTL <= 0 {
		config.TTL = time.Hour
	}
	if config.GrantType == "" {
		config.GrantType = DefaultGrantType
	}

	var method jwt.SigningMethod
	switch config.Method {
	case "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	case "RS256":
		method = jwt.SigningMethodRS256
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMethod, config.Method)
	}

	return &JWTSigner{config: config, method: method}, nil
}

// Token returns header.claims.signature for creds at now. Every segment is
// base64url encoded without padding.
func (s *JWTSigner) Token(creds Credentials, now time.Time) (string, error) {
	if err := creds.check(now); err != nil {
		return "", err
	}

	claims := make(jwt.MapClaims, len(s.config.Claims)+4)
	for k, v := range s.config.Claims {
		claims[k] = v
	}
	claims["iss"] = creds.Identity
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(s.config.TTL).Unix()
	if s.config.Audience != "" {
		claims["aud"] = s.config.Audience
	}

	token := jwt.NewWithClaims(s.method, claims)
	if s.config.KeyID != "" {
		token.Header["kid"] = s.config.KeyID
	}

	key, err := s.signingKey(creds)
	if err != nil {
		return "", err
	}

	signed, err := token.SignedString(key)
	if err != nil {
		return "", wrapJWTError(err)
	}
	return signed, nil
}

// Sign attaches a fresh token to req.
func (s *JWTSigner) Sign(req *request.Request, creds Credentials, now time.Time) (*request.Request, error) {
	token, err := s.Token(creds, now)
	if err != nil {
		return nil, err
	}

	if s.config.Placement == PlaceAssertionForm {
		form := url.Values{
			"grant_type": {s.config.GrantType},
			"assertion":  {token},
		}
		return req.WithoutHeader("Authorization").WithBody(request.FormBody(form)), nil
	}
	return req.WithHeader("Authorization", "Bearer "+token), nil
}

func (s *JWTSigner) signingKey(creds Credentials) (any, error) {
	if s.method == jwt.SigningMethodRS256 {
		key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(creds.Secret))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSigningKey, err)
		}
		return key, nil
	}
	return []byte(creds.Secret), nil
}

// Config returns the signer configuration.
func (s *JWTSigner) Config() JWTConfig {
	return s.config
}

var _ Signer = (*JWTSigner)(nil)

func wrapJWTError(err error) error {
	return fmt.Errorf("jwt: %w", err)
}
