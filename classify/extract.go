package classify

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"net/http"
	"strconv"
	"strings"
)

// Payload is the provider error detail found in a response.
type Payload struct {
	Code    string
	Message string
}

// Empty reports whether neither code nor message was found.
func (p Payload) Empty() bool {
	return p.Code == "" && p.Message == ""
}

// Extractor pulls a provider error payload from a terminal response.
//
// Contract:
//   - Implementations must not retain body or header.
//   - ok is false when the response does not carry this extractor's format.
type Extractor interface {
	Extract(header http.Header, body []byte) (Payload, bool)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(header http.Header, body []byte) (Payload, bool)

// Extract implements Extractor.
func (f ExtractorFunc) Extract(header http.Header, body []byte) (Payload, bool) {
	return f(header, body)
}

// JSONExtractor reads code and message from a JSON object.
// Paths are dot-separated and tried in order.
type JSONExtractor struct {
	CodePaths    []string
	MessagePaths []string
}

// NewJSONExtractor returns an extractor for the usual JSON error shapes,
// including {"error": {"code": ..., "message": ...}}, {"__type": ...}
// and OpenStack's {"itemNotFound": {"message": ...}}.
func NewJSONExtractor() *JSONExtractor {
	return &JSONExtractor{
		CodePaths:    []string{"code", "Code", "error.code", "error.Code", "Error.Code", "__type", "errorCode"},
		MessagePaths: []string{"message", "Message", "error.message", "error.Message", "Error.Message", "errorMessage"},
	}
}

// Extract implements Extractor.
func (e *JSONExtractor) Extract(_ http.Header, body []byte) (Payload, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Payload{}, false
	}
	var doc map[string]any
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Payload{}, false
	}

	var p Payload
	for _, path := range e.CodePaths {
		if v, ok := lookupPath(doc, path); ok {
			p.Code = v
			break
		}
	}
	for _, path := range e.MessagePaths {
		if v, ok := lookupPath(doc, path); ok {
			p.Message = v
			break
		}
	}

	// Single-key wrapper: {"itemNotFound": {"message": "...", "code": 404}}
	if p.Code == "" && len(doc) == 1 {
		for key, inner := range doc {
			if obj, ok := inner.(map[string]any); ok {
				p.Code = key
				if p.Message == "" {
					p.Message, _ = scalarString(obj["message"])
				}
			}
		}
	}

	// Qualified types such as "com.amazon#ThrottlingException".
	if i := strings.LastIndexByte(p.Code, '#'); i >= 0 {
		p.Code = p.Code[i+1:]
	}
	return p, !p.Empty()
}

func lookupPath(doc map[string]any, path string) (string, bool) {
	cur := any(doc)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		cur, ok = obj[part]
		if !ok {
			return "", false
		}
	}
	return scalarString(cur)
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, t != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	default:
		return "", false
	}
}

// XMLExtractor reads the first Code and Message elements at any depth.
type XMLExtractor struct {
	CodeElement    string
	MessageElement string
}

// NewXMLExtractor returns an extractor for <Error><Code/><Message/></Error>
// documents, including EC2's <Response><Errors><Error> nesting.
func NewXMLExtractor() *XMLExtractor {
	return &XMLExtractor{CodeElement: "Code", MessageElement: "Message"}
}

// Extract implements Extractor.
func (e *XMLExtractor) Extract(_ http.Header, body []byte) (Payload, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '<' {
		return Payload{}, false
	}

	var p Payload
	dec := xml.NewDecoder(bytes.NewReader(trimmed))
	for p.Code == "" || p.Message == "" {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		var target *string
		switch start.Name.Local {
		case e.CodeElement:
			target = &p.Code
		case e.MessageElement:
			target = &p.Message
		default:
			continue
		}
		if *target != "" {
			continue
		}
		var text string
		if err := dec.DecodeElement(&text, &start); err != nil {
			break
		}
		*target = strings.TrimSpace(text)
	}
	return p, !p.Empty()
}

// HeaderExtractor reads code and message from response headers.
type HeaderExtractor struct {
	CodeHeader    string
	MessageHeader string
}

// Extract implements Extractor.
func (e *HeaderExtractor) Extract(header http.Header, _ []byte) (Payload, bool) {
	if header == nil {
		return Payload{}, false
	}
	p := Payload{
		Code:    header.Get(e.CodeHeader),
		Message: header.Get(e.MessageHeader),
	}
	// x-amzn-ErrorType carries "Code:http://internal.amazon.com/..."
	if i := strings.IndexByte(p.Code, ':'); i >= 0 {
		p.Code = p.Code[:i]
	}
	return p, !p.Empty()
}

// Chain returns an extractor trying each extractor in order.
func Chain(extractors ...Extractor) Extractor {
	return ExtractorFunc(func(header http.Header, body []byte) (Payload, bool) {
		for _, ex := range extractors {
			if p, ok := ex.Extract(header, body); ok {
				return p, true
			}
		}
		return Payload{}, false
	})
}

var (
	_ Extractor = (*JSONExtractor)(nil)
	_ Extractor = (*XMLExtractor)(nil)
	_ Extractor = (*HeaderExtractor)(nil)
)
