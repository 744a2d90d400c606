package classify

import (
	"net/http"

	"github.com/jonwraymond/cloudcore/request"
)

// Result is a terminal non-success response presented for classification.
type Result struct {
	Method     request.Method
	Endpoint   string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ClassifierConfig configures a Classifier.
type ClassifierConfig struct {
	// Table maps codes and statuses to kinds.
	// Default: DefaultTable()
	Table *Table

	// Extractor finds the provider payload.
	// Default: JSON, then XML, then x-amzn-ErrorType / x-emc-error-code headers.
	Extractor Extractor
}

// Classifier turns terminal responses into APIErrors.
// It is stateless and safe for concurrent use.
type Classifier struct {
	table     Table
	extractor Extractor
}

// NewClassifier creates a classifier.
func NewClassifier(config ClassifierConfig) *Classifier {
	table := DefaultTable()
	if config.Table != nil {
		table = *config.Table
	}
	if config.Extractor == nil {
		config.Extractor = Chain(
			NewJSONExtractor(),
			NewXMLExtractor(),
			&HeaderExtractor{CodeHeader: "X-Amzn-Errortype", MessageHeader: "X-Amzn-Error-Message"},
			&HeaderExtractor{CodeHeader: "X-Emc-Error-Code", MessageHeader: "X-Emc-Error-Message"},
		)
	}
	return &Classifier{table: table, extractor: config.Extractor}
}

// Table returns the lookup table in use.
func (c *Classifier) Table() Table {
	return c.table
}

// Kind classifies a status and payload without the method hint.
func (c *Classifier) Kind(status int, p Payload) Kind {
	return c.table.Lookup(status, p.Code)
}

// Classify returns the APIError for r, or nil when the table tolerates the
// outcome (NotFound in response to DELETE).
func (c *Classifier) Classify(r Result) *APIError {
	p, _ := c.extractor.Extract(r.Header, r.Body)
	kind := c.table.Lookup(r.StatusCode, p.Code)

	if kind == NotFound && r.Method == request.MethodDelete && c.table.TolerateDeleteNotFound {
		return nil
	}

	msg := p.Message
	if msg == "" {
		msg = http.StatusText(r.StatusCode)
	}
	return &APIError{
		Kind:       kind,
		StatusCode: r.StatusCode,
		Code:       p.Code,
		Message:    msg,
		Method:     r.Method,
		Endpoint:   r.Endpoint,
	}
}
