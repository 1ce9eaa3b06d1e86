// Package parser turns raw wiki responses into loosely typed records.
//
// Every assumption about the wiki's markup or API response shape lives in
// this package, so a change on the wiki side is fixed here and nowhere else.
// A response that does not have the expected structure yields a *ParseError.
package parser

import (
	"encoding/json"
	"fmt"

	"poewiki/internal/model"
)

type Parser interface {
	Parse(body []byte) (model.RecordSet, error)
}

// ParseError reports a response whose structure no longer matches what the
// parser expects.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse: %s: %v", e.Reason, e.Err)
	}
	return "parse: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// apiError is the MediaWiki error envelope shared by every api.php action.
type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *apiError) parseError() *ParseError {
	return &ParseError{Reason: fmt.Sprintf("api error %s: %s", e.Code, e.Info)}
}

// scalar converts a JSON value into a record value: strings stay strings,
// integral numbers become ints, null and "" become nil.
func scalar(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return nil
		}
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		return n.String()
	}
	var page struct {
		Fulltext string `json:"fulltext"`
	}
	if err := json.Unmarshal(raw, &page); err == nil && page.Fulltext != "" {
		return page.Fulltext
	}
	return nil
}
