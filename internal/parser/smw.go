package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"poewiki/internal/model"
)

// Printout maps a Semantic MediaWiki property onto a record field.
type Printout struct {
	Property string
	Field    string
}

// SMWParser reads action=askargs responses. Results are keyed by page name
// and emitted in name order; each printout contributes its first value.
type SMWParser struct {
	NameField string
	Printouts []Printout
}

type smwResponse struct {
	Query *struct {
		Results json.RawMessage `json:"results"`
	} `json:"query"`
	Error *apiError `json:"error"`
}

type smwResult struct {
	Printouts json.RawMessage `json:"printouts"`
}

// Properties returns the property names to request as printouts.
func (p *SMWParser) Properties() []string {
	props := make([]string, len(p.Printouts))
	for i, po := range p.Printouts {
		props[i] = po.Property
	}
	return props
}

func (p *SMWParser) Parse(body []byte) (model.RecordSet, error) {
	var resp smwResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{Reason: "decode askargs response", Err: err}
	}
	if resp.Error != nil {
		return nil, resp.Error.parseError()
	}
	if resp.Query == nil || len(resp.Query.Results) == 0 {
		return nil, &ParseError{Reason: "askargs response has no query.results"}
	}

	raw := bytes.TrimSpace(resp.Query.Results)
	if bytes.Equal(raw, []byte("null")) {
		return nil, &ParseError{Reason: "query.results is null"}
	}
	if raw[0] == '[' {
		// SMW sends an empty array instead of an empty object when nothing matches.
		var empty []json.RawMessage
		if err := json.Unmarshal(raw, &empty); err != nil || len(empty) != 0 {
			return nil, &ParseError{Reason: "query.results is a non-empty array"}
		}
		return model.RecordSet{}, nil
	}

	var results map[string]smwResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, &ParseError{Reason: "decode query.results", Err: err}
	}

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(model.RecordSet, 0, len(names))
	for _, name := range names {
		printouts, err := decodePrintouts(results[name].Printouts)
		if err != nil {
			return nil, &ParseError{Reason: fmt.Sprintf("printouts of %q", name), Err: err}
		}

		fields := []model.Field{{Key: p.NameField, Value: name}}
		for _, po := range p.Printouts {
			fields = append(fields, model.Field{Key: po.Field, Value: firstValue(printouts[po.Property])})
		}
		out = append(out, model.NewRecord(fields...))
	}
	return out, nil
}

func decodePrintouts(raw json.RawMessage) (map[string]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '[' {
		return nil, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func firstValue(raw json.RawMessage) any {
	var values []json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil || len(values) == 0 {
		return nil
	}
	return scalar(values[0])
}
