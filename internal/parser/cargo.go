package parser

import (
	"encoding/json"
	"strings"

	"poewiki/internal/model"
)

// CargoField maps a cargoquery result key onto a record field. Cargo
// reports field names with underscores replaced by spaces.
type CargoField struct {
	Source string
	Field  string
}

// CargoParser reads action=cargoquery responses (formatversion=1). Rows are
// emitted in response order.
type CargoParser struct {
	Fields []CargoField
}

type cargoResponse struct {
	CargoQuery *[]struct {
		Title map[string]json.RawMessage `json:"title"`
	} `json:"cargoquery"`
	Error *apiError `json:"error"`
}

// QueryFields returns the column names to request in the fields parameter.
func (p *CargoParser) QueryFields() []string {
	fields := make([]string, len(p.Fields))
	for i, f := range p.Fields {
		fields[i] = strings.ReplaceAll(f.Source, " ", "_")
	}
	return fields
}

func (p *CargoParser) Parse(body []byte) (model.RecordSet, error) {
	var resp cargoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &ParseError{Reason: "decode cargoquery response", Err: err}
	}
	if resp.Error != nil {
		return nil, resp.Error.parseError()
	}
	if resp.CargoQuery == nil {
		return nil, &ParseError{Reason: "cargoquery response has no cargoquery array"}
	}

	rows := *resp.CargoQuery
	out := make(model.RecordSet, 0, len(rows))
	for _, row := range rows {
		if row.Title == nil {
			return nil, &ParseError{Reason: "cargoquery row without title object"}
		}
		fields := make([]model.Field, 0, len(p.Fields))
		for _, f := range p.Fields {
			fields = append(fields, model.Field{Key: f.Field, Value: scalar(row.Title[f.Source])})
		}
		out = append(out, model.NewRecord(fields...))
	}
	return out, nil
}
