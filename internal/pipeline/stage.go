package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"poewiki/internal/crawler"
	"poewiki/internal/model"
	"poewiki/internal/parser"
)

// Stage is one step of a run. A failing required stage ends the run; the
// error of an optional stage is logged and kept in the State.
type Stage interface {
	Name() string
	Required() bool
	Execute(ctx context.Context, state *State) error
}

type StageFunc func(ctx context.Context, state *State) error

type funcStage struct {
	name     string
	required bool
	fn       StageFunc
}

func NewStage(name string, required bool, fn StageFunc) Stage {
	return &funcStage{name: name, required: required, fn: fn}
}

func (s *funcStage) Name() string   { return s.name }
func (s *funcStage) Required() bool { return s.required }
func (s *funcStage) Execute(ctx context.Context, state *State) error {
	return s.fn(ctx, state)
}

// State carries one run from stage to stage.
type State struct {
	RunID   string
	Started time.Time
	Logger  *slog.Logger

	// Sets holds the parsed records of each source in source order.
	Sets    []model.RecordSet
	Records model.RecordSet
	Errors  []error
}

// StageError names the pipeline and stage a run failed in.
type StageError struct {
	Pipeline string
	Stage    string
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: stage %s: %v", e.Pipeline, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// errorType is the metrics label of a stage failure.
func errorType(err error) string {
	var (
		nerr *crawler.NetworkError
		perr *parser.ParseError
	)
	switch {
	case errors.As(err, &nerr):
		return "network"
	case errors.As(err, &perr):
		return "parse"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
