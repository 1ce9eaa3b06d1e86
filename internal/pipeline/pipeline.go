// Package pipeline runs one scrape as a list of stages: fetch and parse
// every source, merge, normalize and write the output file.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"poewiki/internal/crawler"
	"poewiki/internal/model"
	"poewiki/internal/normalize"
	"poewiki/internal/observability"
	"poewiki/internal/parser"
	"poewiki/internal/writer"
)

// Archiver keeps raw pages and finished runs. Errors are logged by the
// pipeline and never fail a run.
type Archiver interface {
	SavePage(ctx context.Context, p model.RawPage) error
	SaveRun(ctx context.Context, run model.Run, rs model.RecordSet) error
}

type Deps struct {
	Fetcher crawler.Fetcher
	Metrics *observability.Metrics
	Archive Archiver
	Logger  *slog.Logger
	Now     func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Source is one request of a pipeline together with the parser for its
// response.
type Source struct {
	Name   string
	URL    string
	Parser parser.Parser
}

type Pipeline struct {
	Name    string
	Sources []Source
	// MergeKey combines the records of all sources by this field. Empty
	// concatenates them.
	MergeKey   string
	Normalizer normalize.Normalizer
	Writer     writer.Writer
	OutputPath string
	Deps       *Deps
}

// Stages lists the steps of one run: a fetch per source, then combine,
// normalize, write and, with an archive configured, the optional archive
// step.
func (p *Pipeline) Stages() []Stage {
	stages := make([]Stage, 0, len(p.Sources)+4)
	for _, src := range p.Sources {
		stages = append(stages, NewStage("fetch:"+src.Name, true, p.fetchStage(src)))
	}
	stages = append(stages, NewStage("combine", true, p.combine))
	if p.Normalizer != nil {
		stages = append(stages, NewStage("normalize", true, p.normalize))
	}
	stages = append(stages, NewStage("write", true, p.write))
	if p.Deps.Archive != nil {
		stages = append(stages, NewStage("archive", false, p.archiveRun))
	}
	return stages
}

// Run executes the pipeline once. The output file is only written after
// every source was fetched and parsed, so any fetch or parse error leaves
// the previous file untouched.
func (p *Pipeline) Run(ctx context.Context) (rs model.RecordSet, err error) {
	state := &State{RunID: uuid.NewString(), Started: p.Deps.now()}
	state.Logger = p.Deps.logger().With("pipeline", p.Name, "run_id", state.RunID)
	defer func() {
		p.Deps.Metrics.ObserveRun(p.Name, len(rs), err)
	}()

	for _, stage := range p.Stages() {
		if err := ctx.Err(); err != nil {
			return nil, &StageError{Pipeline: p.Name, Stage: stage.Name(), Err: err}
		}

		start := time.Now()
		serr := stage.Execute(ctx, state)
		p.Deps.Metrics.RecordStageDuration(p.Name, stage.Name(), time.Since(start))
		if serr == nil {
			continue
		}

		p.Deps.Metrics.RecordError(p.Name, stage.Name(), errorType(serr))
		if stage.Required() {
			return nil, &StageError{Pipeline: p.Name, Stage: stage.Name(), Err: serr}
		}
		state.Logger.Warn("stage failed", "stage", stage.Name(), "err", serr)
		state.Errors = append(state.Errors, serr)
	}

	state.Logger.Info("output written", "records", len(state.Records), "path", p.OutputPath)
	return state.Records, nil
}

func (p *Pipeline) fetchStage(src Source) StageFunc {
	return func(ctx context.Context, state *State) error {
		body, err := p.fetch(ctx, state, src)
		if err != nil {
			return err
		}
		parsed, err := src.Parser.Parse(body)
		if err != nil {
			return err
		}
		state.Logger.Debug("parsed", "source", src.Name, "records", len(parsed))
		state.Sets = append(state.Sets, parsed)
		return nil
	}
}

func (p *Pipeline) combine(_ context.Context, state *State) error {
	if p.MergeKey != "" {
		state.Records = model.Merge(p.MergeKey, state.Sets...)
	} else {
		state.Records = model.Concat(state.Sets...)
	}
	return nil
}

func (p *Pipeline) normalize(_ context.Context, state *State) error {
	state.Records = normalize.NormalizeSet(p.Normalizer, state.Records)
	return nil
}

func (p *Pipeline) write(_ context.Context, state *State) error {
	return p.Writer.Write(state.Records)
}

func (p *Pipeline) archiveRun(ctx context.Context, state *State) error {
	run := model.Run{
		ID:          state.RunID,
		Pipeline:    p.Name,
		StartedAt:   state.Started,
		FinishedAt:  p.Deps.now(),
		RecordCount: len(state.Records),
		OutputPath:  p.OutputPath,
	}
	return p.Deps.Archive.SaveRun(ctx, run, state.Records)
}

func (p *Pipeline) fetch(ctx context.Context, state *State, src Source) ([]byte, error) {
	state.Logger.Info("fetching", "source", src.Name, "url", src.URL)

	start := time.Now()
	body, err := p.Deps.Fetcher.Fetch(ctx, src.URL)
	p.Deps.Metrics.ObserveFetch(p.Name, src.Name, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if p.Deps.Archive != nil {
		page := model.RawPage{
			RunID:     state.RunID,
			Pipeline:  p.Name,
			SourceURL: src.URL,
			Body:      body,
			FetchedAt: p.Deps.now(),
		}
		if err := p.Deps.Archive.SavePage(ctx, page); err != nil {
			state.Logger.Warn("archive page failed", "url", src.URL, "err", err)
		}
	}
	return body, nil
}
