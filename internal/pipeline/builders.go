package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"golang.org/x/text/encoding/charmap"

	"poewiki/internal/config"
	"poewiki/internal/crawler"
	"poewiki/internal/normalize"
	"poewiki/internal/parser"
	"poewiki/internal/writer"
)

const wikiMainPage = "Path_of_Exile_Wiki"

// Uniques queries every configured item class for unique items and writes
// Uniques.txt.
func Uniques(cfg *config.Config, deps *Deps) (*Pipeline, error) {
	items := parser.UniqueItems()

	sources := make([]Source, 0, len(cfg.UniqueCategories))
	for _, category := range cfg.UniqueCategories {
		sources = append(sources, Source{
			Name: category,
			URL: crawler.AskArgsURL(cfg.WikiAPIURL,
				[]string{"Has item class::" + category, "Has rarity::Unique"},
				items.Properties(),
				cfg.APILimit,
			),
			Parser: items,
		})
	}

	var lines writer.LineFormatter
	if cfg.OutputFormat == config.FormatAHK {
		variants, err := styleVariants(cfg.StyleVariantsPath, deps)
		if err != nil {
			return nil, err
		}
		lines = writer.UniqueLines{StyleVariants: variants, Logger: deps.logger()}
	}

	w, err := output(cfg, deps, "uniques", "Uniques.txt", writer.UniquesHeader(source(cfg), generator("uniques")), lines)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		Name:       "uniques",
		Sources:    sources,
		Normalizer: normalize.UniqueItems,
		Writer:     w,
		OutputPath: w.Path,
		Deps:       deps,
	}, nil
}

// Cards reads the divination card article and, when enabled, joins the
// drop data of the items cargo table by card name.
func Cards(cfg *config.Config, deps *Deps) (*Pipeline, error) {
	sources := []Source{{
		Name:   "article",
		URL:    crawler.ArticleURL(cfg.WikiBaseURL, cfg.CardsArticle),
		Parser: parser.CardTable(),
	}}
	if cfg.CardsIncludeDrops {
		drops := parser.CardDrops()
		sources = append(sources, Source{
			Name: "drops",
			URL: crawler.CargoQueryURL(cfg.WikiAPIURL, crawler.CargoQuery{
				Tables:  []string{"items"},
				Fields:  drops.QueryFields(),
				Where:   `class="Divination Card"`,
				GroupBy: "items._pageName",
				Limit:   cfg.APILimit,
			}),
			Parser: drops,
		})
	}

	w, err := output(cfg, deps, "cards", "DivinationCardList.txt", writer.CardsHeader(source(cfg), generator("cards")), writer.CardLines{})
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		Name:       "cards",
		Sources:    sources,
		MergeKey:   "name",
		Normalizer: normalize.Cards,
		Writer:     w,
		OutputPath: w.Path,
		Deps:       deps,
	}, nil
}

func Maps(cfg *config.Config, deps *Deps) (*Pipeline, error) {
	w, err := output(cfg, deps, "maps", "MapList.txt", writer.MapsHeader(source(cfg), generator("maps")), writer.MapLines{})
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		Name: "maps",
		Sources: []Source{{
			Name:   "article",
			URL:    crawler.ArticleURL(cfg.WikiBaseURL, cfg.MapsArticle),
			Parser: parser.MapTable(),
		}},
		Normalizer: normalize.Maps,
		Writer:     w,
		OutputPath: w.Path,
		Deps:       deps,
	}, nil
}

// output picks the writer for the configured format: the Windows-1252 AHK
// file, or JSON Lines named after the pipeline.
func output(cfg *config.Config, deps *Deps, name, ahkFile string, header func(time.Time) []string, lines writer.LineFormatter) (*writer.FileWriter, error) {
	switch cfg.OutputFormat {
	case config.FormatAHK:
		return &writer.FileWriter{
			Path:     filepath.Join(cfg.OutputDir, ahkFile),
			Header:   header,
			Lines:    lines,
			Encoding: charmap.Windows1252,
			Now:      deps.now,
		}, nil
	case config.FormatRecords:
		return &writer.FileWriter{
			Path:  filepath.Join(cfg.OutputDir, name+".jsonl"),
			Lines: writer.RecordLines{},
		}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", cfg.OutputFormat)
	}
}

func styleVariants(path string, deps *Deps) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	variants, err := writer.LoadStyleVariants(path)
	if errors.Is(err, fs.ErrNotExist) {
		deps.logger().Warn("style variants file not found, variant pages are written as they are", "path", path)
		return map[string]string{}, nil
	}
	return variants, err
}

func source(cfg *config.Config) string {
	return crawler.ArticleURL(cfg.WikiBaseURL, wikiMainPage)
}

func generator(name string) string {
	return "poewiki " + name
}
