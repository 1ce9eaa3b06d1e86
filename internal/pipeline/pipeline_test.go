package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"poewiki/internal/config"
	"poewiki/internal/crawler"
	"poewiki/internal/model"
	"poewiki/internal/observability"
	"poewiki/internal/parser"
	"poewiki/internal/writer"
)

var fixedNow = time.Date(2018, 3, 4, 15, 6, 7, 0, time.UTC)

func f(key string, value any) model.Field {
	return model.Field{Key: key, Value: value}
}

func quietLogger() *slog.Logger {
	return slog.New(tint.NewHandler(io.Discard, nil))
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "parser", "testdata", name))
	require.NoError(t, err)
	return b
}

// wiki serves article pages by path and api.php responses by action.
type wiki struct {
	articles map[string][]byte
	actions  map[string][]byte
}

func (w wiki) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api.php" {
		if body, ok := w.actions[r.URL.Query().Get("action")]; ok {
			rw.Header().Set("Content-Type", "application/json")
			_, _ = rw.Write(body)
			return
		}
		http.Error(rw, "unknown action", http.StatusBadRequest)
		return
	}
	if body, ok := w.articles[strings.TrimPrefix(r.URL.Path, "/")]; ok {
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = rw.Write(body)
		return
	}
	http.NotFound(rw, r)
}

func testConfig(t *testing.T, srvURL, format string) *config.Config {
	t.Helper()
	return &config.Config{
		WikiAPIURL:       srvURL + "/api.php",
		WikiBaseURL:      srvURL + "/",
		APILimit:         500,
		HTTPTimeout:      5 * time.Second,
		UserAgent:        "poewiki-test",
		OutputDir:        t.TempDir(),
		OutputFormat:     format,
		UniqueCategories: []string{"Belts"},
		CardsArticle:     "List_of_divination_cards",
		MapsArticle:      "List_of_maps",
		CacheTTL:         time.Minute,
	}
}

func testDeps() *Deps {
	return &Deps{
		Fetcher: crawler.NewClient(5*time.Second, "poewiki-test"),
		Metrics: observability.NewMetrics(),
		Logger:  quietLogger(),
		Now:     func() time.Time { return fixedNow },
	}
}

func TestCardsElDorado(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(wiki{articles: map[string][]byte{
		"List_of_divination_cards": fixture(t, "divination_cards.html"),
	}})
	defer srv.Close()

	cfg := testConfig(t, srv.URL, config.FormatRecords)
	cfg.CardsIncludeDrops = false
	deps := testDeps()

	p, err := Cards(cfg, deps)
	require.NoError(t, err)
	got, err := p.Run(context.Background())
	require.NoError(t, err)

	want := model.RecordSet{
		model.NewRecord(
			f("name", "El Dorado"),
			f("stack_size", 8),
			f("stats", []string{"35% increased Rarity of Items found"}),
		),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("records (-want +got):\n%s", diff)
	}

	written, err := writer.ReadRecordFile(filepath.Join(cfg.OutputDir, "cards.jsonl"))
	require.NoError(t, err)
	if diff := cmp.Diff(want, written); diff != "" {
		t.Fatalf("written records (-want +got):\n%s", diff)
	}

	require.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.FetchesTotal.WithLabelValues("cards", "article", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.RecordsWritten.WithLabelValues("cards")))
}

func TestCardsWithDropsAHK(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(wiki{
		articles: map[string][]byte{"List_of_divination_cards": fixture(t, "divination_cards_multi.html")},
		actions:  map[string][]byte{"cargoquery": fixture(t, "cargo_cards.json")},
	})
	defer srv.Close()

	cfg := testConfig(t, srv.URL, config.FormatAHK)
	cfg.CardsIncludeDrops = true

	p, err := Cards(cfg, testDeps())
	require.NoError(t, err)
	rs, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rs, 4)

	doctor := rs[0]
	require.Equal(t, "The Doctor", doctor.String("name"))
	require.Equal(t, []string{"Headhunter", "Leather Belt"}, doctor.Strings("stats"))
	require.Equal(t, []string{"Burial Chambers Map", "Spider Lair"}, doctor.Strings("drop_text"))
	n, ok := rs[1].Int("stack_size")
	require.True(t, ok)
	require.Equal(t, 1000, n)

	b, err := os.ReadFile(filepath.Join(cfg.OutputDir, "DivinationCardList.txt"))
	require.NoError(t, err)
	out := string(b)
	require.True(t, strings.HasPrefix(out, "; Data from "+srv.URL+"/Path_of_Exile_Wiki using the API.\n"))
	require.Contains(t, out, "; This file was auto-generated by poewiki cards on 2018-03-04 at 15:06:07\n\n")
	require.Contains(t, out, "divinationCardList := Object()\n\n")

	body := out[strings.Index(out, `divinationCardList["The Doctor"]`):]
	require.Equal(t, strings.Join([]string{
		"divinationCardList[\"The Doctor\"] := \"Drop Restrictions:`n Burial Chambers Map`n Spider Lair\"",
		"divinationCardList[\"Rain of Chaos\"] := \"No drop information available\"",
		"divinationCardList[\"Humility\"] := \"Drop Locations:`n Tower Map`n The Ledge`n`nAdditionally these locations were recorded in 3.0:`n Pier Map\"",
		"divinationCardList[\"The Void\"] := \"No drop information available\"",
	}, "\n")+"\n", body)
}

func TestMalformedTableLeavesFileUntouched(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(wiki{articles: map[string][]byte{
		"List_of_divination_cards": []byte(`<html><body><div class="noarticletext">There is currently no text in this page.</div></body></html>`),
	}})
	defer srv.Close()

	cfg := testConfig(t, srv.URL, config.FormatAHK)
	path := filepath.Join(cfg.OutputDir, "DivinationCardList.txt")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o644))

	deps := testDeps()
	p, err := Cards(cfg, deps)
	require.NoError(t, err)
	_, err = p.Run(context.Background())

	var perr *parser.ParseError
	require.ErrorAs(t, err, &perr)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "previous run\n", string(b))
	require.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.RunsTotal.WithLabelValues("cards", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.StageErrors.WithLabelValues("cards", "fetch:article", "parse")))
}

func TestNetworkErrorAbortsRun(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL, config.FormatAHK)
	deps := testDeps()
	p, err := Maps(cfg, deps)
	require.NoError(t, err)
	_, err = p.Run(context.Background())

	var nerr *crawler.NetworkError
	require.ErrorAs(t, err, &nerr)
	require.Equal(t, http.StatusServiceUnavailable, nerr.StatusCode)

	var serr *StageError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, "fetch:article", serr.Stage)
	require.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.StageErrors.WithLabelValues("maps", "fetch:article", "network")))
	require.Equal(t, 1, testutil.CollectAndCount(deps.Metrics.StageDuration), "later stages never ran")

	_, statErr := os.Stat(filepath.Join(cfg.OutputDir, "MapList.txt"))
	require.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestUniquesAHK(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(wiki{actions: map[string][]byte{
		"askargs": fixture(t, "uniques_belts.json"),
	}})
	defer srv.Close()

	cfg := testConfig(t, srv.URL, config.FormatAHK)
	cfg.StyleVariantsPath = filepath.Join(t.TempDir(), "missing.json")

	p, err := Uniques(cfg, testDeps())
	require.NoError(t, err)
	require.Len(t, p.Sources, 1)
	require.Contains(t, p.Sources[0].URL, "Has+item+class%3A%3ABelts")

	_, err = p.Run(context.Background())
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(cfg.OutputDir, "Uniques.txt"))
	require.NoError(t, err)
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	require.NoError(t, err)

	lines := strings.Split(string(decoded), "\n")
	require.Equal(t, "; This file was auto-generated by poewiki uniques on 2018-03-04 at 15:06:07", lines[4])
	require.Equal(t, []string{
		"Bated Breath|5-8,12-15:Adds Physical Damage to Attacks",
		"Perseverance|@260-320:To Armour|20-30:To maximum Energy Shield|6-10:Increased Attack Speed",
		"",
	}, lines[7:])
}

func TestMapsRecords(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(wiki{articles: map[string][]byte{
		"List_of_maps": fixture(t, "maps.html"),
	}})
	defer srv.Close()

	cfg := testConfig(t, srv.URL, config.FormatRecords)
	p, err := Maps(cfg, testDeps())
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.NoError(t, err)

	got, err := writer.ReadRecordFile(filepath.Join(cfg.OutputDir, "maps.jsonl"))
	require.NoError(t, err)
	if diff := cmp.Diff(model.RecordSet{
		model.NewRecord(f("name", "Arcade Map"), f("tier", 1), f("area_level", 68)),
		model.NewRecord(f("name", "Dunes Map"), f("tier", 3), f("area_level", 70)),
	}, got); diff != "" {
		t.Fatalf("maps (-want +got):\n%s", diff)
	}
}

type recordingArchive struct {
	mu    sync.Mutex
	pages []model.RawPage
	runs  []model.Run
	fail  bool
}

func (a *recordingArchive) SavePage(_ context.Context, p model.RawPage) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return errors.New("archive down")
	}
	a.pages = append(a.pages, p)
	return nil
}

func (a *recordingArchive) SaveRun(_ context.Context, run model.Run, _ model.RecordSet) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail {
		return errors.New("archive down")
	}
	a.runs = append(a.runs, run)
	return nil
}

func TestArchive(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(wiki{articles: map[string][]byte{
		"List_of_maps": fixture(t, "maps.html"),
	}})
	defer srv.Close()

	cfg := testConfig(t, srv.URL, config.FormatAHK)
	archive := &recordingArchive{}
	deps := testDeps()
	deps.Archive = archive

	p, err := Maps(cfg, deps)
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, archive.pages, 1)
	require.Len(t, archive.runs, 1)
	require.Equal(t, archive.runs[0].ID, archive.pages[0].RunID)
	require.Equal(t, srv.URL+"/List_of_maps", archive.pages[0].SourceURL)
	require.Equal(t, 2, archive.runs[0].RecordCount)
	require.Equal(t, filepath.Join(cfg.OutputDir, "MapList.txt"), archive.runs[0].OutputPath)
}

func TestArchiveFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(wiki{articles: map[string][]byte{
		"List_of_maps": fixture(t, "maps.html"),
	}})
	defer srv.Close()

	cfg := testConfig(t, srv.URL, config.FormatAHK)
	deps := testDeps()
	deps.Archive = &recordingArchive{fail: true}

	p, err := Maps(cfg, deps)
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(cfg.OutputDir, "MapList.txt"))
	require.NoError(t, err)
	require.Contains(t, string(b), "mapList[\"Dunes Map\"] := \"Tier: 3`nArea Level: 70\"\n")
	require.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.StageErrors.WithLabelValues("maps", "archive", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(deps.Metrics.RunsTotal.WithLabelValues("maps", "ok")))
}

func TestUnknownOutputFormat(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, "http://127.0.0.1", "xml")
	_, err := Maps(cfg, testDeps())
	require.ErrorContains(t, err, `unknown output format "xml"`)
}

func TestNewDepsDefaults(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, "http://127.0.0.1", config.FormatAHK)
	deps, cleanup, err := NewDeps(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	defer cleanup()

	require.IsType(t, &crawler.Client{}, deps.Fetcher)
	require.Nil(t, deps.Archive)
	require.NotNil(t, deps.Metrics)
}

func TestNewDepsBadRedisURL(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t, "http://127.0.0.1", config.FormatAHK)
	cfg.RedisURL = "http://cache.invalid"
	_, _, err := NewDeps(context.Background(), cfg, quietLogger())
	require.Error(t, err)
}

func TestExecuteExportsMetrics(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(wiki{articles: map[string][]byte{
		"List_of_maps": fixture(t, "maps.html"),
	}})
	defer srv.Close()

	cfg := testConfig(t, srv.URL, config.FormatRecords)
	cfg.MetricsTextfile = filepath.Join(t.TempDir(), "poewiki.prom")

	require.NoError(t, Execute(context.Background(), cfg, quietLogger(), Maps))

	b, err := os.ReadFile(cfg.MetricsTextfile)
	require.NoError(t, err)
	require.Contains(t, string(b), `poewiki_runs_total{pipeline="maps",result="ok"} 1`)
}
