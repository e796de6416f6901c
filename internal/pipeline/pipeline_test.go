package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/salary-panel/internal/dataset"
	"github.com/stitts-dev/salary-panel/internal/models"
	"github.com/stitts-dev/salary-panel/internal/providers"
	"github.com/stitts-dev/salary-panel/internal/regression"
	"github.com/stitts-dev/salary-panel/internal/report"
	"github.com/stitts-dev/salary-panel/pkg/config"
	"github.com/stitts-dev/salary-panel/pkg/utils"
)

type player struct {
	name, pos      string
	minutes, three string
}

var roster = []player{
	{"Ann Able", "PG", "1000", "40"},
	{"Ben Baker", "SG", "1500", "90"},
	{"Cal Cole", "SF", "2000", "50"},
	{"Dan Dunn", "PF", "2500", "200"},
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeStats(t *testing.T, dataDir string, season int) {
	t.Helper()
	header := append([]string{"Rk", models.ColPlayer, models.ColPosition, models.ColTeam}, models.NumericStats...)
	lines := []string{strings.Join(header, ",")}
	for i, p := range roster {
		cells := []string{fmt.Sprint(i + 1), p.name, p.pos, "AAA"}
		for _, col := range models.NumericStats {
			switch col {
			case models.StatGames:
				cells = append(cells, "80")
			case models.StatMinutes:
				cells = append(cells, p.minutes)
			case models.StatThrees:
				cells = append(cells, p.three)
			default:
				cells = append(cells, "500")
			}
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	writeFile(t, dataset.StatsPath(dataDir, season), strings.Join(lines, "\n")+"\n")
}

func writeHoopshype(t *testing.T, dataDir string, season int, salaries []string) {
	t.Helper()
	column := fmt.Sprintf("%d/%02d(*)", season, (season+1)%100)
	lines := []string{"Player," + column}
	for i, p := range roster {
		lines = append(lines, fmt.Sprintf("%s,\"%s\"", p.name, salaries[i]))
	}
	writeFile(t, dataset.SalaryPath(dataDir, config.SalarySourceHoopshype, season), strings.Join(lines, "\n")+"\n")
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		Env:            "test",
		DataDir:        filepath.Join(root, "data"),
		ResultsDir:     filepath.Join(root, "results"),
		ModelConfigDir: filepath.Join(root, "model_configs"),
		FirstSeason:    2000,
		LastSeason:     2001,
		BaselineYear:   2000,
		SalarySource:   config.SalarySourceHoopshype,
		ModelNames:     []string{"model_a", "model_b"},
	}

	writeStats(t, cfg.DataDir, 2000)
	writeStats(t, cfg.DataDir, 2001)
	writeHoopshype(t, cfg.DataDir, 2000, []string{"$1,000,000", "$2,500,000", "$1,800,000", "$6,000,000"})
	writeHoopshype(t, cfg.DataDir, 2001, []string{"$1,200,000", "$3,100,000", "$1,700,000", "$7,500,000"})

	writeFile(t, regression.SpecPath(cfg.ModelConfigDir, "model_a"),
		`{"independent_vars": ["3PPerMP"], "dependent_var": "salary"}`)
	writeFile(t, regression.SpecPath(cfg.ModelConfigDir, "model_b"),
		`{"independent_vars": ["3PPerMP"], "dependent_var": "next_year_salary"}`)
	return cfg
}

type countingWriter struct {
	models []string
}

func (w *countingWriter) WriteResult(_ context.Context, spec models.ModelSpec, _ *regression.Result) error {
	w.models = append(w.models, spec.Name)
	return nil
}

type fakeDownloader struct {
	seasons []int
	source  string
}

func (d *fakeDownloader) DownloadAll(_ context.Context, seasons []int, source string) (*providers.DownloadReport, error) {
	d.seasons = seasons
	d.source = source
	return &providers.DownloadReport{}, nil
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	sink := &countingWriter{}

	p, err := New(cfg, WithResultWriters(sink))
	require.NoError(t, err)

	out, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, out.Panel.Len())
	assert.Nil(t, out.Download)
	require.Len(t, out.Results, 2)

	a := out.Results[0]
	assert.Equal(t, "model_a", a.ModelName)
	assert.Equal(t, 8, a.NObs)
	assert.Equal(t, []string{regression.ConstTerm, models.RateThreesPerMinute}, a.Terms)

	b := out.Results[1]
	assert.Equal(t, 4, b.NObs)
	assert.Equal(t, 4, b.DroppedMissingLabel)
	assert.Equal(t, 0, b.DroppedMissing)

	assert.Equal(t, []string{"model_a", "model_b"}, sink.models)

	reports := report.NewWriter(cfg.ResultsDir)
	for _, name := range cfg.ModelNames {
		for _, ext := range []string{".txt", ".tex"} {
			assert.FileExists(t, reports.ModelPath(name, ext))
		}
	}
	statsDir := filepath.Join(cfg.ResultsDir, report.SummaryStatisticsDir)
	assert.FileExists(t, filepath.Join(statsDir, report.SummaryStatisticsTxt))
	assert.FileExists(t, filepath.Join(statsDir, report.SummaryStatisticsTex))
	assert.FileExists(t, filepath.Join(statsDir, report.SeasonTrendsCSV))
}

func TestBuildPanelIsDeterministic(t *testing.T) {
	cfg := testConfig(t)
	p, err := New(cfg)
	require.NoError(t, err)

	first, err := p.BuildPanel(context.Background(), cfg.Seasons())
	require.NoError(t, err)
	second, err := p.BuildPanel(context.Background(), cfg.Seasons())
	require.NoError(t, err)

	require.Equal(t, first.Len(), second.Len())
	for i := range first.Rows {
		assert.Equal(t, first.Rows[i].Player, second.Rows[i].Player)
		assert.Equal(t, first.Rows[i].Season, second.Rows[i].Season)
		assert.Equal(t, first.Rows[i].Features, second.Rows[i].Features)
	}
}

func TestRunUsesDownloaderWhenRequested(t *testing.T) {
	cfg := testConfig(t)
	cfg.GetData = true
	d := &fakeDownloader{}

	p, err := New(cfg, WithDownloader(d))
	require.NoError(t, err)

	out, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, out.Download)
	assert.Equal(t, []int{2000, 2001}, d.seasons)
	assert.Equal(t, config.SalarySourceHoopshype, d.source)
}

func TestRunWithoutDownloaderFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.GetData = true

	p, err := New(cfg)
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	assert.Error(t, err)
}

func TestRunMissingSeasonFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.LastSeason = 2002

	p, err := New(cfg)
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	assert.ErrorIs(t, err, utils.ErrMissingTable)
}

func TestRunInvalidModelSpecFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.ModelNames = []string{"missing_model"}

	p, err := New(cfg)
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	assert.ErrorIs(t, err, utils.ErrInvalidModelSpec)
}

func TestNewRejectsUnknownSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.SalarySource = "bogus"

	_, err := New(cfg)
	assert.Error(t, err)
}
