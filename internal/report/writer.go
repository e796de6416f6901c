package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/salary-panel/internal/models"
	"github.com/stitts-dev/salary-panel/internal/regression"
	"github.com/stitts-dev/salary-panel/pkg/logger"
)

// Output locations under RESULTS_DIR
const (
	ModelsDir            = "models"
	SummaryStatisticsDir = "summary_statistics"
	SummaryStatisticsTxt = "summary_statistics.txt"
	SummaryStatisticsTex = "summary_statistics.tex"
	SeasonTrendsCSV      = "season_trends.csv"
)

// Writer places report files under a results directory. Existing files are
// overwritten.
type Writer struct {
	resultsDir string
}

func NewWriter(resultsDir string) *Writer {
	return &Writer{resultsDir: resultsDir}
}

// ModelPath returns the report path for a model name and extension.
func (w *Writer) ModelPath(name, ext string) string {
	return filepath.Join(w.resultsDir, ModelsDir, name+ext)
}

// WriteResult writes <name>.txt and <name>.tex for a fitted model.
func (w *Writer) WriteResult(_ context.Context, spec models.ModelSpec, result *regression.Result) error {
	if err := w.writeFile(w.ModelPath(spec.Name, ".txt"), result.Text()); err != nil {
		return err
	}
	return w.writeFile(w.ModelPath(spec.Name, ".tex"), result.LaTeX())
}

// WriteSummaryStatistics writes the descriptive statistics table as plain
// text and as a LaTeX tabular.
func (w *Writer) WriteSummaryStatistics(descs []Description) error {
	dir := filepath.Join(w.resultsDir, SummaryStatisticsDir)
	if err := w.writeFile(filepath.Join(dir, SummaryStatisticsTxt), DescriptionText(descs)); err != nil {
		return err
	}
	return w.writeFile(filepath.Join(dir, SummaryStatisticsTex), DescriptionLaTeX(descs))
}

// WriteSeasonTrends writes one CSV row per season.
func (w *Writer) WriteSeasonTrends(trends []SeasonTrend) error {
	seasons := make([]int, len(trends))
	players := make([]int, len(trends))
	salaries := make([]float64, len(trends))
	rates := make([]float64, len(trends))
	for i, t := range trends {
		seasons[i] = t.Season
		players[i] = t.Players
		salaries[i] = t.MeanSalary
		rates[i] = t.ThreeRate
	}

	df := dataframe.New(
		series.New(seasons, series.Int, "Season"),
		series.New(players, series.Int, "players"),
		series.New(salaries, series.Float, "mean_salary"),
		series.New(rates, series.Float, "3PA_per_FGA"),
	)
	if df.Err != nil {
		return fmt.Errorf("failed to build season trends: %w", df.Err)
	}

	path := filepath.Join(w.resultsDir, SummaryStatisticsDir, SeasonTrendsCSV)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := df.WriteCSV(file); err != nil {
		return fmt.Errorf("failed to write season trends: %w", err)
	}

	logger.WithComponent("report").WithFields(logrus.Fields{
		"path":    path,
		"seasons": len(trends),
	}).Info("Wrote season trends")
	return nil
}

func (w *Writer) writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.WithComponent("report").WithField("path", path).Debug("Wrote report")
	return nil
}

// DescriptionText lays the statistics out with one column per feature.
func DescriptionText(descs []Description) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-6s", ""))
	for _, d := range descs {
		b.WriteString(fmt.Sprintf(" %12s", d.Column))
	}
	b.WriteString("\n")
	for i, label := range DescribeRows {
		b.WriteString(fmt.Sprintf("%-6s", label))
		for _, d := range descs {
			b.WriteString(fmt.Sprintf(" %12.6f", d.Values()[i]))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// DescriptionLaTeX renders the statistics as a booktabs tabular.
func DescriptionLaTeX(descs []Description) string {
	var b strings.Builder
	b.WriteString("\\begin{tabular}{l" + strings.Repeat("r", len(descs)) + "}\n")
	b.WriteString("\\toprule\n")
	b.WriteString(" ")
	for _, d := range descs {
		b.WriteString(" & " + d.Column)
	}
	b.WriteString(" \\\\\n\\midrule\n")
	for i, label := range DescribeRows {
		b.WriteString(strings.ReplaceAll(label, "%", "\\%"))
		for _, d := range descs {
			b.WriteString(fmt.Sprintf(" & %.6f", d.Values()[i]))
		}
		b.WriteString(" \\\\\n")
	}
	b.WriteString("\\bottomrule\n\\end{tabular}\n")
	return b.String()
}
