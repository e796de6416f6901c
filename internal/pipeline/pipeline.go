// Package pipeline wires the stages together: optional download, cleaning,
// salary normalization, merge, feature engineering, reports and models.
package pipeline

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/salary-panel/internal/cleaner"
	"github.com/stitts-dev/salary-panel/internal/dataset"
	"github.com/stitts-dev/salary-panel/internal/models"
	"github.com/stitts-dev/salary-panel/internal/panel"
	"github.com/stitts-dev/salary-panel/internal/providers"
	"github.com/stitts-dev/salary-panel/internal/regression"
	"github.com/stitts-dev/salary-panel/internal/report"
	"github.com/stitts-dev/salary-panel/internal/salary"
	"github.com/stitts-dev/salary-panel/pkg/config"
	"github.com/stitts-dev/salary-panel/pkg/logger"
)

// Downloader refreshes the on-disk source tables
type Downloader interface {
	DownloadAll(ctx context.Context, seasons []int, salarySource string) (*providers.DownloadReport, error)
}

// Pipeline runs one end-to-end pass over the configured seasons.
type Pipeline struct {
	cfg        *config.Config
	source     salary.Source
	cleaner    *cleaner.Cleaner
	reports    *report.Writer
	downloader Downloader
	writers    []regression.ResultWriter
	logger     *logrus.Entry
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithDownloader sets the downloader used when GET_DATA is on.
func WithDownloader(d Downloader) Option {
	return func(p *Pipeline) {
		p.downloader = d
	}
}

// WithResultWriters adds sinks that receive every fitted model after the
// report files are written.
func WithResultWriters(writers ...regression.ResultWriter) Option {
	return func(p *Pipeline) {
		p.writers = append(p.writers, writers...)
	}
}

func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	source, err := salary.NewSource(cfg.SalarySource)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:     cfg,
		source:  source,
		cleaner: cleaner.NewCleaner(cfg.BaselineYear),
		reports: report.NewWriter(cfg.ResultsDir),
		logger:  logger.WithComponent("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Outcome is what a run produced
type Outcome struct {
	Panel    *panel.Panel
	Results  []*regression.Result
	Download *providers.DownloadReport
}

// Run executes every stage. Any stage error aborts the run.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	out := &Outcome{}
	seasons := p.cfg.Seasons()

	p.logger.WithFields(logrus.Fields{
		"first_season":  p.cfg.FirstSeason,
		"last_season":   p.cfg.LastSeason,
		"salary_source": p.source.Name(),
		"get_data":      p.cfg.GetData,
	}).Info("Starting pipeline")

	if p.cfg.GetData {
		if p.downloader == nil {
			return nil, fmt.Errorf("data download requested but no downloader configured")
		}
		dl, err := p.downloader.DownloadAll(ctx, seasons, p.source.Name())
		if err != nil {
			return nil, fmt.Errorf("download: %w", err)
		}
		out.Download = dl
	}

	specs, err := regression.LoadSpecs(p.cfg.ModelConfigDir, p.cfg.ModelNames)
	if err != nil {
		return nil, err
	}

	pnl, err := p.BuildPanel(ctx, seasons)
	if err != nil {
		return nil, err
	}
	out.Panel = pnl

	if err := p.writeReports(pnl); err != nil {
		return nil, err
	}

	writers := append([]regression.ResultWriter{p.reports}, p.writers...)
	results, err := regression.NewRunner(writers...).RunAll(ctx, pnl, specs)
	if err != nil {
		return nil, err
	}
	out.Results = results

	p.logger.WithFields(logrus.Fields{
		"panel_rows": pnl.Len(),
		"models":     len(results),
	}).Info("Pipeline finished")
	return out, nil
}

// BuildPanel loads, cleans and joins every season, then engineers features.
func (p *Pipeline) BuildPanel(ctx context.Context, seasons []int) (*panel.Panel, error) {
	var stats []models.PlayerSeasonRecord
	var salaries []models.SalaryRecord

	for _, season := range seasons {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		table, err := dataset.LoadCSV(dataset.StatsPath(p.cfg.DataDir, season), season)
		if err != nil {
			return nil, err
		}
		records, err := p.cleaner.CleanSeason(table)
		if err != nil {
			return nil, err
		}
		stats = append(stats, records...)

		raw, err := p.source.Load(p.cfg.DataDir, season)
		if err != nil {
			return nil, err
		}
		normalized, err := p.source.Normalize(raw)
		if err != nil {
			return nil, err
		}
		salaries = append(salaries, normalized...)

		logger.WithSeason("pipeline", season).WithFields(logrus.Fields{
			"players":  len(records),
			"salaries": len(normalized),
		}).Debug("Season loaded")
	}

	merged, err := panel.Merge(stats, salaries)
	if err != nil {
		return nil, err
	}
	return panel.Engineer(merged), nil
}

func (p *Pipeline) writeReports(pnl *panel.Panel) error {
	if err := p.reports.WriteSummaryStatistics(report.DescribeRates(pnl)); err != nil {
		return err
	}
	return p.reports.WriteSeasonTrends(report.SeasonTrends(pnl))
}
