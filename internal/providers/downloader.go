package providers

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/salary-panel/internal/dataset"
	"github.com/stitts-dev/salary-panel/pkg/config"
	"github.com/stitts-dev/salary-panel/pkg/logger"
)

// ESPNPages is the number of salary pages ESPN lists per season
const ESPNPages = 15

// TableFetcher retrieves the first table of a page
type TableFetcher interface {
	FetchTable(ctx context.Context, rawURL string) (*HTMLTable, error)
}

// Endpoints are the site roots pages are fetched from.
type Endpoints struct {
	BasketballReference string
	Hoopshype           string
	ESPN                string
}

func DefaultEndpoints() Endpoints {
	return Endpoints{
		BasketballReference: "https://www.basketball-reference.com",
		Hoopshype:           "https://hoopshype.com",
		ESPN:                "https://www.espn.com",
	}
}

// StatsURL is the season totals page. Pages are named after the year the
// season ends in.
func (e Endpoints) StatsURL(season int) string {
	return fmt.Sprintf("%s/leagues/NBA_%d_totals.html", strings.TrimRight(e.BasketballReference, "/"), season+1)
}

func (e Endpoints) HoopshypeURL(season int) string {
	return fmt.Sprintf("%s/salaries/players/%d-%d/", strings.TrimRight(e.Hoopshype, "/"), season, season+1)
}

func (e Endpoints) ESPNURL(season, page int) string {
	return fmt.Sprintf("%s/nba/salaries/_/year/%d/page/%d", strings.TrimRight(e.ESPN, "/"), season+1, page)
}

// DownloadReport counts what a best-effort download produced.
type DownloadReport struct {
	Written []string
	Failed  []string
}

// Downloader writes fetched tables to the CSV layout the loader reads.
type Downloader struct {
	fetcher   TableFetcher
	endpoints Endpoints
	dataDir   string
	logger    *logrus.Entry
}

func NewDownloader(fetcher TableFetcher, endpoints Endpoints, dataDir string) *Downloader {
	return &Downloader{
		fetcher:   fetcher,
		endpoints: endpoints,
		dataDir:   dataDir,
		logger:    logger.WithComponent("downloader"),
	}
}

// DownloadAll fetches stats and salaries for every season. Failures are
// logged and recorded, and the run continues; only cancellation aborts.
func (d *Downloader) DownloadAll(ctx context.Context, seasons []int, salarySource string) (*DownloadReport, error) {
	report := &DownloadReport{}
	record := func(path string, err error) error {
		if err == nil {
			report.Written = append(report.Written, path)
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		report.Failed = append(report.Failed, path)
		d.logger.WithFields(logrus.Fields{
			"path":  path,
			"error": err.Error(),
		}).Error("Failed to download table")
		return nil
	}

	for _, season := range seasons {
		path := dataset.StatsPath(d.dataDir, season)
		if err := record(path, d.DownloadStats(ctx, season)); err != nil {
			return report, err
		}

		path = dataset.SalaryPath(d.dataDir, salarySource, season)
		if err := record(path, d.DownloadSalaries(ctx, salarySource, season)); err != nil {
			return report, err
		}
	}

	d.logger.WithFields(logrus.Fields{
		"written": len(report.Written),
		"failed":  len(report.Failed),
	}).Info("Download finished")
	return report, nil
}

// DownloadStats writes the season totals table.
func (d *Downloader) DownloadStats(ctx context.Context, season int) error {
	table, err := d.fetcher.FetchTable(ctx, d.endpoints.StatsURL(season))
	if err != nil {
		return err
	}
	return writeTable(dataset.StatsPath(d.dataDir, season), table)
}

// DownloadSalaries writes the salary table of the given source.
func (d *Downloader) DownloadSalaries(ctx context.Context, source string, season int) error {
	switch source {
	case config.SalarySourceHoopshype:
		table, err := d.fetcher.FetchTable(ctx, d.endpoints.HoopshypeURL(season))
		if err != nil {
			return err
		}
		return writeTable(dataset.SalaryPath(d.dataDir, source, season), table)
	case config.SalarySourceESPN:
		return d.downloadESPN(ctx, season)
	default:
		return fmt.Errorf("unknown salary source %q", source)
	}
}

// downloadESPN concatenates every salary page of a season. Missing pages
// are logged and skipped.
func (d *Downloader) downloadESPN(ctx context.Context, season int) error {
	var combined *HTMLTable
	for page := 1; page <= ESPNPages; page++ {
		table, err := d.fetcher.FetchTable(ctx, d.endpoints.ESPNURL(season, page))
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.WithSource(config.SalarySourceESPN, season).WithFields(logrus.Fields{
				"page":  page,
				"error": err.Error(),
			}).Warn("Failed to fetch salary page")
			continue
		}
		if combined == nil {
			combined = &HTMLTable{Header: table.Header}
		}
		combined.Rows = append(combined.Rows, table.Rows...)
	}
	if combined == nil {
		return fmt.Errorf("no ESPN salary pages retrieved for season %d", season)
	}
	return writeTable(dataset.SalaryPath(d.dataDir, config.SalarySourceESPN, season), combined)
}

func writeTable(path string, table *HTMLTable) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(table.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	width := len(table.Header)
	for i, row := range table.Rows {
		if err := writer.Write(fitWidth(row, width)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// fitWidth pads or truncates a row to the header width so the file stays
// rectangular.
func fitWidth(row []string, width int) []string {
	if len(row) == width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
