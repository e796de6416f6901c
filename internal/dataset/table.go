package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/stitts-dev/salary-panel/pkg/utils"
)

// Table is one raw per-season CSV held as strings. Type coercion is left to
// the cleaning stages so that malformed cells can be reported precisely.
type Table struct {
	Season int
	Source string
	df     dataframe.DataFrame
	cols   map[string][]string
}

// ReadOption tweaks how a raw table is read
type ReadOption func(*readOptions)

type readOptions struct {
	skipLines int
}

// SkipLines discards n physical lines before the header row.
func SkipLines(n int) ReadOption {
	return func(o *readOptions) {
		o.skipLines = n
	}
}

// LoadCSV reads the table stored at path for the given season.
func LoadCSV(path string, season int, opts ...ReadOption) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, utils.NewPipelineError(utils.StageLoad, season, utils.ErrMissingTable).
				WithDetail("%s", path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f, season, opts...)
	if err != nil {
		return nil, err
	}
	t.Source = filepath.Base(path)
	return t, nil
}

// ReadCSV parses a raw table from r.
func ReadCSV(r io.Reader, season int, opts ...ReadOption) (*Table, error) {
	var o readOptions
	for _, opt := range opts {
		opt(&o)
	}

	br := bufio.NewReader(r)
	for i := 0; i < o.skipLines; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to skip leading lines: %w", err)
		}
	}

	df := dataframe.ReadCSV(br,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithLazyQuotes(true),
	)
	if df.Err != nil {
		return nil, utils.NewPipelineError(utils.StageLoad, season, df.Err).WithDetail("unreadable csv")
	}
	return newTable(df, season), nil
}

func newTable(df dataframe.DataFrame, season int) *Table {
	t := &Table{Season: season, df: df, cols: make(map[string][]string, df.Ncol())}
	for _, name := range df.Names() {
		t.cols[name] = df.Col(name).Records()
	}
	return t
}

// Names returns the header in file order
func (t *Table) Names() []string {
	return t.df.Names()
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return t.df.Nrow()
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Require returns an error naming the first absent column.
func (t *Table) Require(stage string, names ...string) error {
	for _, name := range names {
		if !t.HasColumn(name) {
			return utils.NewPipelineError(stage, t.Season, utils.ErrMissingColumn).WithColumn(name)
		}
	}
	return nil
}

// Cell returns the raw value at row i of column name. Empty and NA cells
// are returned as "".
func (t *Table) Cell(i int, name string) string {
	col, ok := t.cols[name]
	if !ok || i < 0 || i >= len(col) {
		return ""
	}
	if v := col[i]; v != "NaN" {
		return v
	}
	return ""
}

// DropSentinelRows removes repeated header rows, i.e. rows where any of the
// given columns holds its own column name. Multi-page scrapes repeat the
// header every page.
func (t *Table) DropSentinelRows(columns ...string) *Table {
	df := t.df
	for _, name := range columns {
		if !t.HasColumn(name) {
			continue
		}
		header := name
		df = df.Filter(dataframe.F{
			Colname:    name,
			Comparator: series.CompFunc,
			Comparando: func(el series.Element) bool {
				return el.String() != header
			},
		})
	}
	out := newTable(df, t.Season)
	out.Source = t.Source
	return out
}
