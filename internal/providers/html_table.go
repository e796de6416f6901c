package providers

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/stitts-dev/salary-panel/pkg/utils"
)

// HTMLTable is the text content of one <table>.
type HTMLTable struct {
	Header []string
	Rows   [][]string
}

// ParseFirstTable extracts the first <table> in the document. The header
// comes from <thead>, or from a leading row made only of <th> cells. A table
// without one gets a positional header "0".."n-1". Header-like rows later in
// the body are kept as data.
func ParseFirstTable(r io.Reader) (*HTMLTable, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	tableNode := findFirst(doc, atom.Table)
	if tableNode == nil {
		return nil, fmt.Errorf("%w: document has no table", utils.ErrMissingTable)
	}

	table := &HTMLTable{}
	inBody := false
	for _, tr := range collectRows(tableNode) {
		cells, allHeader := rowCells(tr.node)
		if len(cells) == 0 {
			continue
		}
		if tr.inHead || (!inBody && table.Header == nil && allHeader) {
			// the last header row wins when <thead> holds a grouping row
			table.Header = cells
			continue
		}
		inBody = true
		table.Rows = append(table.Rows, cells)
	}

	if table.Header == nil {
		table.Header = positionalHeader(table.width())
	}
	return table, nil
}

func (t *HTMLTable) width() int {
	w := 0
	for _, row := range t.Rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

func positionalHeader(n int) []string {
	header := make([]string, n)
	for i := range header {
		header[i] = strconv.Itoa(i)
	}
	return header
}

type tableRow struct {
	node   *html.Node
	inHead bool
}

// collectRows walks the table in document order without descending into
// nested tables.
func collectRows(table *html.Node) []tableRow {
	var rows []tableRow
	var walk func(n *html.Node, inHead bool)
	walk = func(n *html.Node, inHead bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Table:
				continue
			case atom.Thead:
				walk(c, true)
			case atom.Tr:
				rows = append(rows, tableRow{node: c, inHead: inHead})
			default:
				walk(c, inHead)
			}
		}
	}
	walk(table, false)
	return rows
}

func rowCells(tr *html.Node) (cells []string, allHeader bool) {
	allHeader = true
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Th:
			cells = append(cells, textContent(c))
		case atom.Td:
			allHeader = false
			cells = append(cells, textContent(c))
		}
	}
	return cells, allHeader
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func findFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}
