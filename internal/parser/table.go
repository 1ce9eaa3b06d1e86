package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"poewiki/internal/model"
)

const defaultTableSelector = "table.wikitable"

var innerWhitespace = regexp.MustCompile(`\s+`)

// Column binds a table header to a record field. Headers lists the accepted
// header texts; matching ignores case and surrounding whitespace.
type Column struct {
	Headers  []string
	Field    string
	List     bool
	Optional bool
}

// TableParser extracts rows from the first table in an article whose header
// row carries every required column.
//
// Cells are split at <br>: list columns keep the pieces, text columns join
// them with a single space. Hidden sort keys and scripts are ignored. The
// first column identifies a row, rows where it is empty are skipped.
type TableParser struct {
	Selector string
	Columns  []Column
}

func (p *TableParser) Parse(body []byte) (model.RecordSet, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Reason: "parse html", Err: err}
	}

	selector := p.Selector
	if selector == "" {
		selector = defaultTableSelector
	}

	var (
		found bool
		out   model.RecordSet
	)
	doc.Find(selector).EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := ownRows(table)
		header, index, ok := p.locateHeader(rows)
		if !ok {
			return true
		}
		found = true
		out = p.extract(rows, header, index)
		return false
	})

	if !found {
		return nil, &ParseError{Reason: fmt.Sprintf("no %q table with columns %s", selector, strings.Join(p.required(), ", "))}
	}
	if len(out) == 0 {
		return nil, &ParseError{Reason: "table has no data rows"}
	}
	return out, nil
}

func (p *TableParser) required() []string {
	var names []string
	for _, c := range p.Columns {
		if !c.Optional && len(c.Headers) > 0 {
			names = append(names, fmt.Sprintf("%q", c.Headers[0]))
		}
	}
	return names
}

// ownRows returns the rows of table itself, leaving out rows of nested tables.
func ownRows(table *goquery.Selection) *goquery.Selection {
	return table.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(table)
	})
}

// locateHeader finds the first row made of header cells and resolves the
// cell index of every column (-1 for a missing optional column).
func (p *TableParser) locateHeader(rows *goquery.Selection) (int, []int, bool) {
	for i := 0; i < rows.Length(); i++ {
		cells := rows.Eq(i).ChildrenFiltered("th, td")
		if cells.Filter("th").Length() == 0 {
			continue
		}

		titles := make([]string, cells.Length())
		cells.Each(func(j int, c *goquery.Selection) {
			titles[j] = headerKey(strings.Join(segments(c), " "))
		})

		index := make([]int, len(p.Columns))
		for ci, col := range p.Columns {
			index[ci] = matchHeader(titles, col.Headers)
			if index[ci] < 0 && !col.Optional {
				return 0, nil, false
			}
		}
		return i, index, true
	}
	return 0, nil, false
}

func headerKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func matchHeader(titles, aliases []string) int {
	for _, alias := range aliases {
		want := headerKey(alias)
		for i, t := range titles {
			if t == want {
				return i
			}
		}
	}
	return -1
}

func (p *TableParser) extract(rows *goquery.Selection, header int, index []int) model.RecordSet {
	need := 0
	for _, i := range index {
		if i > need {
			need = i
		}
	}

	var out model.RecordSet
	for r := header + 1; r < rows.Length(); r++ {
		cells := rows.Eq(r).ChildrenFiltered("th, td")
		if cells.Filter("td").Length() == 0 || cells.Length() <= need {
			continue
		}

		fields := make([]model.Field, 0, len(p.Columns))
		for ci, col := range p.Columns {
			if index[ci] < 0 {
				continue
			}
			segs := segments(cells.Eq(index[ci]))
			var v any
			switch {
			case col.List:
				if len(segs) > 0 {
					v = segs
				}
			case len(segs) > 0:
				v = strings.Join(segs, " ")
			}
			fields = append(fields, model.Field{Key: col.Field, Value: v})
		}

		if len(fields) == 0 || fields[0].Value == nil {
			continue
		}
		out = append(out, model.NewRecord(fields...))
	}
	return out
}

// segments returns the text of a cell split at <br> elements, with
// whitespace collapsed and empty pieces dropped.
func segments(cell *goquery.Selection) []string {
	var (
		segs []string
		buf  strings.Builder
	)
	flush := func() {
		s := strings.TrimSpace(innerWhitespace.ReplaceAllString(buf.String(), " "))
		if s != "" {
			segs = append(segs, s)
		}
		buf.Reset()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			buf.WriteString(n.Data)
		case html.ElementNode:
			switch {
			case n.Data == "br":
				flush()
				return
			case n.Data == "script" || n.Data == "style" || hidden(n):
				return
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				walk(c)
			}
		}
	}

	for _, n := range cell.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	flush()
	return segs
}

func hidden(n *html.Node) bool {
	for _, a := range n.Attr {
		if a.Key == "style" && strings.Contains(strings.ReplaceAll(a.Val, " ", ""), "display:none") {
			return true
		}
	}
	return false
}
