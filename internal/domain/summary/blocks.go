package summary

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Block type XPath selectors
const (
	allBlocks        = "//block"
	eventBlocks      = "//block[@type='component_event']"
	methodBlocks     = "//block[@type='component_method']"
	propertyBlocks   = "//block[@type='component_set_get']"
	procedureBlocks  = "//block[@type='procedures_defnoreturn' or @type='procedures_defreturn']"
	declarationBlock = "//block[@type='global_declaration']"
)

// BlockStats counts the blocks of one screen
type BlockStats struct {
	Total int
	Types BlockTypes
}

// CountBlocks counts blocks in a screen's block XML. Empty input has no
// blocks. Input that is not well-formed XML counts as zero and returns
// the parse error.
func CountBlocks(blocks string) (BlockStats, error) {
	var stats BlockStats
	if strings.TrimSpace(blocks) == "" {
		return stats, nil
	}
	if err := wellFormed(blocks); err != nil {
		return stats, fmt.Errorf("malformed block XML: %w", err)
	}

	doc, err := htmlquery.Parse(strings.NewReader(blocks))
	if err != nil {
		return stats, fmt.Errorf("parse block XML: %w", err)
	}

	counts := make(map[string]int, 6)
	for _, expr := range []string{allBlocks, eventBlocks, methodBlocks, propertyBlocks, procedureBlocks, declarationBlock} {
		n, err := count(doc, expr)
		if err != nil {
			return BlockStats{}, err
		}
		counts[expr] = n
	}

	stats.Total = counts[allBlocks]
	stats.Types = BlockTypes{
		Events:     counts[eventBlocks],
		Methods:    counts[methodBlocks],
		Properties: counts[propertyBlocks],
		Variables:  counts[declarationBlock],
		Procedures: counts[procedureBlocks],
	}
	return stats, nil
}

func count(doc *html.Node, expr string) (int, error) {
	nodes, err := htmlquery.QueryAll(doc, expr)
	if err != nil {
		return 0, fmt.Errorf("query %s: %w", expr, err)
	}
	return len(nodes), nil
}

// wellFormed rejects input the lenient HTML parser would accept
func wellFormed(s string) error {
	d := xml.NewDecoder(strings.NewReader(s))
	for {
		_, err := d.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
