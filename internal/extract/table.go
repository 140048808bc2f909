package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// minColumns is the minimum schema width of a stocking table row:
// water, county, species, quantity, length, date.
const minColumns = 6

// TableExtractor parses sources that publish stockings as genuine table
// markup. Cells are mapped positionally; header rows (th-only) and rows
// narrower than the schema are discarded.
type TableExtractor struct{}

// Extract scans every table row in the document and maps its first six
// cells onto a RawRow.
func (TableExtractor) Extract(raw string) []RawRow {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil
	}

	var rows []RawRow
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < minColumns {
			return
		}
		text := make([]string, cells.Length())
		cells.Each(func(i int, td *goquery.Selection) {
			text[i] = collapseSpace(td.Text())
		})
		rows = append(rows, RawRow{
			Water:    text[0],
			County:   text[1],
			Species:  text[2],
			Quantity: text[3],
			Length:   text[4],
			Date:     text[5],
		})
	})
	return rows
}
