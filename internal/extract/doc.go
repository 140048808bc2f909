// Package extract provides per-source HTML parsing for fish-stocking reports.
//
// State agencies publish stockings in structurally different ways, so two
// extraction strategies share one contract: TableExtractor walks genuine
// table markup and maps cells positionally, while FreeTextExtractor renders
// the page to plain text and reassembles (water, region, date) triples with
// a sliding-window walk. Both produce RawRow sequences and never fail on a
// malformed row; bad rows are simply filtered out.
package extract
