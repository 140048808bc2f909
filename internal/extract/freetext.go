package extract

import (
	"regexp"
	"strings"
)

// DefaultSpecies is assumed for free-text sources that never name the
// species in their report body.
const DefaultSpecies = "TROUT"

// dateShape matches lines that look like a report date: D[D]/D[D]/DDDD.
var dateShape = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)

// FreeTextExtractor parses sources that publish stockings as loosely
// delimited label/value text with no reliable table structure. The report
// section is bounded by StartMarker (required) and EndMarker (optional),
// repeated column-header labels are stripped, and the remaining lines are
// walked in (water, region, date) triples with a one-line slide on
// rejection so extraneous lines cannot derail the rest of the report.
type FreeTextExtractor struct {
	StartMarker  string
	EndMarker    string
	HeaderLabels []string
	Species      string
}

func (x FreeTextExtractor) Extract(raw string) []RawRow {
	lines := sectionLines(textLines(raw), x.StartMarker, x.EndMarker)
	if len(lines) == 0 {
		return nil
	}

	labels := make(map[string]bool, len(x.HeaderLabels))
	for _, l := range x.HeaderLabels {
		labels[strings.ToLower(collapseSpace(l))] = true
	}
	isLabel := func(line string) bool {
		lower := strings.ToLower(line)
		if labels[lower] {
			return true
		}
		return x.EndMarker != "" && strings.Contains(lower, strings.ToLower(x.EndMarker))
	}

	// Header words repeat throughout the layout; remove exact matches up
	// front so they are never mistaken for data.
	var data []string
	for _, ln := range lines {
		if !labels[strings.ToLower(ln)] {
			data = append(data, ln)
		}
	}

	species := x.Species
	if species == "" {
		species = DefaultSpecies
	}

	var rows []RawRow
	i := 0
	for i+2 < len(data) {
		water, region, date := data[i], data[i+1], data[i+2]
		ok := !isLabel(water) && !isLabel(region) && !isLabel(date) &&
			!dateShape.MatchString(water) && !dateShape.MatchString(region) &&
			dateShape.MatchString(date)
		if !ok {
			// Slide by one to recover alignment past an extraneous line.
			i++
			continue
		}
		rows = append(rows, RawRow{
			Water:   water,
			County:  strings.ToUpper(region),
			Species: species,
			Date:    date,
		})
		i += 3
	}
	return rows
}

// sectionLines bounds the report body: everything after the first line
// containing the start marker, up to (not including) the first later line
// containing the end marker. A missing start marker means no report.
func sectionLines(lines []string, startMarker, endMarker string) []string {
	if startMarker == "" {
		return nil
	}
	start := -1
	lowerStart := strings.ToLower(startMarker)
	for i, ln := range lines {
		if strings.Contains(strings.ToLower(ln), lowerStart) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return nil
	}

	end := len(lines)
	if endMarker != "" {
		lowerEnd := strings.ToLower(endMarker)
		for i := start; i < len(lines); i++ {
			if strings.Contains(strings.ToLower(lines[i]), lowerEnd) {
				end = i
				break
			}
		}
	}
	return lines[start:end]
}
