package pipeline

import (
	"fmt"

	"github.com/troutline/stocking-events/internal/config"
	"github.com/troutline/stocking-events/internal/extract"
)

// Source pairs one agency page with the extraction strategy its markup
// calls for.
type Source struct {
	Name      string
	URL       string
	Extractor extract.Extractor
}

// SourcesFromConfig builds the poll sources described by the config.
func SourcesFromConfig(cfgs []config.SourceConfig) ([]Source, error) {
	sources := make([]Source, 0, len(cfgs))
	for _, c := range cfgs {
		var ex extract.Extractor
		switch c.Strategy {
		case config.StrategyTable:
			ex = extract.TableExtractor{}
		case config.StrategyFreeText:
			ex = extract.FreeTextExtractor{
				StartMarker:  c.StartMarker,
				EndMarker:    c.EndMarker,
				HeaderLabels: c.HeaderLabels,
				Species:      c.Species,
			}
		default:
			return nil, fmt.Errorf("source %q: unknown strategy %q", c.Name, c.Strategy)
		}
		sources = append(sources, Source{Name: c.Name, URL: c.URL, Extractor: ex})
	}
	return sources, nil
}
