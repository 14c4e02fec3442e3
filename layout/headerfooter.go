package layout

import (
	"regexp"
	"strings"
)

// pageNumberRe matches standalone page-number lines, including the decorated
// forms "- 12 -", "Page 3 / 10", "Sayfa 7".
var pageNumberRe = regexp.MustCompile(`^(?:(?:Page|Sayfa|Bölüm)\s*)?-?\s*\d+(?:\s*[-/]\s*\d+)?\s*-?$`)

var digitRunRe = regexp.MustCompile(`\d+`)

// PrunerConfig holds configuration for header/footer pruning
type PrunerConfig struct {
	// RepeatRatio is the minimum fraction of pages an edge line must repeat
	// on to be treated as a running header or footer. Default: 0.6
	RepeatRatio float64

	// MinPages is the minimum document length for repetition analysis.
	// Shorter documents only get page-number stripping. Default: 2
	MinPages int

	// EdgeLines is how many lines at the top and bottom of each page are
	// eligible for pruning. Default: 3
	EdgeLines int
}

// DefaultPrunerConfig returns sensible default configuration
func DefaultPrunerConfig() PrunerConfig {
	return PrunerConfig{
		RepeatRatio: 0.6,
		MinPages:    2,
		EdgeLines:   3,
	}
}

// Pruner removes running headers, footers, and standalone page numbers from
// per-page line content. Detection is document-wide: a line qualifies by
// repeating at the same page edge across enough pages, or by matching a
// page-number pattern.
type Pruner struct {
	config PrunerConfig
}

// NewPruner creates a pruner with default configuration
func NewPruner() *Pruner {
	return &Pruner{config: DefaultPrunerConfig()}
}

// NewPrunerWithConfig creates a pruner with custom configuration
func NewPrunerWithConfig(config PrunerConfig) *Pruner {
	return &Pruner{config: config}
}

// PruneResult holds the outcome for one page.
type PruneResult struct {
	Lines []string

	// PageNumber is the stripped page-number token, if one was found.
	PageNumber string
}

// Prune analyzes all pages of a document together and returns each page's
// surviving lines. One-line-one-slot: result i corresponds to input page i.
func (p *Pruner) Prune(pages [][]string) []PruneResult {
	repeated := p.repeatedEdgeLines(pages)

	results := make([]PruneResult, len(pages))
	for i, lines := range pages {
		res := PruneResult{Lines: make([]string, 0, len(lines))}
		for j, line := range lines {
			if !p.isEdge(j, len(lines)) {
				res.Lines = append(res.Lines, line)
				continue
			}
			trimmed := strings.TrimSpace(line)
			if IsPageNumberLine(trimmed) {
				if res.PageNumber == "" {
					res.PageNumber = digitRunRe.FindString(trimmed)
				}
				continue
			}
			if repeated[normalizeEdgeLine(trimmed)] {
				continue
			}
			res.Lines = append(res.Lines, line)
		}
		results[i] = res
	}
	return results
}

// IsPageNumberLine reports whether a line is a standalone page-number token
func IsPageNumberLine(line string) bool {
	return pageNumberRe.MatchString(strings.TrimSpace(line))
}

func (p *Pruner) isEdge(idx, total int) bool {
	return idx < p.config.EdgeLines || idx >= total-p.config.EdgeLines
}

// repeatedEdgeLines collects normalized edge lines appearing on at least
// RepeatRatio of the pages. Counting is per page, not per occurrence, so a
// line repeated within one page does not qualify.
func (p *Pruner) repeatedEdgeLines(pages [][]string) map[string]bool {
	repeated := make(map[string]bool)
	if len(pages) < p.config.MinPages {
		return repeated
	}

	counts := make(map[string]int)
	for _, lines := range pages {
		seen := make(map[string]bool)
		for j, line := range lines {
			if !p.isEdge(j, len(lines)) {
				continue
			}
			norm := normalizeEdgeLine(strings.TrimSpace(line))
			if norm == "" || seen[norm] {
				continue
			}
			seen[norm] = true
			counts[norm]++
		}
	}

	threshold := int(float64(len(pages)) * p.config.RepeatRatio)
	if threshold < 2 {
		threshold = 2
	}
	for norm, n := range counts {
		if n >= threshold {
			repeated[norm] = true
		}
	}
	return repeated
}

// normalizeEdgeLine folds digit runs to a placeholder so "Chapter 1" and
// "Chapter 2" compare equal.
func normalizeEdgeLine(line string) string {
	return digitRunRe.ReplaceAllString(strings.ToLower(line), "#")
}
