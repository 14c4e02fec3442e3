package ocr

import (
	"strings"
	"unicode"

	"github.com/glonorce/docuforge/heal"
	"github.com/glonorce/docuforge/model"
)

// Mode controls whether the OCR fallback may run.
type Mode int

const (
	// ModeAuto routes pages to OCR based on the corruption heuristics.
	ModeAuto Mode = iota

	// ModeForceOn sends every page to OCR regardless of glyph quality.
	ModeForceOn

	// ModeForceOff never uses OCR, even for clearly corrupted pages.
	ModeForceOff
)

// String returns the mode name
func (m Mode) String() string {
	switch m {
	case ModeForceOn:
		return "on"
	case ModeForceOff:
		return "off"
	default:
		return "auto"
	}
}

// ParseMode parses an OCR mode name ("auto", "on", "off"). Unknown values
// fall back to auto.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "force", "always":
		return ModeForceOn
	case "off", "never":
		return ModeForceOff
	default:
		return ModeAuto
	}
}

// GateConfig holds gate configuration
type GateConfig struct {
	// CorruptionThreshold is the dictionary-unrecognized token fraction
	// above which a page routes to OCR. Default: 0.45
	CorruptionThreshold float64

	// SingleCharThreshold is the single-character word fraction above which
	// a page routes to OCR. Shattered extraction shows up as a sea of
	// one-letter words. Default: 0.4
	SingleCharThreshold float64

	// MinChars is the minimum extracted character count; below it the page
	// is presumed scanned. Default: 50
	MinChars int

	// MaxEditDistance mirrors the healer's correction budget: a token the
	// dictionary can repair within it does not count as corrupted.
	// Default: 2
	MaxEditDistance int

	// MaxRank is the rank cutoff for repairability checks. Default: 5000
	MaxRank int
}

// DefaultGateConfig returns sensible default configuration
func DefaultGateConfig() GateConfig {
	return GateConfig{
		CorruptionThreshold: 0.45,
		SingleCharThreshold: 0.4,
		MinChars:            50,
		MaxEditDistance:     2,
		MaxRank:             5000,
	}
}

// Gate decides, per page, whether glyph-derived extraction is trustworthy
// or the page must be re-read through OCR. The decision is deterministic
// for a given word list, mode, and dictionary.
type Gate struct {
	config GateConfig
	mode   Mode
	dict   *heal.Dictionary
}

// NewGate creates a gate with default configuration. dict may be nil; the
// corruption-ratio rule is then skipped and only the structural heuristics
// apply.
func NewGate(mode Mode, dict *heal.Dictionary) *Gate {
	return &Gate{config: DefaultGateConfig(), mode: mode, dict: dict}
}

// NewGateWithConfig creates a gate with custom configuration
func NewGateWithConfig(mode Mode, dict *heal.Dictionary, config GateConfig) *Gate {
	return &Gate{config: config, mode: mode, dict: dict}
}

// ShouldOCR reports whether the page's reconstructed words are corrupted
// enough to discard in favor of OCR output.
func (g *Gate) ShouldOCR(words []model.Word) bool {
	switch g.mode {
	case ModeForceOn:
		return true
	case ModeForceOff:
		return false
	}

	chars := 0
	singles := 0
	var tokens []string
	for _, w := range words {
		chars += len([]rune(w.Text))
		if len([]rune(w.Text)) == 1 {
			singles++
		}
		if tok := letterCore(w.Text); tok != "" {
			tokens = append(tokens, tok)
		}
	}

	if chars < g.config.MinChars {
		return true
	}
	if len(words) > 0 && float64(singles)/float64(len(words)) > g.config.SingleCharThreshold {
		return true
	}

	if g.dict == nil || len(tokens) == 0 {
		return false
	}
	return g.corruptionRatio(tokens) > g.config.CorruptionThreshold
}

// corruptionRatio is the fraction of tokens neither found in the
// dictionary nor repairable within the edit budget.
func (g *Gate) corruptionRatio(tokens []string) float64 {
	corrupted := 0
	for _, tok := range tokens {
		if g.dict.Contains(tok) {
			continue
		}
		if _, ok := g.dict.Correct(tok, g.config.MaxEditDistance, g.config.MaxRank); ok {
			continue
		}
		corrupted++
	}
	return float64(corrupted) / float64(len(tokens))
}

// letterCore strips surrounding punctuation and returns the token only if
// it is alphabetic. Numbers and symbols say nothing about corruption.
func letterCore(s string) string {
	core := strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if core == "" {
		return ""
	}
	for _, r := range core {
		if !unicode.IsLetter(r) {
			return ""
		}
	}
	return core
}
