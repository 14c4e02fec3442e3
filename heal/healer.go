package heal

import (
	"strings"
	"unicode"

	"github.com/glonorce/docuforge/model"
)

// Language selects the rule set applied during healing.
type Language int

const (
	LangTurkish Language = iota
	LangEnglish
)

// String returns the language code
func (l Language) String() string {
	if l == LangEnglish {
		return "en"
	}
	return "tr"
}

var stopsTR = map[string]bool{
	"ve": true, "bir": true, "bu": true, "için": true, "ile": true,
	"de": true, "da": true, "ki": true, "ne": true, "gibi": true,
	"her": true, "çok": true, "en": true, "daha": true,
}

var stopsEN = map[string]bool{
	"the": true, "and": true, "of": true, "to": true, "in": true,
	"is": true, "it": true, "you": true, "that": true, "for": true,
	"are": true, "on": true, "with": true, "as": true, "at": true,
}

// trParticleStarts are single letters that begin high-frequency Turkish
// words and never stand alone: a detached "b" before "u" is always "bu".
// The vowel "o" is excluded here because it is the third-person pronoun.
var trParticleStarts = map[rune]bool{
	'b': true, 'd': true, 'n': true, 'ş': true, 'a': true,
	'y': true, 'i': true, 'g': true, 'k': true,
}

// trAfterO are the stem starts that justify merging a lone "o": ol-, om-,
// ok-, oz-, os-, on-, or-, om-.
var trAfterO = map[rune]bool{
	'l': true, 'm': true, 'k': true, 'z': true,
	's': true, 'n': true, 'r': true,
}

// Config holds healer configuration
type Config struct {
	// MaxPasses bounds the fixpoint loop over the rule set. Default: 5
	MaxPasses int

	// MaxEditDistance is the edit budget for dictionary correction.
	// Default: 2
	MaxEditDistance int

	// MaxRank restricts correction candidates to the given number of
	// top-frequency dictionary words. Default: 5000
	MaxRank int

	// MinCorrectLen is the minimum token length eligible for dictionary
	// correction; short tokens produce too many false matches. Default: 4
	MinCorrectLen int

	// OrphanGapFactor is the maximum gap, as a multiple of font size, for a
	// single-character word to be absorbed into its neighbor. Wider than
	// the glyph-merge factor since these survivors already beat that
	// threshold. Default: 0.35
	OrphanGapFactor float64
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return Config{
		MaxPasses:       5,
		MaxEditDistance: 2,
		MaxRank:         5000,
		MinCorrectLen:   4,
		OrphanGapFactor: 0.35,
	}
}

// Healer repairs spacing and encoding corruption in extracted text. Rules
// are language aware: Turkish gets the aggressive single-letter merges,
// English only a conservative subset, so "a book" never becomes "abook".
// Healing is idempotent: healing already-healed text is a no-op.
type Healer struct {
	config Config
	dict   *Dictionary
}

// NewHealer creates a healer with default configuration. dict may be nil;
// dictionary correction and dictionary-gated merges are then skipped.
func NewHealer(dict *Dictionary) *Healer {
	return &Healer{config: DefaultConfig(), dict: dict}
}

// NewHealerWithConfig creates a healer with custom configuration
func NewHealerWithConfig(dict *Dictionary, config Config) *Healer {
	return &Healer{config: config, dict: dict}
}

// Dictionary returns the attached dictionary, which may be nil
func (h *Healer) Dictionary() *Dictionary {
	return h.dict
}

// DetectLanguage guesses the text language from stop-word hits. Ties lean
// Turkish, matching the primary corpus this repairs.
func DetectLanguage(text string) Language {
	scoreTR, scoreEN := 0, 0
	seen := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?()\"'")
		if seen[w] {
			continue
		}
		seen[w] = true
		if stopsTR[w] {
			scoreTR++
		}
		if stopsEN[w] {
			scoreEN++
		}
	}
	if scoreEN > scoreTR {
		return LangEnglish
	}
	return LangTurkish
}

// Heal repairs one text block. The language is detected from the block
// itself and re-detected after every pass: a merge can surface stop words
// that flip the detection, and the rules of the new language must then run
// too. The loop ends when the text is stable under its own detected
// language, so healing already-healed text is a no-op.
func (h *Healer) Heal(text string) string {
	if len(text) < 3 {
		return text
	}

	for pass := 0; pass < h.config.MaxPasses; pass++ {
		lang := DetectLanguage(text)
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			lines[i] = h.HealLine(line, lang)
		}
		healed := strings.Join(lines, "\n")
		if healed == text {
			break
		}
		text = healed
	}
	return text
}

// HealLine repairs a single line using the given language's rules
func (h *Healer) HealLine(line string, lang Language) string {
	if len(line) < 3 {
		return line
	}

	prev := ""
	for pass := 0; line != prev && pass < h.config.MaxPasses; pass++ {
		prev = line
		tokens := strings.Fields(line)
		tokens = collapseLetterRuns(tokens)
		if lang == LangTurkish {
			tokens = h.mergeTurkish(tokens)
		} else {
			tokens = h.mergeEnglish(tokens)
		}
		tokens = joinHyphenWraps(tokens)
		tokens = h.reattachSuffixes(tokens, lang)
		tokens = h.correctTokens(tokens)
		line = strings.Join(tokens, " ")
	}
	return line
}

// MergeOrphanWords absorbs single-character words into an adjacent word on
// the same baseline when the gap between them is below the orphan
// threshold. This catches stragglers that survived the glyph-level merge,
// typically in OCR output with uneven spacing.
func (h *Healer) MergeOrphanWords(words []model.Word) []model.Word {
	if len(words) < 2 {
		return words
	}

	out := make([]model.Word, 0, len(words))
	for _, w := range words {
		if len(out) > 0 {
			prev := &out[len(out)-1]
			sameLine := abs(w.Baseline-prev.Baseline) <= 3.0
			gap := w.BBox.X0 - prev.BBox.X1
			orphanPair := len([]rune(w.Text)) == 1 || len([]rune(prev.Text)) == 1
			size := w.Size
			if prev.Size > size {
				size = prev.Size
			}
			if sameLine && orphanPair && gap >= 0 && gap <= h.config.OrphanGapFactor*size {
				prev.Text += w.Text
				prev.BBox = prev.BBox.Union(w.BBox)
				if w.Size > prev.Size {
					prev.Size = w.Size
				}
				continue
			}
		}
		out = append(out, w)
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// collapseLetterRuns fuses runs of three or more single-letter tokens:
// "d ü ş ü n c e" becomes "düşünce", "T I T L E" becomes "TITLE".
func collapseLetterRuns(tokens []string) []string {
	var out []string
	for i := 0; i < len(tokens); {
		j := i
		for j < len(tokens) && isSingleLetter(tokens[j]) {
			j++
		}
		if j-i >= 3 {
			out = append(out, strings.Join(tokens[i:j], ""))
			i = j
			continue
		}
		out = append(out, tokens[i])
		i++
	}
	return out
}

// mergeTurkish applies the aggressive Turkish merge rules to the token
// stream. Each rule joins a detached single letter with the word it was
// split from.
func (h *Healer) mergeTurkish(tokens []string) []string {
	var out []string
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if i+1 < len(tokens) && isSingleLetter(tok) {
			next := tokens[i+1]
			first := firstRune(tok)
			lower := unicode.ToLower(first)

			switch {
			// Broken conjunctions: "v e" -> "ve", "d e" -> "de", "k i" -> "ki".
			case (lower == 'v' || lower == 'd' || lower == 'k') && isSingleLetter(next) && isConjunctionTail(next):
				out = append(out, tok+strings.ToLower(next))
				i++
				continue
			// Detached particle starts: "b u" -> "bu", "y ani" -> "yani".
			case trParticleStarts[lower] && isLowerWord(next, 1):
				out = append(out, tok+next)
				i++
				continue
			// "e n..." -> "en...": e alone is common, merge only before n.
			case lower == 'e' && isLowerWord(next, 1) && firstRune(next) == 'n':
				out = append(out, tok+next)
				i++
				continue
			// Lone "o" merges only before known stem starts; the pronoun
			// stays untouched otherwise.
			case lower == 'o' && isLowerWord(next, 2) && trAfterO[firstRune(next)]:
				out = append(out, tok+next)
				i++
				continue
			// Any other letter except the pronoun "o": general cleanup.
			case lower != 'o' && isLowerWord(next, 2):
				out = append(out, tok+next)
				i++
				continue
			}
		}
		out = append(out, tok)
	}
	return out
}

// mergeEnglish joins a detached consonant with the following word: "t he"
// becomes "the". The articles "a" and "I", and vowels generally, never
// merge; that is where real English words live.
func (h *Healer) mergeEnglish(tokens []string) []string {
	var out []string
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if i+1 < len(tokens) && isSingleLetter(tok) {
			lower := unicode.ToLower(firstRune(tok))
			if !strings.ContainsRune("aeiou", lower) && isLowerWord(tokens[i+1], 2) {
				merged := tok + tokens[i+1]
				// A dictionary, when present, must confirm the merge.
				if h.dict == nil || h.dict.Contains(strings.Trim(merged, ".,;:!?")) {
					out = append(out, merged)
					i++
					continue
				}
			}
		}
		out = append(out, tok)
	}
	return out
}

// joinHyphenWraps repairs words broken by line-wrap hyphenation:
// "prob- lem" and "prob - lem" become "problem". Only lowercase halves of
// three or more letters join, so "High-Level" style compounds survive.
func joinHyphenWraps(tokens []string) []string {
	var out []string
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		// "prob- lem"
		if strings.HasSuffix(tok, "-") && i+1 < len(tokens) {
			head := strings.TrimSuffix(tok, "-")
			if isLowerWord(head, 3) && isLowerWord(tokens[i+1], 3) {
				out = append(out, head+tokens[i+1])
				i++
				continue
			}
		}

		// "prob - lem"
		if tok == "-" && len(out) > 0 && i+1 < len(tokens) {
			head := out[len(out)-1]
			if isLowerWord(head, 3) && isLowerWord(tokens[i+1], 3) {
				out[len(out)-1] = head + tokens[i+1]
				i++
				continue
			}
		}

		out = append(out, tok)
	}
	return out
}

// correctTokens replaces dictionary-unrecognized tokens with their nearest
// dictionary neighbor within the edit budget. Initial capitalization is
// preserved.
func (h *Healer) correctTokens(tokens []string) []string {
	if h.dict == nil {
		return tokens
	}
	for i, tok := range tokens {
		core, prefix, suffix := splitPunct(tok)
		if len([]rune(core)) < h.config.MinCorrectLen || !isLetters(core) {
			continue
		}
		if h.dict.Contains(core) {
			continue
		}
		fixed, ok := h.dict.Correct(core, h.config.MaxEditDistance, h.config.MaxRank)
		if !ok {
			continue
		}
		if r := firstRune(core); unicode.IsUpper(r) {
			fixed = capitalize(fixed)
		}
		tokens[i] = prefix + fixed + suffix
	}
	return tokens
}

// splitPunct strips leading and trailing punctuation from a token
func splitPunct(tok string) (core, prefix, suffix string) {
	runes := []rune(tok)
	start, end := 0, len(runes)
	for start < end && !unicode.IsLetter(runes[start]) && !unicode.IsDigit(runes[start]) {
		start++
	}
	for end > start && !unicode.IsLetter(runes[end-1]) && !unicode.IsDigit(runes[end-1]) {
		end--
	}
	return string(runes[start:end]), string(runes[:start]), string(runes[end:])
}

func isSingleLetter(tok string) bool {
	runes := []rune(tok)
	return len(runes) == 1 && unicode.IsLetter(runes[0])
}

func isConjunctionTail(tok string) bool {
	r := unicode.ToLower(firstRune(tok))
	return r == 'e' || r == 'i'
}

// isLowerWord reports whether the token is all lowercase letters of at
// least minLen runes.
func isLowerWord(tok string, minLen int) bool {
	runes := []rune(tok)
	if len(runes) < minLen {
		return false
	}
	for _, r := range runes {
		if !unicode.IsLower(r) {
			return false
		}
	}
	return true
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func capitalize(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
