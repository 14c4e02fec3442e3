package heal

import "strings"

// trSuffixes is the closed set of Turkish bound morphemes that extraction
// routinely detaches from their stem: plural, case, copula, evidential and
// derivational endings in all vowel-harmony variants.
var trSuffixes = map[string]bool{
	"lar": true, "ler": true,
	"dır": true, "dir": true, "dur": true, "dür": true,
	"tır": true, "tir": true, "tur": true, "tür": true,
	"nın": true, "nin": true, "nun": true, "nün": true,
	"dan": true, "den": true, "tan": true, "ten": true,
	"mış": true, "miş": true, "muş": true, "müş": true,
	"sız": true, "siz": true, "suz": true, "süz": true,
	"ında": true, "inde": true, "unda": true, "ünde": true,
	"ıyla": true, "iyle": true, "uyla": true, "üyle": true,
	"ları": true, "leri": true,
	"lık": true, "lik": true, "luk": true, "lük": true,
}

// enSuffixes is the smaller English counterpart. English splits far less,
// so only the unambiguous endings are listed.
var enSuffixes = map[string]bool{
	"ing": true, "tion": true, "sion": true, "ment": true, "ness": true,
}

// reattachSuffixes joins a detached suffix token back onto the preceding
// stem. With a dictionary the merged word must be a known word; without
// one, a suffix from the closed set after a plausible lowercase stem is
// attached as-is.
func (h *Healer) reattachSuffixes(tokens []string, lang Language) []string {
	suffixes := trSuffixes
	if lang == LangEnglish {
		suffixes = enSuffixes
	}

	var out []string
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if len(out) > 0 && suffixes[strings.ToLower(tok)] {
			stemTok := out[len(out)-1]
			core, prefix, suffix := splitPunct(stemTok)
			if suffix == "" && isLetters(core) && len([]rune(core)) >= 3 {
				merged := core + strings.ToLower(tok)
				if h.dict == nil || h.dict.Contains(merged) {
					out[len(out)-1] = prefix + merged
					continue
				}
			}
		}
		out = append(out, tok)
	}
	return out
}
