package heal

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Dictionary is a frequency-ranked word list. Rank 1 is the most frequent
// word. The dictionary is immutable after load and safe for concurrent use.
type Dictionary struct {
	ranks map[string]int
	words []string // rank order, index i holds the word of rank i+1
}

// LoadDictionary reads a frequency word list: one "word count" pair per
// line, most frequent first. Counts are informational only; rank comes from
// line order. Blank lines are skipped.
func LoadDictionary(r io.Reader) (*Dictionary, error) {
	d := &Dictionary{ranks: make(map[string]int)}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		word := strings.ToLower(fields[0])
		if _, seen := d.ranks[word]; seen {
			continue
		}
		d.words = append(d.words, word)
		d.ranks[word] = len(d.words)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}
	return d, nil
}

// NewDictionary builds a dictionary from a pre-ranked word slice, most
// frequent first. Intended for tests and embedded word lists.
func NewDictionary(words []string) *Dictionary {
	d := &Dictionary{ranks: make(map[string]int, len(words))}
	for _, w := range words {
		w = strings.ToLower(w)
		if _, seen := d.ranks[w]; seen {
			continue
		}
		d.words = append(d.words, w)
		d.ranks[w] = len(d.words)
	}
	return d
}

// Len returns the number of dictionary words
func (d *Dictionary) Len() int {
	return len(d.words)
}

// Contains reports whether the word is in the dictionary, case-insensitively
func (d *Dictionary) Contains(word string) bool {
	_, ok := d.ranks[strings.ToLower(word)]
	return ok
}

// Rank returns the 1-based frequency rank of a word, or 0 if absent
func (d *Dictionary) Rank(word string) int {
	return d.ranks[strings.ToLower(word)]
}

// Correct finds the nearest dictionary word within maxDist edits, searching
// only words ranked maxRank or better. Among candidates the smallest edit
// distance wins, rank breaking ties. Returns false when the word is already
// in the dictionary or no candidate qualifies.
func (d *Dictionary) Correct(word string, maxDist, maxRank int) (string, bool) {
	lower := strings.ToLower(word)
	if _, ok := d.ranks[lower]; ok {
		return "", false
	}

	limit := maxRank
	if limit <= 0 || limit > len(d.words) {
		limit = len(d.words)
	}

	target := []rune(lower)
	best := ""
	bestDist := maxDist + 1

	for _, cand := range d.words[:limit] {
		cr := []rune(cand)
		if diff := len(cr) - len(target); diff > maxDist || diff < -maxDist {
			continue
		}
		dist := boundedEditDistance(target, cr, bestDist-1)
		if dist >= 0 && dist < bestDist {
			best = cand
			bestDist = dist
			if bestDist == 1 {
				// Distance 0 is impossible here, so 1 is optimal and the
				// earliest (best-ranked) hit wins.
				break
			}
		}
	}

	if best == "" {
		return "", false
	}
	return best, true
}

// boundedEditDistance computes the Levenshtein distance between a and b,
// giving up and returning -1 once the distance must exceed bound.
func boundedEditDistance(a, b []rune, bound int) int {
	if bound < 0 {
		return -1
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	if len(b)-len(a) > bound {
		return -1
	}

	prev := make([]int, len(a)+1)
	cur := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		cur[0] = j
		rowMin := cur[0]
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[i] = min3(prev[i]+1, cur[i-1]+1, prev[i-1]+cost)
			if cur[i] < rowMin {
				rowMin = cur[i]
			}
		}
		if rowMin > bound {
			return -1
		}
		prev, cur = cur, prev
	}

	if prev[len(a)] > bound {
		return -1
	}
	return prev[len(a)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
