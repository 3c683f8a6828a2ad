// Package matcher resolves OCR-recognised player names to club members.
package matcher

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/mmynk/clubsettle/internal/models"
)

// DefaultThreshold is the minimum similarity for a fuzzy match.
const DefaultThreshold = 0.6

// Candidate is a known member a name can resolve to.
type Candidate struct {
	ID   string
	Name string
}

// Matcher finds the member a recognised name refers to.
type Matcher struct {
	threshold float64
}

// New creates a Matcher. A threshold outside (0, 1] falls back to DefaultThreshold.
func New(threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// CandidatesFromMembers converts members to match candidates.
func CandidatesFromMembers(members []*models.Member) []Candidate {
	out := make([]Candidate, 0, len(members))
	for _, m := range members {
		out = append(out, Candidate{ID: m.ID, Name: m.Name})
	}
	return out
}

// Match returns the ID of the member recognised as name.
//
// Algorithm:
//   - exact match on the normalised name; several exact matches are ambiguous
//   - otherwise the best similarity, where similarity is the length ratio when
//     one name contains the other, else 1 - edit distance / longer length
//   - the best score must reach the threshold and be unique
//
// Ambiguous or weak matches return false so a person resolves them.
func (m *Matcher) Match(name string, candidates []Candidate) (string, bool) {
	key := normalize(name)
	if key == "" {
		return "", false
	}

	exact := ""
	exactCount := 0
	for _, c := range candidates {
		if normalize(c.Name) == key {
			exact = c.ID
			exactCount++
		}
	}
	switch {
	case exactCount == 1:
		return exact, true
	case exactCount > 1:
		return "", false
	}

	bestID := ""
	best := 0.0
	tied := false
	for _, c := range candidates {
		score := similarity(key, normalize(c.Name))
		switch {
		case score > best:
			bestID, best, tied = c.ID, score, false
		case score == best && score > 0:
			tied = true
		}
	}
	if best < m.threshold || tied {
		return "", false
	}
	return bestID, true
}

// ApplyMatches fills MatchedMemberID of each score whose name resolves.
func (m *Matcher) ApplyMatches(scores []models.PlayerScore, candidates []Candidate) int {
	matched := 0
	for i := range scores {
		if id, ok := m.Match(scores[i].Name, candidates); ok {
			scores[i].MatchedMemberID = &id
			matched++
		}
	}
	return matched
}

func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	longer := max(la, lb)

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return float64(min(la, lb)) / float64(longer)
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longer)
}

// normalize composes Hangul, folds width and case, and drops whitespace and
// punctuation so "홍 길동" and "홍길동." compare equal.
func normalize(s string) string {
	s = norm.NFC.String(width.Fold.String(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
