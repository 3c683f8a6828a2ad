// Package parser turns noisy OCR text into structured receipt and score
// sheet readings. Parsers never fail: fields that cannot be read stay empty
// and the result is flagged for manual review.
package parser

import (
	"math"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var spaceRe = regexp.MustCompile(`\s+`)

// Normalize folds full-width digits and punctuation to ASCII and composes
// Hangul jamo, so the patterns below only deal with one form of each character.
func Normalize(text string) string {
	text = width.Fold.String(text)
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// lines returns the trimmed, non-empty lines of text with inner whitespace collapsed.
func lines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(spaceRe.ReplaceAllString(l, " "))
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func head(ls []string, n int) []string {
	if len(ls) > n {
		return ls[:n]
	}
	return ls
}

func clamp01(v float64) float64 {
	return math.Round(math.Max(0, math.Min(1, v))*10000) / 10000
}

// calendarDate returns midnight UTC of y-m-d, or false for dates that do not
// exist (Feb 30, month 13).
func calendarDate(y, m, d int) (time.Time, bool) {
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func containsAny(s string, words []string) bool {
	lower := strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// containsWord is containsAny for Hangul words, which attach to their
// neighbours ("레인번호"). Latin words must match a whole token, so "lane"
// does not reject "Elaine".
func containsWord(s string, words []string) bool {
	lower := strings.ToLower(s)
	tokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, w := range words {
		w = strings.ToLower(w)
		if !isASCII(w) {
			if strings.Contains(lower, w) {
				return true
			}
			continue
		}
		if slices.Contains(tokens, w) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
