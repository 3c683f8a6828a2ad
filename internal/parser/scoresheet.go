package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mmynk/clubsettle/internal/models"
)

// ScoreSheetReviewThreshold is the confidence below which a score sheet needs review.
const ScoreSheetReviewThreshold = 0.80

const maxGameScore = 300

var alleyKeywords = []string{"볼링", "bowling", "bowl", "레인", "lanes"}

// Header and summary words that are never a player's name.
var scoreHeaderWords = []string{
	"이름", "성명", "name", "game", "게임", "점수", "score", "합계", "total",
	"평균", "avg", "average", "레인", "lane", "handicap", "핸디",
}

var (
	scoreDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d{4})\s*[-./년]\s*(\d{1,2})\s*[-./월]\s*(\d{1,2})`),
		regexp.MustCompile(`(?:^|[^0-9])(\d{2})[-./](\d{1,2})[-./](\d{1,2})(?:[^0-9]|$)`),
		regexp.MustCompile(`(\d{1,2})\s*월\s*(\d{1,2})\s*일`),
	}

	spacedScoresRe = regexp.MustCompile(`^([^\d:,]+?)\s+(\d{1,3})\s+(\d{1,3})\s+(\d{1,3})(?:\s+(\d{1,3}))?$`)
	colonScoresRe  = regexp.MustCompile(`^([^\d:,]+?)\s*:\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})(?:\s*,\s*(\d{1,3}))?$`)
	bareScoresRe   = regexp.MustCompile(`^(\d{1,3})[\s,]+(\d{1,3})[\s,]+(\d{1,3})(?:[\s,]+(\d{1,3}))?$`)
	bareNameRe     = regexp.MustCompile(`^[^\d:,]+$`)
)

// ParseScoreSheet reads a bowling score sheet from OCR text. now supplies the
// year for dates written without one ("6월 13일").
//
// Rows are read in three forms, in priority order:
//   - "name g1 g2 g3 [g4]"
//   - "name: g1, g2, g3[, g4]"
//   - a name on its own line followed later by a numbers-only line
//
// A row with any game outside [0, 300] is dropped.
func ParseScoreSheet(text string, confidence float64, now time.Time) *models.ScoreSheetResult {
	ls := lines(Normalize(text))

	result := &models.ScoreSheetResult{
		RawText:          text,
		BowlingAlleyName: extractAlleyName(ls),
		ScoreDate:        extractScoreDate(ls, now),
		Scores:           extractScores(ls),
		Confidence:       clamp01(confidence),
	}
	result.RequiresManualReview = result.Confidence < ScoreSheetReviewThreshold || len(result.Scores) == 0
	return result
}

func extractAlleyName(ls []string) *string {
	for _, l := range head(ls, 5) {
		if containsAny(l, alleyKeywords) {
			name := cleanName(l)
			return &name
		}
	}
	return nil
}

func extractScoreDate(ls []string, now time.Time) *time.Time {
	for _, l := range head(ls, 10) {
		for i, re := range scoreDatePatterns {
			m := re.FindStringSubmatch(l)
			if m == nil {
				continue
			}
			var y, mo, d int
			switch i {
			case 2:
				y = now.Year()
				mo, _ = strconv.Atoi(m[1])
				d, _ = strconv.Atoi(m[2])
			default:
				y, _ = strconv.Atoi(m[1])
				mo, _ = strconv.Atoi(m[2])
				d, _ = strconv.Atoi(m[3])
				if i == 1 {
					y += 2000
				}
			}
			if t, ok := calendarDate(y, mo, d); ok {
				return &t
			}
		}
	}
	return nil
}

func extractScores(ls []string) []models.PlayerScore {
	scores := []models.PlayerScore{}
	pendingName := ""

	for _, l := range ls {
		if m := spacedScoresRe.FindStringSubmatch(l); m != nil {
			pendingName = ""
			if s, ok := playerScore(m[1], m[2:]); ok {
				scores = append(scores, s)
			}
			continue
		}
		if m := colonScoresRe.FindStringSubmatch(l); m != nil {
			pendingName = ""
			if s, ok := playerScore(m[1], m[2:]); ok {
				scores = append(scores, s)
			}
			continue
		}
		if m := bareScoresRe.FindStringSubmatch(l); m != nil {
			if pendingName == "" {
				continue
			}
			// The pending name waits for a numbers line with valid games.
			if s, ok := playerScore(pendingName, m[1:]); ok {
				scores = append(scores, s)
				pendingName = ""
			}
			continue
		}
		if bareNameRe.MatchString(l) && isPlayerName(l) {
			pendingName = l
		}
	}
	return scores
}

func playerScore(name string, games []string) (models.PlayerScore, bool) {
	name = strings.TrimSpace(name)
	if !isPlayerName(name) {
		return models.PlayerScore{}, false
	}

	parsed := make([]*int, 4)
	for i, g := range games {
		if g == "" {
			continue
		}
		v, err := strconv.Atoi(g)
		if err != nil || v < 0 || v > maxGameScore {
			return models.PlayerScore{}, false
		}
		parsed[i] = &v
	}
	if parsed[0] == nil || parsed[1] == nil || parsed[2] == nil {
		return models.PlayerScore{}, false
	}

	return models.PlayerScore{
		Name:  name,
		Game1: parsed[0],
		Game2: parsed[1],
		Game3: parsed[2],
		Game4: parsed[3],
	}, true
}

func isPlayerName(s string) bool {
	n := utf8.RuneCountInString(s)
	return n >= 1 && n <= 20 && !containsWord(s, scoreHeaderWords) && !containsWord(s, alleyKeywords)
}
