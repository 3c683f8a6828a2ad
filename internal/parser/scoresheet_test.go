package parser

import (
	"testing"
	"time"

	"github.com/mmynk/clubsettle/internal/models"
)

var sheetNow = time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func TestParseScoreSheet(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		confidence   float64
		validateFunc func(t *testing.T, r *models.ScoreSheetResult)
	}{
		{
			name:       "spaced row and out of range row",
			text:       "홍길동 180 165 200\n999 199 301",
			confidence: 0.9,
			validateFunc: func(t *testing.T, r *models.ScoreSheetResult) {
				assertScores(t, r.Scores, []models.PlayerScore{
					{Name: "홍길동", Game1: intPtr(180), Game2: intPtr(165), Game3: intPtr(200)},
				})
				if r.RequiresManualReview {
					t.Error("expected no manual review")
				}
			},
		},
		{
			name: "all row forms",
			text: "스타 볼링센터\n" +
				"2026.06.13\n" +
				"이름 1G 2G 3G 4G\n" +
				"김철수 150 172 168 190\n" +
				"이영희: 201, 188, 179\n" +
				"박민수\n" +
				"레인 7\n" +
				"145 160 155\n",
			confidence: 0.85,
			validateFunc: func(t *testing.T, r *models.ScoreSheetResult) {
				if r.BowlingAlleyName == nil || *r.BowlingAlleyName != "스타 볼링센터" {
					t.Errorf("alley = %v", r.BowlingAlleyName)
				}
				want := time.Date(2026, 6, 13, 0, 0, 0, 0, time.UTC)
				if r.ScoreDate == nil || !r.ScoreDate.Equal(want) {
					t.Errorf("date = %v, want %v", r.ScoreDate, want)
				}
				assertScores(t, r.Scores, []models.PlayerScore{
					{Name: "김철수", Game1: intPtr(150), Game2: intPtr(172), Game3: intPtr(168), Game4: intPtr(190)},
					{Name: "이영희", Game1: intPtr(201), Game2: intPtr(188), Game3: intPtr(179)},
					{Name: "박민수", Game1: intPtr(145), Game2: intPtr(160), Game3: intPtr(155)},
				})
			},
		},
		{
			name:       "pending name survives an invalid numbers line",
			text:       "최지훈\n310 100 100\n120 130 140",
			confidence: 0.9,
			validateFunc: func(t *testing.T, r *models.ScoreSheetResult) {
				assertScores(t, r.Scores, []models.PlayerScore{
					{Name: "최지훈", Game1: intPtr(120), Game2: intPtr(130), Game3: intPtr(140)},
				})
			},
		},
		{
			name:       "numbers without a pending name are dropped",
			text:       "120 130 140",
			confidence: 0.9,
			validateFunc: func(t *testing.T, r *models.ScoreSheetResult) {
				if len(r.Scores) != 0 {
					t.Errorf("scores = %+v, want none", r.Scores)
				}
				if !r.RequiresManualReview {
					t.Error("empty scores must require review")
				}
			},
		},
		{
			name:       "month and day use current year",
			text:       "6월 13일 정기전\nKim 100 110 120",
			confidence: 0.79,
			validateFunc: func(t *testing.T, r *models.ScoreSheetResult) {
				want := time.Date(2026, 6, 13, 0, 0, 0, 0, time.UTC)
				if r.ScoreDate == nil || !r.ScoreDate.Equal(want) {
					t.Errorf("date = %v, want %v", r.ScoreDate, want)
				}
				if r.BowlingAlleyName != nil {
					t.Errorf("alley = %v, want nil", *r.BowlingAlleyName)
				}
				if !r.RequiresManualReview {
					t.Error("expected review below threshold")
				}
			},
		},
		{
			name:       "two digit year and invalid calendar date",
			text:       "2026-02-30\n26/03/01\nLee 200 200 200",
			confidence: 0.9,
			validateFunc: func(t *testing.T, r *models.ScoreSheetResult) {
				want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
				if r.ScoreDate == nil || !r.ScoreDate.Equal(want) {
					t.Errorf("date = %v, want %v", r.ScoreDate, want)
				}
			},
		},
		{
			name:       "header row is not a player",
			text:       "Game 1 2 3\n홍길동 300 0 299",
			confidence: 0.9,
			validateFunc: func(t *testing.T, r *models.ScoreSheetResult) {
				assertScores(t, r.Scores, []models.PlayerScore{
					{Name: "홍길동", Game1: intPtr(300), Game2: intPtr(0), Game3: intPtr(299)},
				})
			},
		},
		{
			name:       "names containing header words are players",
			text:       "Elaine 180 190 200\nNamgung: 150, 160, 170\nLane 7 100 100 100",
			confidence: 0.9,
			validateFunc: func(t *testing.T, r *models.ScoreSheetResult) {
				assertScores(t, r.Scores, []models.PlayerScore{
					{Name: "Elaine", Game1: intPtr(180), Game2: intPtr(190), Game3: intPtr(200)},
					{Name: "Namgung", Game1: intPtr(150), Game2: intPtr(160), Game3: intPtr(170)},
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validateFunc(t, ParseScoreSheet(tt.text, tt.confidence, sheetNow))
		})
	}
}

func assertScores(t *testing.T, got, want []models.PlayerScore) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d scores %+v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name {
			t.Errorf("score %d name = %q, want %q", i, got[i].Name, want[i].Name)
		}
		g, w := []*int{got[i].Game1, got[i].Game2, got[i].Game3, got[i].Game4}, []*int{want[i].Game1, want[i].Game2, want[i].Game3, want[i].Game4}
		for j := range w {
			switch {
			case w[j] == nil && g[j] != nil:
				t.Errorf("score %d game%d = %d, want none", i, j+1, *g[j])
			case w[j] != nil && g[j] == nil:
				t.Errorf("score %d game%d missing, want %d", i, j+1, *w[j])
			case w[j] != nil && *w[j] != *g[j]:
				t.Errorf("score %d game%d = %d, want %d", i, j+1, *g[j], *w[j])
			}
		}
	}
}
