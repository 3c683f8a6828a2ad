package matcher

import (
	"testing"

	"github.com/mmynk/clubsettle/internal/models"
)

var roster = []Candidate{
	{ID: "m1", Name: "홍길동"},
	{ID: "m2", Name: "김철수"},
	{ID: "m3", Name: "김철"},
	{ID: "m4", Name: "Alice Kim"},
	{ID: "m5", Name: "이영희"},
	{ID: "m6", Name: "이영희"},
	{ID: "m7", Name: "박민수"},
	{ID: "m8", Name: "박민호"},
}

func TestMatch(t *testing.T) {
	m := New(0)

	tests := []struct {
		name   string
		input  string
		wantID string
		wantOK bool
	}{
		{"exact", "홍길동", "m1", true},
		{"exact ignoring spaces", "홍 길동", "m1", true},
		{"exact ignoring case and punctuation", "alice kim.", "m4", true},
		{"exact beats containment", "김철", "m3", true},
		{"full-width latin", "ＡＬＩＣＥ ＫＩＭ", "m4", true},
		{"duplicate exact names are ambiguous", "이영희", "", false},
		{"containment", "홍길동님", "m1", true},
		{"edit distance", "홍길둥", "m1", true},
		{"tie between similar names", "박민", "", false},
		{"below threshold", "최지훈", "", false},
		{"empty", "  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := m.Match(tt.input, roster)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("Match(%q) = %q, %v; want %q, %v", tt.input, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"홍길동", "홍길동", 1},
		{"홍길동님", "홍길동", 0.75},
		{"홍길둥", "홍길동", 1 - 1.0/3},
		{"abc", "xyz", 0},
		{"", "abc", 0},
	}
	for _, tt := range tests {
		if got := similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestApplyMatches(t *testing.T) {
	m := New(DefaultThreshold)
	members := []*models.Member{{ID: "m1", Name: "홍길동"}, {ID: "m2", Name: "김철수"}}
	scores := []models.PlayerScore{{Name: "홍길동"}, {Name: "모르는사람"}, {Name: "김철수"}}

	if n := m.ApplyMatches(scores, CandidatesFromMembers(members)); n != 2 {
		t.Errorf("ApplyMatches matched %d, want 2", n)
	}
	if scores[0].MatchedMemberID == nil || *scores[0].MatchedMemberID != "m1" {
		t.Errorf("first score matched %v, want m1", scores[0].MatchedMemberID)
	}
	if scores[1].MatchedMemberID != nil {
		t.Errorf("unknown name matched %s", *scores[1].MatchedMemberID)
	}
	if scores[2].MatchedMemberID == nil || *scores[2].MatchedMemberID != "m2" {
		t.Errorf("third score matched %v, want m2", scores[2].MatchedMemberID)
	}
}
