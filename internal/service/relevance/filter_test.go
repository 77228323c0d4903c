package relevance

import (
	"testing"

	"TickerPulse/internal/domain/models"
)

func c(id, parent string, mentions map[string]int) models.Comment {
	return models.Comment{ID: id, ParentID: parent, Body: "text", Mentions: mentions}
}

func ids(cs []models.Comment) []string {
	out := make([]string, len(cs))
	for i, cm := range cs {
		out[i] = cm.ID
	}
	return out
}

func equalIDs(a []models.Comment, want ...string) bool {
	if len(a) != len(want) {
		return false
	}
	for i, cm := range a {
		if cm.ID != want[i] {
			return false
		}
	}
	return true
}

func TestRelevanceTransitive(t *testing.T) {
	f := NewFilter(ModeOrdered, 3, nil)
	comments := []models.Comment{
		c("c1", "", map[string]int{"TSLA": 1}),
		c("c2", "c1", nil),
		c("c3", "c2", nil),
	}
	kept := f.KeptComments(comments, "TSLA")
	if !equalIDs(kept, "c1", "c2", "c3") {
		t.Fatalf("kept = %v, want c1 c2 c3", ids(kept))
	}
}

func TestRelevanceOrderDependent(t *testing.T) {
	f := NewFilter(ModeOrdered, 3, nil)
	// c2 appears before its parent c1: in ordered mode it cannot inherit
	// relevance, while c3 (child of c2) is also dropped since c2 was not kept.
	comments := []models.Comment{
		c("c2", "c1", nil),
		c("c1", "", map[string]int{"TSLA": 1}),
		c("c3", "c2", nil),
	}
	kept := f.KeptComments(comments, "TSLA")
	if !equalIDs(kept, "c1") {
		t.Fatalf("kept = %v, want only c1", ids(kept))
	}
}

func TestRelevanceTreeModeFixesOrdering(t *testing.T) {
	f := NewFilter(ModeTree, 3, nil)
	comments := []models.Comment{
		c("c2", "c1", nil),
		c("c1", "", map[string]int{"TSLA": 1}),
		c("c3", "c2", nil),
	}
	kept := f.KeptComments(comments, "TSLA")
	if !equalIDs(kept, "c2", "c1", "c3") {
		t.Fatalf("kept = %v, want all three in input order", ids(kept))
	}
}

func TestRelevanceOtherSymbolIgnored(t *testing.T) {
	f := NewFilter(ModeOrdered, 3, nil)
	comments := []models.Comment{
		c("c1", "", map[string]int{"GME": 2}),
		c("c2", "c1", nil),
	}
	if kept := f.KeptComments(comments, "TSLA"); len(kept) != 0 {
		t.Fatalf("kept = %v, want empty", ids(kept))
	}
}

type skipCounter struct {
	skips map[string]int
}

func (s *skipCounter) RecordPostScanned()                  {}
func (s *skipCounter) RecordCommentScanned()               {}
func (s *skipCounter) RecordMentions(string, int)          {}
func (s *skipCounter) RecordStageDuration(string, float64) {}
func (s *skipCounter) RecordHotSymbols(int)                {}

func (s *skipCounter) RecordSkip(kind string) {
	if s.skips == nil {
		s.skips = make(map[string]int)
	}
	s.skips[kind]++
}

func TestMalformedCommentSkipped(t *testing.T) {
	f := NewFilter(ModeOrdered, 3, nil)
	counter := &skipCounter{}
	f.SetMetrics(counter)

	comments := []models.Comment{
		c("c1", "", map[string]int{"TSLA": 1}),
		c("", "c1", map[string]int{"TSLA": 5}), // missing id, excluded
		c("c3", "c1", nil),
	}
	kept := f.KeptComments(comments, "TSLA")
	if !equalIDs(kept, "c1", "c3") {
		t.Fatalf("kept = %v, want c1 c3", ids(kept))
	}
	if counter.skips[SkipMalformedComment] != 1 {
		t.Fatalf("malformed skip count = %d, want 1", counter.skips[SkipMalformedComment])
	}
}

func TestQualifyDirectMentionNeedsThreeComments(t *testing.T) {
	f := NewFilter(ModeOrdered, 3, nil)
	post := models.Post{
		ID:       "p1",
		Mentions: map[string]int{"TSLA": 2},
		Comments: []models.Comment{c("c1", "", nil), c("c2", "", nil)},
	}
	if got := f.QualifyingPosts([]models.Post{post}, "TSLA"); len(got) != 0 {
		t.Fatalf("post with 2 comments must not qualify, got %d", len(got))
	}

	post.Comments = append(post.Comments, c("c3", "", nil))
	got := f.QualifyingPosts([]models.Post{post}, "TSLA")
	if len(got) != 1 {
		t.Fatalf("post with 3 comments must qualify")
	}
	// Direct-mention branch keeps the unfiltered comment list.
	if len(got[0].Comments) != 3 {
		t.Fatalf("comments trimmed, want full list, got %d", len(got[0].Comments))
	}
}

func TestQualifyViaRelevantComments(t *testing.T) {
	f := NewFilter(ModeOrdered, 3, nil)
	post := models.Post{
		ID: "p1",
		Comments: []models.Comment{
			c("c1", "", map[string]int{"TSLA": 1}),
			c("c2", "c1", nil),
			c("c3", "c2", nil),
			c("c4", "", nil), // unrelated, trimmed away
		},
	}
	got := f.QualifyingPosts([]models.Post{post}, "TSLA")
	if len(got) != 1 {
		t.Fatalf("post must qualify via 3 relevant comments")
	}
	if !equalIDs(got[0].Comments, "c1", "c2", "c3") {
		t.Fatalf("comments = %v, want trimmed to c1 c2 c3", ids(got[0].Comments))
	}
}

func TestQualifySecondBranchOnlyWithoutDirectMentions(t *testing.T) {
	f := NewFilter(ModeOrdered, 3, nil)
	// Post mentions another symbol directly, so the comment branch never
	// applies, even though three comments discuss TSLA.
	post := models.Post{
		ID:       "p1",
		Mentions: map[string]int{"GME": 1},
		Comments: []models.Comment{
			c("c1", "", map[string]int{"TSLA": 1}),
			c("c2", "c1", nil),
			c("c3", "c2", nil),
		},
	}
	if got := f.QualifyingPosts([]models.Post{post}, "TSLA"); len(got) != 0 {
		t.Fatalf("post with foreign direct mentions must not qualify via comments")
	}
}

func TestQualifyZeroCommentPost(t *testing.T) {
	f := NewFilter(ModeOrdered, 3, nil)
	post := models.Post{ID: "p1"}
	if got := f.QualifyingPosts([]models.Post{post}, "TSLA"); len(got) != 0 {
		t.Fatalf("post without comments must not qualify")
	}
}

func TestQualifyNoPostsIsEmptyNotError(t *testing.T) {
	f := NewFilter(ModeOrdered, 3, nil)
	if got := f.QualifyingPosts(nil, "TSLA"); len(got) != 0 {
		t.Fatalf("expected empty result")
	}
}
