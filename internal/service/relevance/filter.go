package relevance

import (
	"TickerPulse/internal/domain/models"
	domrepo "TickerPulse/internal/domain/repository"
	applogger "TickerPulse/pkg/logger"
)

// Mode selects how relevance propagates from a mentioning comment to its
// descendants.
type Mode string

const (
	// ModeOrdered is the single-pass propagation: a comment inherits
	// relevance only if its parent was already kept earlier in the given
	// order. Descendants of a parent that appears later are silently treated
	// as non-relevant; the upstream source guarantees hierarchical order, so
	// in practice this never fires.
	ModeOrdered Mode = "ordered"
	// ModeTree materializes a parent->children index and propagates by BFS
	// from directly-mentioning comments, tolerating out-of-order parents.
	ModeTree Mode = "tree"
)

// SkipMalformedComment is the diagnostics kind recorded for comments that
// are excluded from relevance computation.
const SkipMalformedComment = "malformed_comment"

// Filter selects, per target symbol, the subset of a post's comments worth
// keeping and decides whether the post qualifies at all.
type Filter struct {
	mode        Mode
	minComments int
	logger      *applogger.Logger
	metrics     domrepo.Metrics
}

func NewFilter(mode Mode, minComments int, logger *applogger.Logger) *Filter {
	if mode != ModeTree {
		mode = ModeOrdered
	}
	if minComments <= 0 {
		minComments = 3
	}
	return &Filter{mode: mode, minComments: minComments, logger: logger}
}

// SetMetrics injects the metrics recorder; skips are then counted there too.
func (f *Filter) SetMetrics(m domrepo.Metrics) { f.metrics = m }

// QualifyingPosts returns the posts that qualify for symbol, in input order.
// A post qualifies when its own text mentions the symbol and it has at least
// minComments comments (full comment list kept), or — only when the post has
// no direct symbol mentions at all — at least minComments comments are
// relevant to the symbol (comment list trimmed to the kept subset). A symbol
// with no qualifying posts yields an empty slice, not an error.
func (f *Filter) QualifyingPosts(posts []models.Post, symbol string) []models.Post {
	var out []models.Post
	for _, p := range posts {
		if len(p.Mentions) > 0 {
			if _, ok := p.Mentions[symbol]; ok && len(p.Comments) >= f.minComments {
				out = append(out, p)
			}
			continue
		}
		kept := f.KeptComments(p.Comments, symbol)
		if len(kept) >= f.minComments {
			trimmed := p
			trimmed.Comments = kept
			out = append(out, trimmed)
		}
	}
	return out
}

// KeptComments returns the comments relevant to symbol: every comment that
// mentions it directly plus all descendants of kept comments, in input
// order. Malformed comments (missing id) are excluded and counted.
func (f *Filter) KeptComments(comments []models.Comment, symbol string) []models.Comment {
	if f.mode == ModeTree {
		return f.keptTree(comments, symbol)
	}
	return f.keptOrdered(comments, symbol)
}

func (f *Filter) keptOrdered(comments []models.Comment, symbol string) []models.Comment {
	keptIDs := make(map[string]bool)
	var kept []models.Comment
	for _, c := range comments {
		if f.malformed(c) {
			continue
		}
		_, mentions := c.Mentions[symbol]
		if mentions || (c.ParentID != "" && keptIDs[c.ParentID]) {
			keptIDs[c.ID] = true
			kept = append(kept, c)
		}
	}
	return kept
}

func (f *Filter) keptTree(comments []models.Comment, symbol string) []models.Comment {
	children := make(map[string][]string)
	keptIDs := make(map[string]bool)
	var queue []string
	for _, c := range comments {
		if f.malformed(c) {
			continue
		}
		if c.ParentID != "" {
			children[c.ParentID] = append(children[c.ParentID], c.ID)
		}
		if _, ok := c.Mentions[symbol]; ok && !keptIDs[c.ID] {
			keptIDs[c.ID] = true
			queue = append(queue, c.ID)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, childID := range children[id] {
			if !keptIDs[childID] {
				keptIDs[childID] = true
				queue = append(queue, childID)
			}
		}
	}
	var kept []models.Comment
	for _, c := range comments {
		if c.ID != "" && keptIDs[c.ID] {
			kept = append(kept, c)
		}
	}
	return kept
}

func (f *Filter) malformed(c models.Comment) bool {
	if c.ID != "" {
		return false
	}
	if f.logger != nil {
		f.logger.Skip(SkipMalformedComment, "comment missing id, excluded from relevance",
			applogger.String("parent_id", c.ParentID))
	}
	if f.metrics != nil {
		f.metrics.RecordSkip(SkipMalformedComment)
	}
	return true
}
