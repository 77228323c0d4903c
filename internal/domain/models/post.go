package models

import "time"

// Comment is one forum comment annotated with its per-text mention counts.
// ParentID is empty for top-level comments. Comments of a post arrive as a
// flat list in forum hierarchical order; the relevance filter depends on
// parents being listed before their children.
type Comment struct {
	ID        string         `json:"id"`
	ParentID  string         `json:"parent_id,omitempty"`
	Body      string         `json:"body"`
	Upvotes   int            `json:"upvotes"`
	CreatedAt time.Time      `json:"created_at"`
	Depth     int            `json:"depth"`
	Mentions  map[string]int `json:"mentions,omitempty"`
}

// Post is one forum submission with its flat comment list. Mentions covers
// only the post's own title+body text; comment mentions are never merged in.
type Post struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Upvotes   int            `json:"upvotes"`
	CreatedAt time.Time      `json:"created_at"`
	URL       string         `json:"url,omitempty"`
	Mentions  map[string]int `json:"mentions,omitempty"`
	Comments  []Comment      `json:"comments,omitempty"`
}

// SymbolPosts bundles the qualifying posts for one hot symbol, the unit
// handed to sentiment analysis and report rendering.
type SymbolPosts struct {
	Symbol    string `json:"symbol"`
	Company   string `json:"company"`
	Posts     []Post `json:"posts"`
	PostCount int    `json:"post_count"`
}
