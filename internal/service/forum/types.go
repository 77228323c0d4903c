package forum

import (
	"encoding/json"
	"fmt"
	"strings"
)

// thing is the generic wrapper every forum API object arrives in.
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listingData struct {
	Children []thing `json:"children"`
}

type postData struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	SelfText   string  `json:"selftext"`
	Ups        int     `json:"ups"`
	CreatedUTC float64 `json:"created_utc"`
	Permalink  string  `json:"permalink"`
}

type commentData struct {
	ID         string          `json:"id"`
	ParentID   string          `json:"parent_id"`
	Body       string          `json:"body"`
	Ups        int             `json:"ups"`
	CreatedUTC float64         `json:"created_utc"`
	Replies    json.RawMessage `json:"replies"`
}

// stripThingPrefix removes the type prefix from a fullname like t1_abc or
// t3_xyz. Top-level comments point at the post (t3), which maps to an empty
// parent.
func stripThingPrefix(fullname string) string {
	if i := strings.IndexByte(fullname, '_'); i >= 0 {
		if strings.HasPrefix(fullname, "t3_") {
			return ""
		}
		return fullname[i+1:]
	}
	return fullname
}

// FetchError marks a per-post comment fetch failure. The run continues with
// the post's comments missing.
type FetchError struct {
	PostID string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch comments for post %s: %v", e.PostID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
