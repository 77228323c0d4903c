package forum

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"TickerPulse/internal/domain/models"
	domrepo "TickerPulse/internal/domain/repository"
	"TickerPulse/internal/service/ratelimit"
	"TickerPulse/pkg/config"
	xhttp "TickerPulse/pkg/http"
	applogger "TickerPulse/pkg/logger"
)

const SkipCommentFetch = "comment_fetch_failed"

// Client reads posts and comment trees from the forum's public JSON API.
// Requests are paced by a shared token bucket so comment workers and the
// listing fetch never exceed the configured request rate together.
type Client struct {
	http       *xhttp.Client
	limiter    *ratelimit.Limiter
	baseURL    string
	subreddit  string
	postLimit  int
	minUpvotes int
	window     time.Duration
	workers    int
	maxRPS     float64
	logger     *applogger.Logger
	metrics    domrepo.Metrics

	now func() time.Time
}

func NewClient(cfg *config.Config, logger *applogger.Logger) *Client {
	return &Client{
		http: xhttp.NewClient(
			xhttp.WithTimeout(cfg.Forum.Timeout),
			xhttp.WithUserAgent(cfg.Forum.UserAgent),
		),
		limiter:    ratelimit.New(),
		baseURL:    cfg.Forum.BaseURL,
		subreddit:  cfg.Forum.Subreddit,
		postLimit:  cfg.Forum.PostLimit,
		minUpvotes: cfg.Forum.MinUpvotes,
		window:     cfg.Forum.Window,
		workers:    cfg.Forum.CommentWorkers,
		maxRPS:     cfg.Forum.MaxRPS,
		logger:     logger,
		now:        time.Now,
	}
}

// SetMetrics injects the metrics recorder; skips are then counted there too.
func (c *Client) SetMetrics(m domrepo.Metrics) { c.metrics = m }

// FetchPosts returns recent posts above the upvote threshold, each with its
// full comment tree flattened in hierarchical order. A failed comment fetch
// keeps the post with no comments and counts a skip.
func (c *Client) FetchPosts(ctx context.Context) ([]models.Post, error) {
	raw, err := c.fetchListing(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch post listing: %w", err)
	}

	cutoff := c.now().Add(-c.window)
	posts := make([]models.Post, 0, len(raw))
	for _, pd := range raw {
		created := time.Unix(int64(pd.CreatedUTC), 0).UTC()
		if created.Before(cutoff) || pd.Ups < c.minUpvotes {
			continue
		}
		posts = append(posts, models.Post{
			ID:        pd.ID,
			Title:     pd.Title,
			Content:   pd.SelfText,
			Upvotes:   pd.Ups,
			CreatedAt: created,
			URL:       c.baseURL + pd.Permalink,
		})
	}

	c.fetchAllComments(ctx, posts)
	return posts, nil
}

func (c *Client) fetchListing(ctx context.Context) ([]postData, error) {
	if err := c.limiter.Wait(ctx, "forum", 1, c.maxRPS); err != nil {
		return nil, err
	}

	var root thing
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/r/%s/new.json", c.baseURL, c.subreddit),
		QueryParams: map[string][]string{
			"limit":    {strconv.Itoa(c.postLimit)},
			"raw_json": {"1"},
		},
	}, &root)
	if err != nil {
		return nil, err
	}

	var ld listingData
	if err := json.Unmarshal(root.Data, &ld); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	out := make([]postData, 0, len(ld.Children))
	for _, child := range ld.Children {
		if child.Kind != "t3" {
			continue
		}
		var pd postData
		if err := json.Unmarshal(child.Data, &pd); err != nil {
			continue
		}
		out = append(out, pd)
	}
	return out, nil
}

// fetchAllComments fills Comments for each post using a bounded worker pool.
// Results land at the post's own index, so post order is stable regardless of
// completion order.
func (c *Client) fetchAllComments(ctx context.Context, posts []models.Post) {
	workers := c.workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				comments, err := c.fetchComments(ctx, posts[i].ID)
				if err != nil {
					ferr := &FetchError{PostID: posts[i].ID, Err: err}
					if c.logger != nil {
						c.logger.Skip(SkipCommentFetch, "comment fetch failed",
							applogger.String("post_id", posts[i].ID),
							applogger.Error(ferr),
						)
					}
					if c.metrics != nil {
						c.metrics.RecordSkip(SkipCommentFetch)
					}
					continue
				}
				posts[i].Comments = comments
			}
		}()
	}

	for i := range posts {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
}

func (c *Client) fetchComments(ctx context.Context, postID string) ([]models.Comment, error) {
	if err := c.limiter.Wait(ctx, "forum", 1, c.maxRPS); err != nil {
		return nil, err
	}

	var body []byte
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/r/%s/comments/%s.json", c.baseURL, c.subreddit, postID),
		QueryParams: map[string][]string{
			"limit":    {"500"},
			"raw_json": {"1"},
		},
	}, &body)
	if err != nil {
		return nil, err
	}

	return parseComments(body)
}

// parseComments decodes the two-listing comments payload and flattens the
// tree depth-first, parents before their replies.
func parseComments(body []byte) ([]models.Comment, error) {
	var pages []thing
	if err := json.Unmarshal(body, &pages); err != nil {
		return nil, fmt.Errorf("decode comments payload: %w", err)
	}
	if len(pages) < 2 {
		return nil, fmt.Errorf("comments payload has %d listings, want 2", len(pages))
	}

	var ld listingData
	if err := json.Unmarshal(pages[1].Data, &ld); err != nil {
		return nil, fmt.Errorf("decode comment listing: %w", err)
	}

	var out []models.Comment
	flattenComments(ld.Children, 0, &out)
	return out, nil
}

func flattenComments(children []thing, depth int, out *[]models.Comment) {
	for _, child := range children {
		if child.Kind != "t1" {
			continue
		}
		var cd commentData
		if err := json.Unmarshal(child.Data, &cd); err != nil {
			continue
		}
		*out = append(*out, models.Comment{
			ID:        cd.ID,
			ParentID:  stripThingPrefix(cd.ParentID),
			Body:      cd.Body,
			Upvotes:   cd.Ups,
			CreatedAt: time.Unix(int64(cd.CreatedUTC), 0).UTC(),
			Depth:     depth,
		})

		// replies is "" when the comment is a leaf
		var replies thing
		if err := json.Unmarshal(cd.Replies, &replies); err != nil {
			continue
		}
		var rl listingData
		if err := json.Unmarshal(replies.Data, &rl); err != nil {
			continue
		}
		flattenComments(rl.Children, depth+1, out)
	}
}
