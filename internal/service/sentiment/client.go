package sentiment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"TickerPulse/internal/domain/models"
	"TickerPulse/pkg/config"
	xhttp "TickerPulse/pkg/http"
)

// maxDigestComments caps how much discussion is shipped per symbol; the
// analysis service truncates anyway, so there is no value in sending more.
const maxDigestComments = 40

// Client asks an external analysis service for a sentiment narrative over
// one hot symbol's discussion. Implements repository.Analyst.
type Client struct {
	baseURL  string
	apiKey   string
	model    string
	attempts int
	client   *xhttp.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:  cfg.Sentiment.ServiceURL,
		apiKey:   cfg.Sentiment.APIKey,
		model:    cfg.Sentiment.Model,
		attempts: 3,
		client:   xhttp.NewClient(xhttp.WithTimeout(cfg.Sentiment.Timeout)),
	}
}

type analyzeRequest struct {
	Model   string `json:"model"`
	Symbol  string `json:"symbol"`
	Company string `json:"company"`
	Digest  string `json:"digest"`
}

type analyzeResponse struct {
	Narrative string `json:"narrative"`
	Score     int    `json:"score"` // -10 (bearish) .. +10 (bullish)
}

// Analyze posts the symbol's discussion digest and returns the narrative.
func (c *Client) Analyze(ctx context.Context, bundle *models.SymbolPosts) (*models.SentimentReport, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("sentiment service url not configured")
	}

	req := &analyzeRequest{
		Model:   c.model,
		Symbol:  bundle.Symbol,
		Company: bundle.Company,
		Digest:  buildDigest(bundle),
	}

	var resp analyzeResponse
	if err := c.postJSONWithRetry(ctx, "/v1/analyze", req, &resp, c.attempts); err != nil {
		return nil, fmt.Errorf("analyze %s: %w", bundle.Symbol, err)
	}

	return &models.SentimentReport{
		Symbol:    bundle.Symbol,
		Company:   bundle.Company,
		Narrative: resp.Narrative,
		Score:     resp.Score,
	}, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, dest interface{}) error {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}
	err := c.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     c.baseURL + path,
		Headers: headers,
		Body:    payload,
	}, dest)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	return nil
}

func (c *Client) postJSONWithRetry(ctx context.Context, path string, payload interface{}, dest interface{}, attempts int) error {
	if attempts <= 1 {
		return c.postJSON(ctx, path, payload, dest)
	}
	var err error
	for i := 1; i <= attempts; i++ {
		err = c.postJSON(ctx, path, payload, dest)
		if err == nil {
			return nil
		}
		select {
		case <-time.After(time.Duration(i) * 50 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

// buildDigest renders the posts and a bounded slice of their comments as the
// plain-text block the analysis prompt is built from.
func buildDigest(bundle *models.SymbolPosts) string {
	var b strings.Builder
	comments := 0
	for _, post := range bundle.Posts {
		fmt.Fprintf(&b, "POST (%d upvotes): %s\n", post.Upvotes, post.Title)
		if post.Content != "" {
			b.WriteString(post.Content)
			b.WriteString("\n")
		}
		for _, comment := range post.Comments {
			if comments >= maxDigestComments {
				break
			}
			fmt.Fprintf(&b, "COMMENT (%d upvotes): %s\n", comment.Upvotes, comment.Body)
			comments++
		}
		b.WriteString("\n")
	}
	return b.String()
}
