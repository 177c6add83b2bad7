package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/guttosm/quantlevels/internal/domain/models"
	"github.com/guttosm/quantlevels/internal/levels"
	"github.com/guttosm/quantlevels/internal/logger"
)

// Config carries the feed endpoint and politeness settings.
type Config struct {
	BaseURL            string
	Cookie             string
	UserAgent          string
	PerPage            int
	RequestsPerSecond  float64
	Timeout            time.Duration
	AttachmentParallel int
}

// Client pages through the community feed and turns it into posts.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a Client. A nil httpClient gets one with cfg.Timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.PerPage <= 0 {
		cfg.PerPage = 20
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.AttachmentParallel <= 0 {
		cfg.AttachmentParallel = 4
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{cfg: cfg, http: httpClient, limiter: rate.NewLimiter(limit, 1)}
}

type feedItem struct {
	Post *feedPost `json:"post"`
}

type feedPost struct {
	Title       string `json:"title"`
	CreatedAt   string `json:"created_at"`
	Description string `json:"description"`
	User        struct {
		Name string `json:"name"`
	} `json:"user"`
	SharingMeta struct {
		URL string `json:"url"`
	} `json:"sharing_meta"`
	Assets []feedAsset `json:"assets"`
}

type feedAsset struct {
	IsFile           bool   `json:"is_file"`
	OriginalURL      string `json:"original_url"`
	OriginalFilename string `json:"original_filename"`
}

// FetchPosts reads the feed newest first and returns the posts with level
// text extracted.
//
// With a cutoff, paging stops after the first page whose last item was
// created at or before the cutoff, and posts created before cutoff+24h are
// dropped (undated posts are kept). A failing page ends paging; the pages
// already read are still returned. Only context cancellation is an error.
func (c *Client) FetchPosts(ctx context.Context, cutoff *time.Time) ([]models.Post, error) {
	start := time.Now()

	items, err := c.fetchRaw(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	if cutoff != nil {
		items = prune(items, *cutoff)
	}

	posts := toPosts(items)
	for i := range posts {
		logger.L().Debug().Str("posted", posts[i].DatePosted).Str("title", posts[i].Title).Msg("extracting_post")
		posts[i].RawText = ExtractLevelText(posts[i].HTMLBody)
		posts[i].FileLink = AttachmentLink(posts[i].HTMLBody)
	}

	if err := c.resolveAttachments(ctx, posts); err != nil {
		return nil, err
	}

	logger.L().Info().Int("items", len(items)).Int("posts", len(posts)).Dur("elapsed", time.Since(start)).Msg("feed_fetched")
	return posts, nil
}

func (c *Client) fetchRaw(ctx context.Context, cutoff *time.Time) ([]feedItem, error) {
	var all []feedItem

	if cutoff != nil {
		logger.L().Info().Time("cutoff", *cutoff).Msg("feed_fetch_start")
	} else {
		logger.L().Info().Msg("feed_fetch_start")
	}

	for page := 1; ; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		items, err := c.fetchPage(ctx, page)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.L().Error().Err(err).Int("page", page).Msg("feed_page_failed")
			break
		}
		if len(items) == 0 {
			logger.L().Info().Int("page", page).Msg("feed_end")
			break
		}

		all = append(all, items...)

		if cutoff != nil && reachedCutoff(items[len(items)-1], *cutoff) {
			logger.L().Info().Int("page", page).Time("cutoff", *cutoff).Msg("feed_cutoff_reached")
			break
		}
	}

	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) ([]feedItem, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}
	q := u.Query()
	q.Set("per_page", strconv.Itoa(c.cfg.PerPage))
	q.Set("prompt_types", "advertisement,profile_builder")
	q.Set("sort", "newest")
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Cookie", c.cfg.Cookie)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	logger.L().Debug().Int("page", page).Msg("feed_page_request")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("feed page %d: unexpected status %d", page, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return decodePage(body)
}

// decodePage accepts either a bare array of items or an object wrapping them
// under "collection", "posts" or "data".
func decodePage(body []byte) ([]feedItem, error) {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && body[0] == '[' {
		var items []feedItem
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode feed page: %w", err)
		}
		return items, nil
	}

	var wrapped struct {
		Collection []feedItem `json:"collection"`
		Posts      []feedItem `json:"posts"`
		Data       []feedItem `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode feed page: %w", err)
	}
	switch {
	case len(wrapped.Collection) > 0:
		return wrapped.Collection, nil
	case len(wrapped.Posts) > 0:
		return wrapped.Posts, nil
	}
	return wrapped.Data, nil
}

func createdAt(it feedItem) (time.Time, bool) {
	if it.Post == nil || it.Post.CreatedAt == "" {
		return time.Time{}, false
	}
	t, err := levels.ParsePostDate(it.Post.CreatedAt)
	if err != nil {
		logger.L().Warn().Str("created_at", it.Post.CreatedAt).Msg("feed_item_bad_date")
		return time.Time{}, false
	}
	return t, true
}

func reachedCutoff(last feedItem, cutoff time.Time) bool {
	t, ok := createdAt(last)
	if !ok {
		logger.L().Warn().Msg("feed_last_item_undated")
		return false
	}
	return !t.After(cutoff)
}

// prune drops items created before the day after cutoff; undated items stay.
func prune(items []feedItem, cutoff time.Time) []feedItem {
	limit := cutoff.Add(24 * time.Hour)
	kept := items[:0:0]
	dropped := 0
	for _, it := range items {
		if t, ok := createdAt(it); ok && t.Before(limit) {
			dropped++
			continue
		}
		kept = append(kept, it)
	}
	if dropped > 0 {
		logger.L().Info().Int("dropped", dropped).Time("cutoff", cutoff).Msg("feed_pruned")
	}
	return kept
}

func toPosts(items []feedItem) []models.Post {
	posts := make([]models.Post, 0, len(items))
	for _, it := range items {
		p := it.Post
		if p == nil {
			continue
		}

		title := p.Title
		if title == "" {
			title = "No Title"
		}
		author := p.User.Name
		if author == "" {
			author = "Unknown"
		}

		posts = append(posts, models.Post{
			Title:      title,
			Author:     author,
			DatePosted: p.CreatedAt,
			Link:       p.SharingMeta.URL,
			HTMLBody:   p.Description + attachmentsHTML(p.Assets),
		})
	}
	return posts
}

// attachmentsHTML renders file assets as anchors AttachmentLink recognizes.
func attachmentsHTML(assets []feedAsset) string {
	var b bytes.Buffer
	for _, a := range assets {
		if !a.IsFile || a.OriginalURL == "" {
			continue
		}
		name := a.OriginalFilename
		if name == "" {
			name = "Download File"
		}
		fmt.Fprintf(&b, `<br><a class="mighty-file-attachment-link" href="%s">%s</a>`, html.EscapeString(a.OriginalURL), html.EscapeString(name))
	}
	if b.Len() == 0 {
		return ""
	}
	return `<div class="injected-attachments"><br><strong>Attachments:</strong>` + b.String() + `</div>`
}

// resolveAttachments downloads attachment files concurrently and swaps their
// content in as the post text. A failed download leaves the text empty.
func (c *Client) resolveAttachments(ctx context.Context, posts []models.Post) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.AttachmentParallel)

	for i := range posts {
		if posts[i].FileLink == "" {
			continue
		}
		g.Go(func() error {
			text, err := c.download(gctx, posts[i].FileLink)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.L().Error().Err(err).Str("file", posts[i].FileLink).Msg("attachment_download_failed")
				posts[i].RawText = ""
				return nil
			}
			posts[i].RawText = text
			return nil
		})
	}
	return g.Wait()
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func (c *Client) download(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("download %s: unexpected status %d", link, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimPrefix(body, utf8BOM)), nil
}
