package liststore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const preferHeader = "HonorNonIndexedQueriesWarningMayFailRandomly"

// Config holds the connection settings for the remote list store.
type Config struct {
	BaseURL string
	SiteID  string
	Token   string
	Timeout time.Duration
}

// Client talks to the remote list store. It is safe for concurrent use;
// the resolved site path is memoized after the first call and reused for
// the lifetime of the client.
type Client struct {
	http    *http.Client
	baseURL string
	siteID  string
	token   string
	log     *zap.Logger

	mu   sync.Mutex
	site string
}

func New(cfg *Config, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		siteID:  cfg.SiteID,
		token:   cfg.Token,
		log:     log,
	}
}

// Reset drops the memoized site resolution so the next call re-resolves.
func (c *Client) Reset() {
	c.mu.Lock()
	c.site = ""
	c.mu.Unlock()
}

// Ping verifies the site resource is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.siteURL(ctx)
	return err
}

// siteURL resolves and memoizes the canonical site resource path.
func (c *Client) siteURL(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.site != "" {
		return c.site, nil
	}

	var site struct {
		ID string `json:"id"`
	}
	url := fmt.Sprintf("%s/sites/%s", c.baseURL, c.siteID)
	if err := c.do(ctx, http.MethodGet, url, nil, &site, false, "resolveSite"); err != nil {
		return "", err
	}
	c.site = fmt.Sprintf("%s/sites/%s", c.baseURL, site.ID)
	c.log.Debug("resolved site", zap.String("site", site.ID))
	return c.site, nil
}

func (c *Client) do(ctx context.Context, method, url string, body, out any, allowUnindexed bool, op string) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("liststore: encode %s payload: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("liststore: build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("client-request-id", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if allowUnindexed {
		req.Header.Set("Prefer", preferHeader)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("liststore: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if jsonErr := json.Unmarshal(raw, &eb); jsonErr != nil {
			eb.Error.Message = strings.TrimSpace(string(raw))
		}
		classified := classify(op, resp.StatusCode, eb)
		c.log.Debug("list store request failed",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("kind", string(classified.Kind)))
		return classified
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("liststore: decode %s response: %w", op, err)
	}
	return nil
}
