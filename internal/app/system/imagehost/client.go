// Package imagehost uploads captured screenshots to an external image host
// (freeimage.host API shape) and returns the durable URL of the stored image.
//
// The upload is the only outbound HTTP call in the capture path; it is
// bounded by a configured timeout and never retried automatically — a failed
// or timed-out upload surfaces to the caller and nothing is persisted.
package imagehost

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single upload request.
const DefaultTimeout = 10 * time.Second

// Uploader is the interface the history service depends on; tests substitute
// a fake.
type Uploader interface {
	Upload(ctx context.Context, imageBase64 string) (string, error)
}

// ErrUploadFailed wraps any transport or API-level upload failure.
var ErrUploadFailed = errors.New("image upload failed")

// Config holds the image host endpoint settings.
type Config struct {
	APIURL  string
	APIKey  string
	Timeout time.Duration // zero means DefaultTimeout
}

// Client uploads images via the freeimage.host form API.
type Client struct {
	http   *resty.Client
	apiURL string
	apiKey string
	logger *zap.Logger
}

// uploadResponse is the subset of the host's JSON response we care about.
type uploadResponse struct {
	StatusCode int    `json:"status_code"`
	StatusTxt  string `json:"status_txt"`
	Image      struct {
		URL string `json:"url"`
	} `json:"image"`
}

// New creates an image host client.
func New(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:   resty.New().SetTimeout(timeout),
		apiURL: cfg.APIURL,
		apiKey: cfg.APIKey,
		logger: logger,
	}
}

// Upload sends a base64-encoded image (without a data: prefix) and returns
// the public URL the host assigned.
func (c *Client) Upload(ctx context.Context, imageBase64 string) (string, error) {
	var out uploadResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"key":    c.apiKey,
			"source": imageBase64,
			"action": "upload",
			"format": "json",
		}).
		SetResult(&out).
		Post(c.apiURL)
	if err != nil {
		c.logger.Error("image upload request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	if resp.StatusCode() != 200 || out.StatusCode != 200 || out.Image.URL == "" {
		msg := out.StatusTxt
		if msg == "" {
			msg = resp.Status()
		}
		c.logger.Error("image host rejected upload",
			zap.Int("http_status", resp.StatusCode()),
			zap.Int("api_status", out.StatusCode),
			zap.String("status_txt", out.StatusTxt),
		)
		return "", fmt.Errorf("%w: %s", ErrUploadFailed, msg)
	}

	c.logger.Debug("image uploaded", zap.String("url", out.Image.URL))
	return out.Image.URL, nil
}
