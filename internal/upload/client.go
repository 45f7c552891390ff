package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"locale-uploader/internal/textutil"
)

// DefaultBaseURL is the CurseForge host serving the localization import API.
const DefaultBaseURL = "https://legacy.curseforge.com"

const (
	RequestTimeout   = 120 * time.Second
	RetryCount       = 3
	RetryWaitTime    = 2 * time.Second
	RetryWaitTimeMax = 6 * time.Second
)

var (
	ErrMissingAPIKey    = errors.New("missing API key")
	ErrMissingProjectID = errors.New("missing project ID")
	// ErrForbidden is the import API's answer to a project the key cannot
	// write to, most often a wrong project ID.
	ErrForbidden = errors.New("failed to upload, this is usually caused by a bad project ID")
)

// Client uploads localization tables to the import API.
type Client struct {
	apiKey string
	http   *resty.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at another host.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.http.SetBaseURL(strings.TrimRight(url, "/")) }
}

// WithRetry overrides the retry count and the initial wait between attempts.
func WithRetry(count int, wait time.Duration) Option {
	return func(c *Client) {
		c.http.SetRetryCount(count)
		c.http.SetRetryWaitTime(wait)
		c.http.SetRetryMaxWaitTime(3 * wait)
	}
}

// NewClient creates a client authenticating with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey: apiKey,
		http:   newHTTPClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newHTTPClient() *resty.Client {
	c := resty.New()
	c.SetBaseURL(DefaultBaseURL)
	c.SetHeader("User-Agent", "locale-uploader")
	c.SetTimeout(RequestTimeout)
	c.SetRetryCount(RetryCount)
	c.SetRetryWaitTime(RetryWaitTime)
	c.SetRetryMaxWaitTime(RetryWaitTimeMax)
	c.AddRetryCondition(func(response *resty.Response, err error) bool {
		if response == nil {
			return false
		}
		switch response.StatusCode() {
		case
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	})
	c.AddRetryHook(func(response *resty.Response, err error) {
		ev := log.Warn()
		if response != nil {
			ev = ev.Int("status", response.StatusCode()).Int("attempt", response.Request.Attempt)
		}
		ev.Err(err).Msg("Retrying upload")
	})
	return c
}

type importResponse struct {
	Message      string `json:"message"`
	ErrorMessage string `json:"errorMessage"`
}

// Upload posts the rendered localization payload for projectID and returns
// the service's confirmation message.
func (c *Client) Upload(ctx context.Context, projectID string, meta Metadata, payload string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingAPIKey
	}
	if projectID == "" {
		return "", ErrMissingProjectID
	}

	metaJSON, err := meta.JSON()
	if err != nil {
		return "", err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Api-Token", c.apiKey).
		SetPathParam("id", projectID).
		SetMultipartFormData(map[string]string{
			"metadata":      metaJSON,
			"localizations": payload,
		}).
		Post("/api/projects/{id}/localization/import")
	if err != nil {
		return "", fmt.Errorf("upload request: %s", textutil.Redact(err.Error(), c.apiKey))
	}

	log.Debug().
		Int("status", resp.StatusCode()).
		Dur("duration", resp.Time()).
		Str("project", projectID).
		Msg("Upload response")

	if resp.StatusCode() == http.StatusForbidden {
		return "", ErrForbidden
	}

	var body importResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("failed to upload (status %d): %s", resp.StatusCode(),
			textutil.Truncate(textutil.Redact(string(resp.Body()), c.apiKey), 200))
	}

	if resp.StatusCode() != http.StatusOK {
		msg := strings.TrimSpace(textutil.Redact(body.ErrorMessage, c.apiKey))
		return "", fmt.Errorf("failed to upload (status %d): %s", resp.StatusCode(), msg)
	}

	return body.Message, nil
}
