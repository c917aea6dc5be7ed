package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jackwu/callview/model"
	"github.com/jackwu/callview/query"
	"github.com/jackwu/callview/version"
)

const (
	listPath   = "/getList"
	recordPath = "/getRecord"
)

// ErrUnexpectedStatus is wrapped by StatusError.
var ErrUnexpectedStatus = errors.New("unexpected response status")

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnexpectedStatus, e.Status)
}

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// Config configures a Client.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client talks to the call list and recording endpoints with a static
// bearer token. It does not retry.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *logrus.Logger
}

// NewClient validates cfg and returns a client.
func NewClient(cfg Config, logger *logrus.Logger) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("api: invalid base URL %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api: base URL %q must be absolute", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &Client{
		baseURL: base,
		token:   cfg.Token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// ListCalls fetches one page of calls for the given parameters.
func (c *Client) ListCalls(ctx context.Context, params query.Params) (*model.ListResponse, error) {
	body, err := c.post(ctx, listPath, params, nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var resp model.ListResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("api: failed to decode call list: %w", err)
	}
	return &resp, nil
}

// FetchRecord downloads the audio of a recording.
func (c *Client) FetchRecord(ctx context.Context, record, partnershipID string) ([]byte, error) {
	params := query.Params{}.
		Add("record", record).
		Add("partnership_id", partnershipID)

	headers := http.Header{}
	headers.Set("Content-Type", "audio/mpeg, audio/x-mpeg, audio/x-mpeg-3, audio/mpeg3")
	headers.Set("Content-Transfer-Encoding", "binary")
	headers.Set("Content-Disposition", `filename="record.mp3"`)

	body, err := c.post(ctx, recordPath, params, headers)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	audio, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("api: failed to read recording: %w", err)
	}
	return audio, nil
}

func (c *Client) post(ctx context.Context, path string, params query.Params, headers http.Header) (io.ReadCloser, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("api: failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header[k] = v
	}
	requestID := uuid.New().String()
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("X-Request-ID", requestID)

	log := c.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     req.Method,
		"path":       path,
	})

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("Request failed")
		return nil, fmt.Errorf("api: request failed: %w", err)
	}

	log = log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		log.Warn("Unexpected response status")
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	log.Debug("Request completed")
	return resp.Body, nil
}
