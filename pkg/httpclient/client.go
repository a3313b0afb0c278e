// Package httpclient builds the resty clients used to talk to the backend services.
package httpclient

import (
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/coursehub-client/pkg/config"
	"github.com/noah-isme/coursehub-client/pkg/middleware/requestid"
)

// Options configures one backend client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Logger    *zap.Logger
}

// FromConfig returns options for the users and catalog services.
func FromConfig(cfg config.APIConfig, logger *zap.Logger) (users, catalog Options) {
	base := Options{Timeout: cfg.Timeout, UserAgent: cfg.UserAgent, Logger: logger}
	users, catalog = base, base
	users.BaseURL = cfg.UsersBaseURL
	catalog.BaseURL = cfg.CatalogBaseURL
	return users, catalog
}

// New returns a resty client that stamps a request id on every call and logs
// through zap. Retries stay disabled: every workflow step runs at most once.
func New(opts Options) *resty.Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetLogger(logger.Sugar()).
		SetHeader("Accept", "application/json")
	if opts.UserAgent != "" {
		client.SetHeader("User-Agent", opts.UserAgent)
	}

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		if req.Header.Get(requestid.HeaderKey) == "" {
			req.SetHeader(requestid.HeaderKey, requestid.New())
		}
		return nil
	})

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("backend response",
			zap.String("method", resp.Request.Method),
			zap.String("url", resp.Request.URL),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("latency", resp.Time()),
			zap.String("request_id", resp.Request.Header.Get(requestid.HeaderKey)),
		)
		return nil
	})

	return client
}
