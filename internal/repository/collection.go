package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/coursehub-client/pkg/errors"
)

// requestObserver receives one observation per backend call.
type requestObserver interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
}

// Filter is a set of field-equality constraints sent as query parameters.
type Filter map[string]string

func (f Filter) values() url.Values {
	v := url.Values{}
	for k, val := range f {
		v.Set(k, val)
	}
	return v
}

// Collection is a typed REST client for one backend collection. List, Get, and
// Update degrade to empty/absent/false and log the failure; Query, Find, Create,
// and Patch return typed errors.
type Collection[T any] struct {
	client  *resty.Client
	name    string
	logger  *zap.Logger
	metrics requestObserver
}

// NewCollection binds a resty client to a collection name such as "enrollments".
func NewCollection[T any](client *resty.Client, name string, logger *zap.Logger, metrics requestObserver) *Collection[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection[T]{client: client, name: name, logger: logger, metrics: metrics}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// Query lists records matching filter and reports any failure. A record that
// cannot be decoded is skipped with a warning instead of failing the whole list.
func (c *Collection[T]) Query(ctx context.Context, filter Filter) ([]T, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(filter.values()).
		Get("/" + c.name)
	if err := c.check(http.MethodGet, resp, err); err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(resp.Body(), &items); err != nil {
		return nil, c.decodeError(err)
	}
	records := make([]T, 0, len(items))
	for i, item := range items {
		var record T
		if err := json.Unmarshal(item, &record); err != nil {
			c.logger.Warn("skipping undecodable record",
				zap.String("collection", c.name), zap.Int("index", i), zap.Error(err))
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// List is Query with failures swallowed into an empty slice.
func (c *Collection[T]) List(ctx context.Context, filter Filter) []T {
	records, err := c.Query(ctx, filter)
	if err != nil {
		c.logger.Warn("list failed, returning empty result", zap.String("collection", c.name), zap.Error(err))
		return []T{}
	}
	return records
}

// Find loads one record by id. A 404 yields ErrNotFound.
func (c *Collection[T]) Find(ctx context.Context, id string) (*T, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Get("/" + c.name + "/{id}")
	if err := c.check(http.MethodGet, resp, err); err != nil {
		return nil, err
	}

	var record T
	if err := json.Unmarshal(resp.Body(), &record); err != nil {
		return nil, c.decodeError(err)
	}
	return &record, nil
}

// Get is Find with every failure reported as absent.
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, bool) {
	record, err := c.Find(ctx, id)
	if err != nil {
		if !appErrors.IsCode(err, appErrors.ErrNotFound.Code) {
			c.logger.Warn("get failed, treating as absent", zap.String("collection", c.name), zap.String("id", id), zap.Error(err))
		}
		return nil, false
	}
	return record, true
}

// Create POSTs record and returns the persisted copy with its backend-assigned id.
func (c *Collection[T]) Create(ctx context.Context, record any) (*T, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(record).
		Post("/" + c.name)
	if err := c.check(http.MethodPost, resp, err); err != nil {
		return nil, err
	}

	var created T
	if err := json.Unmarshal(resp.Body(), &created); err != nil {
		return nil, c.decodeError(err)
	}
	return &created, nil
}

// Patch sends a partial update.
func (c *Collection[T]) Patch(ctx context.Context, id string, fields any) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetPathParam("id", id).
		SetBody(fields).
		Patch("/" + c.name + "/{id}")
	return c.check(http.MethodPatch, resp, err)
}

// Update is Patch reduced to a success flag.
func (c *Collection[T]) Update(ctx context.Context, id string, fields any) bool {
	if err := c.Patch(ctx, id, fields); err != nil {
		c.logger.Warn("update failed", zap.String("collection", c.name), zap.String("id", id), zap.Error(err))
		return false
	}
	return true
}

// check records the call and maps transport failures and non-2xx statuses.
func (c *Collection[T]) check(method string, resp *resty.Response, err error) error {
	if err != nil {
		var elapsed time.Duration
		if resp != nil && resp.Request != nil && !resp.Request.Time.IsZero() {
			elapsed = time.Since(resp.Request.Time)
		}
		c.observe(method, 0, elapsed)
		return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status,
			fmt.Sprintf("%s %s failed", method, c.name))
	}

	c.observe(method, resp.StatusCode(), resp.Time())

	switch {
	case resp.IsSuccess():
		return nil
	case resp.StatusCode() == http.StatusNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s record not found", c.name))
	case resp.StatusCode() == http.StatusConflict:
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("%s record conflicts with an existing one", c.name))
	default:
		return appErrors.Wrap(fmt.Errorf("unexpected status %d", resp.StatusCode()),
			appErrors.ErrTransport.Code, resp.StatusCode(), fmt.Sprintf("%s %s failed", method, c.name))
	}
}

func (c *Collection[T]) decodeError(err error) error {
	return appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status,
		fmt.Sprintf("decode %s response", c.name))
}

func (c *Collection[T]) observe(method string, status int, d time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveHTTPRequest(method, c.name, status, d)
}
