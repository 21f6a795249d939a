// Package api builds the resty clients shared by the data-proxy and collab
// services.
package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/xgui3783/ebrains-util/internal/constants"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-ID"
	defaultTimeout  = 30 * time.Second
)

type options struct {
	token   string
	logger  *zap.Logger
	timeout time.Duration
}

type Option func(*options)

func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTimeout bounds a whole request. Zero disables the limit, which transfer
// clients need for large objects.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func DefaultUserAgent() string {
	return fmt.Sprintf("%s/%s (%s; %s) +%s", constants.ServiceName, constants.Version, runtime.GOOS, runtime.GOARCH, constants.ProjectURL)
}

// New returns a resty client rooted at baseURL. An empty baseURL is allowed
// for clients that only follow absolute presigned URLs.
func New(baseURL string, opts ...Option) *resty.Client {
	o := options{
		logger:  zap.NewNop(),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := resty.New().
		SetLogger(o.logger.Sugar()).
		SetHeader("User-Agent", DefaultUserAgent()).
		SetTimeout(o.timeout)
	if baseURL != "" {
		c.SetBaseURL(baseURL)
	}
	if o.token != "" {
		c.SetAuthToken(o.token)
	}

	log := o.logger
	c.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if r.Header.Get(RequestIDHeader) == "" {
			r.SetHeader(RequestIDHeader, uuid.NewString())
		}
		return nil
	})
	c.SetPreRequestHook(func(_ *resty.Client, r *http.Request) error {
		if n, ok := contentLength(r.Context()); ok {
			r.ContentLength = n
		}
		// Presigned URLs carry credentials in the query string.
		log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("url", r.URL.Host+r.URL.Path),
			zap.String("request_id", r.Header.Get(RequestIDHeader)))
		return nil
	})
	c.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		log.Debug("http response",
			zap.String("method", resp.Request.Method),
			zap.String("url", resp.Request.RawRequest.URL.Host+resp.Request.RawRequest.URL.Path),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("elapsed", resp.Time()))
		return nil
	})
	return c
}

type contentLengthKey struct{}

// WithContentLength makes a streamed request body go out with a fixed
// Content-Length instead of chunked encoding.
func WithContentLength(ctx context.Context, n int64) context.Context {
	return context.WithValue(ctx, contentLengthKey{}, n)
}

func contentLength(ctx context.Context) (int64, bool) {
	n, ok := ctx.Value(contentLengthKey{}).(int64)
	return n, ok
}
