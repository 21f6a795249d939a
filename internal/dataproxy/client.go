// Package dataproxy is a client for the EBRAINS data-proxy bucket API.
package dataproxy

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/xgui3783/ebrains-util/internal/api"
	"github.com/xgui3783/ebrains-util/internal/logging"
	"go.uber.org/zap"
)

// DefaultPageSize is the number of objects requested per list call.
const DefaultPageSize = 1000

type Object struct {
	Name         string `json:"name"`
	Bytes        int64  `json:"bytes"`
	LastModified string `json:"last_modified,omitempty"`
	Hash         string `json:"hash,omitempty"`
	ContentType  string `json:"content_type,omitempty"`
}

type Client struct {
	api *resty.Client
	// transfer follows presigned URLs; it never carries the bearer token.
	transfer *resty.Client
	logger   *zap.Logger
	PageSize int
	token    string
}

// New returns a client for the data-proxy at baseURL. An empty token gives an
// anonymous client, which can only read public buckets.
func New(baseURL, token string, logger *zap.Logger) *Client {
	logger = logging.OrNop(logger)
	return &Client{
		api:      api.New(strings.TrimRight(baseURL, "/"), api.WithToken(token), api.WithLogger(logger)),
		transfer: api.New("", api.WithLogger(logger), api.WithTimeout(0)),
		logger:   logger,
		PageSize: DefaultPageSize,
		token:    token,
	}
}

func (c *Client) Anonymous() bool {
	return c.token == ""
}

func (c *Client) Bucket(name string) *Bucket {
	return &Bucket{Name: name, client: c}
}

type Bucket struct {
	Name   string
	client *Client
}

func (b *Bucket) objectPath(name string) string {
	segments := strings.Split(strings.TrimLeft(name, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "/v1/buckets/" + url.PathEscape(b.Name) + "/" + strings.Join(segments, "/")
}

// List returns every object whose name starts with prefix, following the
// marker based pagination of the API.
func (b *Bucket) List(ctx context.Context, prefix string) ([]Object, error) {
	pageSize := b.client.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var (
		all    []Object
		marker string
	)
	for {
		var page struct {
			Objects []Object `json:"objects"`
		}
		req := b.client.api.R().
			SetContext(ctx).
			SetResult(&page).
			SetQueryParam("limit", strconv.Itoa(pageSize))
		if prefix != "" {
			req.SetQueryParam("prefix", prefix)
		}
		if marker != "" {
			req.SetQueryParam("marker", marker)
		}
		resp, err := req.Get("/v1/buckets/" + url.PathEscape(b.Name))
		if err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", b.Name, err)
		}
		if err := api.Check(resp); err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", b.Name, err)
		}

		all = append(all, page.Objects...)
		if len(page.Objects) < pageSize {
			return all, nil
		}
		marker = page.Objects[len(page.Objects)-1].Name
		b.client.logger.Debug("listing next page", zap.String("bucket", b.Name), zap.String("marker", marker))
	}
}

// DownloadLink returns a temporary URL serving the object body.
func (b *Bucket) DownloadLink(ctx context.Context, name string) (string, error) {
	var link struct {
		URL string `json:"url"`
	}
	resp, err := b.client.api.R().
		SetContext(ctx).
		SetResult(&link).
		SetQueryParam("redirect", "false").
		Get(b.objectPath(name))
	if err != nil {
		return "", fmt.Errorf("failed to get download link for %s: %w", name, err)
	}
	if err := api.Check(resp); err != nil {
		return "", fmt.Errorf("failed to get download link for %s: %w", name, err)
	}
	return link.URL, nil
}

// Download is an open object body. Size is -1 when the server did not send a
// Content-Length.
type Download struct {
	io.ReadCloser
	Size int64
}

func (b *Bucket) Open(ctx context.Context, name string) (*Download, error) {
	link, err := b.DownloadLink(ctx, name)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.transfer.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(link)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", name, err)
	}
	if err := api.Check(resp); err != nil {
		_ = resp.RawBody().Close()
		return nil, fmt.Errorf("failed to download %s: %w", name, err)
	}
	return &Download{ReadCloser: resp.RawBody(), Size: resp.RawResponse.ContentLength}, nil
}

// Upload stores body as name. It asks the API for an upload URL and then
// PUTs the body there with headers. A negative size streams the body chunked.
func (b *Bucket) Upload(ctx context.Context, name string, body io.Reader, size int64, headers map[string]string) error {
	var link struct {
		URL string `json:"url"`
	}
	resp, err := b.client.api.R().
		SetContext(ctx).
		SetResult(&link).
		Put(b.objectPath(name))
	if err != nil {
		return fmt.Errorf("failed to get upload link for %s: %w", name, err)
	}
	if err := api.Check(resp); err != nil {
		return fmt.Errorf("failed to get upload link for %s: %w", name, err)
	}

	if size >= 0 {
		ctx = api.WithContentLength(ctx, size)
	}
	req := b.client.transfer.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream")
	resp, err = req.
		SetHeaders(headers).
		SetBody(body).
		Put(link.URL)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	if err := api.Check(resp); err != nil {
		return fmt.Errorf("failed to upload %s: %w", name, err)
	}
	b.client.logger.Debug("uploaded object", zap.String("bucket", b.Name), zap.String("object", name), zap.Int64("bytes", size))
	return nil
}
