package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/desertthunder/tuneidx/internal/shared"
)

// Target index names.
const (
	IndexTracks  = "tracks"
	IndexArtists = "artists"
	IndexAlbums  = "albums"
	IndexGenres  = "genres"
)

// Indices lists the four target indices in write order.
var Indices = []string{IndexTracks, IndexArtists, IndexAlbums, IndexGenres}

// Client wraps the Elasticsearch client for the pipeline's needs: health
// checks, index bootstrap, and bulk requests.
type Client struct {
	es     *elasticsearch.Client
	logger *log.Logger
}

// NewClient creates a Client from the configured endpoint and basic-auth
// credentials. Transport defaults to [http.DefaultTransport]; tests inject
// their own via the transport argument.
func NewClient(cfg shared.ElasticsearchConfig, logger *log.Logger, transport http.RoundTripper) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: elasticsearch endpoint is required", shared.ErrInvalidConfig)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.Endpoint},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: transport,
		// The Writer owns the retry policy; the transport must not retry
		// underneath it.
		DisableRetry: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &Client{es: es, logger: logger}, nil
}

// Ping checks the endpoint once.
func (c *Client) Ping(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSinkUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("%w: ping returned %s", shared.ErrSinkUnavailable, res.Status())
	}
	return nil
}

// WaitUntilAvailable pings until the endpoint responds, retrying up to
// attempts times with a fixed interval between tries.
func (c *Client) WaitUntilAvailable(ctx context.Context, attempts int, interval time.Duration) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = c.Ping(ctx); err == nil {
			return nil
		}

		c.logger.Warn("elasticsearch not reachable", "attempt", attempt, "of", attempts, "error", err)
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", shared.ErrSinkUnavailable, ctx.Err())
		case <-time.After(interval):
		}
	}

	return err
}

// EnsureIndices creates the four target indices with their field mappings.
// Existing indices are left untouched unless recreate is set, in which case
// they are deleted and rebuilt empty.
func (c *Client) EnsureIndices(ctx context.Context, recreate bool) error {
	for _, index := range Indices {
		if recreate {
			if err := c.deleteIndex(ctx, index); err != nil {
				return err
			}
		}

		exists, err := c.indexExists(ctx, index)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		c.logger.Info("creating index", "index", index)
		res, err := c.es.Indices.Create(
			index,
			c.es.Indices.Create.WithBody(strings.NewReader(indexMappings[index])),
			c.es.Indices.Create.WithContext(ctx),
		)
		if err != nil {
			return fmt.Errorf("%w: create %s: %v", shared.ErrIndexSetup, index, err)
		}
		if err := drainError(res, shared.ErrIndexSetup, "create "+index); err != nil {
			return err
		}
	}

	return nil
}

// Refresh makes the given indices' documents visible to search.
func (c *Client) Refresh(ctx context.Context, indices ...string) error {
	res, err := c.es.Indices.Refresh(
		c.es.Indices.Refresh.WithIndex(indices...),
		c.es.Indices.Refresh.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to refresh indices: %w", err)
	}
	return drainError(res, shared.ErrSinkUnavailable, "refresh")
}

// Bulk sends one raw NDJSON bulk body at the given index and returns the
// undecoded response. The caller classifies status codes.
func (c *Client) Bulk(ctx context.Context, index string, body []byte) (*esapi.Response, error) {
	return c.es.Bulk(
		bytes.NewReader(body),
		c.es.Bulk.WithIndex(index),
		c.es.Bulk.WithContext(ctx),
	)
}

func (c *Client) indexExists(ctx context.Context, index string) (bool, error) {
	res, err := c.es.Indices.Exists([]string{index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("%w: exists %s: %v", shared.ErrIndexSetup, index, err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("%w: exists %s returned %s", shared.ErrIndexSetup, index, res.Status())
	}
}

func (c *Client) deleteIndex(ctx context.Context, index string) error {
	c.logger.Info("deleting index", "index", index)
	res, err := c.es.Indices.Delete(
		[]string{index},
		c.es.Indices.Delete.WithContext(ctx),
		c.es.Indices.Delete.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return fmt.Errorf("%w: delete %s: %v", shared.ErrIndexSetup, index, err)
	}
	return drainError(res, shared.ErrIndexSetup, "delete "+index)
}

// drainError consumes the response body and converts an error status into
// a wrapped sentinel error.
func drainError(res *esapi.Response, sentinel error, op string) error {
	defer res.Body.Close()

	if !res.IsError() {
		io.Copy(io.Discard, res.Body)
		return nil
	}

	detail, _ := io.ReadAll(res.Body)
	return fmt.Errorf("%w: %s returned %s: %s", sentinel, op, res.Status(), strings.TrimSpace(string(detail)))
}
