package headhunter

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/hh-recommender/internal/utils"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
)

type ItemResponse struct {
	Items   []Item
	Found   int
	Pages   int
	Page    int
	PerPage int `json:"per_page"`
}

type Item interface{}

// StatusError is returned when HH.ru answers with an unexpected status code.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %s", e.Status)
}

// GetItems makes GET requests to HeadHunter API and returns items from all pages.
// The first page tells how many pages exist; the rest are fetched concurrently and
// flattened in page order.
func (c *Client) GetItems(ctx context.Context, endpoint string, q url.Values) ([]Item, error) {
	first, err := c.getPage(ctx, endpoint, q, 0)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("got response from HH.ru", zap.Int("pages", first.Pages), zap.Int("max items per page", first.PerPage))

	if first.Pages <= 1 {
		return first.Items, nil
	}

	c.logger.Debug("additional requests needed",
		zap.Int("pages", first.Pages-1),
		zap.Int("concurrency", c.concurrency()),
	)

	pages := make([][]Item, first.Pages)
	pages[0] = first.Items

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency())
	for page := 1; page < first.Pages; page++ {
		g.Go(func() error {
			response, err := c.getPage(gctx, endpoint, q, page)
			if err != nil {
				return fmt.Errorf("page %d: %w", page, err)
			}
			pages[page] = response.Items
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]Item, 0, first.Found)
	for _, page := range pages {
		items = append(items, page...)
	}

	return items, nil
}

func (c *Client) getPage(ctx context.Context, endpoint string, q url.Values, page int) (*ItemResponse, error) {
	query := url.Values{}
	for key, values := range q {
		query[key] = append([]string(nil), values...)
	}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}

	var response *ItemResponse
	if err := c.getJSON(ctx, endpoint, query, &response); err != nil {
		return nil, err
	}
	if response == nil {
		return &ItemResponse{}, nil
	}

	return response, nil
}

// getJSON makes a GET request and decodes the JSON body into target.
func (c *Client) getJSON(ctx context.Context, endpoint string, q url.Values, target any) error {
	resp, err := c.get(ctx, endpoint, q)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	if target == nil {
		return nil
	}

	return json.NewDecoder(reader).Decode(target)
}

// get performs a GET request, retrying throttled and server-side failures with a linear backoff.
func (c *Client) get(ctx context.Context, endpoint string, q url.Values) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		c.setHeaders(req)
		// Additional headers. For GET requests only
		req.Header.Set("Content-Type", contentType)
		if len(q) > 0 {
			req.URL.RawQuery = q.Encode()
		}

		resp, err := c.request(req)
		if err == nil && !retryable(resp.StatusCode) {
			return resp, nil
		}

		if attempt >= c.MaxRetries {
			return resp, err
		}

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Debug("request failed, retrying", zap.String("url", req.URL.String()), zap.Error(err))
		} else {
			c.logger.Debug("bad status, retrying", zap.String("url", req.URL.String()), zap.String("status", resp.Status))
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		if err := utils.WaitFor(ctx, c.RetryDelay*time.Duration(attempt+1)); err != nil {
			return nil, err
		}
	}
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
}

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
