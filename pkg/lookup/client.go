// Package lookup performs single-key and batch HTTP lookups against one
// dependent service resource.
//
// The two dependent contracts are:
//
//	GET {base}/{resource}?ids=i1,i2,...  -> 200 with a JSON array (batch path)
//	GET {base}/{resource}/{id}           -> 200 with one JSON object (fallback)
//
// Both calls carry a fixed timeout; exceeding it is treated identically to
// a connection failure. BatchFetch reports failure through its error so the
// caller can fall back to per-key fetches; SingleFetch never fails past its
// boundary and collapses every failure mode to "not resolved".
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/foodfast/services/pkg/logging"
)

// DefaultTimeout bounds every remote call.
const DefaultTimeout = 2 * time.Second

// ErrBatchUnavailable signals that the batch path failed, timed out, or
// returned a non-success status, and the caller should fall back to
// per-key fetches. A successful batch response missing some ids is NOT
// this error; those ids are simply absent from the returned map.
var ErrBatchUnavailable = errors.New("batch lookup unavailable")

// Entity is the constraint for remote records: anything that carries its
// own identifier.
type Entity interface {
	EntityID() int64
}

// Client fetches one resource kind from one dependent service.
type Client[E Entity] struct {
	baseURL  string
	resource string
	http     *http.Client
	logger   zerolog.Logger
}

// NewClient creates a lookup client for one resource, e.g.
// NewClient[models.Product]("http://localhost:5002", "products", 2*time.Second).
func NewClient[E Entity](baseURL, resource string, timeout time.Duration) *Client[E] {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client[E]{
		baseURL:  strings.TrimRight(baseURL, "/"),
		resource: strings.Trim(resource, "/"),
		http:     &http.Client{Timeout: timeout},
		logger:   logging.NewLogger("lookup").With().Str("resource", resource).Logger(),
	}
}

// BatchFetch issues one request carrying all keys. On success it returns
// the entities the service knows about keyed by id; requested ids absent
// from the response are absent from the map. Any transport error, timeout,
// non-200 status, or malformed body returns ErrBatchUnavailable.
func (c *Client[E]) BatchFetch(ctx context.Context, ids []int64) (map[int64]E, error) {
	start := time.Now()

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	url := fmt.Sprintf("%s/%s?ids=%s", c.baseURL, c.resource, strings.Join(parts, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBatchUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe("batch", "network_error", start)
		c.logger.Warn().Err(err).Int("ids", len(ids)).Msg("Batch lookup failed")
		return nil, fmt.Errorf("%w: %v", ErrBatchUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.observe("batch", strconv.Itoa(resp.StatusCode), start)
		c.logger.Warn().Int("status", resp.StatusCode).Int("ids", len(ids)).Msg("Batch lookup returned non-200")
		return nil, fmt.Errorf("%w: status %d", ErrBatchUnavailable, resp.StatusCode)
	}

	var list []E
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		// Malformed body is treated identically to a transport failure.
		c.observe("batch", "malformed", start)
		c.logger.Warn().Err(err).Msg("Batch lookup returned malformed body")
		return nil, fmt.Errorf("%w: %v", ErrBatchUnavailable, err)
	}

	out := make(map[int64]E, len(list))
	for _, e := range list {
		out[e.EntityID()] = e
	}

	c.observe("batch", "200", start)
	c.logger.Debug().Int("requested", len(ids)).Int("returned", len(out)).Msg("Batch lookup complete")
	return out, nil
}

// SingleFetch issues one request for exactly one key. Every failure mode
// (transport, timeout, non-200, malformed body) collapses to ok=false;
// this call never returns an error.
func (c *Client[E]) SingleFetch(ctx context.Context, id int64) (E, bool) {
	start := time.Now()
	var zero E

	url := fmt.Sprintf("%s/%s/%d", c.baseURL, c.resource, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return zero, false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe("single", "network_error", start)
		c.logger.Debug().Err(err).Int64("id", id).Msg("Single lookup failed")
		return zero, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.observe("single", strconv.Itoa(resp.StatusCode), start)
		return zero, false
	}

	var e E
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		c.observe("single", "malformed", start)
		c.logger.Debug().Err(err).Int64("id", id).Msg("Single lookup returned malformed body")
		return zero, false
	}

	c.observe("single", "200", start)
	return e, true
}

// Resource returns the remote resource name, e.g. "products".
func (c *Client[E]) Resource() string {
	return c.resource
}

func (c *Client[E]) observe(mode, status string, start time.Time) {
	lookupRequestsTotal.WithLabelValues(c.resource, mode, status).Inc()
	lookupRequestDuration.WithLabelValues(c.resource, mode).Observe(time.Since(start).Seconds())
}
