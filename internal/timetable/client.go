package timetable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bluele/gcache"

	"github.com/pkordes/rail-log/backend/internal/metrics"
)

// Source is the external timetable collaborator. Railways returns the
// operator-filtered railway master; StationTimetable returns the scheduled
// trains for one fully-qualified timetable id, possibly empty.
type Source interface {
	Railways(ctx context.Context) ([]Railway, error)
	StationTimetable(ctx context.Context, id TimetableID) ([]TrainEntry, error)
}

// Client is the HTTP implementation of Source. Responses are cached
// in-process (LRU with TTL) because one autofill sweep can hit the same
// timetable for several candidate railways and users retrigger autofill on
// every keystroke.
type Client struct {
	baseURL  string
	apiKey   string
	operator string
	httpc    *http.Client
	cache    gcache.Cache
	col      *metrics.Collector
}

const (
	cacheSize      = 512
	cacheTTL       = 10 * time.Minute
	requestTimeout = 10 * time.Second
)

// NewClient builds a Source talking to the timetable API at baseURL,
// restricted to railways of the given operator id. col may be nil.
func NewClient(baseURL, apiKey, operator string, col *metrics.Collector) *Client {
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		operator: operator,
		httpc:    &http.Client{Timeout: requestTimeout},
		cache:    gcache.New(cacheSize).LRU().Expiration(cacheTTL).Build(),
		col:      col,
	}
}

// Railways fetches the railway master list for the configured operator.
func (c *Client) Railways(ctx context.Context) ([]Railway, error) {
	const key = "railways"
	if v, err := c.cache.Get(key); err == nil {
		c.cacheHit()
		return v.([]Railway), nil
	}
	c.cacheMiss()

	q := url.Values{"operator": {c.operator}}
	var railways []Railway
	if err := c.get(ctx, "/railways", q, &railways); err != nil {
		return nil, fmt.Errorf("timetable.Client.Railways: %w", err)
	}

	_ = c.cache.Set(key, railways)
	return railways, nil
}

// StationTimetable fetches the scheduled trains for one timetable id.
// An unknown id yields an empty list, not an error.
func (c *Client) StationTimetable(ctx context.Context, id TimetableID) ([]TrainEntry, error) {
	key := id.String()
	if v, err := c.cache.Get(key); err == nil {
		c.cacheHit()
		return v.([]TrainEntry), nil
	}
	c.cacheMiss()

	q := url.Values{
		"railway":   {id.Railway},
		"station":   {id.Station},
		"direction": {id.Direction},
		"calendar":  {id.Calendar},
	}
	var entries []TrainEntry
	if err := c.get(ctx, "/station-timetables", q, &entries); err != nil {
		return nil, fmt.Errorf("timetable.Client.StationTimetable: %w", err)
	}

	_ = c.cache.Set(key, entries)
	return entries, nil
}

// get performs one GET against the source and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	u := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		c.queryResult("error")
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.queryResult("error")
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.queryResult("error")
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.queryResult("error")
		return err
	}

	c.queryResult("ok")
	return nil
}

func (c *Client) cacheHit() {
	if c.col != nil {
		c.col.CacheHits.Inc()
	}
}

func (c *Client) cacheMiss() {
	if c.col != nil {
		c.col.CacheMisses.Inc()
	}
}

func (c *Client) queryResult(result string) {
	if c.col != nil {
		c.col.TimetableQueries.WithLabelValues(result).Inc()
	}
}
