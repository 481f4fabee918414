package timeoracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Default public sources, queried in order.
var DefaultSources = []string{
	"https://worldtimeapi.org/api/ip",
	"https://timeapi.io/api/Time/current/zone?timeZone=UTC",
}

// SystemSourceName selects the local clock as a source.
const SystemSourceName = "system"

var ErrNoTime = errors.New("timeoracle: response carried no usable time")

// Source returns the current time from one authority.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (time.Time, error)
}

// HTTPSource reads the time from a JSON endpoint. It understands the
// worldtimeapi "unixtime"/"utc_datetime" fields and the timeapi.io "dateTime"
// field, and falls back to the response Date header.
type HTTPSource struct {
	URL    string
	client *retryablehttp.Client
}

// NewHTTPClient returns the retrying client shared by HTTP sources.
func NewHTTPClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 1
	c.RetryWaitMin = 100 * time.Millisecond
	c.RetryWaitMax = 500 * time.Millisecond
	c.Logger = nil
	return c
}

func NewHTTPSource(url string, client *retryablehttp.Client) *HTTPSource {
	if client == nil {
		client = NewHTTPClient()
	}
	return &HTTPSource{URL: url, client: client}
}

func (s *HTTPSource) Name() string { return s.URL }

func (s *HTTPSource) Fetch(ctx context.Context) (time.Time, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeoracle: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("timeoracle: fetch %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("timeoracle: fetch %s: status %d", s.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return time.Time{}, fmt.Errorf("timeoracle: read body: %w", err)
	}

	if t, err := parseTimeBody(body); err == nil {
		return t, nil
	}
	if date := resp.Header.Get("Date"); date != "" {
		if t, err := http.ParseTime(date); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrNoTime
}

type timeBody struct {
	UnixTime    *int64 `json:"unixtime"`
	UTCDateTime string `json:"utc_datetime"`
	DateTime    string `json:"dateTime"`
}

// timeapi.io reports UTC without a zone suffix.
const zonelessLayout = "2006-01-02T15:04:05.9999999"

func parseTimeBody(body []byte) (time.Time, error) {
	var tb timeBody
	if err := json.Unmarshal(body, &tb); err != nil {
		return time.Time{}, err
	}

	switch {
	case tb.UnixTime != nil:
		return time.Unix(*tb.UnixTime, 0).UTC(), nil
	case tb.UTCDateTime != "":
		return time.Parse(time.RFC3339Nano, tb.UTCDateTime)
	case tb.DateTime != "":
		if t, err := time.Parse(time.RFC3339Nano, tb.DateTime); err == nil {
			return t, nil
		}
		return time.ParseInLocation(zonelessLayout, tb.DateTime, time.UTC)
	default:
		return time.Time{}, ErrNoTime
	}
}

// LocalSource trusts a clock directly. It is meant for offline and
// development deployments.
type LocalSource struct {
	Clock Clock
}

func (LocalSource) Name() string { return SystemSourceName }

func (s LocalSource) Fetch(context.Context) (time.Time, error) {
	if s.Clock == nil {
		return time.Now(), nil
	}
	return s.Clock.Now(), nil
}

// ParseSources turns a comma separated list of URLs and the "system" keyword
// into sources sharing client.
func ParseSources(list string, client *retryablehttp.Client) []Source {
	var sources []Source
	for _, raw := range strings.Split(list, ",") {
		raw = strings.TrimSpace(raw)
		switch raw {
		case "":
			continue
		case SystemSourceName:
			sources = append(sources, LocalSource{})
		default:
			sources = append(sources, NewHTTPSource(raw, client))
		}
	}
	return sources
}
