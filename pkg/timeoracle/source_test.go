package timeoracle_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/keyward/pkg/timeoracle"
	"github.com/stretchr/testify/require"
)

func TestHTTPSourceFormats(t *testing.T) {
	t.Parallel()

	want := time.Date(2026, 5, 1, 12, 34, 56, 0, time.UTC)

	cases := map[string]http.HandlerFunc{
		"worldtimeapi unixtime": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"unixtime":1777638896,"utc_datetime":"ignored"}`))
		},
		"worldtimeapi utc_datetime": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"utc_datetime":"2026-05-01T12:34:56+00:00"}`))
		},
		"timeapi dateTime": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"year":2026,"dateTime":"2026-05-01T12:34:56"}`))
		},
		"date header": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Date", want.Format(http.TimeFormat))
			_, _ = w.Write([]byte(`<html>not json</html>`))
		},
	}

	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()

			src := timeoracle.NewHTTPSource(srv.URL, nil)
			got, err := src.Fetch(context.Background())
			require.NoError(t, err)
			require.True(t, want.Equal(got), "got %s", got)
		})
	}
}

func TestHTTPSourceErrors(t *testing.T) {
	t.Parallel()

	t.Run("non 200", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := timeoracle.NewHTTPSource(srv.URL, nil).Fetch(context.Background())
		require.Error(t, err)
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := timeoracle.NewHTTPSource(url, nil).Fetch(context.Background())
		require.Error(t, err)
	})
}

func TestParseSources(t *testing.T) {
	t.Parallel()

	sources := timeoracle.ParseSources(" https://a.example/time , system,,https://b.example ", nil)
	require.Len(t, sources, 3)
	require.Equal(t, "https://a.example/time", sources[0].Name())
	require.Equal(t, timeoracle.SystemSourceName, sources[1].Name())
	require.Equal(t, "https://b.example", sources[2].Name())

	local := timeoracle.LocalSource{}
	got, err := local.Fetch(context.Background())
	require.NoError(t, err)
	require.WithinDuration(t, time.Now(), got, time.Second)
}
