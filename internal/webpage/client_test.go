package webpage

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestFetchPlainAndGzip(t *testing.T) {
	const page = "<html><body><div>About Us: we sell shoes</div></body></html>"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != DefaultUserAgent {
			t.Errorf("unexpected user agent %q", got)
		}

		if r.URL.Path == "/gzip" {
			w.Header().Set("Content-Encoding", "gzip")
			gz := gzip.NewWriter(w)
			defer gz.Close()
			_, _ = gz.Write([]byte(page))
			return
		}

		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	client := NewClient(time.Second, zaptest.NewLogger(t))

	for _, path := range []string{"/plain", "/gzip"} {
		got, err := client.Fetch(context.Background(), server.URL+path)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", path, err)
		}
		if got != page {
			t.Fatalf("%s: unexpected body %q", path, got)
		}
	}
}

func TestFetchBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewClient(0, nil).Fetch(context.Background(), server.URL)

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status code %d", statusErr.Code)
	}
}

func TestFetchHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewClient(0, nil).Fetch(ctx, server.URL); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
