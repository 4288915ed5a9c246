// Package testutil provides common utility functions for testing.
package testutil

import (
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// FeedServer is a fake rate feed that records how often it was hit.
type FeedServer struct {
	*httptest.Server
	hits atomic.Int64
}

// Hits returns the number of requests served so far.
func (f *FeedServer) Hits() int64 {
	return f.hits.Load()
}

// NewFeedServer starts a rate feed answering every request with status and
// body. The server is closed when the test ends.
func NewFeedServer(t testing.TB, status int, body string) *FeedServer {
	t.Helper()
	return newFeedServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

// NewSlowFeedServer starts a rate feed that waits for delay, or for the
// client to give up, before answering with body.
func NewSlowFeedServer(t testing.TB, delay time.Duration, body string) *FeedServer {
	t.Helper()
	return newFeedServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
		_, _ = w.Write([]byte(body))
	})
}

func newFeedServer(t testing.TB, handler http.HandlerFunc) *FeedServer {
	feed := &FeedServer{}
	feed.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		feed.hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(feed.Close)
	return feed
}

// ClosedURL returns the URL of a server that has already shut down, so any
// request to it fails at the transport level.
func ClosedURL(t testing.TB) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

// SilentAddr returns the address of a TCP listener that accepts connections
// and never writes to them. Everything is closed when the test ends.
func SilentAddr(t testing.TB) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	var mu sync.Mutex
	var conns []net.Conn
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()

	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, conn := range conns {
			_ = conn.Close()
		}
	})
	return ln.Addr().String()
}
