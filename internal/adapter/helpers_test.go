package adapter

import (
	"io"
	"log/slog"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/amishk599/offerhound/internal/model"
)

// roundTripFunc adapts a function into an http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// rewriteClient sends every request to srv regardless of the requested host,
// so sources can keep their production base URLs under test.
func rewriteClient(srv *httptest.Server) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
}

// collect runs src and gathers everything it emits.
func collect(ctx context.Context, src model.Source, strategy model.SearchStrategy) ([]model.RawOffer, error) {
	var (
		mu  sync.Mutex
		out []model.RawOffer
	)
	err := src.Fetch(ctx, strategy, func(r model.RawOffer) {
		mu.Lock()
		out = append(out, r)
		mu.Unlock()
	})
	return out, err
}

func serveString(contentType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Write([]byte(body))
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
