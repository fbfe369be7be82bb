package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// relayFor turns a test server into a relay candidate wrapping the primary.
func relayFor(server *httptest.Server) string {
	return server.URL + "/?url="
}

func TestFetcher_Do(t *testing.T) {
	ctx := context.Background()

	t.Run("first candidate success short-circuits", func(t *testing.T) {
		var relayHit bool
		primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			w.Write([]byte(`[{"project_id":1,"stars":5}]`))
		}))
		defer primary.Close()
		relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			relayHit = true
			w.Write([]byte(`[]`))
		}))
		defer relay.Close()

		f := NewFetcher(NewResolver(ResolverConfig{BaseURL: primary.URL, Relays: []string{relayFor(relay)}}), time.Second)

		raw, err := f.Do(ctx, http.MethodGet, "ratings", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"project_id":1,"stars":5}]`, string(raw))
		assert.False(t, relayHit)
	})

	t.Run("non-2xx falls through to the next candidate in order", func(t *testing.T) {
		var mu sync.Mutex
		var order []string
		primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			order = append(order, "primary")
			mu.Unlock()
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer primary.Close()
		relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			order = append(order, "relay")
			mu.Unlock()
			w.Write([]byte(`[]`))
		}))
		defer relay.Close()

		f := NewFetcher(NewResolver(ResolverConfig{BaseURL: primary.URL, Relays: []string{relayFor(relay)}}), time.Second)

		raw, err := f.Do(ctx, http.MethodGet, "ratings", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(raw))
		assert.Equal(t, []string{"primary", "relay"}, order)
	})

	t.Run("timeout is just another failed attempt", func(t *testing.T) {
		slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
			w.Write([]byte(`[]`))
		}))
		defer slow.Close()
		relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"project_id":2,"stars":3}]`))
		}))
		defer relay.Close()

		f := NewFetcher(NewResolver(ResolverConfig{BaseURL: slow.URL, Relays: []string{relayFor(relay)}}), 100*time.Millisecond)

		raw, err := f.Do(ctx, http.MethodGet, "ratings", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `[{"project_id":2,"stars":3}]`, string(raw))
	})

	t.Run("unparsable 2xx body on a read tries the next candidate", func(t *testing.T) {
		garbled := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>proxy error</html>`))
		}))
		defer garbled.Close()
		relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer relay.Close()

		f := NewFetcher(NewResolver(ResolverConfig{BaseURL: garbled.URL, Relays: []string{relayFor(relay)}}), time.Second)

		raw, err := f.Do(ctx, http.MethodGet, "ratings", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(raw))
	})

	t.Run("unparsable 2xx body on a write synthesizes from request data", func(t *testing.T) {
		accepted := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`OK`))
		}))
		defer accepted.Close()

		f := NewFetcher(NewResolver(ResolverConfig{BaseURL: accepted.URL}), time.Second)

		body := map[string]interface{}{"project_id": 1, "user_id": "user_abc", "stars": 4, "comment": ""}
		raw, err := f.Do(ctx, http.MethodPost, "ratings", body)
		require.NoError(t, err)

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.EqualValues(t, 1, got["project_id"])
		assert.Equal(t, "user_abc", got["user_id"])
	})

	t.Run("exhaustion returns AllEndpointsFailed", func(t *testing.T) {
		down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer down.Close()

		f := NewFetcher(NewResolver(ResolverConfig{BaseURL: down.URL, Relays: []string{relayFor(down)}}), time.Second)

		_, err := f.Do(ctx, http.MethodGet, "ratings", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAllEndpointsFailed)
	})

	t.Run("unreachable host counts as a failed attempt", func(t *testing.T) {
		relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer relay.Close()

		f := NewFetcher(NewResolver(ResolverConfig{BaseURL: "http://127.0.0.1:1", Relays: []string{relayFor(relay)}}), time.Second)

		raw, err := f.Do(ctx, http.MethodGet, "ratings", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(raw))
	})
}
