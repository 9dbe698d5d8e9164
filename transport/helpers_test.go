package transport_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-client/authapi"
	"github.com/jrsteele09/go-admin-client/integrity"
	"github.com/jrsteele09/go-admin-client/kv/kvfake"
	"github.com/jrsteele09/go-admin-client/session"
	"github.com/stretchr/testify/require"
)

type netConfig struct {
	baseURL string
}

func (c netConfig) GetAPIBaseURL() string            { return c.baseURL }
func (c netConfig) GetConnectTimeout() time.Duration { return 5 * time.Second }
func (c netConfig) GetReadTimeout() time.Duration    { return 5 * time.Second }
func (c netConfig) GetWriteTimeout() time.Duration   { return 5 * time.Second }
func (c netConfig) GetTokenIssuer() string           { return "" }

type verdictFunc func() integrity.Verdict

func (f verdictFunc) Check() integrity.Verdict { return f() }

var trusted = verdictFunc(func() integrity.Verdict { return integrity.Verdict{} })

var rooted = verdictFunc(func() integrity.Verdict {
	return integrity.Verdict{Rooted: true, Emulator: true, Reasons: []string{"device is rooted", "running on an emulator"}}
})

// backend accepts one access token at a time on /api/items and rotates A1/R1 to A2/R2 on refresh
type backend struct {
	server *httptest.Server

	mu         sync.Mutex
	validToken string

	refreshStatus int
	refreshDelay  time.Duration

	refreshes atomic.Int32
	itemHits  atomic.Int32
	bodies    chan string
}

func newBackend(t *testing.T) *backend {
	b := &backend{
		validToken: "A2",
		bodies:     make(chan string, 16),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.refreshes.Add(1)
		time.Sleep(b.refreshDelay)

		if r.Header.Get("Authorization") != "" {
			t.Errorf("refresh call carried a bearer: %q", r.Header.Get("Authorization"))
		}

		var req authapi.RefreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		if b.refreshStatus != 0 {
			writeJSON(w, b.refreshStatus, authapi.MessageResponse{Message: "refresh token expired"})
			return
		}
		if req.RefreshToken != "R1" {
			writeJSON(w, http.StatusUnauthorized, authapi.MessageResponse{Message: "unknown refresh token"})
			return
		}
		writeJSON(w, http.StatusOK, authapi.TokenResponse{AccessToken: "A2", RefreshToken: "R2", Username: "admin"})
	})
	mux.HandleFunc("/api/items", func(w http.ResponseWriter, r *http.Request) {
		b.itemHits.Add(1)

		b.mu.Lock()
		valid := "Bearer " + b.validToken
		b.mu.Unlock()

		body, _ := io.ReadAll(r.Body)
		if r.Header.Get("Authorization") != valid {
			writeJSON(w, http.StatusUnauthorized, authapi.MessageResponse{Error: "token expired"})
			return
		}
		if len(body) > 0 {
			b.bodies <- string(body)
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	b.server = httptest.NewServer(mux)
	t.Cleanup(b.server.Close)
	return b
}

func (b *backend) url(path string) string {
	return b.server.URL + "/api/" + path
}

func (b *backend) config() netConfig {
	return netConfig{baseURL: b.server.URL + "/api/"}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func loggedIn(t *testing.T) *session.Store {
	t.Helper()
	store := session.NewStore(kvfake.NewStore())
	require.NoError(t, store.Persist(session.Grant{AccessToken: "A1", RefreshToken: "R1", Username: "admin"}))
	return store
}
