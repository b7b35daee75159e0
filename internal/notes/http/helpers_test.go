package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	notesapi "github.com/inkwell-app/inkwell/internal/notes/http"
	"github.com/inkwell-app/inkwell/internal/notes/service"
	"github.com/inkwell-app/inkwell/internal/notes/store/drivers/sqlite"
	"github.com/inkwell-app/inkwell/pkg/cachex"
	"github.com/inkwell-app/inkwell/pkg/cryptox"
	"github.com/inkwell-app/inkwell/pkg/httpx"
	"github.com/inkwell-app/inkwell/pkg/jwtx"
	"github.com/inkwell-app/inkwell/pkg/revoke"
	"github.com/inkwell-app/inkwell/pkg/slogx"

	"github.com/stretchr/testify/require"
)

const (
	testPassword    = "correct horse battery"
	testFingerprint = "device-abc123"
)

func TestMain(m *testing.M) {
	cryptox.SetPepperPath(filepath.Join(os.TempDir(), "inkwell-http-test-pepper"))

	// Every request in these tests comes from 127.0.0.1, so the
	// production per-IP limits would trip long before the suite ends.
	relaxed := httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000}
	httpx.StrictLimit = relaxed
	httpx.ModerateLimit = relaxed
	httpx.LenientLimit = relaxed
	httpx.PublicLimit = relaxed

	os.Exit(m.Run())
}

type testServer struct {
	srv      *httptest.Server
	store    *sqlite.Store
	cache    *cachex.Cache
	revoked  *revoke.Memory
	sessions *service.SessionService
}

type serverOptions struct {
	accessTTL      time.Duration
	renewThreshold time.Duration
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, serverOptions{
		accessTTL:      15 * time.Minute,
		renewThreshold: 5 * time.Minute,
	})
}

func newTestServerWith(t *testing.T, opts serverOptions) *testServer {
	t.Helper()

	st, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	access, err := jwtx.NewCodec("access-test-secret", "HS256", "inkwell", nil)
	require.NoError(t, err)
	refresh, err := jwtx.NewCodec("refresh-test-secret", "HS256", "inkwell", nil)
	require.NoError(t, err)

	revoked := revoke.NewMemory()
	sessions := &service.SessionService{
		Access:         access,
		RefreshCodec:   refresh,
		Store:          st,
		Revoked:        revoked,
		AccessTTL:      opts.accessTTL,
		RefreshTTL:     7 * 24 * time.Hour,
		RenewThreshold: opts.renewThreshold,
	}

	cache := cachex.New(time.Minute)
	t.Cleanup(cache.Stop)

	logger := slogx.New(slogx.Config{
		Service: "inkwell-test",
		Version: "test",
		Env:     "test",
		Level:   "error",
		Format:  "text",
	})

	router := notesapi.NewRouter("test", false, st, cache, logger)
	router.UserService = &service.UserService{Store: st}
	router.NotesService = &service.NotesService{Store: st}
	router.SessionService = sessions
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{srv: srv, store: st, cache: cache, revoked: revoked, sessions: sessions}
}

// do performs a JSON request. token and fingerprint are optional; body may be
// nil. The caller owns closing the response body via decode or resp.Body.Close.
func (ts *testServer) do(t *testing.T, method, path, token, fingerprint string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if fingerprint != "" {
		req.Header.Set(notesapi.HeaderFingerprint, fingerprint)
	}

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func drain(t *testing.T, resp *http.Response) {
	t.Helper()
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// errorMessage reads the error envelope and returns its message.
func errorMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	decode(t, resp, &body)
	return body.Message
}

type sessionBody struct {
	User struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
	} `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

var userSeq int

// register creates a fresh account with a unique email and returns the session.
func (ts *testServer) register(t *testing.T, fingerprint string) sessionBody {
	t.Helper()
	userSeq++

	resp := ts.do(t, http.MethodPost, "/v1/auth/register", "", fingerprint, map[string]string{
		"email":        fmt.Sprintf("user%d@example.com", userSeq),
		"display_name": fmt.Sprintf("User %d", userSeq),
		"password":     testPassword,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session sessionBody
	decode(t, resp, &session)
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.RefreshToken)
	return session
}

type notebookBody struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (ts *testServer) createNotebook(t *testing.T, token, name string) notebookBody {
	t.Helper()

	resp := ts.do(t, http.MethodPost, "/v1/notebooks", token, "", map[string]string{
		"name": name,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var nb notebookBody
	decode(t, resp, &nb)
	return nb
}

type noteBody struct {
	ID         string `json:"id"`
	NotebookID string `json:"notebook_id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	Pinned     bool   `json:"pinned"`
}

func (ts *testServer) createNote(t *testing.T, token, notebookID, title, body string) noteBody {
	t.Helper()

	resp := ts.do(t, http.MethodPost, "/v1/notebooks/"+notebookID+"/notes", token, "", map[string]string{
		"title": title,
		"body":  body,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var n noteBody
	decode(t, resp, &n)
	return n
}
