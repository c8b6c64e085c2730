package remote

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/etnz/flagship"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContents mimics the github contents api for a single repository.
type fakeContents struct {
	mu    sync.Mutex
	files map[string]string // path to raw content
	shas  map[string]string
	puts  int
}

func (f *fakeContents) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.Header.Get("Authorization") != "Bearer secret" {
		http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
		return
	}
	path, ok := strings.CutPrefix(r.URL.Path, "/repos/shop/backup/contents/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		content, ok := f.files[path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		enc := base64.StdEncoding.EncodeToString([]byte(content))
		// wrap like the real api does
		var wrapped strings.Builder
		for len(enc) > 60 {
			wrapped.WriteString(enc[:60] + "\n")
			enc = enc[60:]
		}
		wrapped.WriteString(enc)
		json.NewEncoder(w).Encode(map[string]string{"sha": f.shas[path], "content": wrapped.String(), "encoding": "base64"})
	case http.MethodPut:
		var req struct {
			Message, Content, SHA string
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if _, exists := f.files[path]; exists && req.SHA != f.shas[path] {
			http.Error(w, `{"message":"sha does not match"}`, http.StatusConflict)
			return
		}
		b, err := base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.puts++
		f.files[path] = string(b)
		f.shas[path] = strings.Repeat("a", f.puts)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}
}

func newFakeGitHub(t *testing.T) (*fakeContents, GitHub) {
	fake := &fakeContents{files: map[string]string{}, shas: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, GitHub{Client: srv.Client(), BaseURL: srv.URL, Token: " secret ", Repo: "shop/backup"}
}

func TestGitHub(t *testing.T) {
	ctx := context.Background()
	fake, gh := newFakeGitHub(t)
	payload := `{"devices":[],"note":"` + strings.Repeat("x", 200) + `"}`

	key, err := gh.Create(ctx, []byte(payload))
	require.NoError(t, err)
	assert.Equal(t, DefaultGitHubPath, key)

	got, err := gh.Fetch(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))

	require.NoError(t, gh.Update(ctx, key, []byte(`{"cashBalance":5}`)))
	assert.Equal(t, 2, fake.puts)
	assert.Equal(t, `{"cashBalance":5}`, fake.files[key])

	_, err = gh.Create(ctx, []byte(`{}`))
	assert.NoError(t, err, "creating over an existing file overwrites it")

	err = gh.Update(ctx, "other.json", []byte(`{}`))
	assert.ErrorIs(t, err, flagship.ErrNotFound)
}

func TestGitHub_Misconfigured(t *testing.T) {
	ctx := context.Background()
	_, gh := newFakeGitHub(t)

	bad := gh
	bad.Repo = "backup"
	_, err := bad.Create(ctx, []byte(`{}`))
	assert.ErrorIs(t, err, flagship.ErrNotConfigured)

	bad = gh
	bad.Token = "wrong"
	_, err = bad.Fetch(ctx, DefaultGitHubPath)
	var herr *flagship.HTTPError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, http.StatusUnauthorized, herr.StatusCode)
}
