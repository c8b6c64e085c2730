package remote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/etnz/flagship"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJSONBlob mimics the jsonblob.com api.
type fakeJSONBlob struct {
	mu       sync.Mutex
	blobs    map[string]string
	location bool
}

func (f *fakeJSONBlob) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, _ := io.ReadAll(r.Body)
	key := strings.TrimPrefix(r.URL.Path, "/api/jsonBlob/")
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/jsonBlob":
		key = "1234567890"
		f.blobs[key] = string(body)
		if f.location {
			w.Header().Set("Location", "http://jsonblob.example/api/jsonBlob/"+key)
			w.WriteHeader(http.StatusCreated)
			return
		}
		w.Write([]byte(`{"id":"` + key + `"}`))
	case r.Method == http.MethodPut:
		if _, ok := f.blobs[key]; !ok {
			http.NotFound(w, r)
			return
		}
		f.blobs[key] = string(body)
		w.Write(body)
	case r.Method == http.MethodGet:
		b, ok := f.blobs[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(b))
	default:
		http.Error(w, "unexpected", http.StatusBadRequest)
	}
}

func TestJSONBlob(t *testing.T) {
	for _, location := range []bool{true, false} {
		name := "id in body"
		if location {
			name = "id in location"
		}
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			srv := httptest.NewServer(&fakeJSONBlob{blobs: map[string]string{}, location: location})
			defer srv.Close()
			blobs := JSONBlob{Client: srv.Client(), BaseURL: srv.URL + "/api/jsonBlob"}

			key, err := blobs.Create(ctx, []byte(`{"cashBalance":1}`))
			require.NoError(t, err)
			assert.Equal(t, "1234567890", key)

			require.NoError(t, blobs.Update(ctx, key, []byte(`{"cashBalance":2}`)))
			got, err := blobs.Fetch(ctx, key)
			require.NoError(t, err)
			assert.JSONEq(t, `{"cashBalance":2}`, string(got))

			err = blobs.Update(ctx, "missing", []byte(`{}`))
			assert.ErrorIs(t, err, flagship.ErrNotFound)
			_, err = blobs.Fetch(ctx, "missing")
			assert.ErrorIs(t, err, flagship.ErrNotFound)
		})
	}
}

func TestJSONBlob_PushPull(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(&fakeJSONBlob{blobs: map[string]string{}, location: true})
	defer srv.Close()
	blobs := JSONBlob{Client: srv.Client(), BaseURL: srv.URL + "/api/jsonBlob/"}

	st, err := flagship.Apply(flagship.NewState(), flagship.SetCash{Amount: flagship.M(250)})
	require.NoError(t, err)
	synced, err := flagship.Push(ctx, blobs, st, time.Now())
	require.NoError(t, err)

	restore, err := flagship.Pull(ctx, blobs, synced.Key)
	require.NoError(t, err)
	assert.True(t, restore.Snapshot.CashBalance.Equal(flagship.M(250)))
}
