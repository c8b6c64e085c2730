package flagship

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/latest/USD":
			w.Write([]byte(`{"result":"success","base_code":"USD","rates":{"USD":1,"UZS":12650.42,"EUR":0.92}}`))
		case "/custom":
			w.Write([]byte(`{"data":{"rate":"12700"}}`))
		default:
			http.Error(w, "no such page", http.StatusNotFound)
		}
	}))
	defer srv.Close()
	ctx := context.Background()

	t.Run("default path", func(t *testing.T) {
		r, err := HTTPRates{Client: srv.Client(), URL: srv.URL + "/latest/USD"}.LatestRate(ctx)
		require.NoError(t, err)
		assert.True(t, r.Equal(R(12650.42)), "got %s", r)
	})

	t.Run("other currency", func(t *testing.T) {
		r, err := HTTPRates{URL: srv.URL + "/latest/USD", Currency: "EUR"}.LatestRate(ctx)
		require.NoError(t, err)
		assert.True(t, r.Equal(R(0.92)), "got %s", r)
	})

	t.Run("custom path and string value", func(t *testing.T) {
		r, err := HTTPRates{URL: srv.URL + "/custom", Path: "$.data.rate"}.LatestRate(ctx)
		require.NoError(t, err)
		assert.True(t, r.Equal(R(12700)), "got %s", r)
	})

	t.Run("http error", func(t *testing.T) {
		_, err := HTTPRates{URL: srv.URL + "/nope"}.LatestRate(ctx)
		var herr *HTTPError
		require.ErrorAs(t, err, &herr)
		assert.Equal(t, http.StatusNotFound, herr.StatusCode)
	})

	t.Run("missing currency", func(t *testing.T) {
		_, err := HTTPRates{URL: srv.URL + "/latest/USD", Currency: "XXX"}.LatestRate(ctx)
		assert.Error(t, err)
	})
}
