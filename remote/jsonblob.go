package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"
)

// DefaultJSONBlobURL is the public jsonblob.com API.
const DefaultJSONBlobURL = "https://jsonblob.com/api/jsonBlob"

// JSONBlob stores snapshots on a jsonblob.com compatible service. Blobs are
// anonymous: whoever knows the key can read and overwrite them.
type JSONBlob struct {
	Client  *http.Client
	BaseURL string // defaults to DefaultJSONBlobURL
}

func (j JSONBlob) base() string {
	if j.BaseURL == "" {
		return DefaultJSONBlobURL
	}
	return strings.TrimSuffix(j.BaseURL, "/")
}

func (j JSONBlob) blobURL(key string) string { return j.base() + "/" + url.PathEscape(key) }

// Create posts data as a new blob. The key is read from the Location header,
// or from an "id" field of the response when the header is missing.
func (j JSONBlob) Create(ctx context.Context, data []byte) (string, error) {
	header, body, err := do(ctx, j.Client, http.MethodPost, j.base(), data, nil)
	if err != nil {
		return "", err
	}
	if loc := header.Get("Location"); loc != "" {
		if u, err := url.Parse(loc); err == nil {
			loc = u.Path
		}
		key := path.Base(loc)
		log.WithField("key", key).Info("created remote blob")
		return key, nil
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		return "", errors.New("blob store did not return a key")
	}
	log.WithField("key", created.ID).Info("created remote blob")
	return created.ID, nil
}

func (j JSONBlob) Update(ctx context.Context, key string, data []byte) error {
	_, _, err := do(ctx, j.Client, http.MethodPut, j.blobURL(key), data, nil)
	return err
}

func (j JSONBlob) Fetch(ctx context.Context, key string) ([]byte, error) {
	_, body, err := do(ctx, j.Client, http.MethodGet, j.blobURL(key), nil, nil)
	return body, err
}
