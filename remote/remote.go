// Package remote implements flagship.BlobStore on top of public web services.
package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/etnz/flagship"
)

// do sends a request and returns the response body of a 2xx answer.
// A 404 answer is reported as flagship.ErrNotFound.
func do(ctx context.Context, client *http.Client, method, url string, body []byte, header http.Header) (http.Header, []byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	if err := flagship.CheckResponse(resp); err != nil {
		var herr *flagship.HTTPError
		if errors.As(err, &herr) && herr.StatusCode == http.StatusNotFound {
			return nil, nil, fmt.Errorf("%w: %v", flagship.ErrNotFound, err)
		}
		return nil, nil, err
	}
	b, err := io.ReadAll(resp.Body)
	return resp.Header, b, err
}
