package flagship

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/PaesslerAG/jsonpath"
)

const (
	// DefaultRatesURL is a free endpoint returning rates against USD.
	DefaultRatesURL = "https://open.er-api.com/v6/latest/USD"
	// DefaultRateCurrency is the local currency the shop quotes rates in.
	DefaultRateCurrency = "UZS"
)

// RateSource fetches the latest exchange rate.
type RateSource interface {
	LatestRate(ctx context.Context) (Rate, error)
}

// HTTPRates reads a rate from a JSON endpoint.
//
//	{
//	    "result": "success",
//	    "base_code": "USD",
//	    "rates": {
//	        "USD": 1,
//	        "UZS": 12650.5,
//	        ...
//	    }
//	}
type HTTPRates struct {
	Client   *http.Client
	URL      string // defaults to DefaultRatesURL
	Currency string // defaults to DefaultRateCurrency
	Path     string // jsonpath to the rate, defaults to "$.rates.<Currency>"
}

func (h HTTPRates) LatestRate(ctx context.Context) (Rate, error) {
	addr, cur, path := h.URL, h.Currency, h.Path
	if addr == "" {
		addr = DefaultRatesURL
	}
	if cur == "" {
		cur = DefaultRateCurrency
	}
	if path == "" {
		path = "$.rates." + cur
	}

	var jobj any
	if err := jwget(ctx, h.Client, addr, &jobj); err != nil {
		return Rate{}, fmt.Errorf("error in wget %q: %w", cur, err)
	}
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return Rate{}, fmt.Errorf("error parsing %q: %q %w", cur, path, err)
	}
	// jsonpath may return a list of one answer: keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}

	var r Rate
	switch v := jval.(type) {
	case float64:
		r = R(v)
	case string:
		if r, err = ParseRate(v); err != nil {
			return Rate{}, fmt.Errorf("error parsing %q: %q is not a number", cur, v)
		}
	case json.Number:
		if r, err = ParseRate(v.String()); err != nil {
			return Rate{}, fmt.Errorf("error parsing %q: %q is not a number", cur, v)
		}
	default:
		return Rate{}, fmt.Errorf("error parsing %q: %q %s %v", cur, path, "not a number", jval)
	}
	if !r.IsPositive() {
		return Rate{}, fmt.Errorf("empty rate for %s: %v", cur, r)
	}
	return r, nil
}
