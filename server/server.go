// Package server exposes a shop over a JSON http api.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/etnz/flagship"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// Shop is the running shop served by the api. *flagship.Shop implements it.
type Shop interface {
	Dispatch(ctx context.Context, cmd flagship.Command) (flagship.State, error)
	Snapshot(ctx context.Context) (flagship.State, error)
	RefreshRate(ctx context.Context) (flagship.State, error)
	Push(ctx context.Context) error
	Pull(ctx context.Context, key string) (flagship.State, error)
	Advise(ctx context.Context) (string, error)
	Notices() []flagship.Notice
}

type server struct {
	shop Shop
	now  func() time.Time
}

// Router returns the api handler, every route under /api/v1.
func Router(shop Shop, now func() time.Time) http.Handler {
	if now == nil {
		now = time.Now
	}
	s := &server{shop: shop, now: now}
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/state", s.getState).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.getSummary).Methods(http.MethodGet)
	api.HandleFunc("/analytics/{period:monthly|daily}", s.getAnalytics).Methods(http.MethodGet)

	api.HandleFunc("/devices", s.getDevices).Methods(http.MethodGet)
	api.HandleFunc("/devices", s.addDevice).Methods(http.MethodPost)
	api.HandleFunc("/devices/{id}", s.deleteDevice).Methods(http.MethodDelete)

	api.HandleFunc("/sales", s.getSales).Methods(http.MethodGet)
	api.HandleFunc("/sales", s.sellDevice).Methods(http.MethodPost)
	api.HandleFunc("/sales/{id}/return", s.returnSale).Methods(http.MethodPost)
	api.HandleFunc("/sales/{id}/payments", s.recordPayment).Methods(http.MethodPost)

	api.HandleFunc("/debtors", s.getDebtors).Methods(http.MethodGet)
	api.HandleFunc("/debtors", s.addDebtor).Methods(http.MethodPost)

	api.HandleFunc("/cash", s.setCash).Methods(http.MethodPut)
	api.HandleFunc("/models", s.addModel).Methods(http.MethodPost)
	api.HandleFunc("/models/{brand}/{name}", s.removeModel).Methods(http.MethodDelete)

	api.HandleFunc("/rates", s.setRates).Methods(http.MethodPut)
	api.HandleFunc("/rates/refresh", s.refreshRate).Methods(http.MethodPost)
	api.HandleFunc("/settings", s.setPreferences).Methods(http.MethodPut)

	api.HandleFunc("/sync", s.configureSync).Methods(http.MethodPut)
	api.HandleFunc("/sync/push", s.push).Methods(http.MethodPost)
	api.HandleFunc("/sync/pull", s.pull).Methods(http.MethodPost)

	api.HandleFunc("/advice", s.advise).Methods(http.MethodPost)
	api.HandleFunc("/notices", s.getNotices).Methods(http.MethodGet)

	return logMiddleware(r)
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.WithFields(log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
		}).Info("got a new request")
		h.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(b); err != nil {
		log.WithField("err", err).Error("write response status")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps err to a status code. fallback is used for errors that are
// not one of the flagship sentinels.
func writeError(w http.ResponseWriter, err error, fallback int) {
	status := fallback
	switch {
	case errors.Is(err, flagship.ErrInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, flagship.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, flagship.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, flagship.ErrNotConfigured):
		status = http.StatusNotImplemented
	case errors.Is(err, flagship.ErrClosed):
		status = http.StatusServiceUnavailable
	}
	if status >= 500 {
		log.WithError(err).Error("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decode reads a json body into v. Unknown fields are refused.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(flagship.ErrInvalid, err)
	}
	return nil
}

// confirmed reports whether a destructive request carries confirm=true.
func confirmed(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("confirm") == "true" {
		return true
	}
	writeJSON(w, http.StatusPreconditionRequired, errorResponse{Error: "this overwrites data, repeat the request with confirm=true"})
	return false
}
