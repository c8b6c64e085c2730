package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/etnz/flagship"
	"github.com/etnz/flagship/date"
	"github.com/gorilla/mux"
)

// dispatch applies cmd and answers with the new state.
func (s *server) dispatch(w http.ResponseWriter, r *http.Request, status int, cmd flagship.Command) {
	st, err := s.shop.Dispatch(r.Context(), cmd)
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, st)
}

func (s *server) snapshot(w http.ResponseWriter, r *http.Request) (flagship.State, bool) {
	st, err := s.shop.Snapshot(r.Context())
	if err != nil {
		writeError(w, err, http.StatusInternalServerError)
		return st, false
	}
	return st, true
}

func (s *server) getState(w http.ResponseWriter, r *http.Request) {
	if st, ok := s.snapshot(w, r); ok {
		writeJSON(w, http.StatusOK, st)
	}
}

func (s *server) getSummary(w http.ResponseWriter, r *http.Request) {
	if st, ok := s.snapshot(w, r); ok {
		writeJSON(w, http.StatusOK, flagship.Summarize(st))
	}
}

func (s *server) getAnalytics(w http.ResponseWriter, r *http.Request) {
	st, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	if mux.Vars(r)["period"] == "daily" {
		writeJSON(w, http.StatusOK, flagship.DailyProfit(st, s.now()))
		return
	}
	writeJSON(w, http.StatusOK, flagship.MonthlyProfit(st, s.now()))
}

// nonNil keeps empty lists as [] in responses.
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

func (s *server) getDevices(w http.ResponseWriter, r *http.Request) {
	st, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Has("all") {
		writeJSON(w, http.StatusOK, st.Devices)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(flagship.SearchStock(st.Devices, r.URL.Query().Get("q"))))
}

type deviceRequest struct {
	ID            string               `json:"id"`
	Brand         flagship.Brand       `json:"brand"`
	Model         string               `json:"model"`
	Storage       flagship.StorageSize `json:"storage"`
	IMEI          string               `json:"imei"`
	PurchasePrice flagship.Money       `json:"purchasePrice"`
	PurchasedFrom string               `json:"purchasedFrom"`
	PurchaseDate  date.Date            `json:"purchaseDate"`
}

func (s *server) addDevice(w http.ResponseWriter, r *http.Request) {
	var req deviceRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, http.StatusCreated, flagship.AddDevice{
		ID:            req.ID,
		Brand:         req.Brand,
		Model:         req.Model,
		Storage:       req.Storage,
		IMEI:          req.IMEI,
		PurchasePrice: req.PurchasePrice,
		PurchasedFrom: req.PurchasedFrom,
		PurchaseDate:  req.PurchaseDate,
		At:            s.now(),
	})
}

func (s *server) deleteDevice(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, http.StatusOK, flagship.DeleteDevice{DeviceID: mux.Vars(r)["id"]})
}

func (s *server) getSales(w http.ResponseWriter, r *http.Request) {
	st, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	sales := st.Sales
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && limit < len(sales) {
		sales = sales[:limit]
	}
	writeJSON(w, http.StatusOK, sales)
}

type saleRequest struct {
	DeviceID      string         `json:"deviceId"`
	SalePrice     flagship.Money `json:"salePrice"`
	IsInstallment bool           `json:"isInstallment"`
	CustomerName  string         `json:"customerName"`
	CustomerPhone string         `json:"customerPhone"`
	Months        int            `json:"months"`
	PaidAmount    flagship.Money `json:"paidAmount"`
}

func (s *server) sellDevice(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, http.StatusCreated, flagship.SellDevice{
		DeviceID:      req.DeviceID,
		SalePrice:     req.SalePrice,
		IsInstallment: req.IsInstallment,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Months:        req.Months,
		PaidAmount:    req.PaidAmount,
		At:            s.now(),
	})
}

func (s *server) returnSale(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	s.dispatch(w, r, http.StatusOK, flagship.ReturnSale{SaleID: mux.Vars(r)["id"]})
}

type amountRequest struct {
	Amount *flagship.Money `json:"amount"`
}

// amount returns the requested amount, which is required.
func (r amountRequest) amount() (flagship.Money, error) {
	if r.Amount == nil {
		return flagship.Money{}, fmt.Errorf("%w: amount is required", flagship.ErrInvalid)
	}
	return *r.Amount, nil
}

func (s *server) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	amount, err := req.amount()
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, http.StatusOK, flagship.RecordPayment{SaleID: mux.Vars(r)["id"], Amount: amount})
}

func (s *server) getDebtors(w http.ResponseWriter, r *http.Request) {
	if st, ok := s.snapshot(w, r); ok {
		writeJSON(w, http.StatusOK, nonNil(flagship.Debtors(st.Sales)))
	}
}

type debtorRequest struct {
	CustomerName  string         `json:"customerName"`
	CustomerPhone string         `json:"customerPhone"`
	Amount        flagship.Money `json:"amount"`
	PaidAmount    flagship.Money `json:"paidAmount"`
	Months        int            `json:"months"`
}

func (s *server) addDebtor(w http.ResponseWriter, r *http.Request) {
	var req debtorRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, http.StatusCreated, flagship.AddDebtor{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		SalePrice:     req.Amount,
		PaidAmount:    req.PaidAmount,
		Months:        req.Months,
		At:            s.now(),
	})
}

func (s *server) setCash(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	amount, err := req.amount()
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, http.StatusOK, flagship.SetCash{Amount: amount})
}

type modelRequest struct {
	Brand flagship.Brand `json:"brand"`
	Name  string         `json:"name"`
}

func (s *server) addModel(w http.ResponseWriter, r *http.Request) {
	var req modelRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, http.StatusCreated, flagship.AddCustomModel{Brand: req.Brand, Name: req.Name})
}

func (s *server) removeModel(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.dispatch(w, r, http.StatusOK, flagship.RemoveCustomModel{Brand: flagship.Brand(vars["brand"]), Name: vars["name"]})
}

type ratesRequest struct {
	ExchangeRate flagship.Rate `json:"exchangeRate"`
	BuyRate      flagship.Rate `json:"buyRate"`
	SellRate     flagship.Rate `json:"sellRate"`
}

func (s *server) setRates(w http.ResponseWriter, r *http.Request) {
	var req ratesRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, http.StatusOK, flagship.SetRates{Exchange: req.ExchangeRate, Buy: req.BuyRate, Sell: req.SellRate})
}

func (s *server) refreshRate(w http.ResponseWriter, r *http.Request) {
	st, err := s.shop.RefreshRate(r.Context())
	if err != nil {
		writeError(w, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type settingsRequest struct {
	Language flagship.Language `json:"language"`
	Theme    flagship.Theme    `json:"theme"`
}

func (s *server) setPreferences(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, http.StatusOK, flagship.SetPreferences{Language: req.Language, Theme: req.Theme})
}

func (s *server) configureSync(w http.ResponseWriter, r *http.Request) {
	var req flagship.SyncSettings
	if err := decode(r, &req); err != nil {
		writeError(w, err, http.StatusBadRequest)
		return
	}
	s.dispatch(w, r, http.StatusOK, flagship.ConfigureSync{Settings: req})
}

func (s *server) push(w http.ResponseWriter, r *http.Request) {
	if err := s.shop.Push(r.Context()); err != nil {
		writeError(w, err, http.StatusBadGateway)
		return
	}
	s.getState(w, r)
}

type pullRequest struct {
	Key string `json:"key"`
}

func (s *server) pull(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	var req pullRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, err, http.StatusBadRequest)
			return
		}
	}
	st, err := s.shop.Pull(r.Context(), req.Key)
	if err != nil {
		writeError(w, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type adviceResponse struct {
	Advice string `json:"advice"`
}

func (s *server) advise(w http.ResponseWriter, r *http.Request) {
	text, err := s.shop.Advise(r.Context())
	if err != nil {
		writeError(w, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, adviceResponse{Advice: text})
}

func (s *server) getNotices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.shop.Notices()))
}
