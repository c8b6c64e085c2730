package flagship

import (
	"slices"
	"strings"
)

// Language of the user interface.
type Language string

const (
	Russian Language = "ru"
	English Language = "en"
)

func (l Language) Valid() bool { return l == Russian || l == English }

// Theme of the user interface.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

func (t Theme) Valid() bool { return t == Light || t == Dark }

// Defaults for a fresh State.
var (
	DefaultExchangeRate = R(12210)
	DefaultSpread       = R(50)
	RefreshSpread       = R(40)
)

// CustomModels holds the user-defined model names offered per brand.
type CustomModels map[Brand][]string

// Has reports whether name is registered for brand.
func (c CustomModels) Has(brand Brand, name string) bool {
	return slices.Contains(c[brand], name)
}

// SyncSettings holds what the shop remembers about its remote backup.
type SyncSettings struct {
	BlobKey  string `json:"blobKey,omitempty"`  // key issued by the blob store on first push
	RepoName string `json:"repoName,omitempty"` // owner/name, GitHub backups only
	LastSync string `json:"lastSync,omitempty"` // RFC 3339
	AutoSync bool   `json:"autoSync,omitempty"`
}

// State is the single root aggregate of the shop.
//
// CashBalance is a running total maintained by commands, it is never
// recomputed from the sales.
type State struct {
	Devices      []Device     `json:"devices"`
	Sales        []Sale       `json:"sales"`
	Language     Language     `json:"language"`
	Theme        Theme        `json:"theme"`
	CashBalance  Money        `json:"cashBalance"`
	ExchangeRate Rate         `json:"exchangeRate"`
	BuyRate      Rate         `json:"buyRate"`
	SellRate     Rate         `json:"sellRate"`
	CustomModels CustomModels `json:"customModels"`
	SyncSettings SyncSettings `json:"syncSettings"`
}

// NewState returns an empty shop with default settings.
func NewState() State {
	return State{
		Devices:      []Device{},
		Sales:        []Sale{},
		Language:     Russian,
		Theme:        Dark,
		ExchangeRate: DefaultExchangeRate,
		BuyRate:      DefaultExchangeRate.Sub(DefaultSpread),
		SellRate:     DefaultExchangeRate.Add(DefaultSpread),
		CustomModels: CustomModels{IPhone: []string{}, Samsung: []string{}},
	}
}

// Clone returns a deep copy of s. Commands mutate clones only.
func (s State) Clone() State {
	c := s
	c.Devices = slices.Clone(s.Devices)
	if c.Devices == nil {
		c.Devices = []Device{}
	}
	c.Sales = make([]Sale, len(s.Sales))
	for i, sale := range s.Sales {
		if sale.InstallmentPlan != nil {
			plan := *sale.InstallmentPlan
			sale.InstallmentPlan = &plan
		}
		c.Sales[i] = sale
	}
	c.CustomModels = make(CustomModels, len(s.CustomModels))
	for b, models := range s.CustomModels {
		c.CustomModels[b] = slices.Clone(models)
	}
	return c
}

func (s State) deviceIndex(id string) int {
	return slices.IndexFunc(s.Devices, func(d Device) bool { return d.ID == id })
}

func (s State) saleIndex(id string) int {
	return slices.IndexFunc(s.Sales, func(x Sale) bool { return x.ID == id })
}

// Device returns the device with this id.
func (s State) Device(id string) (Device, bool) {
	i := s.deviceIndex(id)
	if i < 0 {
		return Device{}, false
	}
	return s.Devices[i], true
}

// Sale returns the sale with this id.
func (s State) Sale(id string) (Sale, bool) {
	i := s.saleIndex(id)
	if i < 0 {
		return Sale{}, false
	}
	return s.Sales[i], true
}

// ResolveDevice finds a device by id or by a unique id prefix.
func (s State) ResolveDevice(ref string) (Device, bool) {
	if d, ok := s.Device(ref); ok {
		return d, true
	}
	var found []Device
	for _, d := range s.Devices {
		if strings.HasPrefix(d.ID, ref) {
			found = append(found, d)
		}
	}
	if len(found) != 1 || ref == "" {
		return Device{}, false
	}
	return found[0], true
}

// ResolveSale finds a sale by id or by a unique id prefix.
func (s State) ResolveSale(ref string) (Sale, bool) {
	if x, ok := s.Sale(ref); ok {
		return x, true
	}
	var found []Sale
	for _, x := range s.Sales {
		if strings.HasPrefix(x.ID, ref) {
			found = append(found, x)
		}
	}
	if len(found) != 1 || ref == "" {
		return Sale{}, false
	}
	return found[0], true
}
