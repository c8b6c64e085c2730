package flagship

import (
	"fmt"
	"strings"
	"time"

	"github.com/etnz/flagship/date"
)

// Brand is the device manufacturer.
type Brand string

const (
	IPhone  Brand = "iPhone"
	Samsung Brand = "Samsung"
)

// Brands lists every supported brand, in display order.
var Brands = []Brand{IPhone, Samsung}

// Valid reports whether b is a supported brand.
func (b Brand) Valid() bool { return b == IPhone || b == Samsung }

// ParseBrand parses a brand name, ignoring case.
func ParseBrand(s string) (Brand, error) {
	for _, b := range Brands {
		if strings.EqualFold(s, string(b)) {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: unknown brand %q", ErrInvalid, s)
}

// StorageSize is the device storage capacity.
type StorageSize string

const (
	Storage64GB  StorageSize = "64Gb"
	Storage128GB StorageSize = "128Gb"
	Storage256GB StorageSize = "256Gb"
	Storage512GB StorageSize = "512Gb"
	Storage1TB   StorageSize = "1Tb"
)

// StorageSizes lists every supported capacity, smallest first.
var StorageSizes = []StorageSize{Storage64GB, Storage128GB, Storage256GB, Storage512GB, Storage1TB}

func (s StorageSize) Valid() bool {
	for _, v := range StorageSizes {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStorage parses a capacity like "128gb" or "1TB", ignoring case.
func ParseStorage(s string) (StorageSize, error) {
	for _, v := range StorageSizes {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: unknown storage %q", ErrInvalid, s)
}

// DeviceStatus is the inventory status of a device.
type DeviceStatus string

const (
	InStock DeviceStatus = "In Stock"
	Sold    DeviceStatus = "Sold"
	// Returned is accepted when decoding but never assigned: a returned
	// device goes back to InStock.
	Returned DeviceStatus = "Returned"
)

// SaleStatus is the status of a sale. Completed -> Returned is the only transition.
type SaleStatus string

const (
	Completed    SaleStatus = "Completed"
	SaleReturned SaleStatus = "Returned"
)

// Device is one physical phone tracked from purchase to sale.
type Device struct {
	ID            string       `json:"id"`
	Brand         Brand        `json:"brand"`
	Model         string       `json:"model"`
	Storage       StorageSize  `json:"storage"`
	IMEI          string       `json:"imei"`
	PurchasePrice Money        `json:"purchasePrice"`
	PurchasedFrom string       `json:"purchasedFrom"`
	PurchaseDate  date.Date    `json:"purchaseDate"`
	Status        DeviceStatus `json:"status"`
	DateAdded     time.Time    `json:"dateAdded"`
}

// Name returns a short human name like "iPhone 15 Pro 256Gb".
func (d Device) Name() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s %s", d.Brand, d.Model, d.Storage))
}

// Installment is a deferred payment plan attached to a sale.
type Installment struct {
	Months     int       `json:"months"`
	PaidAmount Money     `json:"paidAmount"`
	DueDate    time.Time `json:"dueDate"`
}

// Sale is a sale of a device, or a standalone debt when DeviceID is empty.
type Sale struct {
	ID              string       `json:"id"`
	DeviceID        string       `json:"deviceId,omitempty"`
	CustomerName    string       `json:"customerName,omitempty"`
	CustomerPhone   string       `json:"customerPhone,omitempty"`
	SalePrice       Money        `json:"salePrice"`
	Date            time.Time    `json:"date"`
	IsInstallment   bool         `json:"isInstallment"`
	InstallmentPlan *Installment `json:"installmentPlan,omitempty"`
	Status          SaleStatus   `json:"status"`
}

// Paid returns the amount paid so far on an installment sale.
func (s Sale) Paid() Money {
	if s.InstallmentPlan == nil {
		return Money{}
	}
	return s.InstallmentPlan.PaidAmount
}

// Received returns the cash the shop collected for this sale: the full price
// for a cash sale, the amount paid so far for an installment sale.
func (s Sale) Received() Money {
	if s.IsInstallment {
		return s.Paid()
	}
	return s.SalePrice
}

// Remaining returns what the customer still owes, unrounded.
func (s Sale) Remaining() Money { return s.SalePrice.Sub(s.Paid()) }

// IsDebt reports whether s is an outstanding installment sale.
//
// Membership compares whole units so that residue from partial payments does
// not keep a settled sale in the list.
func (s Sale) IsDebt() bool {
	return s.IsInstallment &&
		s.Status == Completed &&
		s.InstallmentPlan != nil &&
		s.InstallmentPlan.PaidAmount.Round(0).LessThan(s.SalePrice.Round(0))
}
