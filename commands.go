package flagship

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/etnz/flagship/date"
	"github.com/google/uuid"
)

// CommandType is a typed string for identifying commands.
type CommandType string

// Command types.
const (
	CmdAddDevice      CommandType = "add-device"
	CmdSellDevice     CommandType = "sell-device"
	CmdReturnSale     CommandType = "return-sale"
	CmdRecordPayment  CommandType = "record-payment"
	CmdAddDebtor      CommandType = "add-debtor"
	CmdDeleteDevice   CommandType = "delete-device"
	CmdSetCash        CommandType = "set-cash"
	CmdAddModel       CommandType = "add-model"
	CmdRemoveModel    CommandType = "remove-model"
	CmdSetRates       CommandType = "set-rates"
	CmdUpdateRate     CommandType = "update-rate"
	CmdSetPreferences CommandType = "set-preferences"
	CmdConfigureSync  CommandType = "configure-sync"
	CmdRestore        CommandType = "restore"
	CmdMarkSynced     CommandType = "mark-synced"
)

// Command is an atomic transformation of the State.
//
// Apply never modifies its argument: it either returns a new State with the
// whole effect applied, or the unchanged State and an error.
type Command interface {
	What() CommandType
	Apply(State) (State, error)
}

// Apply applies cmds in order. If any fails, st is returned unchanged.
func Apply(st State, cmds ...Command) (State, error) {
	next := st
	for _, c := range cmds {
		var err error
		applied, err := c.Apply(next)
		if errors.Is(err, ErrUnchanged) {
			continue
		}
		if err != nil {
			return st, fmt.Errorf("%s: %w", c.What(), err)
		}
		next = applied
	}
	return next, nil
}

// DueAfter is the delay between a sale and its first installment due date.
const DueAfter = 30 * date.Day

func newID() string { return uuid.NewString() }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// defaultMonths fixes an unset plan length to a single month.
func defaultMonths(m int) int {
	if m == 0 {
		return 1
	}
	return m
}

// AddDevice records a purchased device in stock.
type AddDevice struct {
	ID            string // optional, generated when empty
	Brand         Brand
	Model         string
	Storage       StorageSize
	IMEI          string
	PurchasePrice Money
	PurchasedFrom string
	PurchaseDate  date.Date // defaults to the day of At
	At            time.Time // defaults to now
}

func (AddDevice) What() CommandType { return CmdAddDevice }

// Validate checks every required field and reports all failures at once.
func (c AddDevice) Validate() error {
	var errs error
	if !c.Brand.Valid() {
		errs = errors.Join(errs, invalid("unknown brand %q", c.Brand))
	}
	if strings.TrimSpace(c.Model) == "" {
		errs = errors.Join(errs, invalid("model is missing"))
	}
	if !c.Storage.Valid() {
		errs = errors.Join(errs, invalid("unknown storage %q", c.Storage))
	}
	if strings.TrimSpace(c.IMEI) == "" {
		errs = errors.Join(errs, invalid("imei is missing"))
	}
	if c.PurchasePrice.IsNegative() {
		errs = errors.Join(errs, invalid("purchase price must not be negative, got %s", c.PurchasePrice))
	}
	return errs
}

func (c AddDevice) Apply(st State) (State, error) {
	if err := c.Validate(); err != nil {
		return st, err
	}
	if c.ID == "" {
		c.ID = newID()
	} else if _, exists := st.Device(c.ID); exists {
		return st, fmt.Errorf("%w: device %q already exists", ErrConflict, c.ID)
	}
	if c.At.IsZero() {
		c.At = time.Now()
	}
	if c.PurchaseDate.IsZero() {
		c.PurchaseDate = date.Of(c.At)
	}
	next := st.Clone()
	d := Device{
		ID:            c.ID,
		Brand:         c.Brand,
		Model:         strings.TrimSpace(c.Model),
		Storage:       c.Storage,
		IMEI:          strings.TrimSpace(c.IMEI),
		PurchasePrice: c.PurchasePrice,
		PurchasedFrom: c.PurchasedFrom,
		PurchaseDate:  c.PurchaseDate,
		Status:        InStock,
		DateAdded:     c.At,
	}
	next.Devices = append([]Device{d}, next.Devices...)
	return next, nil
}

// SellDevice sells an in-stock device, for cash or on installments.
type SellDevice struct {
	ID            string // optional sale id
	DeviceID      string
	SalePrice     Money
	IsInstallment bool
	CustomerName  string
	CustomerPhone string
	Months        int       // installment only, 1 to 3
	PaidAmount    Money     // installment only, the down payment
	At            time.Time // defaults to now
	DueDate       time.Time // installment only, defaults to At + 30 days
}

func (SellDevice) What() CommandType { return CmdSellDevice }

func (c SellDevice) Validate() error {
	var errs error
	if c.DeviceID == "" {
		errs = errors.Join(errs, invalid("device is missing"))
	}
	if c.SalePrice.IsNegative() {
		errs = errors.Join(errs, invalid("sale price must not be negative, got %s", c.SalePrice))
	}
	if c.IsInstallment {
		if m := defaultMonths(c.Months); m < 1 || m > 3 {
			errs = errors.Join(errs, invalid("installment months must be 1, 2 or 3, got %d", c.Months))
		}
		if c.PaidAmount.IsNegative() {
			errs = errors.Join(errs, invalid("paid amount must not be negative, got %s", c.PaidAmount))
		}
	}
	return errs
}

func (c SellDevice) Apply(st State) (State, error) {
	if err := c.Validate(); err != nil {
		return st, err
	}
	i := st.deviceIndex(c.DeviceID)
	if i < 0 {
		return st, fmt.Errorf("%w: device %q", ErrNotFound, c.DeviceID)
	}
	if status := st.Devices[i].Status; status != InStock {
		return st, fmt.Errorf("%w: device %q is %s", ErrConflict, c.DeviceID, status)
	}
	if c.ID == "" {
		c.ID = newID()
	}
	if c.At.IsZero() {
		c.At = time.Now()
	}

	sale := Sale{
		ID:            c.ID,
		DeviceID:      c.DeviceID,
		CustomerName:  c.CustomerName,
		CustomerPhone: c.CustomerPhone,
		SalePrice:     c.SalePrice,
		Date:          c.At,
		IsInstallment: c.IsInstallment,
		Status:        Completed,
	}
	if c.IsInstallment {
		due := c.DueDate
		if due.IsZero() {
			due = c.At.Add(DueAfter)
		}
		sale.InstallmentPlan = &Installment{
			Months:     defaultMonths(c.Months),
			PaidAmount: c.PaidAmount,
			DueDate:    due,
		}
	} else {
		if sale.CustomerName == "" {
			sale.CustomerName = "Guest"
		}
		if sale.CustomerPhone == "" {
			sale.CustomerPhone = "N/A"
		}
	}

	next := st.Clone()
	next.Sales = append([]Sale{sale}, next.Sales...)
	next.Devices[i].Status = Sold
	next.CashBalance = next.CashBalance.Add(sale.Received())
	return next, nil
}

// ReturnSale reverses a completed sale: the device goes back in stock and the
// cash received so far is refunded.
type ReturnSale struct {
	SaleID string
}

func (ReturnSale) What() CommandType { return CmdReturnSale }

func (c ReturnSale) Apply(st State) (State, error) {
	i := st.saleIndex(c.SaleID)
	if i < 0 {
		return st, fmt.Errorf("%w: sale %q", ErrNotFound, c.SaleID)
	}
	sale := st.Sales[i]
	if sale.Status != Completed {
		return st, fmt.Errorf("%w: sale %q is already %s", ErrConflict, c.SaleID, sale.Status)
	}
	next := st.Clone()
	next.Sales[i].Status = SaleReturned
	if sale.DeviceID != "" {
		if j := next.deviceIndex(sale.DeviceID); j >= 0 {
			next.Devices[j].Status = InStock
		}
	}
	next.CashBalance = next.CashBalance.Sub(sale.Received())
	return next, nil
}

// RecordPayment adds an installment payment. Overpayment is accepted.
type RecordPayment struct {
	SaleID string
	Amount Money
}

func (RecordPayment) What() CommandType { return CmdRecordPayment }

func (c RecordPayment) Apply(st State) (State, error) {
	if !c.Amount.IsPositive() {
		return st, invalid("payment must be positive, got %s", c.Amount)
	}
	i := st.saleIndex(c.SaleID)
	if i < 0 {
		return st, fmt.Errorf("%w: sale %q", ErrNotFound, c.SaleID)
	}
	sale := st.Sales[i]
	if sale.Status != Completed {
		return st, fmt.Errorf("%w: sale %q is %s", ErrConflict, c.SaleID, sale.Status)
	}
	if sale.InstallmentPlan == nil {
		return st, fmt.Errorf("%w: sale %q has no installment plan", ErrConflict, c.SaleID)
	}
	next := st.Clone()
	plan := next.Sales[i].InstallmentPlan
	plan.PaidAmount = plan.PaidAmount.Add(c.Amount)
	next.CashBalance = next.CashBalance.Add(c.Amount)
	return next, nil
}

// AddDebtor records a debt that is not tied to any device.
type AddDebtor struct {
	ID            string
	CustomerName  string
	CustomerPhone string
	SalePrice     Money
	PaidAmount    Money // down payment
	Months        int
	At            time.Time
	DueDate       time.Time
}

func (AddDebtor) What() CommandType { return CmdAddDebtor }

func (c AddDebtor) Validate() error {
	var errs error
	if strings.TrimSpace(c.CustomerName) == "" {
		errs = errors.Join(errs, invalid("customer name is missing"))
	}
	if !c.SalePrice.IsPositive() {
		errs = errors.Join(errs, invalid("amount must be positive, got %s", c.SalePrice))
	}
	if c.PaidAmount.IsNegative() {
		errs = errors.Join(errs, invalid("paid amount must not be negative, got %s", c.PaidAmount))
	}
	if m := defaultMonths(c.Months); m < 1 || m > 3 {
		errs = errors.Join(errs, invalid("installment months must be 1, 2 or 3, got %d", c.Months))
	}
	return errs
}

func (c AddDebtor) Apply(st State) (State, error) {
	if err := c.Validate(); err != nil {
		return st, err
	}
	if c.ID == "" {
		c.ID = newID()
	}
	if c.At.IsZero() {
		c.At = time.Now()
	}
	due := c.DueDate
	if due.IsZero() {
		due = c.At.Add(DueAfter)
	}
	sale := Sale{
		ID:            c.ID,
		CustomerName:  strings.TrimSpace(c.CustomerName),
		CustomerPhone: c.CustomerPhone,
		SalePrice:     c.SalePrice,
		Date:          c.At,
		IsInstallment: true,
		InstallmentPlan: &Installment{
			Months:     defaultMonths(c.Months),
			PaidAmount: c.PaidAmount,
			DueDate:    due,
		},
		Status: Completed,
	}
	next := st.Clone()
	next.Sales = append([]Sale{sale}, next.Sales...)
	next.CashBalance = next.CashBalance.Add(c.PaidAmount)
	return next, nil
}

// DeleteDevice removes a device that was never sold.
type DeleteDevice struct {
	DeviceID string
}

func (DeleteDevice) What() CommandType { return CmdDeleteDevice }

func (c DeleteDevice) Apply(st State) (State, error) {
	i := st.deviceIndex(c.DeviceID)
	if i < 0 {
		return st, fmt.Errorf("%w: device %q", ErrNotFound, c.DeviceID)
	}
	if status := st.Devices[i].Status; status != InStock {
		return st, fmt.Errorf("%w: device %q is %s, only devices in stock can be deleted", ErrConflict, c.DeviceID, status)
	}
	next := st.Clone()
	next.Devices = slices.Delete(next.Devices, i, i+1)
	return next, nil
}

// SetCash overwrites the cash balance, for manual reconciliation.
type SetCash struct {
	Amount Money
}

func (SetCash) What() CommandType { return CmdSetCash }

func (c SetCash) Apply(st State) (State, error) {
	next := st.Clone()
	next.CashBalance = c.Amount
	return next, nil
}

// AddCustomModel registers a model name for a brand.
type AddCustomModel struct {
	Brand Brand
	Name  string
}

func (AddCustomModel) What() CommandType { return CmdAddModel }

func (c AddCustomModel) Apply(st State) (State, error) {
	name := strings.TrimSpace(c.Name)
	if !c.Brand.Valid() {
		return st, invalid("unknown brand %q", c.Brand)
	}
	if name == "" {
		return st, invalid("model name is missing")
	}
	if st.CustomModels.Has(c.Brand, name) {
		return st, fmt.Errorf("%w: model %q already exists for %s", ErrConflict, name, c.Brand)
	}
	next := st.Clone()
	next.CustomModels[c.Brand] = append(next.CustomModels[c.Brand], name)
	return next, nil
}

// RemoveCustomModel unregisters a model name.
type RemoveCustomModel struct {
	Brand Brand
	Name  string
}

func (RemoveCustomModel) What() CommandType { return CmdRemoveModel }

func (c RemoveCustomModel) Apply(st State) (State, error) {
	if !st.CustomModels.Has(c.Brand, c.Name) {
		return st, fmt.Errorf("%w: model %q for %s", ErrNotFound, c.Name, c.Brand)
	}
	next := st.Clone()
	next.CustomModels[c.Brand] = slices.DeleteFunc(next.CustomModels[c.Brand], func(m string) bool { return m == c.Name })
	return next, nil
}

// SetRates overwrites the exchange, buy and sell rates. Zero fields are kept.
type SetRates struct {
	Exchange, Buy, Sell Rate
}

func (SetRates) What() CommandType { return CmdSetRates }

func (c SetRates) Apply(st State) (State, error) {
	var errs error
	for name, r := range map[string]Rate{"exchange": c.Exchange, "buy": c.Buy, "sell": c.Sell} {
		if !r.IsZero() && !r.IsPositive() {
			errs = errors.Join(errs, invalid("%s rate must be positive, got %s", name, r))
		}
	}
	if errs != nil {
		return st, errs
	}
	next := st.Clone()
	if !c.Exchange.IsZero() {
		next.ExchangeRate = c.Exchange
	}
	if !c.Buy.IsZero() {
		next.BuyRate = c.Buy
	}
	if !c.Sell.IsZero() {
		next.SellRate = c.Sell
	}
	return next, nil
}

// RateEpsilon is the smallest change of a fetched rate that gets adopted.
var RateEpsilon = R(1)

// UpdateRate merges a freshly fetched exchange rate.
//
// The rate is rounded to a whole unit and adopted only when it moved by more
// than RateEpsilon (or the stored rate is the placeholder 1); buy and sell
// rates are then derived with RefreshSpread. Otherwise Apply returns
// ErrUnchanged.
type UpdateRate struct {
	Rate Rate
}

func (UpdateRate) What() CommandType { return CmdUpdateRate }

func (c UpdateRate) Apply(st State) (State, error) {
	rate := c.Rate.Round(0)
	if !rate.IsPositive() {
		return st, invalid("fetched rate must be positive, got %s", c.Rate)
	}
	if !st.ExchangeRate.Sub(rate).Abs().GreaterThan(RateEpsilon) && !st.ExchangeRate.Equal(R(1)) {
		return st, ErrUnchanged
	}
	next := st.Clone()
	next.ExchangeRate = rate
	next.BuyRate = rate.Sub(RefreshSpread)
	next.SellRate = rate.Add(RefreshSpread)
	return next, nil
}

// SetPreferences changes the language and theme. Empty fields are kept.
type SetPreferences struct {
	Language Language
	Theme    Theme
}

func (SetPreferences) What() CommandType { return CmdSetPreferences }

func (c SetPreferences) Apply(st State) (State, error) {
	var errs error
	if c.Language != "" && !c.Language.Valid() {
		errs = errors.Join(errs, invalid("unknown language %q", c.Language))
	}
	if c.Theme != "" && !c.Theme.Valid() {
		errs = errors.Join(errs, invalid("unknown theme %q", c.Theme))
	}
	if errs != nil {
		return st, errs
	}
	next := st.Clone()
	if c.Language != "" {
		next.Language = c.Language
	}
	if c.Theme != "" {
		next.Theme = c.Theme
	}
	return next, nil
}

// ConfigureSync replaces the sync settings.
type ConfigureSync struct {
	Settings SyncSettings
}

func (ConfigureSync) What() CommandType { return CmdConfigureSync }

func (c ConfigureSync) Apply(st State) (State, error) {
	next := st.Clone()
	next.SyncSettings = c.Settings
	return next, nil
}

// Restore replaces the whole state with a snapshot, keeping the local sync
// settings so the shop can keep pushing to the same blob.
type Restore struct {
	Snapshot State
}

func (Restore) What() CommandType { return CmdRestore }

func (c Restore) Apply(st State) (State, error) {
	next := c.Snapshot.Clone()
	next.SyncSettings = st.SyncSettings
	return next, nil
}

// MarkSynced records a successful push.
type MarkSynced struct {
	Key string
	At  time.Time
}

func (MarkSynced) What() CommandType { return CmdMarkSynced }

func (c MarkSynced) Apply(st State) (State, error) {
	if c.Key == "" {
		return st, invalid("blob key is missing")
	}
	next := st.Clone()
	next.SyncSettings.BlobKey = c.Key
	next.SyncSettings.LastSync = c.At.UTC().Format(time.RFC3339)
	return next, nil
}
