package flagship

import (
	"errors"
	"testing"

	"github.com/etnz/flagship/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDevice(t *testing.T) {
	st := mustApply(t, NewState(), newIPhone("a", 300), newIPhone("b", 350))

	require.Len(t, st.Devices, 2)
	assert.Equal(t, "b", st.Devices[0].ID, "new devices come first")
	assert.Equal(t, InStock, st.Devices[0].Status)
	assert.Equal(t, date.New(2025, 3, 14), st.Devices[0].PurchaseDate)
	assert.Equal(t, t0, st.Devices[0].DateAdded)
}

func TestAddDevice_Invalid(t *testing.T) {
	st := NewState()
	_, err := AddDevice{Brand: "Nokia", PurchasePrice: USD(-1)}.Apply(st)
	require.ErrorIs(t, err, ErrInvalid)
	for _, want := range []string{"brand", "model", "storage", "imei", "purchase price"} {
		assert.Contains(t, err.Error(), want)
	}
	assert.Empty(t, st.Devices, "state is unchanged")
}

func TestAddDevice_DuplicateID(t *testing.T) {
	st := mustApply(t, NewState(), newIPhone("a", 300))
	_, err := newIPhone("a", 300).Apply(st)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSellDevice(t *testing.T) {
	testCases := []struct {
		name      string
		cmd       SellDevice
		wantCash  Money
		wantName  string
		wantPhone string
		wantPlan  *Installment
	}{
		{
			name:      "cash sale defaults customer",
			cmd:       SellDevice{ID: "s", DeviceID: "a", SalePrice: USD(400), At: t0},
			wantCash:  USD(400),
			wantName:  "Guest",
			wantPhone: "N/A",
		},
		{
			name:     "installment sale takes the down payment",
			cmd:      SellDevice{ID: "s", DeviceID: "a", SalePrice: USD(600), IsInstallment: true, CustomerName: "Aziz", Months: 3, PaidAmount: USD(200), At: t0},
			wantCash: USD(200),
			wantName: "Aziz",
			wantPlan: &Installment{Months: 3, PaidAmount: USD(200), DueDate: t0.Add(DueAfter)},
		},
		{
			name:     "installment months default to one",
			cmd:      SellDevice{ID: "s", DeviceID: "a", SalePrice: USD(600), IsInstallment: true, At: t0},
			wantCash: Money{},
			wantPlan: &Installment{Months: 1, DueDate: t0.Add(DueAfter)},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			st := mustApply(t, NewState(), newIPhone("a", 300))
			st = mustApply(t, st, tc.cmd)

			require.Len(t, st.Sales, 1)
			sale := st.Sales[0]
			assert.Equal(t, Completed, sale.Status)
			assert.Equal(t, tc.wantName, sale.CustomerName)
			assert.Equal(t, tc.wantPhone, sale.CustomerPhone)
			assertMoney(t, "cash", st.CashBalance, tc.wantCash)
			assert.Equal(t, Sold, st.Devices[0].Status)
			if tc.wantPlan == nil {
				assert.Nil(t, sale.InstallmentPlan)
				return
			}
			require.NotNil(t, sale.InstallmentPlan)
			assert.Equal(t, tc.wantPlan.Months, sale.InstallmentPlan.Months)
			assertMoney(t, "paid", sale.InstallmentPlan.PaidAmount, tc.wantPlan.PaidAmount)
			assert.Equal(t, tc.wantPlan.DueDate, sale.InstallmentPlan.DueDate)
		})
	}
}

func TestSellDevice_Refused(t *testing.T) {
	st := mustApply(t, NewState(), newIPhone("a", 300), SellDevice{ID: "s", DeviceID: "a", SalePrice: USD(400), At: t0})

	testCases := []struct {
		name string
		cmd  SellDevice
		want error
	}{
		{"unknown device", SellDevice{DeviceID: "zz", SalePrice: USD(1)}, ErrNotFound},
		{"already sold", SellDevice{DeviceID: "a", SalePrice: USD(1)}, ErrConflict},
		{"missing device", SellDevice{SalePrice: USD(1)}, ErrInvalid},
		{"four months", SellDevice{DeviceID: "a", IsInstallment: true, Months: 4}, ErrInvalid},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.cmd.Apply(st)
			assert.ErrorIs(t, err, tc.want)
			assert.Len(t, got.Sales, 1)
			assertMoney(t, "cash", got.CashBalance, USD(400))
		})
	}
}

func TestReturnSale(t *testing.T) {
	t.Run("cash sale refunds the price", func(t *testing.T) {
		st := mustApply(t, NewState(),
			newIPhone("a", 300),
			SellDevice{ID: "s", DeviceID: "a", SalePrice: USD(400), At: t0},
			ReturnSale{SaleID: "s"},
		)
		assert.Equal(t, SaleReturned, st.Sales[0].Status)
		assert.Equal(t, InStock, st.Devices[0].Status)
		assertMoney(t, "cash", st.CashBalance, Money{})
	})

	t.Run("installment sale refunds what was paid", func(t *testing.T) {
		st := mustApply(t, NewState(),
			SetCash{Amount: USD(1000)},
			newIPhone("a", 300),
			SellDevice{ID: "s", DeviceID: "a", SalePrice: USD(600), IsInstallment: true, PaidAmount: USD(100), At: t0},
			RecordPayment{SaleID: "s", Amount: USD(50)},
			ReturnSale{SaleID: "s"},
		)
		assertMoney(t, "cash", st.CashBalance, USD(1000))
		assert.Empty(t, Debtors(st.Sales))
	})

	t.Run("twice is a conflict", func(t *testing.T) {
		st := mustApply(t, NewState(),
			newIPhone("a", 300),
			SellDevice{ID: "s", DeviceID: "a", SalePrice: USD(400), At: t0},
			ReturnSale{SaleID: "s"},
		)
		_, err := ReturnSale{SaleID: "s"}.Apply(st)
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("unknown sale", func(t *testing.T) {
		_, err := ReturnSale{SaleID: "nope"}.Apply(NewState())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRecordPayment_Additive(t *testing.T) {
	st := mustApply(t, NewState(),
		newIPhone("a", 300),
		SellDevice{ID: "s", DeviceID: "a", SalePrice: USD(600), IsInstallment: true, Months: 2, PaidAmount: USD(100), At: t0},
	)
	before := st.CashBalance

	st = mustApply(t, st, RecordPayment{SaleID: "s", Amount: USD(120.5)}, RecordPayment{SaleID: "s", Amount: USD(79.5)})

	assertMoney(t, "paid", st.Sales[0].InstallmentPlan.PaidAmount, USD(300))
	assertMoney(t, "cash increase", st.CashBalance.Sub(before), USD(200))
}

func TestRecordPayment_Refused(t *testing.T) {
	st := mustApply(t, NewState(),
		newIPhone("a", 300),
		newIPhone("b", 300),
		SellDevice{ID: "cash", DeviceID: "a", SalePrice: USD(400), At: t0},
		SellDevice{ID: "plan", DeviceID: "b", SalePrice: USD(400), IsInstallment: true, At: t0},
	)
	testCases := []struct {
		name string
		cmd  RecordPayment
		want error
	}{
		{"zero amount", RecordPayment{SaleID: "plan"}, ErrInvalid},
		{"negative amount", RecordPayment{SaleID: "plan", Amount: USD(-5)}, ErrInvalid},
		{"unknown sale", RecordPayment{SaleID: "x", Amount: USD(5)}, ErrNotFound},
		{"cash sale", RecordPayment{SaleID: "cash", Amount: USD(5)}, ErrConflict},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.cmd.Apply(st)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAddDebtor(t *testing.T) {
	st := mustApply(t, NewState(), AddDebtor{ID: "d", CustomerName: "Dilnoza", SalePrice: USD(250), PaidAmount: USD(50), At: t0})

	require.Len(t, st.Sales, 1)
	sale := st.Sales[0]
	assert.Empty(t, sale.DeviceID)
	assert.True(t, sale.IsInstallment)
	assert.Equal(t, 1, sale.InstallmentPlan.Months)
	assertMoney(t, "cash", st.CashBalance, USD(50))
	assertMoney(t, "debt", TotalDebt(Debtors(st.Sales)), USD(200))

	_, err := AddDebtor{SalePrice: USD(0)}.Apply(st)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDeleteDevice(t *testing.T) {
	st := mustApply(t, NewState(), newIPhone("a", 300), newIPhone("b", 200), SellDevice{DeviceID: "b", SalePrice: USD(250), At: t0})

	_, err := DeleteDevice{DeviceID: "b"}.Apply(st)
	assert.ErrorIs(t, err, ErrConflict, "sold devices stay in the records")

	next, err := DeleteDevice{DeviceID: "a"}.Apply(st)
	require.NoError(t, err)
	assert.Len(t, next.Devices, 1)
	assert.Len(t, st.Devices, 2, "the original state is not modified")
}

func TestCustomModels(t *testing.T) {
	st := mustApply(t, NewState(), AddCustomModel{Brand: Samsung, Name: " S24 Ultra "})
	assert.Equal(t, []string{"S24 Ultra"}, st.CustomModels[Samsung])

	_, err := AddCustomModel{Brand: Samsung, Name: "S24 Ultra"}.Apply(st)
	assert.ErrorIs(t, err, ErrConflict)
	_, err = AddCustomModel{Brand: Samsung, Name: "  "}.Apply(st)
	assert.ErrorIs(t, err, ErrInvalid)

	st = mustApply(t, st, RemoveCustomModel{Brand: Samsung, Name: "S24 Ultra"})
	assert.Empty(t, st.CustomModels[Samsung])
	_, err = RemoveCustomModel{Brand: Samsung, Name: "S24 Ultra"}.Apply(st)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRate(t *testing.T) {
	testCases := []struct {
		name                        string
		stored, fetched             Rate
		wantRate, wantBuy, wantSell Rate
	}{
		{"moves by more than one", R(12210), R(12650.4), R(12650), R(12610), R(12690)},
		{"moves by exactly one", R(12210), R(12211), R(12210), R(12160), R(12260)},
		{"placeholder is replaced", R(1), R(12650), R(12650), R(12610), R(12690)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			st := NewState()
			st.ExchangeRate = tc.stored
			st.BuyRate = tc.stored.Sub(DefaultSpread)
			st.SellRate = tc.stored.Add(DefaultSpread)
			got := mustApply(t, st, UpdateRate{Rate: tc.fetched})
			assert.True(t, got.ExchangeRate.Equal(tc.wantRate), "rate %s", got.ExchangeRate)
			assert.True(t, got.BuyRate.Equal(tc.wantBuy), "buy %s", got.BuyRate)
			assert.True(t, got.SellRate.Equal(tc.wantSell), "sell %s", got.SellRate)
		})
	}
}

func TestUpdateRate_Idempotent(t *testing.T) {
	once := mustApply(t, NewState(), UpdateRate{Rate: R(12650)})
	twice := mustApply(t, once, UpdateRate{Rate: R(12650)})

	assert.True(t, twice.ExchangeRate.Equal(once.ExchangeRate))
	assert.True(t, twice.BuyRate.Equal(once.BuyRate))
	assert.True(t, twice.SellRate.Equal(once.SellRate))

	_, err := UpdateRate{Rate: R(12650.3)}.Apply(once)
	assert.ErrorIs(t, err, ErrUnchanged)
}

func TestSetRatesAndPreferences(t *testing.T) {
	st := mustApply(t, NewState(), SetRates{Sell: R(13000)}, SetPreferences{Language: English})
	assert.True(t, st.ExchangeRate.Equal(DefaultExchangeRate))
	assert.True(t, st.SellRate.Equal(R(13000)))
	assert.Equal(t, English, st.Language)
	assert.Equal(t, Dark, st.Theme)

	_, err := SetRates{Buy: R(-1)}.Apply(st)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = SetPreferences{Theme: "blue"}.Apply(st)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRestoreKeepsSyncSettings(t *testing.T) {
	local := NewState()
	local.SyncSettings = SyncSettings{BlobKey: "local", AutoSync: true}
	remote := mustApply(t, NewState(), newIPhone("a", 300))
	remote.SyncSettings = SyncSettings{BlobKey: "other"}

	got := mustApply(t, local, Restore{Snapshot: remote})
	assert.Len(t, got.Devices, 1)
	assert.Equal(t, local.SyncSettings, got.SyncSettings)
}

func TestMarkSynced(t *testing.T) {
	st := mustApply(t, NewState(), MarkSynced{Key: "k1", At: t0})
	assert.Equal(t, "k1", st.SyncSettings.BlobKey)
	assert.Equal(t, "2025-03-14T10:30:00Z", st.SyncSettings.LastSync)

	_, err := MarkSynced{}.Apply(st)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestApply_AllOrNothing(t *testing.T) {
	st := mustApply(t, NewState(), newIPhone("a", 300))
	got, err := Apply(st, SetCash{Amount: USD(10)}, ReturnSale{SaleID: "x"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), string(CmdReturnSale))
	assertMoney(t, "cash", got.CashBalance, Money{})
}
