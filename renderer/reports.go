package renderer

import (
	"time"

	"github.com/etnz/flagship"
)

// Inventory is the list of devices in stock.
type Inventory struct {
	Query   string
	Devices []flagship.Device
	Total   flagship.Money
}

// NewInventory lists the in-stock devices matching query.
func NewInventory(st flagship.State, query string) *Inventory {
	devices := flagship.SearchStock(st.Devices, query)
	return &Inventory{Query: query, Devices: devices, Total: flagship.StockValue(devices)}
}

// SaleRow is a sale with the name of the device sold.
type SaleRow struct {
	flagship.Sale
	Device string
}

// Sales is the sales history, newest first.
type Sales struct {
	Rows []SaleRow
}

// NewSales lists at most limit sales; zero means all of them.
func NewSales(st flagship.State, limit int) *Sales {
	sales := st.Sales
	if limit > 0 && len(sales) > limit {
		sales = sales[:limit]
	}
	s := &Sales{}
	for _, sale := range sales {
		row := SaleRow{Sale: sale, Device: "-"}
		if d, ok := st.Device(sale.DeviceID); ok {
			row.Device = d.Name()
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

// DebtorRow is an outstanding installment sale.
type DebtorRow struct {
	flagship.Sale
	Remaining flagship.Money
	Overdue   bool
}

// Debtors is the list of customers who still owe money.
type Debtors struct {
	Rows  []DebtorRow
	Total flagship.Money
}

// NewDebtors lists the debtors of st. A debt is overdue once its due date is
// before now.
func NewDebtors(st flagship.State, now time.Time) *Debtors {
	debtors := flagship.Debtors(st.Sales)
	d := &Debtors{Total: flagship.TotalDebt(debtors)}
	for _, s := range debtors {
		d.Rows = append(d.Rows, DebtorRow{
			Sale:      s,
			Remaining: s.Remaining(),
			Overdue:   s.InstallmentPlan.DueDate.Before(now),
		})
	}
	return d
}

// Analytics is a profit chart.
type Analytics struct {
	Title   string
	Buckets []flagship.Bucket
	Total   flagship.Money
	Max     flagship.Money
}

// NewAnalytics charts buckets.
func NewAnalytics(title string, buckets []flagship.Bucket) *Analytics {
	a := &Analytics{Title: title, Buckets: buckets}
	for _, b := range buckets {
		a.Total = a.Total.Add(b.Profit)
		if b.Profit.GreaterThan(a.Max) {
			a.Max = b.Profit
		}
	}
	return a
}

func RenderInventory(i *Inventory) string {
	return renderTemplate("inventory", "inventory.md", nil, i)
}

func RenderSales(s *Sales) string {
	partials := map[string]string{"sales_payment": "sales_payment.md"}
	return renderTemplate("sales", "sales.md", partials, s)
}

func RenderDebtors(d *Debtors) string {
	return renderTemplate("debtors", "debtors.md", nil, d)
}

// RenderAnalytics renders the chart, skipping empty buckets when sparse is set.
func RenderAnalytics(a *Analytics, sparse bool) string {
	if sparse {
		var kept []flagship.Bucket
		for _, b := range a.Buckets {
			if b.Sales > 0 {
				kept = append(kept, b)
			}
		}
		c := *a
		c.Buckets = kept
		a = &c
	}
	return renderTemplate("analytics", "analytics.md", nil, a)
}
