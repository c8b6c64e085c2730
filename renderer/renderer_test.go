package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/flagship"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var now = time.Date(2025, time.May, 20, 9, 0, 0, 0, time.UTC)

func fixture(t *testing.T) flagship.State {
	t.Helper()
	at := time.Date(2025, time.May, 2, 15, 0, 0, 0, time.UTC)
	st, err := flagship.Apply(flagship.NewState(),
		flagship.AddDevice{ID: "dev-aaaa-1111", Brand: flagship.IPhone, Model: "14 Pro", Storage: flagship.Storage128GB, IMEI: "350000000000001", PurchasePrice: flagship.M(520), PurchasedFrom: "Malika | trade-in", At: at},
		flagship.AddDevice{ID: "dev-bbbb-2222", Brand: flagship.Samsung, Model: "Galaxy S23", Storage: flagship.Storage256GB, IMEI: "350000000000002", PurchasePrice: flagship.M(380), At: at},
		flagship.AddDevice{ID: "dev-cccc-3333", Brand: flagship.IPhone, Model: "12", Storage: flagship.Storage64GB, IMEI: "350000000000003", PurchasePrice: flagship.M(200), At: at},
		flagship.SellDevice{ID: "sale-1111", DeviceID: "dev-bbbb-2222", SalePrice: flagship.M(450), At: at},
		flagship.SellDevice{ID: "sale-2222", DeviceID: "dev-cccc-3333", SalePrice: flagship.M(300), IsInstallment: true, CustomerName: "Jasur", CustomerPhone: "+998 90 000 00 00", Months: 2, PaidAmount: flagship.M(100), At: at},
	)
	require.NoError(t, err)
	return st
}

// tables parses markdown and returns the number of tables and their rows, header excluded.
func tables(t *testing.T, markdown string) (n int, rows int) {
	t.Helper()
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader([]byte(markdown)))
	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node.Kind() {
		case east.KindTable:
			n++
		case east.KindTableRow:
			rows++
		}
		return ast.WalkContinue, nil
	})
	require.NoError(t, err)
	return n, rows
}

func TestRenderInventory(t *testing.T) {
	st := fixture(t)

	got := RenderInventory(NewInventory(st, ""))
	n, rows := tables(t, got)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, rows, "only the device in stock")
	assert.Contains(t, got, "| dev-aaaa | iPhone 14 Pro 128Gb | 350000000000001 | 2025-05-02 | Malika \\| trade-in | $520.00 |")
	assert.Contains(t, got, "**1 devices, $520.00 at purchase price.**")

	got = RenderInventory(NewInventory(st, "galaxy"))
	assert.Contains(t, got, `# Inventory matching "galaxy"`)
	assert.Contains(t, got, "No device in stock.")
}

func TestRenderSales(t *testing.T) {
	got := RenderSales(NewSales(fixture(t), 0))
	n, rows := tables(t, got)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2, rows)
	assert.Contains(t, got, "| sale-222 | 2025-05-02 | iPhone 12 64Gb | Jasur | $300.00 | $100.00 paid, 2 months | Completed |")
	assert.Contains(t, got, "| sale-111 | 2025-05-02 | Samsung Galaxy S23 256Gb | Guest | $450.00 | cash | Completed |")

	got = RenderSales(NewSales(fixture(t), 1))
	_, rows = tables(t, got)
	assert.Equal(t, 1, rows)

	assert.Equal(t, "# Sales\n\nNo sale yet.\n", RenderSales(NewSales(flagship.NewState(), 0)))
}

func TestRenderDebtors(t *testing.T) {
	st := fixture(t)

	got := RenderDebtors(NewDebtors(st, now))
	assert.Contains(t, got, "| sale-222 | Jasur | +998 90 000 00 00 | $300.00 | $100.00 | $200.00 | 2025-06-01 |")
	assert.Contains(t, got, "**Total debt: $200.00**")
	assert.NotContains(t, got, "overdue")

	got = RenderDebtors(NewDebtors(st, now.AddDate(0, 1, 0)))
	assert.Contains(t, got, "2025-06-01 **overdue**")
}

func TestRenderAnalytics(t *testing.T) {
	st := fixture(t)
	a := NewAnalytics("Monthly Profit", flagship.MonthlyProfit(st, now))

	got := RenderAnalytics(a, false)
	_, rows := tables(t, got)
	assert.Equal(t, 12, rows)
	assert.Contains(t, got, "| May | 2 | $170.00 | "+strings.Repeat("█", barWidth)+" |")
	assert.Contains(t, got, "| Jan | 0 | $0.00 |  |")
	assert.Contains(t, got, "**Total profit: $170.00**")

	got = RenderAnalytics(a, true)
	_, rows = tables(t, got)
	assert.Equal(t, 1, rows)
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", bar(flagship.M(0), flagship.M(10)))
	assert.Equal(t, "", bar(flagship.M(-5), flagship.M(10)))
	assert.Equal(t, strings.Repeat("█", 10), bar(flagship.M(5), flagship.M(10)))
	assert.Equal(t, "█", bar(flagship.M(0.01), flagship.M(1000)), "a positive value is never invisible")
}

func TestDashboardMarkdown(t *testing.T) {
	got := DashboardMarkdown(flagship.Summarize(fixture(t)))
	n, _ := tables(t, got)
	assert.Equal(t, 3, n)
	for _, want := range []string{"# Dashboard", "Total Assets", "$1,270.00", "Stock Value (1 devices)", "+$170.00", "12210"} {
		assert.Contains(t, got, want)
	}
}
