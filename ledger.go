package flagship

import (
	"strings"
)

// InStockDevices returns the devices currently in stock, in their stored order.
func InStockDevices(devices []Device) []Device {
	var stock []Device
	for _, d := range devices {
		if d.Status == InStock {
			stock = append(stock, d)
		}
	}
	return stock
}

// SearchStock returns in-stock devices whose IMEI or model contains query,
// ignoring case. An empty query matches every device in stock.
func SearchStock(devices []Device, query string) []Device {
	q := strings.ToLower(strings.TrimSpace(query))
	var found []Device
	for _, d := range InStockDevices(devices) {
		if strings.Contains(strings.ToLower(d.IMEI), q) || strings.Contains(strings.ToLower(d.Model), q) {
			found = append(found, d)
		}
	}
	return found
}

// StockValue is the sum of purchase prices of the devices in stock.
func StockValue(devices []Device) Money {
	var total Money
	for _, d := range devices {
		if d.Status == InStock {
			total = total.Add(d.PurchasePrice)
		}
	}
	return total
}

// Debtors returns the outstanding installment sales. See Sale.IsDebt.
func Debtors(sales []Sale) []Sale {
	var debtors []Sale
	for _, s := range sales {
		if s.IsDebt() {
			debtors = append(debtors, s)
		}
	}
	return debtors
}

// TotalDebt sums what debtors still owe, without rounding.
func TotalDebt(debtors []Sale) Money {
	var total Money
	for _, s := range debtors {
		total = total.Add(s.Remaining())
	}
	return total
}

// purchasePrices indexes device purchase prices by device id. The first
// device of a duplicated id wins.
func purchasePrices(devices []Device) map[string]Money {
	prices := make(map[string]Money, len(devices))
	for _, d := range devices {
		if _, ok := prices[d.ID]; !ok {
			prices[d.ID] = d.PurchasePrice
		}
	}
	return prices
}

// saleProfit is the sale price minus the purchase price of its device. A sale
// whose device is unknown (deleted, or a plain debt) has a zero cost.
func saleProfit(s Sale, prices map[string]Money) Money {
	return s.SalePrice.Sub(prices[s.DeviceID])
}

// TotalProfit sums the profit of every completed sale.
func TotalProfit(st State) Money {
	prices := purchasePrices(st.Devices)
	var total Money
	for _, s := range st.Sales {
		if s.Status == Completed {
			total = total.Add(saleProfit(s, prices))
		}
	}
	return total
}

// Summary gathers the headline figures of the shop.
type Summary struct {
	StockValue   Money `json:"stockValue"`
	InStock      int   `json:"inStock"`
	TotalDebt    Money `json:"totalDebt"`
	Debtors      int   `json:"debtors"`
	CashBalance  Money `json:"cashBalance"`
	TotalAssets  Money `json:"totalAssets"`
	TotalProfit  Money `json:"totalProfit"`
	SalesCount   int   `json:"salesCount"`
	ExchangeRate Rate  `json:"exchangeRate"`
	BuyRate      Rate  `json:"buyRate"`
	SellRate     Rate  `json:"sellRate"`
}

// Summarize computes the Summary of st.
func Summarize(st State) Summary {
	debtors := Debtors(st.Sales)
	s := Summary{
		StockValue:   StockValue(st.Devices),
		InStock:      len(InStockDevices(st.Devices)),
		TotalDebt:    TotalDebt(debtors),
		Debtors:      len(debtors),
		CashBalance:  st.CashBalance,
		TotalProfit:  TotalProfit(st),
		ExchangeRate: st.ExchangeRate,
		BuyRate:      st.BuyRate,
		SellRate:     st.SellRate,
	}
	for _, sale := range st.Sales {
		if sale.Status == Completed {
			s.SalesCount++
		}
	}
	s.TotalAssets = Sum(s.StockValue, s.TotalDebt, s.CashBalance)
	return s
}
