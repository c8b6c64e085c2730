package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/flagship"
	md "github.com/nao1215/markdown"
)

// DashboardMarkdown renders the headline figures of the shop.
func DashboardMarkdown(s flagship.Summary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Dashboard")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Total Assets"), md.Bold(s.TotalAssets.String())},
		Rows: [][]string{
			{"Cash Balance", s.CashBalance.String()},
			{fmt.Sprintf("Stock Value (%d devices)", s.InStock), s.StockValue.String()},
			{fmt.Sprintf("Total Debt (%d debtors)", s.Debtors), s.TotalDebt.String()},
		},
	})

	doc.H2("Sales")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Completed Sales", fmt.Sprint(s.SalesCount)},
		Rows: [][]string{
			{"Total Profit", s.TotalProfit.SignedString()},
		},
	})

	doc.H2("Exchange Rate")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Rate", s.ExchangeRate.String()},
		Rows: [][]string{
			{"Buy", s.BuyRate.String()},
			{"Sell", s.SellRate.String()},
		},
	})

	return doc.String()
}
