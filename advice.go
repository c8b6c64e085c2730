package flagship

import (
	"context"
	"fmt"
	"strings"
)

// Advisor generates business advice from a prompt.
type Advisor interface {
	Advise(ctx context.Context, prompt string) (string, error)
}

// AdvicePrompt builds the advice request from the shop figures, asking for
// an answer in lang.
func AdvicePrompt(s Summary, lang Language) string {
	var b strings.Builder
	b.WriteString("You are a business consultant for a small shop reselling used iPhone and Samsung phones.\n")
	b.WriteString("Current figures (amounts in USD):\n")
	fmt.Fprintf(&b, "- devices in stock: %d, stock value at purchase price: %s\n", s.InStock, s.StockValue)
	fmt.Fprintf(&b, "- cash balance: %s\n", s.CashBalance)
	fmt.Fprintf(&b, "- customers in debt: %d, total debt: %s\n", s.Debtors, s.TotalDebt)
	fmt.Fprintf(&b, "- total assets: %s\n", s.TotalAssets)
	fmt.Fprintf(&b, "- completed sales: %d, total profit: %s\n", s.SalesCount, s.TotalProfit)
	fmt.Fprintf(&b, "- exchange rate: %s (buy %s, sell %s)\n", s.ExchangeRate, s.BuyRate, s.SellRate)
	b.WriteString("Give three short, concrete recommendations to improve cash flow and reduce debt.\n")
	if lang == English {
		b.WriteString("Answer in English, as plain text.")
	} else {
		b.WriteString("Answer in Russian, as plain text.")
	}
	return b.String()
}

// Advise asks advisor about st.
func Advise(ctx context.Context, advisor Advisor, st State) (string, error) {
	if advisor == nil {
		return "", fmt.Errorf("%w: no advisor", ErrNotConfigured)
	}
	text, err := advisor.Advise(ctx, AdvicePrompt(Summarize(st), st.Language))
	if err != nil {
		return "", fmt.Errorf("cannot get advice: %w", err)
	}
	return strings.TrimSpace(text), nil
}
