package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/etnz/flagship"
	"github.com/etnz/flagship/date"
	"github.com/etnz/flagship/renderer"
	"github.com/google/subcommands"
)

// parseDue parses an optional due date, the zero time meaning the default.
func parseDue(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	day, err := date.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return day.In(time.Local), nil
}

type sellCmd struct {
	price       string
	installment bool
	customer    string
	phone       string
	months      int
	paid        string
	due         string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "sell a device, for cash or on installments" }
func (*sellCmd) Usage() string {
	return `fsh sell -price <amount> [-customer <name>] [-phone <phone>] [-installment -months <1-3> -paid <amount> [-due <date>]] <device-id>

  Sells a device in stock. A cash sale adds the price to the cash balance.
  An installment sale adds the down payment only, the rest is owed by the
  customer until paid with 'fsh pay'.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.price, "price", "", "Sale price in USD")
	f.BoolVar(&c.installment, "installment", false, "Sell on installments")
	f.StringVar(&c.customer, "customer", "", "Customer name")
	f.StringVar(&c.phone, "phone", "", "Customer phone")
	f.IntVar(&c.months, "months", 1, "Installment plan length in months (1 to 3)")
	f.StringVar(&c.paid, "paid", "0", "Down payment of an installment sale")
	f.StringVar(&c.due, "due", "", "Due date of an installment sale (YYYY-MM-DD), defaults to 30 days from now")
}

func (c *sellCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || c.price == "" {
		fmt.Fprintln(os.Stderr, "Error: sell takes a device id and a -price.")
		return subcommands.ExitUsageError
	}
	price, err := flagship.ParseMoney(c.price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing price: %v\n", err)
		return subcommands.ExitUsageError
	}
	paid, err := flagship.ParseMoney(c.paid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing paid amount: %v\n", err)
		return subcommands.ExitUsageError
	}
	due, err := parseDue(c.due)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing due date: %v\n", err)
		return subcommands.ExitUsageError
	}

	_, st, closer, err := loadState(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	closer()
	d, ok := resolveDevice(st, f.Arg(0))
	if !ok {
		return subcommands.ExitFailure
	}

	cmd := flagship.SellDevice{
		DeviceID:      d.ID,
		SalePrice:     price,
		IsInstallment: c.installment,
		CustomerName:  c.customer,
		CustomerPhone: c.phone,
	}
	if c.installment {
		cmd.Months = c.months
		cmd.PaidAmount = paid
		cmd.DueDate = due
	}
	return run(ctx, func(st flagship.State) {
		s := st.Sales[0]
		fmt.Printf("Sold %s to %s for %s (sale %s)\n", d.Name(), s.CustomerName, s.SalePrice, shortID(s.ID))
		if s.IsInstallment {
			fmt.Printf("Remaining %s due %s\n", s.Remaining(), s.InstallmentPlan.DueDate.Format(time.DateOnly))
		}
		fmt.Printf("Cash balance: %s\n", st.CashBalance)
	}, cmd)
}

type returnCmd struct {
	yes bool
}

func (*returnCmd) Name() string     { return "return" }
func (*returnCmd) Synopsis() string { return "return a sale and put the device back in stock" }
func (*returnCmd) Usage() string {
	return `fsh return [-y] <sale-id>

  Reverses a completed sale: the device is back in stock and the cash
  received for it is refunded from the cash balance.
`
}

func (c *returnCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Do not ask for confirmation")
}

func (c *returnCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: return takes exactly one sale id.")
		return subcommands.ExitUsageError
	}
	_, st, closer, err := loadState(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	closer()
	s, ok := resolveSale(st, f.Arg(0))
	if !ok {
		return subcommands.ExitFailure
	}
	if !c.yes && !confirm(os.Stdout, os.Stdin, fmt.Sprintf("Return the sale to %s and refund %s?", s.CustomerName, s.Received())) {
		fmt.Println("Cancelled.")
		return subcommands.ExitSuccess
	}
	return run(ctx, func(st flagship.State) {
		fmt.Printf("Returned sale %s, cash balance: %s\n", shortID(s.ID), st.CashBalance)
	}, flagship.ReturnSale{SaleID: s.ID})
}

type payCmd struct{}

func (*payCmd) Name() string     { return "pay" }
func (*payCmd) Synopsis() string { return "record an installment payment" }
func (*payCmd) Usage() string {
	return `fsh pay <sale-id> <amount>

  Records a payment from a debtor. Paying more than what is owed is accepted.
`
}
func (*payCmd) SetFlags(f *flag.FlagSet) {}

func (c *payCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: pay takes a sale id and an amount.")
		return subcommands.ExitUsageError
	}
	amount, err := flagship.ParseMoney(f.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
		return subcommands.ExitUsageError
	}
	_, st, closer, err := loadState(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	closer()
	s, ok := resolveSale(st, f.Arg(0))
	if !ok {
		return subcommands.ExitFailure
	}
	return run(ctx, func(st flagship.State) {
		paid, _ := st.Sale(s.ID)
		if paid.IsDebt() {
			fmt.Printf("%s still owes %s\n", paid.CustomerName, paid.Remaining())
		} else {
			fmt.Printf("%s has paid in full\n", paid.CustomerName)
		}
	}, flagship.RecordPayment{SaleID: s.ID, Amount: amount})
}

type salesCmd struct {
	limit int
}

func (*salesCmd) Name() string     { return "sales" }
func (*salesCmd) Synopsis() string { return "list the sales, newest first" }
func (*salesCmd) Usage() string {
	return `fsh sales [-n <count>]
`
}

func (c *salesCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 20, "Number of sales to list, 0 for all")
}

func (c *salesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return view(ctx, func(st flagship.State) string {
		return renderer.RenderSales(renderer.NewSales(st, c.limit))
	})
}

type addDebtorCmd struct {
	phone  string
	paid   string
	months int
	due    string
}

func (*addDebtorCmd) Name() string     { return "add-debtor" }
func (*addDebtorCmd) Synopsis() string { return "record a debt not tied to a device" }
func (*addDebtorCmd) Usage() string {
	return `fsh add-debtor [-phone <phone>] [-paid <amount>] [-months <1-3>] [-due <date>] <name> <amount>

  Records that a customer owes the shop an amount, for instance after a
  repair or an accessory sold on credit.
`
}

func (c *addDebtorCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.phone, "phone", "", "Customer phone")
	f.StringVar(&c.paid, "paid", "0", "Amount already paid")
	f.IntVar(&c.months, "months", 1, "Plan length in months (1 to 3)")
	f.StringVar(&c.due, "due", "", "Due date (YYYY-MM-DD), defaults to 30 days from now")
}

func (c *addDebtorCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Error: add-debtor takes a customer name and an amount.")
		return subcommands.ExitUsageError
	}
	amount, err := flagship.ParseMoney(f.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
		return subcommands.ExitUsageError
	}
	paid, err := flagship.ParseMoney(c.paid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing paid amount: %v\n", err)
		return subcommands.ExitUsageError
	}
	due, err := parseDue(c.due)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing due date: %v\n", err)
		return subcommands.ExitUsageError
	}
	cmd := flagship.AddDebtor{
		CustomerName:  f.Arg(0),
		CustomerPhone: c.phone,
		SalePrice:     amount,
		PaidAmount:    paid,
		Months:        c.months,
		DueDate:       due,
	}
	return run(ctx, func(st flagship.State) {
		s := st.Sales[0]
		fmt.Printf("%s owes %s (debt %s)\n", s.CustomerName, s.Remaining(), shortID(s.ID))
	}, cmd)
}

type debtorsCmd struct{}

func (*debtorsCmd) Name() string     { return "debtors" }
func (*debtorsCmd) Synopsis() string { return "list the customers who still owe money" }
func (*debtorsCmd) Usage() string {
	return `fsh debtors

  Lists the outstanding installment sales and debts, flagging overdue ones.
`
}
func (*debtorsCmd) SetFlags(f *flag.FlagSet) {}

func (c *debtorsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return view(ctx, func(st flagship.State) string {
		return renderer.RenderDebtors(renderer.NewDebtors(st, time.Now()))
	})
}
