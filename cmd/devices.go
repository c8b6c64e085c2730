package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/flagship"
	"github.com/etnz/flagship/date"
	"github.com/etnz/flagship/renderer"
	"github.com/google/subcommands"
)

type addDeviceCmd struct {
	brand   string
	model   string
	storage string
	imei    string
	price   string
	from    string
	date    string
}

func (*addDeviceCmd) Name() string     { return "add-device" }
func (*addDeviceCmd) Synopsis() string { return "add a purchased device to the stock" }
func (*addDeviceCmd) Usage() string {
	return `fsh add-device -brand <brand> -model <model> -storage <size> -imei <imei> -price <amount> [-from <seller>] [-d <date>]

  Records a device bought by the shop. The device is in stock until sold.
`
}

func (c *addDeviceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.brand, "brand", string(flagship.IPhone), "Brand of the device (iPhone or Samsung)")
	f.StringVar(&c.model, "model", "", "Model name (e.g., '15 Pro')")
	f.StringVar(&c.storage, "storage", string(flagship.Storage128GB), "Storage size (e.g., '256Gb')")
	f.StringVar(&c.imei, "imei", "", "IMEI of the device")
	f.StringVar(&c.price, "price", "0", "Purchase price in USD")
	f.StringVar(&c.from, "from", "", "Who sold the device to the shop")
	f.StringVar(&c.date, "d", date.Today().String(), "Purchase date (YYYY-MM-DD)")
}

func (c *addDeviceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	brand, err := flagship.ParseBrand(c.brand)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing brand: %v\n", err)
		return subcommands.ExitUsageError
	}
	storage, err := flagship.ParseStorage(c.storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing storage: %v\n", err)
		return subcommands.ExitUsageError
	}
	price, err := flagship.ParseMoney(c.price)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing price: %v\n", err)
		return subcommands.ExitUsageError
	}
	day, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	cmd := flagship.AddDevice{
		Brand:         brand,
		Model:         c.model,
		Storage:       storage,
		IMEI:          c.imei,
		PurchasePrice: price,
		PurchasedFrom: c.from,
		PurchaseDate:  day,
	}
	return run(ctx, func(st flagship.State) {
		d := st.Devices[0]
		fmt.Printf("Added %s (%s) for %s\n", d.Name(), shortID(d.ID), d.PurchasePrice)
	}, cmd)
}

type deleteDeviceCmd struct{}

func (*deleteDeviceCmd) Name() string     { return "delete-device" }
func (*deleteDeviceCmd) Synopsis() string { return "delete a device that was never sold" }
func (*deleteDeviceCmd) Usage() string {
	return `fsh delete-device <device-id>

  Deletes a device entered by mistake. Only devices in stock can be deleted.
  The id can be shortened to any unique prefix.
`
}
func (*deleteDeviceCmd) SetFlags(f *flag.FlagSet) {}

func (c *deleteDeviceCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: delete-device takes exactly one device id.")
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
	return run(ctx, func(flagship.State) {
		fmt.Printf("Deleted %s (%s)\n", d.Name(), d.IMEI)
	}, flagship.DeleteDevice{DeviceID: d.ID})
}

type inventoryCmd struct {
	query string
}

func (*inventoryCmd) Name() string     { return "inventory" }
func (*inventoryCmd) Synopsis() string { return "list the devices in stock" }
func (*inventoryCmd) Usage() string {
	return `fsh inventory [-q <query>]

  Lists the devices in stock and their total purchase value. The query
  matches the model or the IMEI, ignoring case.
`
}

func (c *inventoryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "q", "", "Filter by model or IMEI")
}

func (c *inventoryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return view(ctx, func(st flagship.State) string {
		return renderer.RenderInventory(renderer.NewInventory(st, c.query))
	})
}

type addModelCmd struct {
	brand string
}

func (*addModelCmd) Name() string     { return "add-model" }
func (*addModelCmd) Synopsis() string { return "register a model name for a brand" }
func (*addModelCmd) Usage() string {
	return `fsh add-model -brand <brand> <model>

  Registers a model name offered when adding devices.
`
}

func (c *addModelCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.brand, "brand", string(flagship.IPhone), "Brand of the model (iPhone or Samsung)")
}

func (c *addModelCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: add-model takes exactly one model name.")
		return subcommands.ExitUsageError
	}
	brand, err := flagship.ParseBrand(c.brand)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing brand: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, printModels(brand), flagship.AddCustomModel{Brand: brand, Name: f.Arg(0)})
}

type removeModelCmd struct {
	brand string
}

func (*removeModelCmd) Name() string     { return "remove-model" }
func (*removeModelCmd) Synopsis() string { return "unregister a model name" }
func (*removeModelCmd) Usage() string {
	return `fsh remove-model -brand <brand> <model>
`
}

func (c *removeModelCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.brand, "brand", string(flagship.IPhone), "Brand of the model (iPhone or Samsung)")
}

func (c *removeModelCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: remove-model takes exactly one model name.")
		return subcommands.ExitUsageError
	}
	brand, err := flagship.ParseBrand(c.brand)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing brand: %v\n", err)
		return subcommands.ExitUsageError
	}
	return run(ctx, printModels(brand), flagship.RemoveCustomModel{Brand: brand, Name: f.Arg(0)})
}

func printModels(brand flagship.Brand) func(flagship.State) {
	return func(st flagship.State) {
		fmt.Printf("%s models: %v\n", brand, st.CustomModels[brand])
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
