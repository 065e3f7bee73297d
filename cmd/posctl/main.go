package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"go-pos-billing/internal/config"
	"go-pos-billing/internal/events"
	"go-pos-billing/internal/receipt"
	"go-pos-billing/internal/repository"
	"go-pos-billing/internal/service"
	"go-pos-billing/pkg/database"
	"go-pos-billing/pkg/logger"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("posctl failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "posctl",
		Usage: "maintenance tasks for the POS billing database",
		Before: func(c *cli.Context) error {
			cfg := config.Load()
			logger.Setup(cfg.LogLevel, true)
			c.App.Metadata = map[string]interface{}{"config": cfg}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "bring the schema up to date",
				Action: func(c *cli.Context) error {
					cfg := configFrom(c)
					db, err := database.Connect(cfg)
					if err != nil {
						return err
					}
					return database.Migrate(db, cfg)
				},
			},
			{
				Name:  "seed",
				Usage: "insert the sample grocery catalog",
				Action: func(c *cli.Context) error {
					db, err := openMigrated(c)
					if err != nil {
						return err
					}
					n, err := database.Seed(db)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "%d product(s) created\n", n)
					return nil
				},
			},
			{
				Name:  "products",
				Usage: "list the catalog",
				Action: func(c *cli.Context) error {
					db, err := openMigrated(c)
					if err != nil {
						return err
					}
					catalog := service.NewCatalogService(repository.NewProductRepo(db), db, events.Nop{})
					products, err := catalog.ListProducts(c.Context)
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tNAME\tUNIT\tPRICE\tSTOCK")
					for _, p := range products {
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Unit, p.Price.StringFixed(2), p.Stock)
					}
					return w.Flush()
				},
			},
			{
				Name:  "bill",
				Usage: "inspect bills",
				Subcommands: []*cli.Command{
					{
						Name:      "show",
						Usage:     "print a bill and its items",
						ArgsUsage: "<id>",
						Action: func(c *cli.Context) error {
							billing, err := openBilling(c)
							if err != nil {
								return err
							}
							return showBill(c.Context, c.App.Writer, billing, c.Args().First())
						},
					},
					{
						Name:      "receipt",
						Usage:     "write a bill's PDF receipt",
						ArgsUsage: "<id>",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default INV-<date>-<id>.pdf)"},
						},
						Action: func(c *cli.Context) error {
							billing, err := openBilling(c)
							if err != nil {
								return err
							}
							path, err := writeReceipt(c.Context, billing, c.Args().First(), c.String("out"), configFrom(c).ShopName)
							if err != nil {
								return err
							}
							fmt.Fprintf(c.App.Writer, "receipt written to %s\n", path)
							return nil
						},
					},
				},
			},
		},
	}
}

func configFrom(c *cli.Context) config.Config {
	return c.App.Metadata["config"].(config.Config)
}

func openMigrated(c *cli.Context) (*gorm.DB, error) {
	cfg := configFrom(c)
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, cfg); err != nil {
		return nil, err
	}
	return db, nil
}

func openBilling(c *cli.Context) (service.BillingService, error) {
	db, err := openMigrated(c)
	if err != nil {
		return nil, err
	}
	return service.NewBillingService(repository.NewProductRepo(db), repository.NewBillRepo(db), db, events.Nop{}, service.DiscountPolicy{}), nil
}

func parseBillID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, cli.Exit(fmt.Sprintf("invalid bill id %q", arg), 2)
	}
	return uint(id), nil
}

func showBill(ctx context.Context, out io.Writer, billing service.BillingService, arg string) error {
	id, err := parseBillID(arg)
	if err != nil {
		return err
	}
	bill, items, err := billing.GetBill(ctx, id)
	if err != nil {
		return err
	}
	if bill == nil {
		return cli.Exit(fmt.Sprintf("bill %d not found", id), 1)
	}

	fmt.Fprintf(out, "%s  %s\n", receipt.InvoiceNumber(bill), bill.CreatedAt.Format("2006-01-02 15:04"))
	if bill.CustomerName != nil {
		fmt.Fprintf(out, "Customer: %s\n", *bill.CustomerName)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tQTY\tPRICE\tAMOUNT")
	for _, it := range items {
		name := fmt.Sprintf("#%d", it.ProductID)
		if it.Product != nil {
			name = it.Product.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, it.Quantity, it.UnitPrice.StringFixed(2), it.LineTotal.StringFixed(2))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Subtotal: %s\nDiscount (%s%%): %s\nTotal: %s\n",
		bill.Subtotal.StringFixed(2), bill.DiscountPercent, bill.DiscountAmount.StringFixed(2), bill.Total.StringFixed(2))
	return nil
}

func writeReceipt(ctx context.Context, billing service.BillingService, arg, path, shopName string) (string, error) {
	id, err := parseBillID(arg)
	if err != nil {
		return "", err
	}
	bill, items, err := billing.GetBill(ctx, id)
	if err != nil {
		return "", err
	}
	if bill == nil {
		return "", cli.Exit(fmt.Sprintf("bill %d not found", id), 1)
	}

	if path == "" {
		path = receipt.InvoiceNumber(bill) + ".pdf"
	}
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := receipt.Render(f, bill, items, shopName); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}
