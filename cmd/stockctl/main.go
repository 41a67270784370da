package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/pos-suite/backend-go/internal/archive"
	"github.com/pos-suite/backend-go/internal/domain"
	"github.com/pos-suite/backend-go/internal/engine"
	"github.com/pos-suite/backend-go/internal/factstore"
	"github.com/pos-suite/backend-go/internal/threshold"
)

func newBackendURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "backend-url",
		Usage:   "Base URL of the POS backend",
		Value:   "http://localhost:3000",
		EnvVars: []string{"BACKEND_BASE_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "stockctl",
		Usage: "One-shot reconciliation and archive maintenance",
		Commands: []*cli.Command{
			{
				Name:  "reconcile",
				Usage: "Fetch all collections once and print the reconciled stock table",
				Flags: []cli.Flag{
					newBackendURLFlag(),
					&cli.StringFlag{
						Name:  "branch",
						Usage: "Limit output to one branch id",
					},
					&cli.IntFlag{
						Name:  "critical",
						Usage: "Critical floor",
						Value: threshold.DefaultConfig().CriticalFloor,
					},
					&cli.IntFlag{
						Name:  "warning-low",
						Usage: "Warning band low bound",
						Value: threshold.DefaultConfig().WarningLow,
					},
					&cli.IntFlag{
						Name:  "warning-high",
						Usage: "Warning band high bound",
						Value: threshold.DefaultConfig().WarningHigh,
					},
				},
				Action: runReconcile,
			},
			{
				Name:  "archive",
				Usage: "Archive database maintenance",
				Subcommands: []*cli.Command{
					{
						Name:  "init",
						Usage: "Create the archive tables",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:     "db-url",
								Usage:    "Archive database connection string",
								Required: true,
								EnvVars:  []string{"ARCHIVE_DATABASE_URL"},
							},
						},
						Action: runArchiveInit,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runReconcile(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(c.Context, 30*time.Second)
	defer cancel()

	client := factstore.NewHTTPClient(c.String("backend-url"), 10*time.Second)
	policy := threshold.NewPolicy(threshold.Config{
		CriticalFloor: c.Int("critical"),
		WarningLow:    c.Int("warning-low"),
		WarningHigh:   c.Int("warning-high"),
	})

	inventory, err := client.Inventory(ctx)
	if err != nil {
		return err
	}
	products, err := client.Products(ctx)
	if err != nil {
		return err
	}
	branches, err := client.Branches(ctx)
	if err != nil {
		return err
	}

	rows, diags := engine.BuildStockTable(inventory, products, branches, policy)

	branchID := c.String("branch")
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BRANCH\tCODE\tPRODUCT\tQTY\tSEVERITY\tUPDATED")
	printed := 0
	for _, row := range rows {
		if branchID != "" && row.BranchID != branchID {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			row.BranchName, row.ProductCode, row.ProductName,
			row.Quantity, row.Severity, row.UpdatedAt.UTC().Format(time.RFC3339))
		printed++
	}
	if err := w.Flush(); err != nil {
		return err
	}

	low := engine.LowStock(inventory, policy, domain.Scope{BranchID: branchID})
	fmt.Printf("\n%d rows, %d critically low", printed, len(low))
	if diags.UnknownProducts > 0 || diags.UnknownBranches > 0 {
		fmt.Printf(" (%d unknown products, %d unknown branches)",
			diags.UnknownProducts, diags.UnknownBranches)
	}
	fmt.Println()
	return nil
}

func runArchiveInit(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(c.Context); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(c.Context, archive.Schema); err != nil {
		return fmt.Errorf("failed to apply archive schema: %w", err)
	}

	fmt.Println("archive schema applied")
	return nil
}
