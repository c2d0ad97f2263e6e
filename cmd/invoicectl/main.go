package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/yourusername/invoice-drafts/config"
	"github.com/yourusername/invoice-drafts/logger"
	"github.com/yourusername/invoice-drafts/middleware"
	"github.com/yourusername/invoice-drafts/models"
	"github.com/yourusername/invoice-drafts/reports"
	"github.com/yourusername/invoice-drafts/repository"
	"github.com/yourusername/invoice-drafts/utils"
	"gorm.io/gorm"
)

// opener returns a migrated database and the configuration in effect.
type opener func() (*gorm.DB, *config.Config, error)

func openFromEnv() (*gorm.DB, *config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger.Init(cfg.LogLevel, "text")
	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}

func periodFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "from", Usage: "first invoice date, inclusive", Required: true},
		&cli.StringFlag{Name: "to", Usage: "last invoice date, inclusive", Required: true},
		&cli.StringFlag{Name: "supplier", Usage: "case-insensitive supplier name fragment"},
	}
}

func parsePeriod(c *cli.Context) (time.Time, time.Time, error) {
	from, ok := utils.ParseDate(c.String("from"))
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from %q", c.String("from"))
	}
	to, ok := utils.ParseDate(c.String("to"))
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to %q", c.String("to"))
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to precedes --from")
	}
	return from, to, nil
}

func newApp(open opener, out io.Writer) *cli.App {
	queryPeriod := func(c *cli.Context) ([]models.Invoice, error) {
		from, to, err := parsePeriod(c)
		if err != nil {
			return nil, err
		}
		db, _, err := open()
		if err != nil {
			return nil, err
		}
		return repository.NewGormRepository(db).Query(c.Context, from, to, strings.TrimSpace(c.String("supplier")))
	}

	return &cli.App{
		Name:      "invoicectl",
		Usage:     "operate the invoice drafts database",
		Writer:    out,
		ErrWriter: out,
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "create or update database tables",
				Action: func(c *cli.Context) error {
					if _, _, err := open(); err != nil {
						return err
					}
					fmt.Fprintln(out, "migrations applied")
					return nil
				},
			},
			{
				Name:  "user",
				Usage: "manage operators",
				Subcommands: []*cli.Command{
					{
						Name:  "add",
						Usage: "register a chat user",
						Flags: []cli.Flag{
							&cli.Int64Flag{Name: "chat-id", Required: true},
							&cli.StringFlag{Name: "name", Required: true},
							&cli.StringFlag{Name: "role", Value: "user"},
						},
						Action: func(c *cli.Context) error {
							db, _, err := open()
							if err != nil {
								return err
							}
							user := models.User{ChatID: c.Int64("chat-id"), Name: c.String("name"), Role: c.String("role"), IsActive: true}
							if err := db.WithContext(c.Context).Create(&user).Error; err != nil {
								return fmt.Errorf("failed to create user: %w", err)
							}
							fmt.Fprintf(out, "user %d created\n", user.ChatID)
							return nil
						},
					},
				},
			},
			{
				Name:  "token",
				Usage: "issue access and refresh tokens for a user",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "chat-id", Required: true},
					&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
				},
				Action: func(c *cli.Context) error {
					db, cfg, err := open()
					if err != nil {
						return err
					}
					var user models.User
					if err := db.WithContext(c.Context).Where("chat_id = ?", c.Int64("chat-id")).First(&user).Error; err != nil {
						return fmt.Errorf("user %d not found: %w", c.Int64("chat-id"), err)
					}
					access, err := middleware.GenerateToken(user.ChatID, user.Role, cfg.JWTSecret, c.Duration("ttl"))
					if err != nil {
						return err
					}
					refresh, err := middleware.GenerateToken(user.ChatID, user.Role, cfg.JWTRefreshSecret, 7*24*time.Hour)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "access_token: %s\nrefresh_token: %s\n", access, refresh)
					return nil
				},
			},
			{
				Name:  "query",
				Usage: "list invoices in a date range",
				Flags: periodFlags(),
				Action: func(c *cli.Context) error {
					invoices, err := queryPeriod(c)
					if err != nil {
						return err
					}
					for _, inv := range invoices {
						date := ""
						if inv.Header.InvoiceDate != nil {
							date = inv.Header.InvoiceDate.Format("2006-01-02")
						}
						total := "-"
						if inv.Header.TotalAmount.Valid {
							total = inv.Header.TotalAmount.Decimal.StringFixed(2)
						}
						fmt.Fprintf(out, "%d\t%s\t%s\t%s\t%s\n", inv.ID, date, inv.Header.InvoiceNumber, inv.Header.SupplierName, total)
					}
					fmt.Fprintf(out, "%d invoice(s)\n", len(invoices))
					return nil
				},
			},
			{
				Name:  "export",
				Usage: "write invoices in a date range to an XLSX file",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "out", Usage: "output file", Value: reports.FileName(time.Now())},
				}, periodFlags()...),
				Action: func(c *cli.Context) error {
					invoices, err := queryPeriod(c)
					if err != nil {
						return err
					}
					f, err := os.Create(c.String("out"))
					if err != nil {
						return err
					}
					defer f.Close()
					if err := reports.WriteInvoicesXLSX(f, invoices); err != nil {
						return err
					}
					fmt.Fprintf(out, "%d invoice(s) written to %s\n", len(invoices), c.String("out"))
					return nil
				},
			},
		},
	}
}

func main() {
	if err := newApp(openFromEnv, os.Stdout).RunContext(context.Background(), os.Args); err != nil {
		slog.Error("invoicectl failed", "error", err)
		os.Exit(1)
	}
}
