package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yourusername/invoice-drafts/config"
	"github.com/yourusername/invoice-drafts/models"
	"github.com/yourusername/invoice-drafts/reports"
	"github.com/yourusername/invoice-drafts/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testOpener(t *testing.T) (opener, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	require.NoError(t, repository.Migrate(db))

	cfg := &config.Config{JWTSecret: "a", JWTRefreshSecret: "b"}
	return func() (*gorm.DB, *config.Config, error) { return db, cfg, nil }, db
}

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	repo := repository.NewGormRepository(db)
	for i, supplier := range []string{"Acme", "Globex"} {
		date := time.Date(2025, 6, 10+i, 0, 0, 0, 0, time.UTC)
		_, err := repo.Save(context.Background(), &models.Invoice{
			Header: models.InvoiceHeader{
				SupplierName:  supplier,
				InvoiceNumber: "N" + supplier,
				InvoiceDate:   &date,
				TotalAmount:   decimal.NewNullDecimal(decimal.RequireFromString("12.5")),
			},
		}, 1)
		require.NoError(t, err)
	}
}

func TestQueryCommand(t *testing.T) {
	open, db := testOpener(t)
	seed(t, db)

	var out bytes.Buffer
	err := newApp(open, &out).Run([]string{"invoicectl", "query", "--from", "01.06.2025", "--to", "30.06.2025", "--supplier", "acm"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "2025-06-10\tNAcme\tAcme\t12.50")
	assert.NotContains(t, out.String(), "Globex")
	assert.Contains(t, out.String(), "1 invoice(s)")
}

func TestQueryCommandRejectsBadRange(t *testing.T) {
	open, _ := testOpener(t)

	var out bytes.Buffer
	err := newApp(open, &out).Run([]string{"invoicectl", "query", "--from", "2025-06-30", "--to", "2025-06-01"})
	assert.ErrorContains(t, err, "--to precedes --from")
}

func TestExportCommand(t *testing.T) {
	open, db := testOpener(t)
	seed(t, db)
	path := filepath.Join(t.TempDir(), "june.xlsx")

	var out bytes.Buffer
	err := newApp(open, &out).Run([]string{"invoicectl", "export", "--out", path, "--from", "2025-06-01", "--to", "2025-06-30"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "2 invoice(s) written")

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(reports.InvoicesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestUserAndTokenCommands(t *testing.T) {
	open, db := testOpener(t)

	var out bytes.Buffer
	require.NoError(t, newApp(open, &out).Run([]string{"invoicectl", "user", "add", "--chat-id", "5550001", "--name", "Ops", "--role", "accountant"}))

	var user models.User
	require.NoError(t, db.Where("chat_id = ?", 5550001).First(&user).Error)
	assert.Equal(t, "accountant", user.Role)

	out.Reset()
	require.NoError(t, newApp(open, &out).Run([]string{"invoicectl", "token", "--chat-id", "5550001"}))
	assert.Contains(t, out.String(), "access_token: ")
	assert.Contains(t, out.String(), "refresh_token: ")

	assert.Error(t, newApp(open, &out).Run([]string{"invoicectl", "token", "--chat-id", "1"}))
}

func TestMigrateCommand(t *testing.T) {
	open, _ := testOpener(t)

	var out bytes.Buffer
	require.NoError(t, newApp(open, &out).Run([]string{"invoicectl", "migrate"}))
	assert.Contains(t, out.String(), "migrations applied")
}
