package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yourusername/invoice-drafts/models"
	"gorm.io/gorm"
)

var (
	// ErrInvoiceNotFound indicates that the invoice was not found in the
	// database.
	ErrInvoiceNotFound = errors.New("invoice not found")
)

// InvoiceRepository persists finalized invoices.
type InvoiceRepository interface {
	// Save stores the invoice on behalf of userID and returns its id.
	Save(ctx context.Context, inv *models.Invoice, userID int64) (int64, error)

	// Query returns invoices dated within [from, to] (both inclusive,
	// calendar days). A non-empty supplier filters by case-insensitive
	// substring match on the supplier name.
	Query(ctx context.Context, from, to time.Time, supplier string) ([]models.Invoice, error)

	// Get returns one invoice or ErrInvoiceNotFound.
	Get(ctx context.Context, id int64) (*models.Invoice, error)
}

var _ InvoiceRepository = (*GormRepository)(nil)

// GormRepository implements InvoiceRepository on top of gorm.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate creates or updates the invoice tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.InvoiceRecord{}, &models.InvoiceItemRecord{}, &models.InvoiceCommentRecord{})
}

func (r *GormRepository) Save(ctx context.Context, inv *models.Invoice, userID int64) (int64, error) {
	record := EncodeInvoice(inv, userID)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(record).Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to save invoice: %w", err)
	}

	slog.Info("invoice saved", "invoice_id", record.ID, "user_id", userID, "items", len(record.Items))
	return int64(record.ID), nil
}

func (r *GormRepository) Query(ctx context.Context, from, to time.Time, supplier string) ([]models.Invoice, error) {
	start := startOfDay(from)
	end := startOfDay(to).AddDate(0, 0, 1)

	q := r.preload(r.db.WithContext(ctx)).
		Where("invoice_date >= ? AND invoice_date < ?", start, end)
	if s := strings.TrimSpace(supplier); s != "" {
		q = q.Where("LOWER(supplier_name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var records []models.InvoiceRecord
	if err := q.Order("invoice_date ASC, id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}

	invoices := make([]models.Invoice, 0, len(records))
	for i := range records {
		invoices = append(invoices, DecodeInvoice(&records[i]))
	}
	return invoices, nil
}

func (r *GormRepository) Get(ctx context.Context, id int64) (*models.Invoice, error) {
	var record models.InvoiceRecord
	err := r.preload(r.db.WithContext(ctx)).First(&record, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice %d: %w", id, err)
	}

	inv := DecodeInvoice(&record)
	return &inv, nil
}

func (r *GormRepository) preload(db *gorm.DB) *gorm.DB {
	byPosition := func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}
	return db.Preload("Items", byPosition).Preload("Comments", byPosition)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
