package editor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/invoice-drafts/models"
)

func TestReconcileNote(t *testing.T) {
	tests := []struct {
		name     string
		header   decimal.NullDecimal
		number   string
		supplier string
		mismatch bool
		note     string
	}{
		{
			name:     "items above header",
			header:   decimal.NewNullDecimal(dec("45")),
			number:   "INV-7",
			supplier: "Acme",
			mismatch: true,
			note:     "[auto] Расхождение сумм: по позициям 50.00, в шапке 45.00, разница +5.00 (счёт №INV-7, поставщик Acme)",
		},
		{
			name:     "items below header without number or supplier",
			header:   decimal.NewNullDecimal(dec("52.5")),
			mismatch: true,
			note:     "[auto] Расхождение сумм: по позициям 50.00, в шапке 52.50, разница -2.50 (счёт №—, поставщик —)",
		},
		{
			name:     "missing header total counts as zero",
			number:   "1",
			supplier: "S",
			mismatch: true,
			note:     "[auto] Расхождение сумм: по позициям 50.00, в шапке 0.00, разница +50.00 (счёт №1, поставщик S)",
		},
		{
			name:   "equal totals",
			header: decimal.NewNullDecimal(dec("50")),
		},
		{
			name:   "difference below tolerance",
			header: decimal.NewNullDecimal(dec("49.996")),
		},
		{
			name:     "difference exactly at tolerance",
			header:   decimal.NewNullDecimal(dec("49.99")),
			mismatch: true,
			note:     "[auto] Расхождение сумм: по позициям 50.00, в шапке 49.99, разница +0.01 (счёт №—, поставщик —)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &models.Invoice{
				Header: models.InvoiceHeader{TotalAmount: tt.header, InvoiceNumber: tt.number, SupplierName: tt.supplier},
				Items: []models.InvoiceItem{
					{LineTotal: dec("20")},
					{LineTotal: dec("30")},
				},
			}
			r := Reconcile(inv)
			assert.Equal(t, tt.mismatch, r.Mismatch())
			if tt.mismatch {
				assert.Equal(t, tt.note, r.Note(inv))
			}
		})
	}
}

func TestApplyReconciliationIdempotent(t *testing.T) {
	inv := &models.Invoice{
		Header: models.InvoiceHeader{TotalAmount: decimal.NewNullDecimal(dec("45"))},
		Items:  []models.InvoiceItem{{LineTotal: dec("50")}},
	}

	assert.True(t, ApplyReconciliation(inv, fixedNow))
	assert.False(t, ApplyReconciliation(inv, fixedNow))
	require.Len(t, inv.Comments, 1)
	assert.Equal(t, AutoCommentAuthor, inv.Comments[0].Author)
}

// Items summing to more than the header total get one auto note on save.
func TestSaveWithMismatch(t *testing.T) {
	p, drafts, repo := newTestProcessor(t)
	ctx := context.Background()
	seedDraft(t, drafts, "45")

	d := loadDraft(t, drafts)
	d.Comments = []string{"first", "second"}
	require.NoError(t, drafts.Set(ctx, testUser, d))

	out, err := p.Save(ctx, testUser, models.IdleSession())
	require.NoError(t, err)
	assert.Equal(t, KindSuccess, out.Kind)
	assert.Equal(t, int64(1), out.InvoiceID)
	assert.True(t, out.Session.IsIdle())

	require.Len(t, repo.Saved, 1)
	comments := repo.Saved[0].Comments
	require.Len(t, comments, 3)

	auto := 0
	for _, c := range comments {
		if strings.HasPrefix(c.Message, "[auto]") {
			auto++
		}
	}
	assert.Equal(t, 1, auto)
	assert.Contains(t, comments[0].Message, "по позициям 50.00, в шапке 45.00, разница +5.00")
	assert.Equal(t, "first", comments[1].Message)
	assert.Equal(t, "second", comments[2].Message)
	assert.Equal(t, "1001", comments[1].Author)
	require.NotNil(t, comments[1].CreatedAt)
	assert.Equal(t, fixedNow, *comments[1].CreatedAt)

	got, err := p.Draft(ctx, testUser)
	require.NoError(t, err)
	assert.Nil(t, got)
}

// Matching totals save without a note.
func TestSaveWithoutMismatch(t *testing.T) {
	p, drafts, repo := newTestProcessor(t)
	ctx := context.Background()
	seedDraft(t, drafts, "50")

	out, err := p.Save(ctx, testUser, models.IdleSession())
	require.NoError(t, err)
	assert.Equal(t, KindSuccess, out.Kind)

	require.Len(t, repo.Saved, 1)
	assert.Empty(t, repo.Saved[0].Comments)

	got, err := p.Draft(ctx, testUser)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveFailureKeepsDraft(t *testing.T) {
	p, drafts, repo := newTestProcessor(t)
	ctx := context.Background()
	seedDraft(t, drafts, "45")
	before := loadDraft(t, drafts)

	repo.SaveFunc = func(ctx context.Context, inv *models.Invoice, userID int64) (int64, error) {
		return 0, errors.New("connection refused")
	}
	_, err := p.Save(ctx, testUser, models.IdleSession())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, before, loadDraft(t, drafts))

	// Retry once the repository is back.
	var saved models.Invoice
	repo.SaveFunc = func(ctx context.Context, inv *models.Invoice, userID int64) (int64, error) {
		saved = *inv
		return 42, nil
	}
	out, err := p.Save(ctx, testUser, models.IdleSession())
	require.NoError(t, err)
	assert.Equal(t, int64(42), out.InvoiceID)
	require.Len(t, saved.Comments, 1)

	got, err := p.Draft(ctx, testUser)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveKeepsExistingAutoNote(t *testing.T) {
	p, drafts, repo := newTestProcessor(t)
	ctx := context.Background()
	seedDraft(t, drafts, "45")

	d := loadDraft(t, drafts)
	note := Reconcile(&d.Invoice).Note(&d.Invoice)
	d.Invoice.AddComment(note, AutoCommentAuthor, fixedNow)
	require.NoError(t, drafts.Set(ctx, testUser, d))

	_, err := p.Save(ctx, testUser, models.IdleSession())
	require.NoError(t, err)
	require.Len(t, repo.Saved, 1)
	assert.Len(t, repo.Saved[0].Comments, 1)
}
