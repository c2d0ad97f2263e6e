package editor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/invoice-drafts/models"
)

func TestSplitBulkSpec(t *testing.T) {
	pairs := splitBulkSpec("Supplier = Acme;total=10,  note  date=01.02.2024 ;; a=b=c")
	require.Len(t, pairs, 5)

	assert.Equal(t, "supplier", pairs[0].key)
	assert.Equal(t, "Acme", pairs[0].value)
	assert.Equal(t, "total", pairs[1].key)
	assert.Equal(t, "10", pairs[1].value)
	assert.Equal(t, "", pairs[2].key)
	assert.Equal(t, "note", pairs[2].token)
	assert.Equal(t, "date", pairs[3].key)
	assert.Equal(t, "a", pairs[4].key)
	assert.Equal(t, "b=c", pairs[4].value)
}

// A bad total in a bulk edit is skipped while the supplier still applies.
func TestBulkEditHeaderLenient(t *testing.T) {
	p, drafts, _ := newTestProcessor(t)
	ctx := context.Background()
	seedDraft(t, drafts, "45")

	out, err := p.BulkEditHeader(ctx, testUser, models.IdleSession(), "supplier=Acme; total=not-a-number")
	require.NoError(t, err)
	assert.Equal(t, KindSuccess, out.Kind)
	require.Len(t, out.Tokens, 2)
	assert.Equal(t, TokenApplied, out.Tokens[0].Status)
	assert.Equal(t, TokenBadValue, out.Tokens[1].Status)

	h := loadDraft(t, drafts).Invoice.Header
	assert.Equal(t, "Acme", h.SupplierName)
	assert.True(t, dec("45").Equal(h.TotalAmount.Decimal))
}

func TestBulkEditHeaderAliases(t *testing.T) {
	p, drafts, _ := newTestProcessor(t)
	ctx := context.Background()
	seedDraft(t, drafts, "45")

	spec := "Поставщик=ООО Ромашка; ИНН_поставщика=7701234567; покупатель=Globex; номер=17; " +
		"дата=12 июня 2025; due_date=2025-07-01; валюта=rub; ндс=7.5; без_ндс=37.5; итого=45.5; color=red"
	out, err := p.BulkEditHeader(ctx, testUser, models.IdleSession(), spec)
	require.NoError(t, err)
	assert.Equal(t, KindSuccess, out.Kind)
	require.Len(t, out.Tokens, 11)
	assert.Equal(t, TokenUnknownKey, out.Tokens[10].Status)

	h := loadDraft(t, drafts).Invoice.Header
	assert.Equal(t, "ООО Ромашка", h.SupplierName)
	assert.Equal(t, "7701234567", h.SupplierTaxID)
	assert.Equal(t, "Globex", h.CustomerName)
	assert.Equal(t, "17", h.InvoiceNumber)
	require.NotNil(t, h.InvoiceDate)
	assert.Equal(t, "2025-06-12", h.InvoiceDate.Format("2006-01-02"))
	require.NotNil(t, h.DueDate)
	assert.Equal(t, "2025-07-01", h.DueDate.Format("2006-01-02"))
	assert.Equal(t, "RUB", h.Currency)
	assert.True(t, dec("7.5").Equal(h.TaxAmount.Decimal))
	assert.True(t, dec("37.5").Equal(h.Subtotal.Decimal))
	assert.True(t, dec("45.5").Equal(h.TotalAmount.Decimal))
}

func TestBulkEditNothingApplied(t *testing.T) {
	p, drafts, _ := newTestProcessor(t)
	ctx := context.Background()
	seedDraft(t, drafts, "45")
	before := loadDraft(t, drafts)

	out, err := p.BulkEditHeader(ctx, testUser, models.IdleSession(), "color=red; garbage")
	require.NoError(t, err)
	assert.Equal(t, KindFailure, out.Kind)
	assert.Equal(t, MsgBulkNothingApplied, out.Message)
	require.Len(t, out.Tokens, 2)
	assert.Equal(t, TokenUnknownKey, out.Tokens[0].Status)
	assert.Equal(t, TokenMalformed, out.Tokens[1].Status)
	assert.Equal(t, before, loadDraft(t, drafts))
}

func TestBulkEditItem(t *testing.T) {
	p, drafts, _ := newTestProcessor(t)
	ctx := context.Background()
	seedDraft(t, drafts, "45")

	sess := models.Session{State: models.StateAwaitingComment}
	out, err := p.BulkEditItem(ctx, testUser, sess, 1, "наименование=Болт М8  кол-во=12  цена=abc  артикул=B-8")
	require.NoError(t, err)
	assert.Equal(t, KindSuccess, out.Kind)
	assert.Equal(t, sess, out.Session)

	item := loadDraft(t, drafts).Invoice.Items[0]
	assert.Equal(t, "Болт М8", item.Description)
	assert.Equal(t, "B-8", item.SKU)
	assert.True(t, dec("12").Equal(item.Quantity))
	assert.True(t, dec("2").Equal(item.UnitPrice))

	out, err = p.BulkEditItem(ctx, testUser, sess, 9, "name=x")
	require.NoError(t, err)
	assert.Equal(t, KindRejected, out.Kind)
	assert.Equal(t, MsgIndexOutOfRange, out.Message)
}
