package editor

import (
	"context"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourusername/invoice-drafts/logger"
	"github.com/yourusername/invoice-drafts/models"
	"github.com/yourusername/invoice-drafts/utils"
)

// TokenStatus is the per-token result of a bulk edit.
type TokenStatus string

const (
	TokenApplied    TokenStatus = "applied"
	TokenUnknownKey TokenStatus = "unknown_key"
	TokenBadValue   TokenStatus = "bad_value"
	TokenMalformed  TokenStatus = "malformed"
)

type TokenResult struct {
	Token  string      `json:"token"`
	Key    string      `json:"key,omitempty"`
	Status TokenStatus `json:"status"`
}

var bulkSeparator = regexp.MustCompile(`[;,]|\s{2,}`)

type bulkPair struct {
	token string
	key   string
	value string
}

// splitBulkSpec breaks "k=v; k2=v2" into pairs. Tokens without "=" come
// back with an empty key.
func splitBulkSpec(spec string) []bulkPair {
	var pairs []bulkPair
	for _, tok := range bulkSeparator.Split(spec, -1) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		key, value, found := strings.Cut(tok, "=")
		if !found {
			pairs = append(pairs, bulkPair{token: tok})
			continue
		}
		pairs = append(pairs, bulkPair{
			token: tok,
			key:   strings.ToLower(strings.TrimSpace(key)),
			value: strings.TrimSpace(value),
		})
	}
	return pairs
}

// headerSetter applies a value and reports whether it was accepted.
type headerSetter func(h *models.InvoiceHeader, value string) bool

func setNullDecimal(dst *decimal.NullDecimal, value string) bool {
	d, err := utils.ParseDecimal(value)
	if err != nil {
		return false
	}
	*dst = decimal.NewNullDecimal(d)
	return true
}

func setInvoiceDate(h *models.InvoiceHeader, v string) bool {
	d, ok := utils.ParseDate(v)
	if ok {
		h.InvoiceDate = &d
	}
	return ok
}

func setDueDate(h *models.InvoiceHeader, v string) bool {
	d, ok := utils.ParseDate(v)
	if ok {
		h.DueDate = &d
	}
	return ok
}

func setSupplier(h *models.InvoiceHeader, v string) bool      { h.SupplierName = v; return true }
func setSupplierTaxID(h *models.InvoiceHeader, v string) bool { h.SupplierTaxID = v; return true }
func setCustomer(h *models.InvoiceHeader, v string) bool      { h.CustomerName = v; return true }
func setCustomerTaxID(h *models.InvoiceHeader, v string) bool { h.CustomerTaxID = v; return true }
func setNumber(h *models.InvoiceHeader, v string) bool        { h.InvoiceNumber = v; return true }
func setCurrency(h *models.InvoiceHeader, v string) bool      { h.Currency = strings.ToUpper(v); return true }
func setSubtotal(h *models.InvoiceHeader, v string) bool      { return setNullDecimal(&h.Subtotal, v) }
func setTax(h *models.InvoiceHeader, v string) bool           { return setNullDecimal(&h.TaxAmount, v) }
func setTotal(h *models.InvoiceHeader, v string) bool         { return setNullDecimal(&h.TotalAmount, v) }

var headerAliases = map[string]headerSetter{
	"supplier":        setSupplier,
	"поставщик":       setSupplier,
	"продавец":        setSupplier,
	"supplier_inn":    setSupplierTaxID,
	"supplier_tax_id": setSupplierTaxID,
	"инн_поставщика":  setSupplierTaxID,
	"client":          setCustomer,
	"customer":        setCustomer,
	"клиент":          setCustomer,
	"покупатель":      setCustomer,
	"client_inn":      setCustomerTaxID,
	"customer_tax_id": setCustomerTaxID,
	"инн_покупателя":  setCustomerTaxID,
	"doc_number":      setNumber,
	"number":          setNumber,
	"номер":           setNumber,
	"№":               setNumber,
	"date":            setInvoiceDate,
	"дата":            setInvoiceDate,
	"due":             setDueDate,
	"due_date":        setDueDate,
	"срок":            setDueDate,
	"срок_оплаты":     setDueDate,
	"currency":        setCurrency,
	"валюта":          setCurrency,
	"subtotal":        setSubtotal,
	"без_ндс":         setSubtotal,
	"tax":             setTax,
	"vat":             setTax,
	"ндс":             setTax,
	"total":           setTotal,
	"total_sum":       setTotal,
	"sum":             setTotal,
	"итого":           setTotal,
	"сумма":           setTotal,
}

type itemSetter func(it *models.InvoiceItem, value string) bool

func setDecimal(dst *decimal.Decimal, value string) bool {
	d, err := utils.ParseDecimal(value)
	if err != nil {
		return false
	}
	*dst = d
	return true
}

func setItemName(it *models.InvoiceItem, v string) bool     { it.Description = v; return true }
func setItemCode(it *models.InvoiceItem, v string) bool     { it.SKU = v; return true }
func setItemCurrency(it *models.InvoiceItem, v string) bool { it.Currency = strings.ToUpper(v); return true }
func setItemQty(it *models.InvoiceItem, v string) bool      { return setDecimal(&it.Quantity, v) }
func setItemPrice(it *models.InvoiceItem, v string) bool    { return setDecimal(&it.UnitPrice, v) }
func setItemTotal(it *models.InvoiceItem, v string) bool    { return setDecimal(&it.LineTotal, v) }

var itemAliases = map[string]itemSetter{
	"name":         setItemName,
	"description":  setItemName,
	"наименование": setItemName,
	"название":     setItemName,
	"товар":        setItemName,
	"code":         setItemCode,
	"sku":          setItemCode,
	"код":          setItemCode,
	"артикул":      setItemCode,
	"qty":          setItemQty,
	"quantity":     setItemQty,
	"кол":          setItemQty,
	"кол-во":       setItemQty,
	"количество":   setItemQty,
	"price":        setItemPrice,
	"цена":         setItemPrice,
	"total":        setItemTotal,
	"sum":          setItemTotal,
	"сумма":        setItemTotal,
	"итого":        setItemTotal,
	"currency":     setItemCurrency,
	"валюта":       setItemCurrency,
}

// applyBulk runs apply for every pair whose key has a setter. Nothing here
// fails the whole edit: unknown keys and unparsable values are recorded per
// token and skipped.
func applyBulk(pairs []bulkPair, lookup func(key string) (func(value string) bool, bool)) ([]TokenResult, int) {
	results := make([]TokenResult, 0, len(pairs))
	applied := 0
	for _, pair := range pairs {
		res := TokenResult{Token: pair.token, Key: pair.key}
		switch {
		case pair.key == "":
			res.Status = TokenMalformed
		default:
			set, ok := lookup(pair.key)
			if !ok {
				res.Status = TokenUnknownKey
			} else if set(pair.value) {
				res.Status = TokenApplied
				applied++
			} else {
				res.Status = TokenBadValue
			}
		}
		results = append(results, res)
	}
	return results, applied
}

func bulkOutcome(results []TokenResult, applied int, sess models.Session, draft *models.InvoiceDraft) Outcome {
	out := Outcome{Kind: KindSuccess, Message: MsgBulkApplied, Tokens: results, Session: sess, Draft: draft}
	if applied == 0 {
		out.Kind = KindFailure
		out.Message = MsgBulkNothingApplied
	}
	return out
}

// BulkEditHeader applies a "key=value; key=value" list to the header on a
// best-effort basis. The session is passed through unchanged.
func (p *Processor) BulkEditHeader(ctx context.Context, userID int64, sess models.Session, spec string) (Outcome, error) {
	draft, err := p.Draft(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if draft == nil {
		return rejected(MsgNoDraft, ErrNoDraft, sess), nil
	}

	header := &draft.Invoice.Header
	results, applied := applyBulk(splitBulkSpec(spec), func(key string) (func(string) bool, bool) {
		set, ok := headerAliases[key]
		if !ok {
			return nil, false
		}
		return func(v string) bool { return set(header, v) }, true
	})

	if applied > 0 {
		if err := p.store(ctx, userID, draft); err != nil {
			return Outcome{}, err
		}
	}

	logger.Info(ctx, "bulk header edit", "tokens", len(results), "applied", applied)
	return bulkOutcome(results, applied, sess, draft), nil
}

// BulkEditItem is BulkEditHeader for item index (1-based).
func (p *Processor) BulkEditItem(ctx context.Context, userID int64, sess models.Session, index int, spec string) (Outcome, error) {
	draft, err := p.Draft(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}
	if draft == nil {
		return rejected(MsgNoDraft, ErrNoDraft, sess), nil
	}
	if err := checkIndex(draft, index); err != nil {
		return rejected(MsgIndexOutOfRange, err, sess), nil
	}

	item := &draft.Invoice.Items[index-1]
	results, applied := applyBulk(splitBulkSpec(spec), func(key string) (func(string) bool, bool) {
		set, ok := itemAliases[key]
		if !ok {
			return nil, false
		}
		return func(v string) bool { return set(item, v) }, true
	})

	if applied > 0 {
		if err := p.store(ctx, userID, draft); err != nil {
			return Outcome{}, err
		}
	}

	logger.Info(ctx, "bulk item edit", "index", index, "tokens", len(results), "applied", applied)
	return bulkOutcome(results, applied, sess, draft), nil
}
