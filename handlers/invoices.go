package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/invoice-drafts/logger"
	"github.com/yourusername/invoice-drafts/reports"
	"github.com/yourusername/invoice-drafts/repository"
	"github.com/yourusername/invoice-drafts/utils"
)

type InvoiceHandler struct {
	repo repository.InvoiceRepository
}

func NewInvoiceHandler(repo repository.InvoiceRepository) *InvoiceHandler {
	return &InvoiceHandler{repo: repo}
}

type periodFilter struct {
	from     time.Time
	to       time.Time
	supplier string
}

// parsePeriod reads from, to and supplier query parameters. Dates accept
// every format of the interactive period dialog.
func parsePeriod(c *gin.Context) (periodFilter, string) {
	from, ok := utils.ParseDate(c.Query("from"))
	if !ok {
		return periodFilter{}, "from must be a date"
	}
	to, ok := utils.ParseDate(c.Query("to"))
	if !ok {
		return periodFilter{}, "to must be a date"
	}
	if to.Before(from) {
		return periodFilter{}, "to must not precede from"
	}

	supplier := strings.TrimSpace(c.Query("supplier"))
	if supplier == "-" {
		supplier = ""
	}
	return periodFilter{from: from, to: to, supplier: supplier}, ""
}

// List returns invoices dated within the period.
func (h *InvoiceHandler) List(c *gin.Context) {
	filter, msg := parsePeriod(c)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	invoices, err := h.repo.Query(c.Request.Context(), filter.from, filter.to, filter.supplier)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to query invoices", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invoices"})
		return
	}

	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice id"})
		return
	}

	invoice, err := h.repo.Get(c.Request.Context(), id)
	if errors.Is(err, repository.ErrInvoiceNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Invoice not found"})
		return
	}
	if err != nil {
		logger.Error(c.Request.Context(), "failed to load invoice", "invoice_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch invoice"})
		return
	}

	c.JSON(http.StatusOK, invoice)
}

// Export streams the period's invoices as an XLSX workbook.
func (h *InvoiceHandler) Export(c *gin.Context) {
	filter, msg := parsePeriod(c)
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	invoices, err := h.repo.Query(c.Request.Context(), filter.from, filter.to, filter.supplier)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to query invoices for export", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch data for export"})
		return
	}

	c.Header("Content-Type", reports.ContentType)
	c.Header("Content-Disposition", "attachment; filename="+reports.FileName(time.Now()))
	if err := reports.WriteInvoicesXLSX(c.Writer, invoices); err != nil {
		logger.Error(c.Request.Context(), "failed to write export", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
	}
}
