package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/invoice-drafts/config"
	"github.com/yourusername/invoice-drafts/editor"
	"github.com/yourusername/invoice-drafts/logger"
	"github.com/yourusername/invoice-drafts/middleware"
	"github.com/yourusername/invoice-drafts/models"
	"github.com/yourusername/invoice-drafts/storage"
	"github.com/yourusername/invoice-drafts/store"
	"github.com/yourusername/invoice-drafts/utils"
)

// SessionStore holds the per-user conversation state.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (models.Session, error)
	Set(ctx context.Context, userID int64, sess models.Session) error
}

type DraftHandler struct {
	processor *editor.Processor
	sessions  SessionStore
	ocrClient utils.OCRClientInterface
	archive   storage.Archive
	locks     *store.UserLocks
	config    *config.Config
}

// NewDraftHandler wires the command API. archive may be nil when source
// files are only kept locally.
func NewDraftHandler(processor *editor.Processor, sessions SessionStore, ocrClient utils.OCRClientInterface, archive storage.Archive, cfg *config.Config) *DraftHandler {
	h := &DraftHandler{
		processor: processor,
		sessions:  sessions,
		ocrClient: ocrClient,
		archive:   archive,
		config:    cfg,
	}
	if cfg.SerializeUserCommands {
		h.locks = store.NewUserLocks()
	}
	return h
}

// OutcomeResponse is the JSON form of an editor.Outcome.
type OutcomeResponse struct {
	editor.Outcome
	Reason string `json:"reason,omitempty"`
}

type commandFunc func(ctx context.Context, userID int64, sess models.Session) (editor.Outcome, error)

// run loads the session, executes one command and stores the session the
// command returned. Guard failures are answered with 422; the session is
// left as it was when the command itself fails.
func (h *DraftHandler) run(c *gin.Context, fn commandFunc) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if h.locks != nil {
		unlock := h.locks.Lock(userID)
		defer unlock()
	}

	ctx := c.Request.Context()
	sess, err := h.sessions.Get(ctx, userID)
	if err != nil {
		logger.Error(ctx, "failed to load session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
		return
	}

	out, err := fn(ctx, userID, sess)
	if errors.Is(err, editor.ErrUnknownField) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		logger.Error(ctx, "command failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process command"})
		return
	}

	if err := h.sessions.Set(ctx, userID, out.Session); err != nil {
		logger.Error(ctx, "failed to store session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store session"})
		return
	}

	respondOutcome(c, out)
}

func respondOutcome(c *gin.Context, out editor.Outcome) {
	resp := OutcomeResponse{Outcome: out}
	if out.Reason != nil {
		resp.Reason = out.Reason.Error()
	}

	status := http.StatusOK
	if out.Kind == editor.KindRejected {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, resp)
}

// Upload stores the scan, runs OCR on it and starts a new draft.
func (h *DraftHandler) Upload(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	ctx := c.Request.Context()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.config.MaxUploadMB<<20)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
		return
	}
	saved, err := storage.SaveUpload(h.config.UploadDir, fileHeader.Filename, src, time.Now())
	src.Close()
	if err != nil {
		logger.Error(ctx, "failed to save upload", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save upload"})
		return
	}

	result, err := h.ocrClient.Extract(ctx, saved.Path)
	if err != nil {
		logger.Error(ctx, "ocr extraction failed", "provider", h.ocrClient.Provider(), "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("OCR failed: %v", err)})
		return
	}

	source := &models.InvoiceSourceInfo{
		FilePath:    saved.Path,
		FileHash:    saved.Hash,
		OCRProvider: h.ocrClient.Provider(),
	}
	if payloadPath, err := writeRawPayload(saved.Path, result); err != nil {
		logger.Warn(ctx, "failed to keep raw ocr payload", "error", err)
	} else {
		source.RawPayloadPath = payloadPath
	}
	if url, err := h.archiveUpload(ctx, userID, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), saved); err != nil {
		logger.Warn(ctx, "failed to archive upload", "error", err)
	} else if url != "" {
		source.FilePath = url
	}

	h.run(c, func(ctx context.Context, userID int64, _ models.Session) (editor.Outcome, error) {
		return h.processor.StartDraft(ctx, userID, result, source)
	})
}

func writeRawPayload(uploadPath string, result *models.ExtractionResult) (string, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	path := uploadPath + ".ocr.json"
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (h *DraftHandler) archiveUpload(ctx context.Context, userID int64, filename, contentType string, saved *storage.SavedFile) (string, error) {
	if h.archive == nil {
		return "", nil
	}
	f, err := os.Open(saved.Path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return h.archive.Store(ctx, storage.ObjectName(userID, filepath.Base(filename)), f, saved.Size, contentType)
}

// Current returns the user's draft and session.
func (h *DraftHandler) Current(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	ctx := c.Request.Context()

	draft, err := h.processor.Draft(ctx, userID)
	if err != nil {
		logger.Error(ctx, "failed to load draft", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load draft"})
		return
	}
	sess, err := h.sessions.Get(ctx, userID)
	if err != nil {
		logger.Error(ctx, "failed to load session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
		return
	}
	if draft == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No draft", "session": sess})
		return
	}

	c.JSON(http.StatusOK, gin.H{"draft": draft, "session": sess})
}

func (h *DraftHandler) Abandon(c *gin.Context) {
	h.run(c, h.processor.Abandon)
}

func (h *DraftHandler) Save(c *gin.Context) {
	h.run(c, h.processor.Save)
}

func (h *DraftHandler) BeginPeriod(c *gin.Context) {
	h.run(c, h.processor.BeginPeriodQuery)
}

type MessageRequest struct {
	Text string `json:"text"`
}

// Message routes free text to whatever the session awaits.
func (h *DraftHandler) Message(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.run(c, func(ctx context.Context, userID int64, sess models.Session) (editor.Outcome, error) {
		return h.processor.HandleText(ctx, userID, sess, req.Text)
	})
}

// Command names accepted by POST /drafts/commands.
const (
	CmdBeginHeaderEdit   = "begin_header_edit"
	CmdSelectHeaderField = "select_header_field"
	CmdSubmitHeaderValue = "submit_header_value"
	CmdBeginItemsEdit    = "begin_items_edit"
	CmdSelectItem        = "select_item"
	CmdSelectItemField   = "select_item_field"
	CmdSubmitItemValue   = "submit_item_value"
	CmdBeginComment      = "begin_comment"
	CmdSubmitComment     = "submit_comment"
	CmdBulkEditHeader    = "bulk_edit_header"
	CmdBulkEditItem      = "bulk_edit_item"
	CmdSave              = "save"
	CmdAbandon           = "abandon"
	CmdBeginPeriodQuery  = "begin_period_query"
	CmdSubmitPeriodValue = "submit_period_value"
)

type CommandRequest struct {
	Command string `json:"command" binding:"required"`
	Key     string `json:"key"`
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Spec    string `json:"spec"`
}

func (h *DraftHandler) commandFor(req CommandRequest) (commandFunc, bool) {
	p := h.processor
	switch req.Command {
	case CmdBeginHeaderEdit:
		return p.BeginHeaderEdit, true
	case CmdSelectHeaderField:
		return func(ctx context.Context, userID int64, sess models.Session) (editor.Outcome, error) {
			return p.SelectHeaderField(ctx, userID, sess, req.Key)
		}, true
	case CmdSubmitHeaderValue:
		return func(ctx context.Context, userID int64, sess models.Session) (editor.Outcome, error) {
			return p.SubmitHeaderValue(ctx, userID, sess, req.Text)
		}, true
	case CmdBeginItemsEdit:
		return p.BeginItemsEdit, true
	case CmdSelectItem:
		return func(ctx context.Context, userID int64, sess models.Session) (editor.Outcome, error) {
			return p.SelectItem(ctx, userID, sess, req.Index)
		}, true
	case CmdSelectItemField:
		return func(ctx context.Context, userID int64, sess models.Session) (editor.Outcome, error) {
			return p.SelectItemField(ctx, userID, sess, req.Index, req.Key)
		}, true
	case CmdSubmitItemValue:
		return func(ctx context.Context, userID int64, sess models.Session) (editor.Outcome, error) {
			return p.SubmitItemValue(ctx, userID, sess, req.Text)
		}, true
	case CmdBeginComment:
		return p.BeginComment, true
	case CmdSubmitComment:
		return func(ctx context.Context, userID int64, sess models.Session) (editor.Outcome, error) {
			return p.SubmitComment(ctx, userID, sess, req.Text)
		}, true
	case CmdBulkEditHeader:
		return func(ctx context.Context, userID int64, sess models.Session) (editor.Outcome, error) {
			return p.BulkEditHeader(ctx, userID, sess, req.Spec)
		}, true
	case CmdBulkEditItem:
		return func(ctx context.Context, userID int64, sess models.Session) (editor.Outcome, error) {
			return p.BulkEditItem(ctx, userID, sess, req.Index, req.Spec)
		}, true
	case CmdSave:
		return p.Save, true
	case CmdAbandon:
		return p.Abandon, true
	case CmdBeginPeriodQuery:
		return p.BeginPeriodQuery, true
	case CmdSubmitPeriodValue:
		return func(ctx context.Context, userID int64, sess models.Session) (editor.Outcome, error) {
			return p.SubmitPeriodValue(ctx, userID, sess, req.Text)
		}, true
	}
	return nil, false
}

// Command executes one structured edit command.
func (h *DraftHandler) Command(c *gin.Context) {
	var req CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fn, ok := h.commandFor(req)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown command %q", req.Command)})
		return
	}
	h.run(c, fn)
}
