package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"reconciliation-portal/internal/logging"
	"reconciliation-portal/internal/metrics"
	"reconciliation-portal/internal/models"
)

// maxUploadSize bounds a single uploaded file.
const maxUploadSize = 32 << 20

const defaultListLimit = 10

type ReconciliationHandler struct {
	store     *MemoryStore
	publicURL string
	logger    *slog.Logger
}

// NewReconciliationHandler serves store over HTTP. publicURL prefixes the
// upload URLs it issues; when empty the request's own host is used.
func NewReconciliationHandler(store *MemoryStore, publicURL string, logger *slog.Logger) *ReconciliationHandler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ReconciliationHandler{
		store:     store,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

func (h *ReconciliationHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// IssueUploadEndpoints creates a task and returns where its two files go.
func (h *ReconciliationHandler) IssueUploadEndpoints(c *gin.Context) {
	taskID, expires, evicted := h.store.CreateTask()
	metrics.PendingTasks.Set(float64(h.store.PendingTasks()))
	if evicted > 0 {
		h.logger.Debug("expired tasks evicted", "count", evicted)
	}

	base := h.uploadBase(c) + "/api/uploads/" + taskID + "/"
	h.logger.Info("upload endpoints issued", "task_id", taskID, "expires_at", expires)

	c.JSON(http.StatusOK, models.UploadEndpointBundle{
		TransactionURL:   base + TransactionFile,
		BankStatementURL: base + BankStatementFile,
		TaskID:           taskID,
		ExpiresAt:        expires,
	})
}

// ReceiveUpload stores the raw request body as one of the task's files.
func (h *ReconciliationHandler) ReceiveUpload(c *gin.Context) {
	taskID, file := c.Param("task_id"), c.Param("file")

	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload body"})
		return
	}
	if len(data) > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	err = h.store.PutFile(taskID, file, data)
	metrics.UploadsTotal.WithLabelValues(file, metrics.Result(err)).Inc()
	switch {
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, ErrUnknownFile):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, ErrUploadExpired):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.logger.Info("file received",
		"task_id", taskID,
		"file", file,
		"content_type", c.ContentType(),
		"bytes", len(data),
	)
	c.JSON(http.StatusOK, gin.H{"file": file, "size": len(data)})
}

// CreateTask starts a run over a task's uploaded files.
func (h *ReconciliationHandler) CreateTask(c *gin.Context) {
	var req models.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	req.BankName = strings.TrimSpace(req.BankName)
	if req.TaskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "taskID is required"})
		return
	}

	start, err := parseOptionalDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid startDate"})
		return
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid endDate"})
		return
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate is after endDate"})
		return
	}

	res, err := h.store.Submit(req.TaskID, req.BankName, start, end)
	metrics.TasksSubmittedTotal.WithLabelValues(metrics.Result(err)).Inc()
	switch {
	case errors.Is(err, ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !res.Created {
		c.JSON(http.StatusOK, gin.H{"message": "reconciliation already initiated", "taskID": req.TaskID})
		return
	}

	metrics.PendingTasks.Set(float64(h.store.PendingTasks()))
	h.logger.Info("reconciliation completed",
		"task_id", req.TaskID,
		"bank", req.BankName,
		"transactions", res.Summary.TotalUnmatchedInternal,
		"bank_entries", res.Summary.TotalUnmatchedBank,
		"skipped_rows", res.Skipped,
	)
	c.JSON(http.StatusAccepted, gin.H{"message": "reconciliation started", "taskID": req.TaskID})
}

func (h *ReconciliationHandler) ListSummaries(c *gin.Context) {
	limit, offset, ok := pageParams(c)
	if !ok {
		return
	}
	data, total := h.store.ListSummaries(limit, offset)
	c.JSON(http.StatusOK, models.Page[models.ReconciliationSummary]{Data: data, TotalCount: total})
}

func (h *ReconciliationHandler) ListTransactions(c *gin.Context) {
	limit, offset, ok := pageParams(c)
	if !ok {
		return
	}
	data, total := h.store.ListTransactions(c.Param("task_id"), limit, offset)
	c.JSON(http.StatusOK, models.Page[models.UnmatchedTransaction]{Data: data, TotalCount: total})
}

func (h *ReconciliationHandler) ListBankEntries(c *gin.Context) {
	limit, offset, ok := pageParams(c)
	if !ok {
		return
	}
	data, total := h.store.ListBankEntries(c.Param("task_id"), limit, offset)
	c.JSON(http.StatusOK, models.Page[models.UnmatchedBankEntry]{Data: data, TotalCount: total})
}

func (h *ReconciliationHandler) uploadBase(c *gin.Context) string {
	if h.publicURL != "" {
		return h.publicURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}

// pageParams reads limit and offset, answering 400 itself when they are bad.
func pageParams(c *gin.Context) (limit, offset int, ok bool) {
	limit, offset = defaultListLimit, 0
	var err error
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return 0, 0, false
		}
	}
	if v := c.Query("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
			return 0, 0, false
		}
	}
	return limit, offset, true
}

func parseOptionalDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}
