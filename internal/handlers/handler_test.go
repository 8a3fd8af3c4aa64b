package handler

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reconciliation-portal/internal/metrics"
	"reconciliation-portal/internal/models"
)

const (
	sampleTransactions = "id,amount,type,time\n" +
		"TRX-1,100.50,debit,2024-01-15T09:00:00Z\n" +
		"TRX-2,not-a-number,credit,2024-01-16T09:00:00Z\n" +
		"TRX-3,20,credit,2024-02-01T09:00:00Z\n"
	sampleBank = "id,amount,date\n" +
		"1,100.50,2024-01-15\n" +
		"2,5.25,2024-01-18\n"
)

func setupRouter(store *MemoryStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewReconciliationHandler(store, "http://files.test", nil)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/reconciliation/upload", h.IssueUploadEndpoints)
	api.POST("/reconciliation", h.CreateTask)
	api.GET("/reconciliation/summary/list", h.ListSummaries)
	api.GET("/reconciliation/summary/:task_id/transaction", h.ListTransactions)
	api.GET("/reconciliation/summary/:task_id/bank", h.ListBankEntries)
	api.POST("/uploads/:task_id/:file", h.ReceiveUpload)
	return r
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func issue(t *testing.T, r *gin.Engine) models.UploadEndpointBundle {
	t.Helper()
	w := do(t, r, http.MethodGet, "/api/reconciliation/upload", "")
	require.Equal(t, http.StatusOK, w.Code)
	var b models.UploadEndpointBundle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	return b
}

func TestHealth(t *testing.T) {
	w := do(t, setupRouter(NewMemoryStore()), http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestIssueUploadEndpoints(t *testing.T) {
	b := issue(t, setupRouter(NewMemoryStore()))

	require.NotEmpty(t, b.TaskID)
	assert.Equal(t, "http://files.test/api/uploads/"+b.TaskID+"/transaction.csv", b.TransactionURL)
	assert.Equal(t, "http://files.test/api/uploads/"+b.TaskID+"/bank.csv", b.BankStatementURL)
	assert.False(t, b.ExpiresAt.IsZero())
}

func TestReceiveUpload(t *testing.T) {
	store := NewMemoryStore()
	r := setupRouter(store)
	b := issue(t, r)

	w := do(t, r, http.MethodPost, "/api/uploads/"+b.TaskID+"/transaction.csv", sampleTransactions)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, store.HasFile(b.TaskID, TransactionFile))
	assert.False(t, store.HasFile(b.TaskID, BankStatementFile))
}

func TestReceiveUploadErrors(t *testing.T) {
	store := NewMemoryStore()
	r := setupRouter(store)
	b := issue(t, r)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"unknown task", "/api/uploads/nope/bank.csv", "x", http.StatusNotFound},
		{"unknown file", "/api/uploads/" + b.TaskID + "/other.csv", "x", http.StatusNotFound},
		{"empty body", "/api/uploads/" + b.TaskID + "/bank.csv", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestReceiveUploadExpired(t *testing.T) {
	store := NewMemoryStore()
	r := setupRouter(store)
	b := issue(t, r)

	store.now = func() time.Time { return b.ExpiresAt.Add(time.Second) }

	w := do(t, r, http.MethodPost, "/api/uploads/"+b.TaskID+"/bank.csv", sampleBank)
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestCreateTaskRequiresBothFiles(t *testing.T) {
	r := setupRouter(NewMemoryStore())
	b := issue(t, r)
	do(t, r, http.MethodPost, "/api/uploads/"+b.TaskID+"/transaction.csv", sampleTransactions)

	w := do(t, r, http.MethodPost, "/api/reconciliation", `{"taskID":"`+b.TaskID+`","bankName":"BCA"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), ErrFilesMissing.Error())
}

func TestCreateTaskValidation(t *testing.T) {
	r := setupRouter(NewMemoryStore())

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"missing task", `{"bankName":"BCA"}`, http.StatusBadRequest},
		{"unknown task", `{"taskID":"nope","bankName":"BCA"}`, http.StatusNotFound},
		{"bad date", `{"taskID":"nope","bankName":"BCA","startDate":"15/01/2024"}`, http.StatusBadRequest},
		{"reversed dates", `{"taskID":"nope","bankName":"BCA","startDate":"2024-01-20T00:00:00.000Z","endDate":"2024-01-15T00:00:00.000Z"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/reconciliation", tt.body)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestCreateTaskImportsUploads(t *testing.T) {
	store := NewMemoryStore()
	r := setupRouter(store)
	b := issue(t, r)
	do(t, r, http.MethodPost, "/api/uploads/"+b.TaskID+"/transaction.csv", sampleTransactions)
	do(t, r, http.MethodPost, "/api/uploads/"+b.TaskID+"/bank.csv", sampleBank)

	body := `{"taskID":"` + b.TaskID + `","bankName":" BCA ","startDate":"2024-01-15T00:00:00.000Z","endDate":"2024-01-20T23:59:59.999Z"}`
	w := do(t, r, http.MethodPost, "/api/reconciliation", body)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "reconciliation started")

	summaries, total := store.ListSummaries(10, 0)
	require.Equal(t, 1, total)
	s := summaries[0]
	assert.Equal(t, b.TaskID, s.TaskID)
	assert.Equal(t, 1, s.TotalTransaction, "February row is outside the window, bad amount skipped")
	assert.Equal(t, 1, s.TotalMatched)
	assert.Zero(t, s.TotalUnmatchedInternal)
	assert.Equal(t, 1, s.TotalUnmatchedBank)
	assert.Equal(t, "5.25", s.TotalDiscrepancy.String())

	entries, _ := store.ListBankEntries(b.TaskID, 10, 0)
	require.Len(t, entries, 1)
	assert.Equal(t, "BCA", entries[0].BankName)
	assert.Equal(t, models.RecordID("2"), entries[0].ID)

	// A second submission of the same task does not add a run.
	w = do(t, r, http.MethodPost, "/api/reconciliation", body)
	assert.Equal(t, http.StatusOK, w.Code)
	_, total = store.ListSummaries(10, 0)
	assert.Equal(t, 1, total)
}

func TestListSummariesPaging(t *testing.T) {
	store := NewMemoryStore()
	SeedDemo(store, 12, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	r := setupRouter(store)

	w := do(t, r, http.MethodGet, "/api/reconciliation/summary/list?limit=5&offset=10", "")
	require.Equal(t, http.StatusOK, w.Code)

	var page models.Page[models.ReconciliationSummary]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 12, page.TotalCount)
	assert.Len(t, page.Data, 2)
	// newest first
	assert.Equal(t, "demo-011", page.Data[0].TaskID)
	assert.Equal(t, "demo-012", page.Data[1].TaskID)
}

func TestListHugeLimitReturnsRemainder(t *testing.T) {
	store := NewMemoryStore()
	SeedDemo(store, 12, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	r := setupRouter(store)

	path := fmt.Sprintf("/api/reconciliation/summary/list?limit=%d&offset=1", math.MaxInt)
	w := do(t, r, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)

	var page models.Page[models.ReconciliationSummary]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 12, page.TotalCount)
	assert.Len(t, page.Data, 11)
}

func TestPageOf(t *testing.T) {
	all := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{2, 3}, pageOf(all, 2, 1))
	assert.Equal(t, []int{4, 5}, pageOf(all, math.MaxInt, 3))
	assert.Equal(t, []int{}, pageOf(all, 10, 5))
	assert.Equal(t, []int{}, pageOf(all, math.MaxInt, math.MaxInt))
}

func TestCreateTaskEvictsExpiredUnsubmitted(t *testing.T) {
	store := NewMemoryStore()
	r := setupRouter(store)
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return start }

	stale := issue(t, r)
	done := issue(t, r)
	do(t, r, http.MethodPost, "/api/uploads/"+done.TaskID+"/transaction.csv", sampleTransactions)
	do(t, r, http.MethodPost, "/api/uploads/"+done.TaskID+"/bank.csv", sampleBank)
	w := do(t, r, http.MethodPost, "/api/reconciliation", `{"taskID":"`+done.TaskID+`","bankName":"BCA"}`)
	require.Equal(t, http.StatusAccepted, w.Code)
	require.Equal(t, 1, store.PendingTasks())

	store.now = func() time.Time { return stale.ExpiresAt.Add(time.Minute) }
	_, _, evicted := store.CreateTask()
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, store.PendingTasks())

	fresh := issue(t, r)
	require.NotEmpty(t, fresh.TaskID)
	assert.Equal(t, 2, store.PendingTasks())
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.PendingTasks))

	w = do(t, r, http.MethodPost, "/api/uploads/"+stale.TaskID+"/bank.csv", sampleBank)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, http.MethodPost, "/api/reconciliation", `{"taskID":"`+done.TaskID+`","bankName":"BCA"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListDetailsEmptyTaskEncodesEmptyArray(t *testing.T) {
	r := setupRouter(NewMemoryStore())

	for _, path := range []string{
		"/api/reconciliation/summary/unknown/transaction",
		"/api/reconciliation/summary/unknown/bank",
	} {
		w := do(t, r, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[],"totalCount":0}`, w.Body.String())
	}
}

func TestListBadPageParams(t *testing.T) {
	r := setupRouter(NewMemoryStore())

	for _, q := range []string{"limit=0", "limit=abc", "offset=-1", "offset=x"} {
		w := do(t, r, http.MethodGet, "/api/reconciliation/summary/list?"+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}
