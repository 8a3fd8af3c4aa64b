package handler

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"reconciliation-portal/internal/models"
	"reconciliation-portal/internal/services/matching"
)

var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrUploadExpired  = errors.New("upload URL expired")
	ErrFilesMissing   = errors.New("both files must be uploaded first")
	ErrUnknownFile    = errors.New("unknown upload file")
	ErrEmptyUpload    = errors.New("empty upload body")
	ErrBankNameNeeded = errors.New("bank name is required")
)

// Upload file names, also the last segment of each upload URL.
const (
	TransactionFile   = "transaction.csv"
	BankStatementFile = "bank.csv"
)

type task struct {
	id        string
	files     map[string][]byte
	expiresAt time.Time
	submitted bool
}

// MemoryStore backs the development server. It keeps tasks, uploaded files
// and finished runs in memory; nothing survives a restart.
type MemoryStore struct {
	mu           sync.RWMutex
	tasks        map[string]*task
	summaries    []models.ReconciliationSummary
	transactions map[string][]models.UnmatchedTransaction
	bankEntries  map[string][]models.UnmatchedBankEntry

	ttl time.Duration
	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks:        make(map[string]*task),
		transactions: make(map[string][]models.UnmatchedTransaction),
		bankEntries:  make(map[string][]models.UnmatchedBankEntry),
		ttl:          15 * time.Minute,
		now:          time.Now,
	}
}

// CreateTask registers a new task id that uploads can target. Unsubmitted
// tasks past their expiry are dropped first; evicted reports how many.
func (s *MemoryStore) CreateTask() (id string, expires time.Time, evicted int) {
	id = uuid.NewString()
	now := s.now()
	expires = now.Add(s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	for tid, t := range s.tasks {
		if !t.submitted && !now.Before(t.expiresAt) {
			delete(s.tasks, tid)
			evicted++
		}
	}
	s.tasks[id] = &task{id: id, files: make(map[string][]byte), expiresAt: expires}
	return id, expires, evicted
}

// PendingTasks counts tasks that have not been submitted yet.
func (s *MemoryStore) PendingTasks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, t := range s.tasks {
		if !t.submitted {
			n++
		}
	}
	return n
}

// PutFile stores one uploaded file for a task. Re-uploading replaces it.
func (s *MemoryStore) PutFile(taskID, name string, data []byte) error {
	if name != TransactionFile && name != BankStatementFile {
		return ErrUnknownFile
	}
	if len(data) == 0 {
		return ErrEmptyUpload
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	if !s.now().Before(t.expiresAt) {
		return ErrUploadExpired
	}
	t.files[name] = data
	return nil
}

// SubmitResult describes the run produced by Submit.
type SubmitResult struct {
	Summary models.ReconciliationSummary
	Created bool
	Skipped int
}

// Submit turns a task's uploads into a finished run. Submitting the same
// task again returns the existing run instead of creating a duplicate.
func (s *MemoryStore) Submit(taskID, bankName string, start, end time.Time) (SubmitResult, error) {
	if bankName == "" {
		return SubmitResult{}, ErrBankNameNeeded
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return SubmitResult{}, ErrTaskNotFound
	}
	if t.submitted {
		for _, sum := range s.summaries {
			if sum.TaskID == taskID {
				return SubmitResult{Summary: sum}, nil
			}
		}
	}
	txData, bankData := t.files[TransactionFile], t.files[BankStatementFile]
	if txData == nil || bankData == nil {
		return SubmitResult{}, ErrFilesMissing
	}

	window := dateWindow{start: start, end: end}
	txs, txSkipped := importTransactions(taskID, txData, window)
	entries, bankSkipped := importBankEntries(taskID, bankName, bankData, window)

	start, end = bounds(txs, entries, start, end)
	res := matching.Pair(txs, entries)

	now := s.now()
	summary := summarize(taskID, res, len(txs), start, end)
	summary.CreatedAt, summary.UpdatedAt = now, now

	t.submitted = true
	s.transactions[taskID] = res.Transactions
	s.bankEntries[taskID] = res.BankEntries
	s.summaries = append(s.summaries, summary)
	sort.SliceStable(s.summaries, func(i, j int) bool {
		return s.summaries[i].CreatedAt.After(s.summaries[j].CreatedAt)
	})
	return SubmitResult{Summary: summary, Created: true, Skipped: txSkipped + bankSkipped}, nil
}

// Seed adds finished runs directly, for demos and tests.
func (s *MemoryStore) Seed(summary models.ReconciliationSummary, txs []models.UnmatchedTransaction, entries []models.UnmatchedBankEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries = append(s.summaries, summary)
	sort.SliceStable(s.summaries, func(i, j int) bool {
		return s.summaries[i].CreatedAt.After(s.summaries[j].CreatedAt)
	})
	s.transactions[summary.TaskID] = txs
	s.bankEntries[summary.TaskID] = entries
}

func (s *MemoryStore) ListSummaries(limit, offset int) ([]models.ReconciliationSummary, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pageOf(s.summaries, limit, offset), len(s.summaries)
}

func (s *MemoryStore) ListTransactions(taskID string, limit, offset int) ([]models.UnmatchedTransaction, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.transactions[taskID]
	return pageOf(all, limit, offset), len(all)
}

func (s *MemoryStore) ListBankEntries(taskID string, limit, offset int) ([]models.UnmatchedBankEntry, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.bankEntries[taskID]
	return pageOf(all, limit, offset), len(all)
}

// HasFile reports whether a task has received the named upload.
func (s *MemoryStore) HasFile(taskID, name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[taskID]
	return ok && t.files[name] != nil
}

// pageOf copies one page out of all; never nil so it encodes as [].
func pageOf[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + min(limit, len(all)-offset)
	out := make([]T, end-offset)
	copy(out, all[offset:end])
	return out
}

func summarize(taskID string, res matching.Result, totalTransactions int, start, end time.Time) models.ReconciliationSummary {
	return models.ReconciliationSummary{
		TaskID:                 taskID,
		StartDate:              start,
		EndDate:                end,
		TotalMatched:           res.Matched,
		TotalDiscrepancy:       res.Discrepancy(),
		TotalTransaction:       totalTransactions,
		TotalUnmatchedInternal: len(res.Transactions),
		TotalUnmatchedBank:     len(res.BankEntries),
	}
}

// bounds closes an open date range with the earliest or latest record.
func bounds(txs []models.UnmatchedTransaction, entries []models.UnmatchedBankEntry, start, end time.Time) (time.Time, time.Time) {
	dates := make([]time.Time, 0, len(txs)+len(entries))
	for _, tx := range txs {
		dates = append(dates, tx.TransactionTime)
	}
	for _, e := range entries {
		dates = append(dates, e.Date)
	}

	lo, hi := start, end
	for _, d := range dates {
		if start.IsZero() && (lo.IsZero() || d.Before(lo)) {
			lo = d
		}
		if end.IsZero() && d.After(hi) {
			hi = d
		}
	}
	return lo, hi
}
