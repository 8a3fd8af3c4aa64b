package handler

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"reconciliation-portal/internal/models"
	"reconciliation-portal/internal/services/matching"
)

// SeedDemo fills store with finished runs so list views have something to
// page through before anything is uploaded.
func SeedDemo(store *MemoryStore, runs int, now time.Time) {
	banks := []string{"BCA", "Mandiri", "BNI"}
	for i := range runs {
		taskID := fmt.Sprintf("demo-%03d", i+1)
		day := now.AddDate(0, 0, -7*(i+1)).Truncate(24 * time.Hour)
		bank := banks[i%len(banks)]

		var txs []models.UnmatchedTransaction
		for j := range 3 + i%5 {
			txs = append(txs, models.UnmatchedTransaction{
				ID:              models.RecordID(fmt.Sprintf("TRX-%03d-%02d", i+1, j+1)),
				TaskID:          taskID,
				Amount:          decimal.New(int64(125000+j*17500), -2),
				TransactionTime: day.Add(time.Duration(j) * 5 * time.Hour),
				Type:            []string{"DEBIT", "CREDIT"}[j%2],
			})
		}
		var entries []models.UnmatchedBankEntry
		for j := range 2 + i%4 {
			entries = append(entries, models.UnmatchedBankEntry{
				ID:        models.RecordID(fmt.Sprint((i+1)*100 + j + 1)),
				TaskID:    taskID,
				Amount:    decimal.New(int64(99000+j*25000), -2),
				Date:      day.AddDate(0, 0, j),
				Reference: fmt.Sprintf("REF%05d", (i+1)*1000+j),
				BankName:  bank,
			})
		}

		res := matching.Result{Matched: 10 + i, Transactions: txs, BankEntries: entries}
		summary := summarize(taskID, res, len(txs)+res.Matched, day, day.AddDate(0, 0, 6))
		summary.CreatedAt = day.AddDate(0, 0, 7)
		summary.UpdatedAt = summary.CreatedAt
		store.Seed(summary, txs, entries)
	}
}
