// Package matching pairs internal transactions with bank statement lines.
// Only the development server uses it to give its fake runs realistic
// matched and unmatched counts.
package matching

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"reconciliation-portal/internal/models"
)

// MinScore is the lowest candidate score accepted as a match.
const MinScore = 60

// Result splits one run's records into matched pairs and leftovers.
type Result struct {
	Matched      int
	Transactions []models.UnmatchedTransaction
	BankEntries  []models.UnmatchedBankEntry
}

// Discrepancy is the absolute difference between the unmatched totals.
func (r Result) Discrepancy() decimal.Decimal {
	txTotal, bankTotal := decimal.Zero, decimal.Zero
	for _, tx := range r.Transactions {
		txTotal = txTotal.Add(tx.Amount.Abs())
	}
	for _, e := range r.BankEntries {
		bankTotal = bankTotal.Add(e.Amount.Abs())
	}
	return txTotal.Sub(bankTotal).Abs()
}

// Pair matches each transaction with at most one bank entry. Candidates
// must carry the same absolute amount; among them the closest date wins and
// description similarity breaks ties.
func Pair(txs []models.UnmatchedTransaction, entries []models.UnmatchedBankEntry) Result {
	used := make([]bool, len(entries))
	res := Result{
		Transactions: []models.UnmatchedTransaction{},
		BankEntries:  []models.UnmatchedBankEntry{},
	}

	for _, tx := range txs {
		// 1. Find bank entries with the exact amount
		var candidates []int
		for i, e := range entries {
			if !used[i] && e.Amount.Abs().Equal(tx.Amount.Abs()) {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) == 0 {
			res.Transactions = append(res.Transactions, tx)
			continue
		}

		// 2. Score by date proximity and description overlap
		best, bestScore := -1, math.Inf(-1)
		for _, i := range candidates {
			similarity := computeSimilarity(tx.Description, entries[i].Reference)
			if len(candidates) > 1 {
				similarity *= 0.8
			}
			score := 50 + dateProximityScore(tx.TransactionTime, entries[i].Date) + similarity/10
			if score > bestScore {
				best, bestScore = i, score
			}
		}

		// 3. Accept or leave unmatched
		if bestScore < MinScore {
			res.Transactions = append(res.Transactions, tx)
			continue
		}
		used[best] = true
		res.Matched++
	}

	for i, e := range entries {
		if !used[i] {
			res.BankEntries = append(res.BankEntries, e)
		}
	}
	return res
}

// computeSimilarity is the share of b's words found in a, 0 to 100.
func computeSimilarity(a, b string) float64 {
	wordsA := strings.Fields(normalize(a))
	wordsB := strings.Fields(normalize(b))
	matches := 0
	for _, w1 := range wordsA {
		for _, w2 := range wordsB {
			if w1 == w2 {
				matches++
			}
		}
	}
	return math.Min(float64(matches)/math.Max(float64(len(wordsB)), 1)*100, 100)
}

func normalize(s string) string {
	n := strings.ToUpper(s)
	n = strings.ReplaceAll(n, ".", "")
	n = strings.ReplaceAll(n, ",", "")
	return n
}

// dateProximityScore compares calendar days in UTC; bank dates carry no time.
func dateProximityScore(txTime, bankDate time.Time) float64 {
	tx := txTime.UTC().Truncate(24 * time.Hour)
	bank := bankDate.UTC().Truncate(24 * time.Hour)
	days := math.Abs(tx.Sub(bank).Hours() / 24)
	switch {
	case days == 0:
		return 50
	case days <= 1:
		return 40
	case days <= 3:
		return 20
	case days <= 7:
		return 0
	default:
		return -50
	}
}
