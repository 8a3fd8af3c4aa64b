package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportTransactions(t *testing.T) {
	data := []byte("id,amount,type,time,description\n" +
		"A,10.00,debit,2024-01-15T10:00:00Z,coffee\n" +
		"\n" +
		"B,3\n" +
		"C,1.5,credit,yesterday\n")

	txs, skipped := importTransactions("task", data, dateWindow{})
	require.Len(t, txs, 1)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, "DEBIT", txs[0].Type)
	assert.Equal(t, "coffee", txs[0].Description)
	assert.Equal(t, "task", txs[0].TaskID)
	assert.Equal(t, "10", txs[0].Amount.String())
}

func TestImportBankEntriesTabSeparated(t *testing.T) {
	data := []byte("id\tamount\tdate\treference\n" +
		"7\t42.10\t2024-01-15\tREF7\n")

	entries, skipped := importBankEntries("task", "BNI", data, dateWindow{})
	require.Len(t, entries, 1)
	assert.Zero(t, skipped)
	assert.Equal(t, "REF7", entries[0].Reference)
	assert.Equal(t, "42.1", entries[0].Amount.String())
}

func TestDateWindow(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	w := dateWindow{start: day, end: day.Add(24*time.Hour - time.Millisecond)}

	assert.True(t, w.contains(day))
	assert.True(t, w.contains(day.Add(23*time.Hour)))
	assert.False(t, w.contains(day.Add(-time.Second)))
	assert.False(t, w.contains(day.Add(24*time.Hour)))
	assert.True(t, dateWindow{}.contains(day))
}
