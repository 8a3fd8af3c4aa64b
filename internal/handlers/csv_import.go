package handler

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"reconciliation-portal/internal/models"
)

const (
	transactionTimeLayout = "2006-01-02T15:04:05Z"
	bankDateLayout        = "2006-01-02"
)

// dateWindow is an inclusive filter; a zero bound is open.
type dateWindow struct {
	start, end time.Time
}

func (w dateWindow) contains(t time.Time) bool {
	if !w.start.IsZero() && t.Before(w.start) {
		return false
	}
	if !w.end.IsZero() && t.After(w.end) {
		return false
	}
	return true
}

// newCSVReader sniffs the delimiter from the first line and skips the header.
func newCSVReader(data []byte) *csv.Reader {
	firstLine, _, _ := bytes.Cut(data, []byte("\n"))
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if !bytes.Contains(firstLine, []byte(",")) && bytes.Contains(firstLine, []byte("\t")) {
		reader.Comma = '\t'
	}
	_, _ = reader.Read()
	return reader
}

// eachRow calls fn for every non-blank row and counts the rows fn rejects
// or the reader cannot parse.
func eachRow(data []byte, fn func(record []string) bool) (skipped int) {
	reader := newCSVReader(data)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return skipped
		}
		if err != nil {
			skipped++
			continue
		}
		if len(record) == 0 || strings.TrimSpace(strings.Join(record, "")) == "" {
			continue
		}
		if !fn(record) {
			skipped++
		}
	}
}

// importTransactions reads rows of id, amount, type, time[, description].
func importTransactions(taskID string, data []byte, w dateWindow) ([]models.UnmatchedTransaction, int) {
	out := []models.UnmatchedTransaction{}
	skipped := eachRow(data, func(record []string) bool {
		if len(record) < 4 {
			return false
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(record[1]))
		if err != nil {
			return false
		}
		at, err := parseTime(record[3], transactionTimeLayout, time.RFC3339)
		if err != nil {
			return false
		}
		if !w.contains(at) {
			return true
		}
		tx := models.UnmatchedTransaction{
			ID:              models.RecordID(strings.TrimSpace(record[0])),
			TaskID:          taskID,
			Amount:          amount,
			TransactionTime: at,
			Type:            strings.ToUpper(strings.TrimSpace(record[2])),
		}
		if len(record) > 4 {
			tx.Description = strings.TrimSpace(record[4])
		}
		out = append(out, tx)
		return true
	})
	return out, skipped
}

// importBankEntries reads rows of id, amount, date[, reference].
func importBankEntries(taskID, bankName string, data []byte, w dateWindow) ([]models.UnmatchedBankEntry, int) {
	out := []models.UnmatchedBankEntry{}
	skipped := eachRow(data, func(record []string) bool {
		if len(record) < 3 {
			return false
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(record[1]))
		if err != nil {
			return false
		}
		date, err := parseTime(record[2], bankDateLayout)
		if err != nil {
			return false
		}
		if !w.contains(date) {
			return true
		}
		entry := models.UnmatchedBankEntry{
			ID:       models.RecordID(strings.TrimSpace(record[0])),
			TaskID:   taskID,
			Amount:   amount,
			Date:     date,
			BankName: bankName,
		}
		if len(record) > 3 {
			entry.Reference = strings.TrimSpace(record[3])
		}
		out = append(out, entry)
		return true
	})
	return out, skipped
}

func parseTime(value string, layouts ...string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var err error
	for _, layout := range layouts {
		var t time.Time
		if t, err = time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
