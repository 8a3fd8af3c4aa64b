package render

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"reconciliation-portal/internal/models"
	"reconciliation-portal/internal/services/listing"
	"reconciliation-portal/internal/services/pagination"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

var (
	SummaryHeaders     = []string{"Task ID", "Period", "Matched", "Discrepancy", "Unmatched Internal", "Unmatched Bank"}
	TransactionHeaders = []string{"ID", "Amount", "Transaction Time", "Type", "Description"}
	BankEntryHeaders   = []string{"ID", "Amount", "Date", "Reference", "Bank Name"}
)

// SummaryRows formats one page of runs as table cells.
func SummaryRows(f Formatter, summaries []models.ReconciliationSummary) [][]string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.TaskID,
			f.Period(s.StartDate, s.EndDate),
			strconv.Itoa(s.TotalMatched),
			f.Money(s.TotalDiscrepancy),
			strconv.Itoa(s.TotalUnmatchedInternal),
			strconv.Itoa(s.TotalUnmatchedBank),
		})
	}
	return rows
}

// DetailRows formats unmatched records; the headers follow the category.
func DetailRows(f Formatter, category models.Category, records []models.DetailRecord) (headers []string, rows [][]string) {
	headers = TransactionHeaders
	if category == models.CategoryBank {
		headers = BankEntryHeaders
	}
	for _, r := range records {
		switch v := r.(type) {
		case models.UnmatchedTransaction:
			rows = append(rows, []string{string(v.ID), f.Money(v.Amount), f.DateTime(v.TransactionTime), v.Type, v.Description})
		case models.UnmatchedBankEntry:
			rows = append(rows, []string{string(v.ID), f.Money(v.Amount), f.Date(v.Date), v.Reference, v.BankName})
		}
	}
	return headers, rows
}

// Table lays out headers and rows with a normal border.
func Table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

// PageFooter prints the visible range, e.g. "Showing 11-20 of 42".
func PageFooter(page pagination.State) string {
	start, end := page.Range()
	return fmt.Sprintf("Showing %d-%d of %d (page %d/%d)", start, end, page.TotalCount, page.Page(), page.Pages())
}

// StateLine is the status text for a display state; empty when nothing
// needs saying.
func StateLine(state listing.DisplayState, message, emptyText string) string {
	switch state {
	case listing.StateLoading:
		return mutedStyle.Render("Loading...")
	case listing.StateEmpty:
		return emptyText
	case listing.StateError:
		return errorStyle.Render(message)
	}
	return ""
}

// SummaryTable writes each summaries page to w.
type SummaryTable struct {
	w      io.Writer
	format Formatter
}

func NewSummaryTable(w io.Writer, f Formatter) *SummaryTable {
	return &SummaryTable{w: w, format: f}
}

func (t *SummaryTable) RenderPage(records []models.ReconciliationSummary, page pagination.State) {
	if len(records) == 0 {
		return
	}
	fmt.Fprintln(t.w, Table(SummaryHeaders, SummaryRows(t.format, records)))
	fmt.Fprintln(t.w, PageFooter(page))
}

// RenderState prints empty and error states; loading is not echoed.
func (t *SummaryTable) RenderState(state listing.DisplayState, message string) {
	if state == listing.StateLoading {
		return
	}
	if line := StateLine(state, message, "No reconciliation summaries found."); line != "" {
		fmt.Fprintln(t.w, line)
	}
}

// DetailTable writes each details page of one category to w.
type DetailTable struct {
	w        io.Writer
	format   Formatter
	category models.Category
}

func NewDetailTable(w io.Writer, f Formatter, category models.Category) *DetailTable {
	return &DetailTable{w: w, format: f, category: category}
}

func (t *DetailTable) RenderPage(records []models.DetailRecord, page pagination.State) {
	if len(records) == 0 {
		return
	}
	headers, rows := DetailRows(t.format, t.category, records)
	fmt.Fprintln(t.w, Table(headers, rows))
	fmt.Fprintln(t.w, PageFooter(page))
}

func (t *DetailTable) RenderState(state listing.DisplayState, message string) {
	if state == listing.StateLoading {
		return
	}
	if line := StateLine(state, message, "No "+t.category.Title()+" found."); line != "" {
		fmt.Fprintln(t.w, line)
	}
}
