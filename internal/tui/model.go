// Package tui is the interactive browser over past reconciliation runs.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"reconciliation-portal/internal/models"
	"reconciliation-portal/internal/render"
	"reconciliation-portal/internal/services/listing"
	"reconciliation-portal/internal/services/reconciliation"
)

type viewMode string

const (
	viewSummaries viewMode = "summaries"
	viewDetails   viewMode = "details"
)

type summariesLoadedMsg struct{ err error }

type detailsLoadedMsg struct{ err error }

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	statusStyle = lipgloss.NewStyle().Faint(true)
)

// Browser pages through summaries and drills into unmatched records.
type Browser struct {
	ctx     context.Context
	svc     *reconciliation.ReconciliationService
	format  render.Formatter
	keys    keyMap
	spinner spinner.Model

	mode    viewMode
	cursor  int
	loading bool
	status  string

	summaries listing.Snapshot[models.ReconciliationSummary]
	selector  models.DetailSelector
	details   listing.Snapshot[models.DetailRecord]
}

func New(ctx context.Context, svc *reconciliation.ReconciliationService, format render.Formatter) *Browser {
	return &Browser{
		ctx:     ctx,
		svc:     svc,
		format:  format,
		keys:    newKeyMap(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		mode:    viewSummaries,
	}
}

func (b *Browser) Init() tea.Cmd {
	b.loading = true
	return tea.Batch(b.spinner.Tick, b.loadSummaries())
}

// commands

func (b *Browser) loadSummaries() tea.Cmd {
	return func() tea.Msg {
		return summariesLoadedMsg{err: b.svc.LoadSummaries(b.ctx)}
	}
}

func (b *Browser) pageSummaries(move func(context.Context) (bool, error)) tea.Cmd {
	return func() tea.Msg {
		_, err := move(b.ctx)
		return summariesLoadedMsg{err: err}
	}
}

func (b *Browser) drillIn(taskID string, category models.Category) tea.Cmd {
	return func() tea.Msg {
		return detailsLoadedMsg{err: b.svc.DrillIn(b.ctx, taskID, category)}
	}
}

func (b *Browser) loadDetails() tea.Cmd {
	return func() tea.Msg {
		return detailsLoadedMsg{err: b.svc.LoadDetails(b.ctx)}
	}
}

func (b *Browser) pageDetails(move func(context.Context) (bool, error)) tea.Cmd {
	return func() tea.Msg {
		_, err := move(b.ctx)
		return detailsLoadedMsg{err: err}
	}
}

func (b *Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		return b.handleKey(m)
	case summariesLoadedMsg:
		b.loading = false
		b.summaries = b.svc.Summaries()
		b.status = errorText(m.err)
		if b.cursor >= len(b.summaries.Records) {
			b.cursor = max(len(b.summaries.Records)-1, 0)
		}
	case detailsLoadedMsg:
		b.loading = false
		b.selector, b.details = b.svc.Details()
		b.status = errorText(m.err)
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinner, cmd = b.spinner.Update(m)
		return b, cmd
	}
	return b, nil
}

func (b *Browser) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(m, b.keys.Quit) {
		return b, tea.Quit
	}
	if b.loading {
		return b, nil
	}

	if b.mode == viewDetails {
		switch {
		case key.Matches(m, b.keys.Back):
			b.mode = viewSummaries
			b.status = ""
		case key.Matches(m, b.keys.Next):
			return b.startLoad(b.pageDetails(b.svc.NextDetails))
		case key.Matches(m, b.keys.Prev):
			return b.startLoad(b.pageDetails(b.svc.PreviousDetails))
		case key.Matches(m, b.keys.Refresh):
			return b.startLoad(b.loadDetails())
		case key.Matches(m, b.keys.Transactions):
			return b.startLoad(b.drillIn(b.selector.TaskID, models.CategoryTransaction))
		case key.Matches(m, b.keys.Bank):
			return b.startLoad(b.drillIn(b.selector.TaskID, models.CategoryBank))
		}
		return b, nil
	}

	switch {
	case key.Matches(m, b.keys.Up):
		if b.cursor > 0 {
			b.cursor--
		}
	case key.Matches(m, b.keys.Down):
		if b.cursor < len(b.summaries.Records)-1 {
			b.cursor++
		}
	case key.Matches(m, b.keys.Next):
		if b.summaries.Page.CanGoNext() {
			b.cursor = 0
			return b.startLoad(b.pageSummaries(b.svc.NextSummaries))
		}
	case key.Matches(m, b.keys.Prev):
		if b.summaries.Page.CanGoPrevious() {
			b.cursor = 0
			return b.startLoad(b.pageSummaries(b.svc.PreviousSummaries))
		}
	case key.Matches(m, b.keys.Refresh):
		return b.startLoad(b.loadSummaries())
	case key.Matches(m, b.keys.Transactions), key.Matches(m, b.keys.Bank):
		if len(b.summaries.Records) == 0 {
			return b, nil
		}
		category := models.CategoryTransaction
		if key.Matches(m, b.keys.Bank) {
			category = models.CategoryBank
		}
		b.mode = viewDetails
		return b.startLoad(b.drillIn(b.summaries.Records[b.cursor].TaskID, category))
	}
	return b, nil
}

func (b *Browser) startLoad(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	b.loading = true
	b.status = ""
	return b, tea.Batch(b.spinner.Tick, cmd)
}

func (b *Browser) View() string {
	var body string
	if b.mode == viewDetails {
		body = b.renderDetails()
	} else {
		body = b.renderSummaries()
	}
	if b.loading {
		body += "\n" + b.spinner.View() + " Loading..."
	}
	if b.status != "" {
		body += "\n" + b.status
	}
	return body
}

func (b *Browser) renderSummaries() string {
	out := titleStyle.Render("Reconciliation Summaries") + "\n"
	snap := b.summaries
	if snap.Display == listing.StatePopulated || len(snap.Records) > 0 {
		rows := render.SummaryRows(b.format, snap.Records)
		out += render.Table(withMarker(render.SummaryHeaders, rows, b.cursor)) + "\n"
		out += render.PageFooter(snap.Page) + "\n"
	} else if line := render.StateLine(snap.Display, snap.Message, "No reconciliation summaries found."); line != "" && snap.Display != listing.StateLoading {
		out += line + "\n"
	}
	out += statusStyle.Render(helpLine(b.keys.Up, b.keys.Down, b.keys.Next, b.keys.Prev, b.keys.Transactions, b.keys.Bank, b.keys.Refresh, b.keys.Quit))
	return out
}

func (b *Browser) renderDetails() string {
	category := b.selector.Category
	if category == "" {
		category = models.CategoryTransaction
	}
	out := titleStyle.Render(fmt.Sprintf("%s (Task ID: %s)", category.Title(), b.selector.TaskID)) + "\n"
	snap := b.details
	if len(snap.Records) > 0 {
		headers, rows := render.DetailRows(b.format, category, snap.Records)
		out += render.Table(headers, rows) + "\n"
		out += render.PageFooter(snap.Page) + "\n"
	} else if line := render.StateLine(snap.Display, snap.Message, "No "+category.Title()+" found."); line != "" && snap.Display != listing.StateLoading {
		out += line + "\n"
	}
	out += statusStyle.Render(helpLine(b.keys.Next, b.keys.Prev, b.keys.Transactions, b.keys.Bank, b.keys.Back, b.keys.Refresh, b.keys.Quit))
	return out
}

// withMarker prepends a cursor column.
func withMarker(headers []string, rows [][]string, cursor int) ([]string, [][]string) {
	marked := make([][]string, len(rows))
	for i, row := range rows {
		marker := " "
		if i == cursor {
			marker = "▶"
		}
		marked[i] = append([]string{marker}, row...)
	}
	return append([]string{""}, headers...), marked
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	var le *models.LoadError
	if errors.As(err, &le) {
		return le.Message
	}
	return "error: " + strings.TrimSpace(err.Error())
}
