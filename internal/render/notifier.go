package render

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"reconciliation-portal/internal/services/reconciliation"
)

var (
	successTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
)

// WriterNotifier prints notifications as "Title: message" lines.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

func (n *WriterNotifier) Notify(title, message string) {
	style := successTitle
	if title == reconciliation.TitleError {
		style = errorTitle
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s: %s\n", style.Render(title), message)
}
