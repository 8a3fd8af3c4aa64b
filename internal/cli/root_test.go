package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reconciliation-portal/internal/cli/commands"
	handler "reconciliation-portal/internal/handlers"
	"reconciliation-portal/internal/routes"
)

func devServer(t *testing.T, seedRuns int) (*httptest.Server, *handler.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := handler.NewMemoryStore()
	handler.SeedDemo(store, seedRuns, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	srv := httptest.NewServer(routes.NewRouter(store, routes.Options{}))
	t.Cleanup(srv.Close)
	return srv, store
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRoot()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--log-level", "error", "--timezone", "UTC"))
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRootCommands(t *testing.T) {
	cmd := NewRoot()
	require.Equal(t, "reconctl", cmd.Use)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"run", "summaries", "details", "browse", "health"} {
		assert.Contains(t, names, want)
	}
}

func TestHealth(t *testing.T) {
	srv, _ := devServer(t, 0)

	out, _, err := execute(t, "health", "--api-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "backend ok at "+srv.URL)
}

func TestSummariesPage(t *testing.T) {
	srv, _ := devServer(t, 12)

	out, _, err := execute(t, "summaries", "--api-url", srv.URL, "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "demo-011")
	assert.Contains(t, out, "Showing 11-12 of 12 (page 2/2)")
	assert.NotContains(t, out, "demo-001 ")
}

func TestSummariesPastLastPage(t *testing.T) {
	srv, _ := devServer(t, 3)

	_, _, err := execute(t, "summaries", "--api-url", srv.URL, "--page", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "past the last page")
}

func TestSummariesEmpty(t *testing.T) {
	srv, _ := devServer(t, 0)

	out, _, err := execute(t, "summaries", "--api-url", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "No reconciliation summaries found.")
}

func TestDetails(t *testing.T) {
	srv, _ := devServer(t, 2)

	out, _, err := execute(t, "details", "demo-002", "--category", "bank", "--api-url", srv.URL, "--page-size", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Unmatched Bank Statements (Task ID: demo-002)")
	assert.Contains(t, out, "REF02000")
	assert.Contains(t, out, "Showing 1-2 of 3")
}

func TestDetailsUnknownCategory(t *testing.T) {
	_, _, err := execute(t, "details", "demo-001", "--category", "invoices")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")
}

func TestInvalidConfig(t *testing.T) {
	_, _, err := execute(t, "health", "--page-size", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list.page_size")
}

func TestRunUploadsAndSubmits(t *testing.T) {
	srv, store := devServer(t, 0)
	dir := t.TempDir()
	txPath := filepath.Join(dir, "transactions.csv")
	bankPath := filepath.Join(dir, "bank.csv")
	require.NoError(t, os.WriteFile(txPath, []byte("id,amount,type,time\nT1,10,debit,2024-01-15T10:00:00Z\n"), 0o644))
	require.NoError(t, os.WriteFile(bankPath, []byte("id,amount,date\n1,12.5,2024-01-15\n"), 0o644))

	out, errOut, err := execute(t, "run",
		"--api-url", srv.URL,
		"--transactions", txPath,
		"--bank-statement", bankPath,
		"--bank-name", "BCA",
		"--start-date", "2024-01-01",
		"--end-date", "2024-01-31",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "Reconciliation has been initiated successfully!")
	assert.Contains(t, out, "$2.50")
	assert.Contains(t, out, "Showing 1-1 of 1")
	assert.Contains(t, errOut, "both files uploaded")

	_, total := store.ListSummaries(10, 0)
	assert.Equal(t, 1, total)
}

func TestRunMissingFile(t *testing.T) {
	srv, store := devServer(t, 0)

	out, _, err := execute(t, "run",
		"--api-url", srv.URL,
		"--transactions", filepath.Join(t.TempDir(), "missing.csv"),
		"--bank-statement", filepath.Join(t.TempDir(), "missing.csv"),
		"--bank-name", "BCA",
	)
	require.Error(t, err)
	assert.Contains(t, out, "Error: ")
	_, total := store.ListSummaries(10, 0)
	assert.Zero(t, total)
}

func TestBrowseRunsTUI(t *testing.T) {
	srv, _ := devServer(t, 0)
	orig := runTUI
	defer func() { runTUI = orig }()

	var got *commands.Env
	runTUI = func(_ context.Context, env *commands.Env) error {
		got = env
		return nil
	}

	_, _, err := execute(t, "browse", "--api-url", srv.URL, "--page-size", "7")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 7, got.Config.List.PageSize)
	assert.Equal(t, srv.URL, got.API.BaseURL())
}
