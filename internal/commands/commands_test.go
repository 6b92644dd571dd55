package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/activity"
	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/ledger"
)

var testNow = time.Date(2025, 2, 15, 12, 30, 0, 0, time.UTC)

type result struct {
	out    string
	errOut string
}

// runAt executes one tally invocation against dir with a fixed clock.
func runAt(t *testing.T, dir string, now time.Time, args ...string) (result, error) {
	t.Helper()
	a := newApp()
	a.now = func() time.Time { return now }
	a.newID = id.Sequence("exp")

	cmd := newRootCommand(a)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--data-dir", dir}, args...))

	err := cmd.ExecuteContext(context.Background())
	return result{out: out.String(), errOut: errOut.String()}, err
}

func run(t *testing.T, dir string, args ...string) (result, error) {
	t.Helper()
	return runAt(t, dir, testNow, args...)
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	res, err := run(t, dir, args...)
	require.NoError(t, err, "tally %s\nstderr: %s", strings.Join(args, " "), res.errOut)
	return res.out
}

func TestAdd(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "add", "12.50", "--category", "food")
	assert.Equal(t, "Added exp-0001 $12.50 Food\n", out)

	out = mustRun(t, dir, "add", "$8,25", "-c", "Transportation")
	assert.Equal(t, "Added exp-0002 $8.25 Transportation\n", out)

	out = mustRun(t, dir, "list")
	assert.Contains(t, out, "1  exp-0001  2025-02-15 12:30  $12.50  Food")
	assert.Contains(t, out, "2  exp-0002  2025-02-15 12:30  $8.25   Transportation")
	assert.Contains(t, out, "2 expenses, $20.75 total")
}

func TestAdd_DefaultCategory(t *testing.T) {
	out := mustRun(t, t.TempDir(), "add", "5")
	assert.Contains(t, out, "Housing & Utilities")
}

func TestAdd_Split(t *testing.T) {
	dir := t.TempDir()

	assert.Contains(t, mustRun(t, dir, "add", "100", "--split"), "$50.00")
	assert.Contains(t, mustRun(t, dir, "add", "100", "--split=30"), "$30.00")
	assert.Contains(t, mustRun(t, dir, "add", "100", "--split=100"), "$100.00")

	_, err := run(t, dir, "add", "100", "--split=150")
	assert.ErrorIs(t, err, ledger.ErrInvalidSplitPercent)

	_, err = run(t, dir, "add", "100", "--split=0")
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestAdd_Rejected(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		args []string
		want error
	}{
		{[]string{"add", "0"}, ledger.ErrInvalidAmount},
		{[]string{"add", "abc"}, ledger.ErrInvalidAmount},
		{[]string{"add", "1,000"}, ledger.ErrInvalidAmount},
		{[]string{"add", "100", "--split=1,000"}, ledger.ErrInvalidSplitPercent},
		{[]string{"add", "5", "-c", "Pets"}, ledger.ErrInvalidCategory},
	}
	for _, tt := range tests {
		_, err := run(t, dir, tt.args...)
		assert.ErrorIs(t, err, tt.want, strings.Join(tt.args, " "))
	}

	assert.Contains(t, mustRun(t, dir, "list"), "No expenses recorded.")
	_, err := os.Stat(filepath.Join(dir, config.DefaultFileDir, ledger.SnapshotKey+".json"))
	assert.True(t, os.IsNotExist(err), "rejected input never writes")
}

func TestReport(t *testing.T) {
	dir := t.TempDir()
	at := func(m time.Month, d int) time.Time { return time.Date(2025, m, d, 10, 0, 0, 0, time.UTC) }

	_, err := runAt(t, dir, at(time.February, 1), "add", "100", "-c", "Food")
	require.NoError(t, err)
	_, err = runAt(t, dir, at(time.February, 15), "add", "50", "-c", "Transportation")
	require.NoError(t, err)
	_, err = runAt(t, dir, at(time.March, 1), "add", "200", "-c", "Food")
	require.NoError(t, err)

	out := mustRun(t, dir, "report")
	assert.Regexp(t, `Total Expenses\s+\$350\.00`, out)
	assert.Regexp(t, `Food\s+\$300\.00`, out)
	assert.Regexp(t, `Entertainment\s+\$0\.00`, out)
	assert.Regexp(t, `2025-02\s+\$150\.00`, out)
	assert.Regexp(t, `2025-03\s+\$200\.00`, out)
	assert.Less(t, strings.Index(out, "2025-02"), strings.Index(out, "2025-03"))

	out = mustRun(t, dir, "report", "--month", "2025-02")
	assert.Contains(t, out, "Report for 2025-02")
	assert.Regexp(t, `Total Expenses\s+\$150\.00`, out)
	assert.NotContains(t, out, "2025-03")

	_, err = run(t, dir, "report", "--month", "February")
	assert.ErrorContains(t, err, "want YYYY-MM")

	out = mustRun(t, dir, "list", "--month", "2025-03")
	assert.Contains(t, out, "3  exp-0003")
	assert.Contains(t, out, "1 expenses, $200.00 total")

	out = mustRun(t, dir, "list", "--category", "food")
	assert.Contains(t, out, "2 expenses, $300.00 total")

	_, err = run(t, dir, "list", "--category", "Pets")
	assert.ErrorIs(t, err, ledger.ErrInvalidCategory)

	out = mustRun(t, dir, "categories", "--totals")
	assert.Regexp(t, `Food\s+\$300\.00`, out)
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "add", "1", "-c", "Food")
	mustRun(t, dir, "add", "2", "-c", "Food")
	mustRun(t, dir, "add", "3", "-c", "Food")

	out := mustRun(t, dir, "rm", "--index", "2")
	assert.Equal(t, "Removed exp-0002 $2.00 Food\n", out)

	out = mustRun(t, dir, "rm", "EXP-0003")
	assert.Equal(t, "Removed exp-0003 $3.00 Food\n", out)

	out = mustRun(t, dir, "list")
	assert.Contains(t, out, "exp-0001")
	assert.NotContains(t, out, "exp-0002")
	assert.NotContains(t, out, "exp-0003")

	_, err := run(t, dir, "rm", "--index", "9")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	_, err = run(t, dir, "rm", "nope")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	_, err = run(t, dir, "rm")
	assert.ErrorContains(t, err, "either an expense id or --index")
	_, err = run(t, dir, "rm", "exp-0001", "--index", "1")
	assert.ErrorContains(t, err, "either an expense id or --index")
}

func TestRemove_AmbiguousPrefix(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "add", "1")
	mustRun(t, dir, "add", "2")

	_, err := run(t, dir, "rm", "exp-")
	assert.ErrorIs(t, err, ledger.ErrAmbiguousID)
}

func TestEdit(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "add", "100", "-c", "Food")

	out := mustRun(t, dir, "edit", "exp-0001", "--amount", "80", "--split")
	assert.Equal(t, "Updated exp-0001 $40.00 Food\n", out)

	out = mustRun(t, dir, "edit", "exp-0001", "-c", "entertainment")
	assert.Equal(t, "Updated exp-0001 $40.00 Entertainment\n", out)

	_, err := run(t, dir, "edit", "exp-0001", "--split=25")
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount, "a split alone would stack on the stored amount")

	out = mustRun(t, dir, "edit", "exp-0001", "--amount", "40", "--split=25")
	assert.Equal(t, "Updated exp-0001 $10.00 Entertainment\n", out)

	_, err = run(t, dir, "edit", "exp-0001")
	assert.ErrorContains(t, err, "nothing to change")

	_, err = run(t, dir, "edit", "exp-0001", "--amount", "-3")
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = run(t, dir, "edit", "exp-0001", "-c", "Pets")
	assert.ErrorIs(t, err, ledger.ErrInvalidCategory)

	_, err = run(t, dir, "edit", "missing", "--amount", "3")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	assert.Contains(t, mustRun(t, dir, "list"), "$10.00  Entertainment")
}

func TestExportImport(t *testing.T) {
	src := t.TempDir()
	mustRun(t, src, "add", "12.5", "-c", "Food")
	mustRun(t, src, "add", "7", "-c", "Other")

	out := mustRun(t, src, "export")
	assert.True(t, strings.HasPrefix(out, ledger.Header+"\n"))
	assert.Contains(t, out, "exp-0002,2025-02-15T12:30:00Z,Other,7\n")

	file := filepath.Join(t.TempDir(), "expenses.csv")
	out = mustRun(t, src, "export", file)
	assert.Equal(t, fmt.Sprintf("Exported 2 expenses to %s\n", file), out)

	dst := t.TempDir()
	mustRun(t, dst, "add", "1", "-c", "Food")
	out = mustRun(t, dst, "import", file)
	assert.Equal(t, "Imported 2 expenses\n", out)

	list := mustRun(t, dst, "list")
	assert.Contains(t, list, "exp-0001")
	assert.Contains(t, list, "exp-0002", "clashing id is replaced")
	assert.Contains(t, list, "exp-0003")
	assert.Contains(t, list, "3 expenses, $20.50 total")
}

func TestImport_Rejected(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bad.csv")
	content := ledger.Header + "\n,2025-02-01T00:00:00Z,Food,3\n,2025-02-01T00:00:00Z,Pets,4\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))

	_, err := run(t, dir, "import", file)
	assert.ErrorIs(t, err, ledger.ErrInvalidCategory)
	assert.Contains(t, mustRun(t, dir, "list"), "No expenses recorded.")
}

func TestLog(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, "No activity recorded.\n", mustRun(t, dir, "log"))

	mustRun(t, dir, "add", "100", "-c", "Food", "--split")
	mustRun(t, dir, "edit", "exp-0001", "-c", "Other")
	mustRun(t, dir, "rm", "exp-0001")
	_, err := run(t, dir, "add", "0")
	require.Error(t, err)

	entries, err := activity.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3, "failed commands are not logged")
	assert.Equal(t, activity.ActionAdd, entries[0].Action)
	assert.Equal(t, "split 50% of $100.00", entries[0].Details)
	assert.Equal(t, activity.ActionEdit, entries[1].Action)
	assert.Equal(t, "category Other", entries[1].Details)
	assert.Equal(t, activity.ActionRemove, entries[2].Action)

	out := mustRun(t, dir, "log", "--limit", "1")
	assert.Contains(t, out, "remove")
	assert.NotContains(t, out, "split 50%")
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "books")

	out := mustRun(t, dir, "init", "--categories", "Rent,Groceries")
	assert.Contains(t, out, "Initialized tally in "+dir)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, []string{"Rent", "Groceries"}, cfg.Categories)

	assert.Equal(t, "Rent\nGroceries\n", mustRun(t, dir, "categories"))
	assert.Contains(t, mustRun(t, dir, "add", "9"), "Rent")

	_, err = run(t, dir, "init")
	assert.ErrorContains(t, err, "already exists")

	mustRun(t, dir, "init", "--force")
	assert.Equal(t, strings.Join([]string{"Housing & Utilities", "Food", "Entertainment", "Transportation", "Other"}, "\n")+"\n",
		mustRun(t, dir, "categories"))
}

func TestInit_SQLite(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init", "--backend", "sqlite")

	_, err := os.Stat(filepath.Join(dir, config.DefaultSQLiteFile))
	require.NoError(t, err)

	mustRun(t, dir, "add", "42", "-c", "Food")
	assert.Contains(t, mustRun(t, dir, "list"), "$42.00  Food", "backend comes from tally.yaml")
}

func TestBackendOverride_Env(t *testing.T) {
	t.Setenv("TALLY_STORAGE_BACKEND", "memory")
	dir := t.TempDir()

	mustRun(t, dir, "add", "5")
	assert.Contains(t, mustRun(t, dir, "list"), "No expenses recorded.", "memory storage does not outlive a command")
}

func TestInvalidConfig(t *testing.T) {
	_, err := run(t, t.TempDir(), "--log-level", "loud", "list")
	assert.ErrorContains(t, err, `invalid log level "loud"`)

	_, err = run(t, t.TempDir(), "--backend", "postgres", "list")
	assert.ErrorContains(t, err, "dsn cannot be empty")
}

func TestVersion(t *testing.T) {
	res, err := run(t, t.TempDir(), "--version")
	require.NoError(t, err)
	assert.Contains(t, res.out, "dev (commit: none")
}

func TestSettle(t *testing.T) {
	var buf bytes.Buffer
	err := settle(&buf, fmt.Errorf("%w: disk full", ledger.ErrPersistenceUnavailable))
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "warning: change not saved")

	buf.Reset()
	assert.ErrorIs(t, settle(&buf, ledger.ErrNotFound), ledger.ErrNotFound)
	assert.Empty(t, buf.String())
	assert.NoError(t, settle(&buf, nil))
}
