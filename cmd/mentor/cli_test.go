package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"github.com/untoldecay/mentor/internal/types"
)

const twoItems = `Kebab
Grilled lamb
150,000 تومان

Doogh
Yogurt drink
40,000 تومان
`

// testCLI runs commands in-process against a private directory with a
// controllable clock.
type testCLI struct {
	t   *testing.T
	dir string
	now time.Time
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	return &testCLI{
		t:   t,
		dir: t.TempDir(),
		now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (c *testCLI) exec(stdin string, args ...string) (string, string, error) {
	c.t.Helper()
	var out, errOut bytes.Buffer
	a := newApp(strings.NewReader(stdin), &out, &errOut)
	a.workDir = c.dir
	a.homeDir = c.dir
	a.userConfigDir = c.dir
	a.now = func() time.Time { return c.now }
	err := a.execute(context.Background(), args)
	return out.String(), errOut.String(), err
}

func (c *testCLI) mustRun(stdin string, args ...string) string {
	c.t.Helper()
	out, errOut, err := c.exec(stdin, args...)
	if err != nil {
		c.t.Fatalf("mentor %s: %v\nstderr: %s", strings.Join(args, " "), err, errOut)
	}
	return out
}

func (c *testCLI) writeFile(name, content string) {
	c.t.Helper()
	path := filepath.Join(c.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		c.t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		c.t.Fatal(err)
	}
}

func (c *testCLI) parseJSON(stdin string, args ...string) parseReport {
	c.t.Helper()
	var rep parseReport
	out := c.mustRun(stdin, append([]string{"parse", "--json"}, args...)...)
	if err := json.Unmarshal([]byte(out), &rep); err != nil {
		c.t.Fatalf("decode parse report: %v\n%s", err, out)
	}
	return rep
}

func (c *testCLI) listMenu() []types.MenuItem {
	c.t.Helper()
	var items []types.MenuItem
	out := c.mustRun("", "menu", "list", "--json")
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		c.t.Fatalf("decode menu list: %v\n%s", err, out)
	}
	return items
}

func TestParseFromStdin(t *testing.T) {
	c := newTestCLI(t)

	rep := c.parseJSON(twoItems)
	if rep.Source != "stdin" || rep.Found != 2 || rep.Inserted != 2 {
		t.Fatalf("report = %+v", rep)
	}

	items := c.listMenu()
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Name != "Kebab" || items[0].Price != 150000 || items[0].Description != "Grilled lamb" {
		t.Errorf("first item = %+v", items[0])
	}
	if !items[0].UpdatedAt.Equal(c.now) {
		t.Errorf("UpdatedAt = %v, want %v", items[0].UpdatedAt, c.now)
	}
}

func TestParseTwiceChangesNothing(t *testing.T) {
	c := newTestCLI(t)
	c.parseJSON(twoItems)

	rep := c.parseJSON(twoItems)
	if rep.Inserted != 0 || rep.Replaced != 0 || rep.Unchanged != 2 {
		t.Errorf("second import = %+v, want 2 unchanged", rep)
	}
}

func TestParseNewerTextReplaces(t *testing.T) {
	c := newTestCLI(t)
	c.parseJSON(twoItems)

	c.now = c.now.Add(time.Minute)
	rep := c.parseJSON(strings.Replace(twoItems, "150,000", "175,000", 1))
	if rep.Replaced != 2 {
		t.Errorf("Replaced = %d, want 2", rep.Replaced)
	}
	items := c.listMenu()
	if items[0].Name != "Kebab" || items[0].Price != 175000 {
		t.Errorf("after update first item = %+v", items[0])
	}
}

func TestParseOlderClockKeepsStored(t *testing.T) {
	c := newTestCLI(t)
	c.parseJSON(twoItems)

	c.now = c.now.Add(-time.Hour)
	rep := c.parseJSON(strings.Replace(twoItems, "150,000", "1,000", 1))
	if rep.Unchanged != 2 {
		t.Errorf("Unchanged = %d, want 2", rep.Unchanged)
	}
	if got := c.listMenu()[0].Price; got != 150000 {
		t.Errorf("price = %d, want 150000", got)
	}
}

func TestParseEmptyAndNoMatches(t *testing.T) {
	c := newTestCLI(t)

	out, errOut, err := c.exec("  \n\t", "parse")
	if err != nil {
		t.Fatalf("empty input: %v", err)
	}
	if out != "" || !strings.Contains(errOut, msgEmptyInput) {
		t.Errorf("empty input: stdout %q stderr %q", out, errOut)
	}

	_, errOut, err = c.exec("hello\nworld\n", "parse")
	if err != nil {
		t.Fatalf("no matches: %v", err)
	}
	if !strings.Contains(errOut, msgNoMatches) {
		t.Errorf("no matches: stderr %q", errOut)
	}
	if items := c.listMenu(); len(items) != 0 {
		t.Errorf("store has %d items", len(items))
	}
}

func TestParseDryRunSavesNothing(t *testing.T) {
	c := newTestCLI(t)
	rep := c.parseJSON(twoItems, "--dry-run")
	if !rep.DryRun || rep.Found != 2 || len(rep.Candidates) != 2 {
		t.Fatalf("dry run report = %+v", rep)
	}
	if rep.Candidates[1].Line != 5 {
		t.Errorf("Doogh line = %d, want 5", rep.Candidates[1].Line)
	}
	if items := c.listMenu(); len(items) != 0 {
		t.Errorf("dry run saved %d items", len(items))
	}
}

func TestParseCurrencyFlag(t *testing.T) {
	c := newTestCLI(t)
	text := "Latte\nEspresso and milk\n85,000 Rial\n"

	if rep := c.parseJSON(text); rep.Found != 0 {
		t.Fatalf("default currencies matched Rial: %+v", rep)
	}
	if rep := c.parseJSON(text, "--currency", "Rial"); rep.Inserted != 1 {
		t.Fatalf("--currency Rial: %+v", rep)
	}
}

func TestMenuAddAt(t *testing.T) {
	c := newTestCLI(t)
	c.mustRun("", "menu", "add", "Kebab", "150000", "--at", "2024-05-01 08:00:00")

	out := c.mustRun("", "menu", "show", "Kebab", "--json")
	var item types.MenuItem
	if err := json.Unmarshal([]byte(out), &item); err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	if !item.UpdatedAt.Equal(want) {
		t.Errorf("UpdatedAt = %v, want %v", item.UpdatedAt, want)
	}

	// Text stamped by the clock (June) is newer than the May record.
	rep := c.parseJSON("Kebab\nGrilled lamb\n160,000 تومان\n")
	if rep.Replaced != 1 {
		t.Errorf("Replaced = %d, want 1", rep.Replaced)
	}
}

func TestMenuAddRejectsBadInput(t *testing.T) {
	c := newTestCLI(t)
	for _, args := range [][]string{
		{"menu", "add", "Kebab", "-5"},
		{"menu", "add", "Kebab", "1.5"},
		{"menu", "add", "  ", "100"},
		{"menu", "add", "Kebab", "100", "--at", "whenever you like"},
		{"menu", "add"},
	} {
		if _, _, err := c.exec("", args...); err == nil {
			t.Errorf("mentor %s: expected error", strings.Join(args, " "))
		}
	}
	if items := c.listMenu(); len(items) != 0 {
		t.Errorf("store has %d items", len(items))
	}
}

func TestLockHeldByAnotherProcess(t *testing.T) {
	c := newTestCLI(t)
	lock := flock.New(filepath.Join(c.dir, "mentor.db.lock"))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("TryLock = %v, %v", locked, err)
	}
	defer func() { _ = lock.Unlock() }()

	_, _, err = c.exec("", "menu", "add", "Kebab", "100")
	if err == nil || !strings.Contains(err.Error(), "in use by another mentor process") {
		t.Fatalf("err = %v, want lock conflict", err)
	}

	// Readers do not take the lock.
	c.mustRun("", "menu", "list")
}

func TestRunExitCodes(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer

	code := run(context.Background(), []string{"--db", filepath.Join(dir, "m.db"), "menu", "show", "nothing"}, strings.NewReader(""), &out, &errOut)
	if code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.HasPrefix(errOut.String(), "Error: ") {
		t.Errorf("stderr = %q", errOut.String())
	}

	out.Reset()
	errOut.Reset()
	if code := run(context.Background(), []string{"version"}, strings.NewReader(""), &out, &errOut); code != 0 {
		t.Errorf("version exit code = %d, stderr %q", code, errOut.String())
	}
	if !strings.HasPrefix(out.String(), "mentor version "+Version) {
		t.Errorf("version output = %q", out.String())
	}
}

func TestExportToFileIsAtomic(t *testing.T) {
	c := newTestCLI(t)
	c.parseJSON(twoItems)
	c.writeFile("out.json", "previous contents")

	if _, _, err := c.exec("", "export", "--format", "nope", "-o", "out.json"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	data, err := os.ReadFile(filepath.Join(c.dir, "out.json"))
	if err != nil || string(data) != "previous contents" {
		t.Fatalf("failed export touched the file: %q, %v", data, err)
	}

	c.mustRun("", "export", "-o", "out.json")
	data, err = os.ReadFile(filepath.Join(c.dir, "out.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"name": "Doogh"`) {
		t.Errorf("out.json = %s", data)
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSeedKeepsTimestamps(t *testing.T) {
	c := newTestCLI(t)
	c.writeFile("seed.json", `{
  "version": 1,
  "exported_at": "2024-01-01T00:00:00Z",
  "menu": [
    {"name": "Kebab", "price": 150000, "description": "Grilled lamb", "updated_at": "2023-12-31T10:00:00Z"},
    {"name": "Tea", "price": 20000, "description": "", "updated_at": "0001-01-01T00:00:00Z"}
  ],
  "qa": [
    {"question": "Wifi?", "answer": "Yes", "updated_at": "2023-12-31T10:00:00Z"}
  ]
}`)
	c.mustRun("", "seed", "seed.json")

	items := c.listMenu()
	if len(items) != 2 {
		t.Fatalf("got %d items", len(items))
	}
	if want := time.Date(2023, 12, 31, 10, 0, 0, 0, time.UTC); !items[0].UpdatedAt.Equal(want) {
		t.Errorf("Kebab UpdatedAt = %v, want %v", items[0].UpdatedAt, want)
	}
	if !items[1].UpdatedAt.Equal(c.now) {
		t.Errorf("Tea UpdatedAt = %v, want clock %v", items[1].UpdatedAt, c.now)
	}
}

func TestConfigFlag(t *testing.T) {
	c := newTestCLI(t)
	c.writeFile("custom.yaml", "db: custom/store.db\n")

	c.mustRun(twoItems, "--config", "custom.yaml", "parse")
	if _, err := os.Stat(filepath.Join(c.dir, "custom", "store.db")); err != nil {
		t.Fatalf("database not created at the configured path: %v", err)
	}

	if _, _, err := c.exec("", "--config", "missing.yaml", "menu", "list"); err == nil {
		t.Error("expected error for a missing --config file")
	}
}

func TestInfoAfterImport(t *testing.T) {
	c := newTestCLI(t)
	c.parseJSON(twoItems)
	c.mustRun("", "qa", "add", "Wifi?", "Yes")

	var rep infoReport
	if err := json.Unmarshal([]byte(c.mustRun("", "info", "--json")), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.MenuItems != 2 || rep.QAEntries != 1 {
		t.Errorf("counts = %d menu, %d qa", rep.MenuItems, rep.QAEntries)
	}
	if rep.LastImportAt != "2024-06-01 12:00:00" || rep.LastImportCount != "2" {
		t.Errorf("last import = %q (%q)", rep.LastImportAt, rep.LastImportCount)
	}
	if !filepath.IsAbs(rep.DatabasePath) {
		t.Errorf("DatabasePath %q is not absolute", rep.DatabasePath)
	}
}
