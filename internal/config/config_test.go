package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// isolate points every lookup location at fresh temp dirs and returns the
// work directory.
func isolate(t *testing.T) (workDir, home string) {
	t.Helper()
	root := t.TempDir()
	workDir = filepath.Join(root, "project", "sub")
	home = filepath.Join(root, "home")
	for _, d := range []string{workDir, home} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "xdg"))
	for _, key := range []string{"db", "json", "parse.currency", "log.level", "watch.debounce", "legacy.timezone"} {
		t.Setenv(EnvVar(key), "")
		os.Unsetenv(EnvVar(key))
	}
	return workDir, home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	workDir, home := isolate(t)

	cfg, err := Load(Options{WorkDir: workDir, HomeDir: home})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.File() != "" {
		t.Errorf("File() = %q, want none", cfg.File())
	}
	if cfg.DBPath() != "mentor.db" {
		t.Errorf("DBPath() = %q, want mentor.db", cfg.DBPath())
	}
	if cfg.JSON() {
		t.Error("JSON() should default to false")
	}
	if got, want := cfg.Currencies(), []string{"تومان", "Toman"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Currencies() = %v, want %v", got, want)
	}
	if cfg.WatchDebounce() != 500*time.Millisecond {
		t.Errorf("WatchDebounce() = %v", cfg.WatchDebounce())
	}
	if cfg.HooksDir() != ".mentor/hooks" || cfg.HooksTimeout() != 10*time.Second {
		t.Errorf("hooks = %q, %v", cfg.HooksDir(), cfg.HooksTimeout())
	}
	if loc, err := cfg.LegacyLocation(); err != nil || loc != time.Local {
		t.Errorf("LegacyLocation() = %v, %v", loc, err)
	}
	if cfg.GetInt("log.max-backups") != 3 {
		t.Errorf("log.max-backups = %d, want 3", cfg.GetInt("log.max-backups"))
	}
	if src := cfg.Source("db"); src != SourceDefault {
		t.Errorf("Source(db) = %s, want default", src)
	}
}

func TestProjectConfigFoundFromSubdirectory(t *testing.T) {
	workDir, home := isolate(t)
	project := filepath.Dir(workDir)
	writeFile(t, filepath.Join(project, DirName, "config.yaml"), "db: shop.db\nparse:\n  currency: [Rial]\n")
	// Lower-precedence location must be ignored.
	writeFile(t, filepath.Join(home, DirName, "config.yaml"), "db: home.db\n")

	cfg, err := Load(Options{WorkDir: workDir, HomeDir: home})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath() != "shop.db" {
		t.Errorf("DBPath() = %q, want shop.db", cfg.DBPath())
	}
	if got := cfg.Currencies(); !reflect.DeepEqual(got, []string{"Rial"}) {
		t.Errorf("Currencies() = %v", got)
	}
	if src := cfg.Source("db"); src != SourceConfigFile {
		t.Errorf("Source(db) = %s, want config_file", src)
	}
}

func TestHomeConfigFallback(t *testing.T) {
	workDir, home := isolate(t)
	writeFile(t, filepath.Join(home, DirName, "config.yaml"), "json: true\n")

	cfg, err := Load(Options{WorkDir: workDir, HomeDir: home})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.JSON() {
		t.Error("JSON() should come from home config")
	}
}

func TestXDGConfigBeforeHome(t *testing.T) {
	workDir, home := isolate(t)
	writeFile(t, filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "mentor", "config.yaml"), "db: xdg.db\n")
	writeFile(t, filepath.Join(home, DirName, "config.yaml"), "db: home.db\n")

	cfg, err := Load(Options{WorkDir: workDir, HomeDir: home})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath() != "xdg.db" {
		t.Errorf("DBPath() = %q, want xdg.db", cfg.DBPath())
	}
}

func TestExplicitConfigFile(t *testing.T) {
	workDir, home := isolate(t)
	explicit := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, explicit, "db: custom.db\n")

	cfg, err := Load(Options{ConfigFile: explicit, WorkDir: workDir, HomeDir: home})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath() != "custom.db" || cfg.File() != explicit {
		t.Errorf("DBPath() = %q, File() = %q", cfg.DBPath(), cfg.File())
	}

	if _, err := Load(Options{ConfigFile: explicit + ".missing", WorkDir: workDir, HomeDir: home}); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestMalformedConfigFile(t *testing.T) {
	workDir, home := isolate(t)
	writeFile(t, filepath.Join(workDir, DirName, "config.yaml"), "db: [unterminated\n")

	if _, err := Load(Options{WorkDir: workDir, HomeDir: home}); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	workDir, home := isolate(t)
	writeFile(t, filepath.Join(workDir, DirName, "config.yaml"), "db: file.db\n")
	t.Setenv("MENTOR_DB", "env.db")
	t.Setenv("MENTOR_PARSE_CURRENCY", "Toman, ریال")

	cfg, err := Load(Options{WorkDir: workDir, HomeDir: home})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath() != "env.db" {
		t.Errorf("DBPath() = %q, want env.db", cfg.DBPath())
	}
	if src := cfg.Source("db"); src != SourceEnvVar {
		t.Errorf("Source(db) = %s, want env_var", src)
	}
	if got := cfg.Currencies(); !reflect.DeepEqual(got, []string{"Toman", "ریال"}) {
		t.Errorf("Currencies() = %v", got)
	}
}

func TestLegacyTimezone(t *testing.T) {
	workDir, home := isolate(t)
	writeFile(t, filepath.Join(workDir, DirName, "config.yaml"), "legacy:\n  timezone: Asia/Tehran\n")

	cfg, err := Load(Options{WorkDir: workDir, HomeDir: home})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	loc, err := cfg.LegacyLocation()
	if err != nil {
		t.Skipf("zoneinfo unavailable: %v", err)
	}
	if loc.String() != "Asia/Tehran" {
		t.Errorf("LegacyLocation() = %v", loc)
	}

	cfg.Set("legacy.timezone", "Nowhere/Special")
	if _, err := cfg.LegacyLocation(); err == nil {
		t.Error("expected error for an unknown zone")
	}
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	workDir, home := isolate(t)
	writeFile(t, filepath.Join(workDir, ".env"), "MENTOR_DB=dotenv.db\nMENTOR_LOG_LEVEL=debug\n")
	t.Setenv("MENTOR_DB", "real.db")
	t.Cleanup(func() { os.Unsetenv("MENTOR_LOG_LEVEL") })

	cfg, err := Load(Options{WorkDir: workDir, HomeDir: home})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DotEnvFile() == "" {
		t.Error("DotEnvFile() should report the loaded file")
	}
	if cfg.DBPath() != "real.db" {
		t.Errorf("DBPath() = %q, want real.db", cfg.DBPath())
	}
	if got := cfg.GetString("log.level"); got != "debug" {
		t.Errorf("log.level = %q, want debug from .env", got)
	}
}

func TestSkipDotEnv(t *testing.T) {
	workDir, home := isolate(t)
	writeFile(t, filepath.Join(workDir, ".env"), "MENTOR_WATCH_DEBOUNCE=2s\n")

	cfg, err := Load(Options{WorkDir: workDir, HomeDir: home, SkipDotEnv: true})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.WatchDebounce() != 500*time.Millisecond {
		t.Errorf("WatchDebounce() = %v, .env should be skipped", cfg.WatchDebounce())
	}
}

func TestFlagSource(t *testing.T) {
	workDir, home := isolate(t)
	cfg, err := Load(Options{WorkDir: workDir, HomeDir: home})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.Set("db", "flag.db")
	if cfg.DBPath() != "flag.db" {
		t.Errorf("DBPath() = %q", cfg.DBPath())
	}
	if src := cfg.Source("db"); src != SourceFlag {
		t.Errorf("Source(db) = %s, want flag", src)
	}

	var found bool
	for _, s := range cfg.Settings() {
		if s.Key == "db" {
			found = true
			if s.Source != SourceFlag || s.Value != "flag.db" {
				t.Errorf("Settings() db = %+v", s)
			}
		}
	}
	if !found {
		t.Error("Settings() missing db")
	}
}

func TestEnvVar(t *testing.T) {
	tests := map[string]string{
		"db":              "MENTOR_DB",
		"parse.currency":  "MENTOR_PARSE_CURRENCY",
		"log.max-size-mb": "MENTOR_LOG_MAX_SIZE_MB",
	}
	for key, want := range tests {
		if got := EnvVar(key); got != want {
			t.Errorf("EnvVar(%q) = %q, want %q", key, got, want)
		}
	}
}
