package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/rumorlens/internal/checkpoint"
	"github.com/ppiankov/rumorlens/internal/model"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestDefaultConfigFile_RoundTrips(t *testing.T) {
	data, err := defaultConfigFile()
	if err != nil {
		t.Fatalf("defaultConfigFile failed: %v", err)
	}

	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("Generated config is not valid YAML: %v", err)
	}
	if cfg.Checkpoint.Every != 100 || cfg.Throttle.Delay != time.Second {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Generated config does not validate: %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, Version) {
		t.Errorf("Expected version in output, got %q", out)
	}
}

func TestTagCommand(t *testing.T) {
	out, err := execute(t, "tag", "Here", "we", "go!", "Rice", "to", "Arsenal")
	if err != nil {
		t.Fatalf("tag failed: %v", err)
	}
	if !strings.Contains(out, `looks_like_move: true (matched "here we go")`) {
		t.Errorf("Unexpected output: %q", out)
	}

	out, err = execute(t, "tag", "Lovely weather today")
	if err != nil {
		t.Fatalf("tag failed: %v", err)
	}
	if !strings.Contains(out, "looks_like_move: false") {
		t.Errorf("Unexpected output: %q", out)
	}
}

func TestSummarizeCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")

	e := model.DefaultEntity()
	e.Player = model.StringPtr("Declan Rice")
	e.DestinationClub = model.StringPtr("Arsenal")
	e.Status = model.StatusPtr(model.StatusHereWeGo)
	e.CertaintyScore = 1
	e.LooksLikeMove = true
	records := []model.ResultRecord{{ID: "1", RawText: "Here we go", HeuristicFlag: true, Entity: e}}

	if err := checkpoint.NewCSVStore(path).Save(t.Context(), records); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "summarize", path)
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	for _, want := range []string{"1 of 1 records match", "Confirmed", "Declan Rice → Arsenal"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	if _, err := execute(t, "summarize", filepath.Join(t.TempDir(), "empty.csv")); err == nil {
		t.Error("Expected error for missing results")
	}
}

func TestSummarizeCommand_MissingFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"missing.csv", "missing.db"} {
		path := filepath.Join(dir, name)
		_, err := execute(t, "summarize", path)
		if err == nil || !strings.Contains(err.Error(), "results not found") {
			t.Errorf("%s: expected not-found error, got %v", name, err)
		}
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Errorf("%s: summarize should not create the file", name)
		}
	}
}

func TestApplyRunFlags(t *testing.T) {
	cfg := model.DefaultConfig()
	if err := runCmd.Flags().Parse([]string{"--checkpoint-every", "7", "--delay", "0s", "--llm-model", "gpt-4o", "--no-cache"}); err != nil {
		t.Fatal(err)
	}
	applyRunFlags(runCmd, cfg)

	if cfg.Checkpoint.Every != 7 || cfg.Throttle.Delay != 0 {
		t.Errorf("Flags not applied: %+v %+v", cfg.Checkpoint, cfg.Throttle)
	}
	if cfg.LLM.Model != "gpt-4o" || cfg.Cache.Enabled {
		t.Errorf("LLM flags not applied: %+v, cache %v", cfg.LLM, cfg.Cache.Enabled)
	}
	if cfg.Output.Path != model.DefaultConfig().Output.Path {
		t.Errorf("Unset flag should keep config value, got %q", cfg.Output.Path)
	}
}

func TestConfigInit(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"config", "init"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".rumorlens", "config.yaml")); err != nil {
		t.Errorf("Expected config file: %v", err)
	}

	rootCmd.SetArgs([]string{"config", "init"})
	if err := rootCmd.Execute(); err == nil {
		t.Error("Expected error when config already exists")
	}
}
