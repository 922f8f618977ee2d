package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"jellypot/internal/config"
	"jellypot/internal/testsupport"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, executableName("present"))
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Empty", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected status for empty command: %#v", results[2])
	}
}

func TestRequirementsIncludePlayer(t *testing.T) {
	cfg := config.Default()
	cfg.Player.Path = "/opt/player/bin/mpv"
	reqs := Requirements(&cfg)
	if len(reqs) == 0 || reqs[0].Command != "/opt/player/bin/mpv" || reqs[0].Optional {
		t.Fatalf("expected required player first, got %#v", reqs)
	}
	if runtime.GOOS == "linux" {
		found := false
		for _, req := range reqs {
			if req.Command == "xdg-open" {
				found = true
				if !req.Optional {
					t.Fatal("opener should be optional in frame launch mode")
				}
			}
		}
		if !found {
			t.Fatal("expected xdg-open requirement on linux")
		}
	}
}

func TestCheckBrowser(t *testing.T) {
	original := browserLookup
	t.Cleanup(func() { browserLookup = original })

	cfg := config.Default()
	browserLookup = func() (string, bool) { return "", false }
	status := CheckBrowser(&cfg)
	if status.Available || status.Optional || status.Detail == "" {
		t.Fatalf("expected required missing browser, got %#v", status)
	}

	cfg.Bridge.BrowserURL = "http://127.0.0.1:9222"
	browserLookup = func() (string, bool) { return "/usr/bin/chromium", true }
	status = CheckBrowser(&cfg)
	if !status.Available || !status.Optional || status.Command != "/usr/bin/chromium" {
		t.Fatalf("unexpected status %#v", status)
	}
}

func TestCheckFindsStubbedPlayer(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts are not executable on windows")
	}
	original := browserLookup
	t.Cleanup(func() { browserLookup = original })
	browserLookup = func() (string, bool) { return "", false }

	cfg := testsupport.NewConfig(t, testsupport.WithPlayer("jellypot-stub-player"), testsupport.WithStubbedBinaries())
	statuses := Check(cfg)
	if len(statuses) == 0 {
		t.Fatal("expected statuses")
	}
	player := statuses[0]
	if !player.Available {
		t.Fatalf("expected stubbed player to be found, got %#v", player)
	}
	want := filepath.Join(testsupport.BaseDir(cfg), "bin", "jellypot-stub-player")
	if player.Detail != want {
		t.Fatalf("expected resolved path %q, got %q", want, player.Detail)
	}
	browser := statuses[len(statuses)-1]
	if browser.Name != "Browser" || browser.Available {
		t.Fatalf("expected missing browser last, got %#v", browser)
	}
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}
