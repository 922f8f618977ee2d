package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	server     *httptest.Server
}

// setupCLITestEnv writes a config pointing at a fake Jellyfin server and
// keeps all state inside a temp dir.
func setupCLITestEnv(t *testing.T, extra string) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "share"))
	t.Setenv("JELLYFIN_URL", "")
	t.Setenv("JELLYFIN_USERNAME", "")
	t.Setenv("JELLYFIN_PASSWORD", "")

	server := httptest.NewServer(http.HandlerFunc(fakeJellyfin(t)))
	t.Cleanup(server.Close)

	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(`[paths]
state_dir = %q
log_dir = %q

[jellyfin]
url = %q
username = "alice"
password = "secret"

[player]
path = "jellypot-test-missing-player"

[bridge]
browser_url = "http://127.0.0.1:9222"
launch_browser = false
%s
`, filepath.Join(base, "state"), filepath.Join(base, "logs"), server.URL, extra)
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{baseDir: base, configPath: configPath, server: server}
}

func fakeJellyfin(t *testing.T) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/Users/AuthenticateByName" {
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode auth body: %v", err)
			}
			if body["Username"] != "alice" || body["Pw"] != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"AccessToken": "tok",
				"SessionInfo": map[string]string{"Id": "sess", "UserId": "u1"},
			})
			return
		}
		if !strings.Contains(r.Header.Get("Authorization"), `Token="tok"`) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/Users/u1/Items/S":
			_, _ = w.Write([]byte(`{"Id":"S","Name":"Show","Type":"Series"}`))
		case "/Users/u1/Items/M":
			_, _ = w.Write([]byte(`{"Id":"M","Name":"Film","Type":"Movie"}`))
		case "/Shows/NextUp":
			_, _ = w.Write([]byte(`{"Items":[{"Id":"E1"},{"Id":"E2"}],"TotalRecordCount":2}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIWithInput(t, args, configPath, strings.NewReader(""))
}

func runCLIWithInput(t *testing.T, args []string, configPath string, in io.Reader) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(in)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q to contain %q", haystack, needle)
	}
}
