package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/dragon-caves-game/game/config"
	"github.com/wricardo/dragon-caves-game/game/engine"
	"github.com/wricardo/dragon-caves-game/game/session"
	"go.uber.org/zap"
)

func TestConstants(t *testing.T) {
	if Version != "1.0.0" {
		t.Errorf("Expected version 1.0.0, got %s", Version)
	}
	if AppName != "Dragon Caves Game Server" {
		t.Errorf("Expected app name Dragon Caves Game Server, got %s", AppName)
	}
}

func testOptions(t *testing.T) options {
	t.Helper()
	if _, err := os.Stat("configs"); os.IsNotExist(err) {
		t.Skip("Skipping test - configs directory not found")
	}
	return options{
		host:        "localhost",
		port:        8080,
		configDir:   "configs",
		sessionsDir: filepath.Join(t.TempDir(), "sessions"),
	}
}

func TestInitializeServices(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gameService, err := initializeServices(ctx, testOptions(t), zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if gameService == nil {
		t.Fatal("Expected game service to be initialized")
	}

	info, err := gameService.CreateSession(ctx, "")
	if err != nil {
		t.Fatalf("Failed to create session with default config: %v", err)
	}
	if info.GameState == nil || info.GameState.GameOver {
		t.Error("Expected a fresh game for the new session")
	}
}

func TestInitializeServices_InvalidConfigDir(t *testing.T) {
	opts := options{configDir: "/non/existent/path", sessionsDir: t.TempDir()}

	if _, err := initializeServices(context.Background(), opts, zap.NewNop()); err == nil {
		t.Error("Expected error for non-existent config directory")
	}
}

func TestOptionsAddr(t *testing.T) {
	opts := options{host: "0.0.0.0", port: 9090}
	if got := opts.addr(); got != "0.0.0.0:9090" {
		t.Errorf("Expected 0.0.0.0:9090, got %s", got)
	}
}

func TestRootCommandDefaults(t *testing.T) {
	var got options
	cmd := newRootCommand()
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		got = optionsFromCommand(c)
		return nil
	}

	if err := cmd.Run(context.Background(), []string{"dragon-caves"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got.port <= 0 || got.port > 65535 {
		t.Errorf("Invalid default port: %d", got.port)
	}
	if got.host == "" {
		t.Error("Host should have a default value")
	}
	if got.configDir != "configs" {
		t.Errorf("Expected default config dir configs, got %s", got.configDir)
	}
	if got.sessionsDir != "sessions" {
		t.Errorf("Expected default sessions dir sessions, got %s", got.sessionsDir)
	}
	if got.ngrokEnabled {
		t.Error("ngrok should be disabled by default")
	}
}

func TestRootCommandFlags(t *testing.T) {
	t.Setenv("CONFIG_DIR", "/tmp/dragon-configs")

	var got options
	cmd := newRootCommand()
	cmd.Action = func(ctx context.Context, c *cli.Command) error {
		got = optionsFromCommand(c)
		return nil
	}

	args := []string{"dragon-caves", "--port", "9191", "--host", "0.0.0.0", "--debug"}
	if err := cmd.Run(context.Background(), args); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if got.port != 9191 {
		t.Errorf("Expected port 9191, got %d", got.port)
	}
	if got.host != "0.0.0.0" {
		t.Errorf("Expected host 0.0.0.0, got %s", got.host)
	}
	if !got.debug {
		t.Error("Expected debug to be enabled")
	}
	if got.configDir != "/tmp/dragon-configs" {
		t.Errorf("Expected config dir from environment, got %s", got.configDir)
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	cmd := newRootCommand()

	tests := []struct {
		name    string
		aliases []string
	}{
		{"server", []string{"http"}},
		{"stdio-mcp", []string{"mcp-stdio", "mcp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := cmd.Command(tt.name)
			if sub == nil {
				t.Fatalf("Expected subcommand %s", tt.name)
			}
			for _, alias := range tt.aliases {
				if cmd.Command(alias) != sub {
					t.Errorf("Expected alias %s to resolve to %s", alias, tt.name)
				}
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{true, false} {
		logger, err := newLogger(debug)
		if err != nil {
			t.Fatalf("newLogger(%v) failed: %v", debug, err)
		}
		if logger == nil {
			t.Fatalf("newLogger(%v) returned nil", debug)
		}
	}
}

func TestApiAvailable(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	if !apiAvailable(healthy.URL) {
		t.Error("Expected healthy server to be available")
	}
	if apiAvailable(broken.URL) {
		t.Error("Expected failing server to be unavailable")
	}
	if apiAvailable("http://127.0.0.1:1") {
		t.Error("Expected closed port to be unavailable")
	}
}

func TestSyncWithFilesystem(t *testing.T) {
	opts := testOptions(t)
	if err := os.MkdirAll(opts.sessionsDir, 0755); err != nil {
		t.Fatal(err)
	}

	configManager, err := config.NewManager(opts.configDir)
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	persistence, err := session.NewFilePersistence(opts.sessionsDir, configManager)
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}
	manager := session.NewManagerWithPersistence(persistence, zap.NewNop())

	cfg := engine.DefaultGameConfig()
	if _, err := manager.Create("keep", cfg); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := manager.Create("gone", cfg); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	if err := persistence.Delete("gone"); err != nil {
		t.Fatalf("Failed to delete snapshot: %v", err)
	}

	if pruned := syncWithFilesystem(manager, persistence); pruned != 1 {
		t.Errorf("Expected 1 pruned session, got %d", pruned)
	}
	if _, err := manager.Get("keep"); err != nil {
		t.Errorf("Expected kept session to remain: %v", err)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session in memory, got %d", manager.Count())
	}
}

func TestSessionCleanupRoutine_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sessionCleanupRoutine(ctx, session.NewManager(zap.NewNop()), time.Millisecond, zap.NewNop())
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup routine did not stop after cancel")
	}
}
