package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wricardo/dragon-caves-game/game/config"
	"github.com/wricardo/dragon-caves-game/game/engine"
	"github.com/wricardo/dragon-caves-game/game/service"
)

func newTestPersistence(t *testing.T) (*FilePersistence, *config.Manager, string) {
	t.Helper()
	tempDir := t.TempDir()

	configManager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}

	persistence, err := NewFilePersistence(tempDir, configManager)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	return persistence, configManager, tempDir
}

// flipAny flips the first face-down card and returns the flip result
func flipAny(t *testing.T, eng *engine.GameEngine) *engine.FlipResult {
	t.Helper()
	for i, c := range eng.GetState().Chits {
		if c.Revealed {
			continue
		}
		result, err := eng.Flip(i)
		if err != nil {
			t.Fatalf("Flip failed: %v", err)
		}
		return result
	}
	t.Fatal("No face-down card to flip")
	return nil
}

func TestFilePersistence(t *testing.T) {
	persistence, configManager, tempDir := newTestPersistence(t)

	gameConfig := configManager.GetDefault()
	eng, err := engine.NewEngine(gameConfig)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	session := &service.Session{
		ID:             "test1",
		Engine:         eng,
		Config:         gameConfig,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	t.Run("Save and Load Session", func(t *testing.T) {
		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}
		if !persistence.Exists("test1") {
			t.Error("Session file should exist after save")
		}

		loaded, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		if loaded.ID != session.ID {
			t.Errorf("Expected ID %s, got %s", session.ID, loaded.ID)
		}
		if loaded.Config.Name != gameConfig.Name {
			t.Errorf("Expected config %s, got %s", gameConfig.Name, loaded.Config.Name)
		}

		want := session.Engine.GetState()
		got := loaded.Engine.GetState()
		if got.GameID != want.GameID {
			t.Errorf("Expected game id %s, got %s", want.GameID, got.GameID)
		}
		for i := range want.Tiles {
			if got.Tiles[i].Animal != want.Tiles[i].Animal {
				t.Fatalf("Tile %d differs after load", i)
			}
		}
		for i := range want.Chits {
			if got.Chits[i] != want.Chits[i] {
				t.Fatalf("Card %d differs after load", i)
			}
		}
	})

	t.Run("Save State Changes", func(t *testing.T) {
		flipAny(t, session.Engine)
		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		loaded, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}
		want := session.Engine.GetState()
		got := loaded.Engine.GetState()
		if got.TotalMoves != 1 || len(got.MoveHistory) != 1 {
			t.Errorf("Expected one flip in history, got %d", got.TotalMoves)
		}
		if got.CurrentPlayer != want.CurrentPlayer || got.TurnNumber != want.TurnNumber {
			t.Errorf("Turn state differs: got seat %d turn %d, want seat %d turn %d",
				got.CurrentPlayer, got.TurnNumber, want.CurrentPlayer, want.TurnNumber)
		}
		for i := range want.Dragons {
			if got.Dragons[i] != want.Dragons[i] {
				t.Errorf("Dragon %d differs: got %+v, want %+v", i, got.Dragons[i], want.Dragons[i])
			}
		}
	})

	t.Run("List All Sessions", func(t *testing.T) {
		otherEngine, err := engine.NewEngine(gameConfig)
		if err != nil {
			t.Fatalf("Failed to create engine: %v", err)
		}
		other := &service.Session{
			ID:             "test2",
			Engine:         otherEngine,
			Config:         gameConfig,
			CreatedAt:      time.Now(),
			LastAccessedAt: time.Now(),
		}
		if err := persistence.Save(other); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		ids, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("ListAll failed: %v", err)
		}
		found := map[string]bool{}
		for _, id := range ids {
			found[id] = true
		}
		if !found["test1"] || !found["test2"] {
			t.Errorf("Expected test1 and test2, got %v", ids)
		}
	})

	t.Run("Delete Session", func(t *testing.T) {
		if err := persistence.Delete("test2"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if persistence.Exists("test2") {
			t.Error("Session file should be gone after delete")
		}
		if err := persistence.Delete("test2"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Error Cases", func(t *testing.T) {
		if err := persistence.Save(nil); err == nil {
			t.Error("Expected error saving nil session")
		}
		if _, err := persistence.Load("missing"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}

		corrupt := filepath.Join(tempDir, "corrupt.json")
		if err := os.WriteFile(corrupt, []byte("{bad"), 0644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
		if _, err := persistence.Load("corrupt"); err == nil {
			t.Error("Expected error loading corrupt session")
		}

		empty := filepath.Join(tempDir, "empty.json")
		if err := os.WriteFile(empty, []byte(`{"id":"empty","config_name":"classic"}`), 0644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
		if _, err := persistence.Load("empty"); err == nil {
			t.Error("Expected error loading session without game state")
		}
	})
}

func TestFilePersistenceFileStructure(t *testing.T) {
	persistence, configManager, tempDir := newTestPersistence(t)

	gameConfig, err := configManager.LoadConfig("duo")
	if err != nil {
		t.Fatalf("Failed to load duo config: %v", err)
	}
	eng, err := engine.NewEngine(gameConfig)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	session := &service.Session{
		ID:             "abcd",
		Engine:         eng,
		Config:         gameConfig,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(tempDir, "abcd.json"))
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tempDir, "abcd.json.tmp")); !os.IsNotExist(err) {
		t.Error("Temp file should not remain after save")
	}

	var data PersistedSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("Session file is not valid JSON: %v", err)
	}
	if data.ID != "abcd" {
		t.Errorf("Expected id abcd, got %s", data.ID)
	}
	if data.ConfigName != "duo" {
		t.Errorf("Expected config id duo, got %s", data.ConfigName)
	}
	if data.Config == nil || data.Config.Players != 2 {
		t.Errorf("Expected config snapshot with 2 players, got %+v", data.Config)
	}
	if data.GameState == nil || len(data.GameState.Dragons) != 2 {
		t.Fatalf("Expected game state with 2 dragons, got %+v", data.GameState)
	}
	if data.GameState.Dragons[1].ID != 2 {
		t.Errorf("Expected the second dragon to keep id 2, got %d", data.GameState.Dragons[1].ID)
	}
	if data.GameState.Chits[0].Animal == "" {
		t.Error("Persisted state must keep face-down cards")
	}
}

func TestFilePersistenceRejectsTamperedState(t *testing.T) {
	persistence, configManager, tempDir := newTestPersistence(t)

	gameConfig := configManager.GetDefault()
	eng, err := engine.NewEngine(gameConfig)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	if err := persistence.Save(&service.Session{ID: "seats", Engine: eng, Config: gameConfig}); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	path := filepath.Join(tempDir, "seats.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}
	var data PersistedSessionData
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("Failed to parse session file: %v", err)
	}
	for i := range data.GameState.Dragons {
		data.GameState.Dragons[i].Seat = 5
	}
	raw, err = json.Marshal(data)
	if err != nil {
		t.Fatalf("Failed to marshal session: %v", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("Failed to write session file: %v", err)
	}

	if _, err := persistence.Load("seats"); !errors.Is(err, engine.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}

	manager := NewManagerWithPersistence(persistence, nil)
	if err := manager.LoadPersistedSessions(); err != nil {
		t.Fatalf("LoadPersistedSessions failed: %v", err)
	}
	if manager.Count() != 0 {
		t.Errorf("Expected the tampered session to be skipped, got %d sessions", manager.Count())
	}
	if _, err := manager.Get("seats"); !errors.Is(err, engine.ErrInvalidState) {
		t.Errorf("Expected Get to report ErrInvalidState, got %v", err)
	}
}

func TestFilePersistenceSessionIDs(t *testing.T) {
	persistence, configManager, _ := newTestPersistence(t)

	eng, err := engine.NewEngine(configManager.GetDefault())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	for _, id := range []string{"", "../escape", "a/b", ".hidden"} {
		session := &service.Session{ID: id, Engine: eng, Config: configManager.GetDefault()}
		if err := persistence.Save(session); !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Save %q: expected ErrInvalidSessionID, got %v", id, err)
		}
		if _, err := persistence.Load(id); !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Load %q: expected ErrInvalidSessionID, got %v", id, err)
		}
		if persistence.Exists(id) {
			t.Errorf("Exists %q: expected false", id)
		}
	}
}
