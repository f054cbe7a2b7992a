package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/dragon-caves-game/game/engine"
)

func createTestConfig() *engine.GameConfig {
	return &engine.GameConfig{
		Name:        "Test Config",
		Description: "Test configuration",
		Players:     4,
		Volcanoes:   24,
		Messages: engine.GameMessages{
			Welcome: "Welcome!",
			Victory: "Dragon %d wins!",
		},
	}
}

func TestManager_Create(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create("test-session", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-session" {
			t.Errorf("Expected session ID 'test-session', got '%s'", session.ID)
		}
		if session.Engine == nil {
			t.Error("Expected engine to be initialized")
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create("", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character session ID, got '%s'", session.ID)
		}
	})

	t.Run("duplicate session ID", func(t *testing.T) {
		_, err := manager.Create("test-session", config)
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create("TEST-SESSION", config)
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		invalid := createTestConfig()
		invalid.Players = 7
		if _, err := manager.Create("invalid", invalid); err == nil {
			t.Error("Expected error for invalid config")
		}
	})

	t.Run("nil config", func(t *testing.T) {
		if _, err := manager.Create("nil-config", nil); err == nil {
			t.Error("Expected error for nil config")
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := NewManager(nil)
	created, err := manager.Create("AbCd", createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	t.Run("get existing session", func(t *testing.T) {
		session, err := manager.Get("AbCd")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if session != created {
			t.Error("Expected the same session instance")
		}
	})

	t.Run("case-insensitive get", func(t *testing.T) {
		session, err := manager.Get("abcd")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if session.ID != "AbCd" {
			t.Errorf("Expected original ID to be kept, got %s", session.ID)
		}
	})

	t.Run("get non-existent session", func(t *testing.T) {
		if _, err := manager.Get("zzzz"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	first, err := manager.GetOrCreate("game", config)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	second, err := manager.GetOrCreate("GAME", config)
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if first != second {
		t.Error("Expected the existing session to be returned")
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", manager.Count())
	}
}

func TestManager_Delete(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()
	manager.Create("one", config)
	manager.Create("Two", config)

	t.Run("delete existing session", func(t *testing.T) {
		if err := manager.Delete("one"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := manager.Get("one"); !errors.Is(err, ErrSessionNotFound) {
			t.Error("Expected session to be gone")
		}
	})

	t.Run("delete non-existent session", func(t *testing.T) {
		if err := manager.Delete("missing"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("case-insensitive delete", func(t *testing.T) {
		if err := manager.Delete("two"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if manager.Count() != 0 {
			t.Errorf("Expected no sessions, got %d", manager.Count())
		}
	})
}

func TestManager_List(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	if len(manager.List()) != 0 {
		t.Error("Expected empty list")
	}

	ids := []string{"a1", "b2", "c3"}
	for _, id := range ids {
		if _, err := manager.Create(id, config); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}

	sessions := manager.List()
	if len(sessions) != len(ids) {
		t.Fatalf("Expected %d sessions, got %d", len(ids), len(sessions))
	}
	seen := map[string]bool{}
	for _, s := range sessions {
		seen[s.ID] = true
	}
	for _, id := range ids {
		if !seen[id] {
			t.Errorf("Expected session %s in list", id)
		}
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	old, _ := manager.Create("old", config)
	manager.Create("fresh", config)
	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	removed := manager.CleanupExpiredSessions(time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 removed session, got %d", removed)
	}
	if _, err := manager.Get("old"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected old session to be removed")
	}
	if _, err := manager.Get("fresh"); err != nil {
		t.Error("Expected fresh session to remain")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := NewManager(nil)
	session, _ := manager.Create("touch", createTestConfig())
	before := time.Now().Add(-time.Minute)
	session.LastAccessedAt = before

	if err := manager.UpdateLastAccessed("TOUCH"); err != nil {
		t.Fatalf("UpdateLastAccessed failed: %v", err)
	}
	if !session.LastAccessedAt.After(before) {
		t.Error("Expected last accessed time to move forward")
	}
	if err := manager.UpdateLastAccessed("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_SaveWithoutPersistence(t *testing.T) {
	manager := NewManager(nil)
	manager.Create("mem", createTestConfig())

	if err := manager.Save("mem"); err != nil {
		t.Errorf("Save without persistence should be a no-op, got %v", err)
	}
	if err := manager.SaveAllSessions(); err != nil {
		t.Errorf("SaveAllSessions without persistence should be a no-op, got %v", err)
	}
	if err := manager.LoadPersistedSessions(); err != nil {
		t.Errorf("LoadPersistedSessions without persistence should be a no-op, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			session, err := manager.Create("", config)
			if err != nil {
				errs <- err
				return
			}
			if _, err := manager.Get(session.ID); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			manager.List()
			manager.Count()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Unexpected concurrent error: %v", err)
		}
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	a, _ := manager.Create("a", config)
	b, _ := manager.Create("b", config)

	cave := a.Engine.Board().TileAt(0)
	var card int
	for i, c := range a.Engine.GetState().Chits {
		if c.Animal != cave.Animal && !c.IsPenalty() {
			card = i
			break
		}
	}
	if _, err := a.Engine.Flip(card); err != nil {
		t.Fatalf("Flip failed: %v", err)
	}

	if len(b.Engine.GetMoveHistory()) != 0 {
		t.Error("A flip in one session must not touch another session")
	}
	if len(a.Engine.GetMoveHistory()) != 1 {
		t.Error("Expected one flip in the first session")
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := NewManager(nil)
	config := createTestConfig()

	for i := 0; i < 50; i++ {
		session, err := manager.Create("", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character ID, got %q", session.ID)
		}
		if strings.ToLower(session.ID) != session.ID {
			t.Errorf("Expected lowercase hex ID, got %q", session.ID)
		}
	}
	if manager.Count() != 50 {
		t.Errorf("Expected 50 unique sessions, got %d", manager.Count())
	}
}
