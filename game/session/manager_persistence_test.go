package session

import (
	"errors"
	"testing"
	"time"
)

func TestManagerWithPersistence(t *testing.T) {
	persistence, configManager, _ := newTestPersistence(t)
	gameConfig := configManager.GetDefault()

	t.Run("Create Session Auto-Saves", func(t *testing.T) {
		manager := NewManagerWithPersistence(persistence, nil)
		session, err := manager.Create("save", gameConfig)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if !persistence.Exists(session.ID) {
			t.Error("Expected session to be persisted on create")
		}
	})

	t.Run("Get Session Loads from Persistence", func(t *testing.T) {
		writer := NewManagerWithPersistence(persistence, nil)
		created, err := writer.Create("load", gameConfig)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		reader := NewManagerWithPersistence(persistence, nil)
		loaded, err := reader.Get("load")
		if err != nil {
			t.Fatalf("Expected session to load from disk: %v", err)
		}
		if loaded.Engine.GetState().GameID != created.Engine.GetState().GameID {
			t.Error("Loaded session should resume the same game")
		}
		if reader.Count() != 1 {
			t.Errorf("Expected loaded session to be cached, got %d", reader.Count())
		}
	})

	t.Run("Save Method Persists Changes", func(t *testing.T) {
		manager := NewManagerWithPersistence(persistence, nil)
		session, err := manager.Create("changes", gameConfig)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		flipAny(t, session.Engine)

		if err := manager.Save("changes"); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		loaded, err := persistence.Load("changes")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if loaded.Engine.GetState().TotalMoves != 1 {
			t.Errorf("Expected saved flip, got %d moves", loaded.Engine.GetState().TotalMoves)
		}
		if err := manager.Save("missing"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Delete Removes from Persistence", func(t *testing.T) {
		manager := NewManagerWithPersistence(persistence, nil)
		manager.Create("gone", gameConfig)

		if err := manager.Delete("gone"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if persistence.Exists("gone") {
			t.Error("Expected session file to be removed")
		}
		if _, err := manager.Get("gone"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Delete From Memory Keeps File", func(t *testing.T) {
		manager := NewManagerWithPersistence(persistence, nil)
		manager.Create("kept", gameConfig)

		if err := manager.DeleteFromMemory("kept"); err != nil {
			t.Fatalf("DeleteFromMemory failed: %v", err)
		}
		if !persistence.Exists("kept") {
			t.Error("Expected session file to remain")
		}
		if _, err := manager.Get("kept"); err != nil {
			t.Errorf("Expected session to reload from disk, got %v", err)
		}
	})

	t.Run("Load Persisted Sessions on Startup", func(t *testing.T) {
		manager := NewManagerWithPersistence(persistence, nil)
		if err := manager.LoadPersistedSessions(); err != nil {
			t.Fatalf("LoadPersistedSessions failed: %v", err)
		}
		for _, id := range []string{"save", "load", "changes", "kept"} {
			if _, err := manager.Get(id); err != nil {
				t.Errorf("Expected session %s to be loaded: %v", id, err)
			}
		}
	})

	t.Run("Update Last Accessed Persists", func(t *testing.T) {
		manager := NewManagerWithPersistence(persistence, nil)
		session, _ := manager.Create("access", gameConfig)
		session.LastAccessedAt = time.Now().Add(-time.Hour)

		if err := manager.UpdateLastAccessed("access"); err != nil {
			t.Fatalf("UpdateLastAccessed failed: %v", err)
		}

		loaded, err := persistence.Load("access")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if time.Since(loaded.LastAccessedAt) > time.Minute {
			t.Errorf("Expected persisted access time to be recent, got %v", loaded.LastAccessedAt)
		}
	})

	t.Run("Save All Sessions", func(t *testing.T) {
		manager := NewManagerWithPersistence(persistence, nil)
		manager.Create("bulk1", gameConfig)
		manager.Create("bulk2", gameConfig)

		if err := manager.SaveAllSessions(); err != nil {
			t.Fatalf("SaveAllSessions failed: %v", err)
		}
		if !persistence.Exists("bulk1") || !persistence.Exists("bulk2") {
			t.Error("Expected both sessions on disk")
		}
	})
}

func TestManagerCleanupSavesBeforeEviction(t *testing.T) {
	persistence, configManager, _ := newTestPersistence(t)
	manager := NewManagerWithPersistence(persistence, nil)

	session, err := manager.Create("idle", configManager.GetDefault())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	flipAny(t, session.Engine)
	session.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	if removed := manager.CleanupExpiredSessions(time.Hour); removed != 1 {
		t.Fatalf("Expected 1 evicted session, got %d", removed)
	}
	if manager.Count() != 0 {
		t.Errorf("Expected no sessions in memory, got %d", manager.Count())
	}

	resumed, err := manager.Get("idle")
	if err != nil {
		t.Fatalf("Expected evicted session to reload: %v", err)
	}
	if resumed.Engine.GetState().TotalMoves != 1 {
		t.Errorf("Expected the flip made before eviction, got %d moves", resumed.Engine.GetState().TotalMoves)
	}
}
