package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/dragon-caves-game/game/engine"
	"github.com/wricardo/dragon-caves-game/game/service"
)

const sessionFileExt = ".json"

// FilePersistence stores each session as one JSON document in a directory.
// A document carries the config snapshot the game was started with, so a
// session keeps its ring even when the config file changes later.
type FilePersistence struct {
	sessionsDir   string
	configManager service.ConfigManager
}

// NewFilePersistence creates the sessions directory when needed
func NewFilePersistence(sessionsDir string, configManager service.ConfigManager) (*FilePersistence, error) {
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &FilePersistence{
		sessionsDir:   sessionsDir,
		configManager: configManager,
	}, nil
}

// pathFor maps a session id to its file. Ids that would escape the
// directory are rejected.
func (fp *FilePersistence) pathFor(id string) (string, error) {
	if id == "" || strings.HasPrefix(id, ".") || filepath.Base(id) != id {
		return "", fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return filepath.Join(fp.sessionsDir, id+sessionFileExt), nil
}

// Save writes the session through a temp file so a crash never leaves a
// half-written document behind
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}
	path, err := fp.pathFor(session.ID)
	if err != nil {
		return err
	}

	data, err := fp.encode(session)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (fp *FilePersistence) encode(session *service.Session) ([]byte, error) {
	configID, err := fp.configIDFor(session.Config.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to get config ID: %w", err)
	}

	doc := PersistedSessionData{
		ID:             session.ID,
		ConfigName:     configID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		Config:         session.Config,
		GameState:      session.Engine.GetState(),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session data: %w", err)
	}
	return data, nil
}

// Load rebuilds a session from its file. The game state goes through
// GameEngine.SetState, so a document with a broken ring or roster fails with
// engine.ErrInvalidState instead of producing a game that cannot be played.
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	path, err := fp.pathFor(id)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var doc PersistedSessionData
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if doc.GameState == nil {
		return nil, fmt.Errorf("session %s has no game state", id)
	}
	if doc.ID == "" {
		doc.ID = id
	}

	gameConfig, err := fp.configFor(&doc)
	if err != nil {
		return nil, err
	}
	eng, err := engine.NewEngine(gameConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create game engine: %w", err)
	}
	if err := eng.SetState(doc.GameState); err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}

	return &service.Session{
		ID:             doc.ID,
		Engine:         eng,
		Config:         gameConfig,
		CreatedAt:      doc.CreatedAt,
		LastAccessedAt: doc.LastAccessedAt,
	}, nil
}

// configFor prefers the stored snapshot and falls back to the named config
func (fp *FilePersistence) configFor(doc *PersistedSessionData) (*engine.GameConfig, error) {
	if doc.Config != nil && engine.ValidateGameConfig(doc.Config) == nil {
		return doc.Config, nil
	}
	cfg, err := fp.configManager.LoadConfig(doc.ConfigName)
	if err != nil {
		return nil, fmt.Errorf("failed to load config '%s': %w", doc.ConfigName, err)
	}
	return cfg, nil
}

// Delete removes a session file
func (fp *FilePersistence) Delete(id string) error {
	path, err := fp.pathFor(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// ListAll returns the id of every session file in the directory
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if id, ok := strings.CutSuffix(entry.Name(), sessionFileExt); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Exists reports whether a session file is present
func (fp *FilePersistence) Exists(id string) bool {
	path, err := fp.pathFor(id)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// configIDFor maps a config display name to its file id. A name no config
// carries is stored as is.
func (fp *FilePersistence) configIDFor(displayName string) (string, error) {
	configs, err := fp.configManager.ListConfigs()
	if err != nil {
		return "", fmt.Errorf("failed to list configs: %w", err)
	}
	for _, c := range configs {
		if c.Name == displayName {
			return c.ConfigID, nil
		}
	}
	return displayName, nil
}
