package store

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Settings holds the user's provider credentials. They are persisted in a
// reversible base64 encoding; that is obfuscation against casual reads of
// the database file, not a security control.
type Settings struct {
	AnthropicAPIKey   string `json:"anthropicApiKey"`
	GmailClientID     string `json:"gmailClientId"`
	GmailClientSecret string `json:"gmailClientSecret"`
	GmailRefreshToken string `json:"gmailRefreshToken"`
	NotifyEmail       bool   `json:"notifyEmail"`
}

// SaveSettings persists the settings entry.
func (s *Store) SaveSettings(settings Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(data)

	_, err = s.db.Exec(`INSERT OR REPLACE INTO kv (key, value) VALUES (?, ?)`, settingsKey, encoded)
	if err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}
	return nil
}

// LoadSettings reads the settings entry, returning zero-value settings when
// none have been saved yet.
func (s *Store) LoadSettings() (Settings, error) {
	var encoded string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, settingsKey).Scan(&encoded)
	if err == sql.ErrNoRows {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, err
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return settings, nil
}
