// Package settings owns the flat JSON settings document the dashboard edits:
// data-source mode, PI connection parameters and the attribute-name mapping.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Data-source modes.
const (
	ModeSimulated = "simulated"
	ModeLive      = "live"
)

// Credentials optionally carried by the settings document. Unused by the
// default (ambient) auth path.
type Credentials struct {
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// PIServerConfig identifies the live load target.
type PIServerConfig struct {
	LiveServerHostname string       `json:"liveServerHostname"`
	AssetServerName    string       `json:"assetServerName"`
	DatabaseName       string       `json:"databaseName"`
	ParentElementPath  string       `json:"parentElementPath"`
	TemplateNameFilter string       `json:"templateNameFilter,omitempty"`
	Credentials        *Credentials `json:"credentials,omitempty"`
}

// Document is the persisted settings file, verbatim.
type Document struct {
	Mode             string            `json:"mode"`
	PIServerConfig   PIServerConfig    `json:"piServerConfig"`
	AttributeMapping map[string]string `json:"attributeMapping"`
	LastUpdated      time.Time         `json:"lastUpdated"`
}

// Store reads and writes the settings document with whole-file atomic
// rewrites.
type Store struct {
	path     string
	defaults Document

	mu sync.Mutex
}

func NewStore(path string, defaults Document) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("settings path required")
	}
	if defaults.Mode == "" {
		defaults.Mode = ModeSimulated
	}
	return &Store{path: path, defaults: defaults}, nil
}

func (s *Store) Path() string { return s.path }

// Load returns the persisted document, or the defaults when the file does
// not exist yet.
func (s *Store) Load() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.defaults, nil
		}
		return Document{}, err
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("settings file %s: %w", s.path, err)
	}
	if doc.Mode == "" {
		doc.Mode = s.defaults.Mode
	}
	return doc, nil
}

// Save validates, stamps lastUpdated and rewrites the file via a temp file
// rename so readers never observe a partial document.
func (s *Store) Save(doc Document) (Document, error) {
	if err := validateMode(doc.Mode); err != nil {
		return Document{}, err
	}
	if doc.Mode == ModeLive && strings.TrimSpace(doc.PIServerConfig.LiveServerHostname) == "" {
		return Document{}, errors.New("live mode requires liveServerHostname")
	}
	doc.LastUpdated = time.Now().UTC()

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Document{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Document{}, err
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return Document{}, err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return Document{}, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return Document{}, err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return Document{}, err
	}
	return doc, nil
}

func validateMode(mode string) error {
	switch mode {
	case ModeSimulated, ModeLive:
		return nil
	default:
		return fmt.Errorf("invalid mode %q (expected %q or %q)", mode, ModeSimulated, ModeLive)
	}
}
