// ABOUTME: Remembers the identifiers of recent successful logins for prefilling
// ABOUTME: Stores method and identifier pairs in the XDG config directory

package recentlogins

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/doklink/doklink-auth/internal/models"
)

// MaxEntries is the maximum number of recent logins to keep
const MaxEntries = 5

// Entry is one remembered login. Credentials are never stored.
type Entry struct {
	Method     models.Method `json:"method"`
	Identifier string        `json:"identifier"`
}

// Store manages the recent logins list
type Store struct {
	configDir string
	entries   []Entry
}

type recentData struct {
	Logins []Entry `json:"logins"`
}

// New creates a Store backed by configDir
func New(configDir string) *Store {
	return &Store{configDir: configDir}
}

func (s *Store) configFile() string {
	return filepath.Join(s.configDir, "recent.json")
}

// Load reads the list from disk. A missing or corrupt file yields an empty list.
func (s *Store) Load() ([]Entry, error) {
	data, err := os.ReadFile(s.configFile())
	if os.IsNotExist(err) {
		s.entries = []Entry{}
		return s.entries, nil
	}
	if err != nil {
		return nil, err
	}

	var recent recentData
	if err := json.Unmarshal(data, &recent); err != nil {
		s.entries = []Entry{}
		return s.entries, nil
	}

	s.entries = make([]Entry, 0, len(recent.Logins))
	for _, e := range recent.Logins {
		if e.Identifier != "" {
			s.entries = append(s.entries, e)
		}
	}
	return s.entries, nil
}

// Save writes entries to disk, keeping at most MaxEntries
func (s *Store) Save(entries []Entry) error {
	if err := os.MkdirAll(s.configDir, 0700); err != nil {
		return err
	}

	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	s.entries = entries

	data, err := json.MarshalIndent(recentData{Logins: entries}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.configFile(), data, 0600)
}

// Add records a login at the front of the list, removing an older duplicate
func (s *Store) Add(method models.Method, identifier string) error {
	if s.entries == nil {
		if _, err := s.Load(); err != nil {
			s.entries = []Entry{}
		}
	}

	added := Entry{Method: method, Identifier: identifier}
	next := make([]Entry, 0, len(s.entries)+1)
	next = append(next, added)
	for _, e := range s.entries {
		if e != added {
			next = append(next, e)
		}
	}
	return s.Save(next)
}

// List returns the current entries, most recent first
func (s *Store) List() []Entry {
	if s.entries == nil {
		s.Load()
	}
	return s.entries
}

// Latest returns the most recent identifier used with method
func (s *Store) Latest(method models.Method) (string, bool) {
	for _, e := range s.List() {
		if e.Method == method {
			return e.Identifier, true
		}
	}
	return "", false
}
