package port

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

const (
	// EnvConfigFile overrides the store location.
	EnvConfigFile = "ORBFIX_CONFIG_FILE"

	// DefaultConfigPath is the per-user store shared with the orbfix tool.
	DefaultConfigPath = "~/.orbfix/config.toml"

	serialSection = "serial"
	portKey       = "port"
)

// Store is the persisted key-value document holding the default serial port:
//
//	[serial]
//	port = "/dev/ttyUSB0"
//
// Sections other than [serial] are preserved when the file is rewritten.
type Store struct {
	path string
}

// NewStore returns a store backed by the TOML file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStore returns the store at $ORBFIX_CONFIG_FILE, or at
// DefaultConfigPath when the variable is unset.
func DefaultStore() (*Store, error) {
	if p := os.Getenv(EnvConfigFile); p != "" {
		return NewStore(p), nil
	}
	p, err := homedir.Expand(DefaultConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to locate config file: %w", err)
	}
	return NewStore(p), nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Load reads the whole document.
// Returns ErrConfigurationMissing (wrapped) when the file does not exist.
func (s *Store) Load() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &ResolveError{Err: ErrConfigurationMissing, Path: s.path}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	doc := map[string]any{}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", s.path, err)
	}
	return doc, nil
}

// Port returns the saved serial.port value.
func (s *Store) Port() (string, error) {
	doc, err := s.Load()
	if err != nil {
		return "", err
	}
	port := serialPort(doc)
	if port == "" {
		return "", &ResolveError{Err: ErrConfigurationIncomplete, Path: s.path}
	}
	return port, nil
}

// SetPort saves port as the default, creating the file if needed.
func (s *Store) SetPort(port string) error {
	return s.update(func(doc map[string]any) bool {
		serial, _ := doc[serialSection].(map[string]any)
		if serial == nil {
			serial = map[string]any{}
		}
		serial[portKey] = port
		doc[serialSection] = serial
		return true
	})
}

// ClearPort removes the saved port. Reports false when there was none.
func (s *Store) ClearPort() (bool, error) {
	cleared := false
	err := s.update(func(doc map[string]any) bool {
		serial, _ := doc[serialSection].(map[string]any)
		if _, ok := serial[portKey]; !ok {
			return false
		}
		delete(serial, portKey)
		if len(serial) == 0 {
			delete(doc, serialSection)
		}
		cleared = true
		return true
	})
	return cleared, err
}

// update applies fn to the document under an exclusive file lock and writes
// the result when fn reports a change.
func (s *Store) update(fn func(doc map[string]any) bool) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock config file: %w", err)
	}
	defer lock.Unlock()

	doc, err := s.Load()
	if errors.Is(err, ErrConfigurationMissing) {
		doc, err = map[string]any{}, nil
	}
	if err != nil {
		return err
	}
	if !fn(doc) {
		return nil
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode config file: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func serialPort(doc map[string]any) string {
	serial, ok := doc[serialSection].(map[string]any)
	if !ok {
		return ""
	}
	port, _ := serial[portKey].(string)
	return port
}
