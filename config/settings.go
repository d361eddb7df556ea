// Package config provides configuration structures for the card catalog.
// Settings are read from a TOML file; anything left out takes the defaults
// applied by ApplyDefaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Settings is the complete service configuration.
type Settings struct {
	Server  ServerSettings  `toml:"server"`
	Storage StorageSettings `toml:"storage"`
	Search  SearchSettings  `toml:"search"`
	Sync    SyncSettings    `toml:"sync"`
	Jobs    JobSettings     `toml:"jobs"`
	Log     LogSettings     `toml:"log"`
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	Address      string  `toml:"address"`        // e.g. ":8080"
	MaxBodyBytes int64   `toml:"max_body_bytes"` // request body limit
	RateLimit    float64 `toml:"rate_limit"`     // requests per second per client, 0 disables
	RateBurst    int     `toml:"rate_burst"`
}

// StorageSettings selects and locates the record store.
type StorageSettings struct {
	Backend      string `toml:"backend"`       // "sqlite" or "memory"
	Path         string `toml:"path"`          // SQLite database file
	SnapshotPath string `toml:"snapshot_path"` // gob snapshot for the memory backend, empty disables
}

// SearchSettings bounds search requests. A zero maximum means no limit.
type SearchSettings struct {
	DefaultPageSize    int `toml:"default_page_size"`
	MaxPageSize        int `toml:"max_page_size"`
	MaxSelectionValues int `toml:"max_selection_values"`
	MaxQueryLength     int `toml:"max_query_length"` // in characters
}

// SyncSettings locates the remote card feed.
type SyncSettings struct {
	VersionURL  string            `toml:"version_url"`  // returns the catalog version record
	CardsURL    string            `toml:"cards_url"`    // returns the card array
	VersionName string            `toml:"version_name"` // key of the catalog in the versions table
	Headers     map[string]string `toml:"headers"`      // sent with every feed request
	Timeout     time.Duration     `toml:"timeout"`
	Retries     int               `toml:"retries"`
}

// JobSettings configures the background job manager.
type JobSettings struct {
	MaxWorkers int           `toml:"max_workers"`
	Retention  time.Duration `toml:"retention"` // how long finished jobs stay queryable
}

// LogSettings configures the logger.
type LogSettings struct {
	Level       string `toml:"level"` // debug, info, warn, error
	Development bool   `toml:"development"`
}

// Default returns settings with every default applied.
func Default() Settings {
	var s Settings
	s.ApplyDefaults()
	return s
}

// Load reads settings from a TOML file and applies defaults. An empty path
// returns the defaults. Unknown keys are rejected so typos do not go unnoticed.
func Load(path string) (Settings, error) {
	var s Settings
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Settings{}, fmt.Errorf("error reading config file: %w", err)
		}
		md, err := toml.DecodeFile(path, &s)
		if err != nil {
			return Settings{}, fmt.Errorf("error decoding config file: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return Settings{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
		}
	}

	s.ApplyDefaults()
	if problems := s.Validate(); len(problems) > 0 {
		return Settings{}, fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return s, nil
}

// ApplyDefaults fills every unset value
func (s *Settings) ApplyDefaults() {
	if s.Server.Address == "" {
		s.Server.Address = ":8080"
	}
	if s.Server.MaxBodyBytes == 0 {
		s.Server.MaxBodyBytes = 32 << 20
	}
	if s.Server.RateLimit > 0 && s.Server.RateBurst == 0 {
		s.Server.RateBurst = int(s.Server.RateLimit) * 2
		if s.Server.RateBurst < 1 {
			s.Server.RateBurst = 1
		}
	}

	if s.Storage.Backend == "" {
		s.Storage.Backend = BackendSQLite
	}
	if s.Storage.Path == "" {
		s.Storage.Path = "./data/catalog.db"
	}

	if s.Search.DefaultPageSize == 0 {
		s.Search.DefaultPageSize = 50
	}

	if s.Sync.VersionName == "" {
		s.Sync.VersionName = "cards"
	}
	if s.Sync.Timeout == 0 {
		s.Sync.Timeout = 30 * time.Second
	}
	if s.Sync.Retries == 0 {
		s.Sync.Retries = 3
	}
	if s.Sync.Headers == nil {
		s.Sync.Headers = map[string]string{}
	}

	if s.Jobs.MaxWorkers == 0 {
		s.Jobs.MaxWorkers = 2
	}
	if s.Jobs.Retention == 0 {
		s.Jobs.Retention = 24 * time.Hour
	}

	if s.Log.Level == "" {
		s.Log.Level = "info"
	}
}

// Validate returns one message per problem; an empty result means the
// settings are usable.
func (s *Settings) Validate() []string {
	var problems []string

	if s.Storage.Backend != BackendSQLite && s.Storage.Backend != BackendMemory {
		problems = append(problems, "Invalid storage backend '"+s.Storage.Backend+"' (must be 'sqlite' or 'memory')")
	}
	if s.Storage.Backend == BackendSQLite && strings.TrimSpace(s.Storage.Path) == "" {
		problems = append(problems, "storage.path is required for the sqlite backend")
	}

	if s.Search.DefaultPageSize < 1 {
		problems = append(problems, "search.default_page_size must be positive")
	}
	if s.Search.MaxPageSize < 0 {
		problems = append(problems, "search.max_page_size cannot be negative")
	}
	if s.Search.MaxPageSize > 0 && s.Search.DefaultPageSize > s.Search.MaxPageSize {
		problems = append(problems, fmt.Sprintf("search.default_page_size (%d) exceeds search.max_page_size (%d)", s.Search.DefaultPageSize, s.Search.MaxPageSize))
	}
	if s.Search.MaxSelectionValues < 0 {
		problems = append(problems, "search.max_selection_values cannot be negative")
	}
	if s.Search.MaxQueryLength < 0 {
		problems = append(problems, "search.max_query_length cannot be negative")
	}

	if s.Server.MaxBodyBytes < 0 {
		problems = append(problems, "server.max_body_bytes cannot be negative")
	}
	if s.Server.RateLimit < 0 {
		problems = append(problems, "server.rate_limit cannot be negative")
	}
	if s.Sync.Retries < 0 {
		problems = append(problems, "sync.retries cannot be negative")
	}
	if s.Jobs.MaxWorkers < 1 {
		problems = append(problems, "jobs.max_workers must be positive")
	}

	switch strings.ToLower(s.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, "Invalid log level '"+s.Log.Level+"'")
	}

	return problems
}
