package world

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// Live is a Provider whose snapshot is replaced wholesale when the world
// changes. Readers never observe a partially updated snapshot.
type Live struct {
	cur atomic.Pointer[Snapshot]
}

// NewLive returns a provider starting at s. A nil s starts at an empty snapshot.
func NewLive(s *Snapshot) *Live {
	l := &Live{}
	l.Set(s)
	return l
}

// Set replaces the current snapshot.
func (l *Live) Set(s *Snapshot) {
	if s == nil {
		s = &Snapshot{}
	}
	l.cur.Store(s)
}

// Snapshot implements Provider.
func (l *Live) Snapshot() *Snapshot { return l.cur.Load() }

// LoadFile reads a snapshot from a JSON or YAML file.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read world state: %w", err)
	}
	var s Snapshot
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &s)
	default:
		err = json.Unmarshal(data, &s)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse world state: %w", err)
	}
	if s.Season != "" {
		season, ok := ParseSeason(string(s.Season))
		if !ok {
			return nil, fmt.Errorf("unknown season %q", s.Season)
		}
		s.Season = season
	}
	return &s, nil
}
