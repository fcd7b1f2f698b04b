package persistence

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lox/agentholdem/internal/agent"
	"github.com/lox/agentholdem/internal/fileutil"
	"github.com/lox/agentholdem/internal/phh"
)

// FileStore keeps hands as PHH documents and profiles as JSON:
//
//	<dir>/hands/<table>/<hand>.phh
//	<dir>/profiles/<agent>.json
type FileStore struct {
	dir string
}

// NewFileStore stores under dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// HandPath is where a hand is written.
func (f *FileStore) HandPath(tableID, handID string) string {
	return filepath.Join(f.dir, "hands", safeName(tableID), safeName(handID)+".phh")
}

// ProfilePath is where an agent's latest snapshot is written.
func (f *FileStore) ProfilePath(agentID string) string {
	return filepath.Join(f.dir, "profiles", safeName(agentID)+".json")
}

func (f *FileStore) SaveHand(r HandRecord) error {
	data, err := phh.Marshal(phh.FromSummary(r.TableID, r.Hand))
	if err != nil {
		return fmt.Errorf("encode hand %s: %w", r.Hand.ID, err)
	}
	return fileutil.WriteFileAtomic(f.HandPath(r.TableID, r.Hand.ID), data, 0o644)
}

func (f *FileStore) SaveProfile(snap agent.Snapshot) error {
	return fileutil.WriteJSONAtomic(f.ProfilePath(snap.ID), snap)
}

func safeName(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == filepath.Separator {
			return '_'
		}
		return r
	}, s)
	if s == "" || s == "." || s == ".." {
		return "unnamed"
	}
	return s
}
