// Package snapshot persists a MemoryDriver's contents to disk as JSON, so
// an L1 tier can be warm-restored after a process restart instead of
// starting every key as a miss. The on-disk format and the save/load split
// follow the same JSON-file-per-call shape as the teacher's generic file
// persistence helper, just narrowed to the one type this module needs to
// round trip.
package snapshot

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"

	"duocache/driver"
)

// Store persists and restores driver.MemoryDriver state.
type Store interface {
	Save(path string, states []driver.State) error
	Load(path string) ([]driver.State, error)
}

type jsonStore struct{}

// NewJSONStore returns the default, dependency-free Store.
func NewJSONStore() Store {
	return jsonStore{}
}

func (jsonStore) Save(path string, states []driver.State) error {
	b, err := json.Marshal(states)
	if err != nil {
		return errors.Wrap(err, "snapshot: marshal")
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return errors.Wrapf(err, "snapshot: write file %q", path)
	}
	return nil
}

func (jsonStore) Load(path string) ([]driver.State, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "snapshot: read file %q", path)
	}

	var states []driver.State
	if err := json.Unmarshal(b, &states); err != nil {
		return nil, errors.Wrap(err, "snapshot: unmarshal")
	}
	return states, nil
}

// SaveDriver dumps d's current contents and writes them to path.
func SaveDriver(store Store, path string, d *driver.MemoryDriver) error {
	return store.Save(path, d.Dump())
}

// RestoreDriver loads path and restores it into d.
func RestoreDriver(store Store, path string, d *driver.MemoryDriver) error {
	states, err := store.Load(path)
	if err != nil {
		return err
	}
	d.Restore(states)
	return nil
}
