// Shoal is a Redfish aggregator service.
// Copyright (C) 2025 Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package job

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// entry is a single job's store-owned state: its record, version counter,
// accumulated log text, and the per-id lock serializing mutations on it.
type entry struct {
	mu      sync.Mutex
	record  Record
	version uint64
	log     strings.Builder
}

// Store holds every job for the process lifetime, keyed by id. A
// process-wide RWMutex guards the map itself (inserts, lookups, listing);
// each entry's own mutex serializes the read-check-apply-bump sequence for
// that id so concurrent PATCHes on different ids never contend.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry

	now func() time.Time // overridable in tests
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Create assigns a fresh id and time_created, inserts the record at
// version 1, and returns the id. The caller's record must already have
// passed ValidateCreate.
func (s *Store) Create(rec Record) string {
	id := uuid.NewString()
	rec.ID = id
	rec.Type = TypeBisect
	rec.TimeCreated = s.now().UnixMilli()

	e := &entry{record: rec, version: 1}

	s.mu.Lock()
	s.entries[id] = e
	s.mu.Unlock()

	return id
}

// Get returns a deep copy of the record and its current ETag.
func (s *Store) Get(id string) (Record, string, error) {
	e := s.lookup(id)
	if e == nil {
		return Record{}, "", &NotFoundError{ID: id}
	}
	e.mu.Lock()
	rec := e.record.clone()
	etag := computeETag(id, e.version)
	e.mu.Unlock()
	return rec, etag, nil
}

// List returns every known id, in no particular guaranteed order.
func (s *Store) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	return ids
}

// ListFiltered returns the ids of every job whose record matches every
// clause, combining clauses with AND.
func (s *Store) ListFiltered(clauses []Clause) []string {
	s.mu.RLock()
	snap := make([]Record, 0, len(s.entries))
	for _, e := range s.entries {
		e.mu.Lock()
		snap = append(snap, e.record.clone())
		e.mu.Unlock()
	}
	s.mu.RUnlock()

	ids := make([]string, 0, len(snap))
	for _, rec := range snap {
		if matchesAll(rec, clauses) {
			ids = append(ids, rec.ID)
		}
	}
	return ids
}

// Apply runs the patch engine against job id under the given If-Match
// precondition. See patch.go for the op semantics; this method owns the
// locking and commit step.
func (s *Store) Apply(id, ifMatch string, ops []PatchOp) (string, error) {
	e := s.lookup(id)
	if e == nil {
		return "", &NotFoundError{ID: id}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	current := computeETag(id, e.version)
	if !etagMatches(ifMatch, current) {
		return "", &PreconditionFailedError{}
	}

	working := e.record.clone()
	if err := applyPatch(&working, ops); err != nil {
		return "", err
	}
	if err := ValidatePatchResult(working); err != nil {
		return "", err
	}

	e.record = working
	e.version++
	return computeETag(id, e.version), nil
}

// AppendLog appends raw bytes to job id's log. No newline is implied.
func (s *Store) AppendLog(id string, chunk []byte) error {
	e := s.lookup(id)
	if e == nil {
		return &NotFoundError{ID: id}
	}
	e.mu.Lock()
	e.log.Write(chunk)
	e.mu.Unlock()
	return nil
}

// ReadLog returns the full concatenation of every chunk appended to job id.
func (s *Store) ReadLog(id string) (string, error) {
	e := s.lookup(id)
	if e == nil {
		return "", &NotFoundError{ID: id}
	}
	e.mu.Lock()
	text := e.log.String()
	e.mu.Unlock()
	return text, nil
}

// Len returns the current job count, used by the metrics gauge and the
// health check.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) lookup(id string) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[id]
}

// Restore replaces the store's contents with the given snapshots. It is
// only ever called at process startup, before the HTTP surface accepts
// traffic (SPEC_FULL.md §4.10); it takes the write lock but is not
// designed to run concurrently with request handling.
func (s *Store) Restore(snaps []Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*entry, len(snaps))
	for _, snap := range snaps {
		e := &entry{record: snap.Record.clone(), version: snap.Version}
		e.log.WriteString(snap.Log)
		s.entries[snap.Record.ID] = e
	}
}

// Snapshot returns a point-in-time copy of every job for persistence.Save.
func (s *Store) Snapshot() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Snapshot, 0, len(s.entries))
	for _, e := range s.entries {
		e.mu.Lock()
		out = append(out, Snapshot{
			Record:  e.record.clone(),
			Version: e.version,
			Log:     e.log.String(),
		})
		e.mu.Unlock()
	}
	return out
}
