// Package store is the persistence layer for users, projects and tasks.
// All cross-entity invariants live here: a task always belongs to exactly
// one project, deleting a project removes its tasks and collaborator rows,
// and mutations touching a single project's task set are serialized through
// a per-project lock so concurrent requests cannot lose updates.
package store

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/taskward-dev/taskward/internal/apperr"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:    db,
		locks: make(map[uint]*sync.Mutex),
	}
}

// projectLock returns the mutex serializing mutations for one project.
// Different projects are independent; no global lock is taken while a
// project mutation runs.
func (s *Store) projectLock(projectID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[projectID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[projectID] = lock
	}
	return lock
}

// ParseID converts a path parameter into an entity id. Malformed input
// fails fast with NotFound instead of reaching the database.
func ParseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("malformed id %q: %w", raw, apperr.ErrNotFound)
	}
	return uint(id), nil
}
