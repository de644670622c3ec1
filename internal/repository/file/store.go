// Package file implements the repository interfaces over a single flat JSON
// document on disk. It is the alternate storage backend to MongoDB, selected
// with storage.driver = "file"; it also backs the service and handler tests,
// which exercise it with an empty path (purely in-memory).
package file

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"workoutbuddy/server/internal/domain"
)

// Store owns the on-disk document and the mutex serializing access to it.
// Uniqueness invariants that MongoDB enforces with unique indexes are checked
// here under the lock at write time.
type Store struct {
	path string
	mu   sync.Mutex
	data database
}

type database struct {
	Users       []domain.User
	Workouts    []domain.Workout
	Friendships []domain.Friendship
}

// userRecord re-exposes the password hash that domain.User hides from API
// JSON; without it a reopened store would lose every credential.
type userRecord struct {
	domain.User
	PasswordHash string `json:"passwordHash"`
}

// diskDatabase is the JSON document layout on disk.
type diskDatabase struct {
	Users       []userRecord        `json:"users"`
	Workouts    []domain.Workout    `json:"workouts"`
	Friendships []domain.Friendship `json:"friendships"`
}

// Open loads the store from path, starting empty if the file does not exist
// yet. An empty path yields an in-memory store that never persists.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return s, nil
	}
	var disk diskDatabase
	if err := json.Unmarshal(raw, &disk); err != nil {
		return nil, err
	}
	s.data.Workouts = disk.Workouts
	s.data.Friendships = disk.Friendships
	s.data.Users = make([]domain.User, len(disk.Users))
	for i, rec := range disk.Users {
		user := rec.User
		user.PasswordHash = rec.PasswordHash
		s.data.Users[i] = user
	}
	return s, nil
}

// persistLocked writes the document back to disk. Callers must hold s.mu.
// The write goes through a temp file and rename so a crash mid-write cannot
// truncate the store.
func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}
	disk := diskDatabase{
		Users:       make([]userRecord, len(s.data.Users)),
		Workouts:    s.data.Workouts,
		Friendships: s.data.Friendships,
	}
	for i, u := range s.data.Users {
		disk.Users[i] = userRecord{User: u, PasswordHash: u.PasswordHash}
	}
	raw, err := json.MarshalIndent(&disk, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".workoutbuddy-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, s.path)
}
