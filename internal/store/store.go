// Package store persists named beam definitions and their latest analysis
// summaries in a single bolt database file, so definitions survive between
// CLI invocations.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/aversten/beamsolve/internal/beam"
	"github.com/aversten/beamsolve/internal/config"
	"github.com/aversten/beamsolve/internal/solve"
)

var (
	// ErrNotFound indicates a name with no stored beam.
	ErrNotFound = errors.New("store: no beam with that name")
)

var (
	bucketBeams   = []byte("beams")
	bucketResults = []byte("results")
)

// Store is a handle on the database file.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketBeams); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketResults)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database file.
func (s *Store) Close() error { return s.db.Close() }

// SaveBeam stores a definition under a name, replacing any previous one.
// A previously stored result for the name is dropped since it no longer
// matches the definition.
func (s *Store) SaveBeam(name string, cfg *config.Config) error {
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketBeams).Put([]byte(name), data); err != nil {
			return err
		}
		return tx.Bucket(bucketResults).Delete([]byte(name))
	})
}

// LoadBeam returns the stored definition.
func (s *Store) LoadBeam(name string) (*config.Config, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBeams).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return config.Parse(data)
}

// Delete removes a definition and its result.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketBeams).Get([]byte(name)) == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		if err := tx.Bucket(bucketBeams).Delete([]byte(name)); err != nil {
			return err
		}
		return tx.Bucket(bucketResults).Delete([]byte(name))
	})
}

// Entry is one listed beam.
type Entry struct {
	Name   string
	Solved bool
}

// List returns all stored beams in key order.
func (s *Store) List() ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		results := tx.Bucket(bucketResults)
		return tx.Bucket(bucketBeams).ForEach(func(k, _ []byte) error {
			entries = append(entries, Entry{
				Name:   string(k),
				Solved: results.Get(k) != nil,
			})
			return nil
		})
	})
	return entries, err
}

// Extreme is a min/max pair for one diagram.
type Extreme struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Summary is the stored outcome of an analysis.
type Summary struct {
	SolvedAt  time.Time          `json:"solved_at"`
	Degree    int                `json:"degree"`
	Reactions []solve.Reaction   `json:"reactions"`
	Extremes  map[string]Extreme `json:"extremes"`
}

// Summarize captures the analysis outcome of a solved beam.
func Summarize(b *beam.Beam) (Summary, error) {
	reactions, err := b.Reactions()
	if err != nil {
		return Summary{}, err
	}
	cls, err := b.Classification()
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{
		SolvedAt:  time.Now().UTC(),
		Degree:    cls.Degree,
		Reactions: reactions,
		Extremes:  make(map[string]Extreme, 5),
	}
	for _, q := range beam.Quantities() {
		min, max, err := b.Extremes(q)
		if err != nil {
			return Summary{}, err
		}
		sum.Extremes[q.String()] = Extreme{Min: min, Max: max}
	}
	return sum, nil
}

// SaveResult stores the analysis summary for a named beam.
func (s *Store) SaveResult(name string, sum Summary) error {
	data, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketBeams).Get([]byte(name)) == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return tx.Bucket(bucketResults).Put([]byte(name), data)
	})
}

// LoadResult returns the stored summary for a named beam.
func (s *Store) LoadResult(name string) (*Summary, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketResults).Get([]byte(name))
		if v == nil {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	var sum Summary
	if err := json.Unmarshal(data, &sum); err != nil {
		return nil, err
	}
	return &sum, nil
}
