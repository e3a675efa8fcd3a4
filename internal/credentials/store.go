package credentials

import (
	"fmt"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/imamik/cloudweave/internal/backend"
)

// Record is the access information for one instance.
type Record struct {
	Username   string       `yaml:"username" json:"username"`
	Password   string       `yaml:"password" json:"password"`
	Address    string       `yaml:"address" json:"address"`
	Backend    string       `yaml:"backend" json:"backend"`
	Role       backend.Role `yaml:"role" json:"role"`
	InstanceID string       `yaml:"instance_id,omitempty" json:"instance_id,omitempty"`
	CreatedAt  time.Time    `yaml:"created_at,omitempty" json:"created_at,omitempty"`
}

// RecordFromInstance builds the record for info.
func RecordFromInstance(info backend.InstanceInfo) Record {
	return Record{
		Username:   info.Username,
		Password:   info.Password,
		Address:    info.Address,
		Backend:    info.Backend,
		Role:       info.Role,
		InstanceID: info.ID,
		CreatedAt:  info.CreatedAt,
	}
}

// Store is a concurrency-safe credential store keyed by instance name.
type Store struct {
	cache *cache.Cache
}

// NewStore creates an empty store.
func NewStore() *Store {
	// No expiry and no janitor goroutine.
	return &Store{cache: cache.New(cache.NoExpiration, 0)}
}

// Put stores rec under name, replacing any previous record.
func (s *Store) Put(name string, rec Record) error {
	if name == "" {
		return fmt.Errorf("credential name cannot be empty")
	}
	s.cache.Set(name, rec, cache.NoExpiration)
	return nil
}

// Get returns the record stored under name.
func (s *Store) Get(name string) (Record, bool) {
	v, ok := s.cache.Get(name)
	if !ok {
		return Record{}, false
	}
	rec, ok := v.(Record)
	return rec, ok
}

// GetAll returns a copy of every record.
func (s *Store) GetAll() map[string]Record {
	items := s.cache.Items()
	out := make(map[string]Record, len(items))
	for name, item := range items {
		if rec, ok := item.Object.(Record); ok {
			out[name] = rec
		}
	}
	return out
}

// Names returns the stored names, sorted.
func (s *Store) Names() []string {
	items := s.cache.Items()
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Delete removes name. Deleting an absent name does nothing.
func (s *Store) Delete(name string) {
	s.cache.Delete(name)
}

// Len returns the number of records.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}
