package store

import (
	"github.com/hrygo/helpgpt/internal/profile"
)

// Store provides access to locally persisted meeting records.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) Close() error {
	return s.driver.Close()
}
