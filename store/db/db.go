package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/helpgpt/internal/profile"
	"github.com/hrygo/helpgpt/store"
	"github.com/hrygo/helpgpt/store/db/jsonfile"
)

// NewDBDriver creates the meeting store driver for the profile.
// Meeting records live in a flat JSON file under the data directory.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	driver, err := jsonfile.NewDB(profile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create db driver")
	}
	return driver, nil
}
