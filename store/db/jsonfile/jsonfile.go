// Package jsonfile is a store driver that keeps meeting records in a single JSON file.
//
// Every mutation loads the file, applies the change and writes a complete snapshot
// to a temporary file in the same directory, which is fsynced and renamed over the
// target. Readers therefore observe either the old or the new snapshot.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/helpgpt/internal/profile"
	"github.com/hrygo/helpgpt/plugin/meeting"
	"github.com/hrygo/helpgpt/store"
)

type DB struct {
	path string
	mu   sync.RWMutex
}

// NewDB opens the meeting store under the profile data directory.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	return New(profile.MeetingStorePath())
}

// New returns a driver backed by the file at path. The file need not exist.
func New(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o770); err != nil {
		return nil, errors.Wrapf(err, "failed to create store directory for %s", path)
	}
	return &DB{path: path}, nil
}

func (d *DB) Close() error {
	return nil
}

// Path returns the backing file path.
func (d *DB) Path() string {
	return d.path
}

// load reads the snapshot. A missing or empty file is an empty store.
func (d *DB) load() ([]*store.MeetingRecord, error) {
	raw, err := os.ReadFile(d.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*store.MeetingRecord{}, nil
		}
		return nil, &meeting.StoreError{Op: "read", Path: d.path, Cause: err}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []*store.MeetingRecord{}, nil
	}

	var list []*store.MeetingRecord
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, &meeting.StoreError{Op: "decode", Path: d.path, Cause: err}
	}
	// Drop null entries written by hand.
	result := list[:0]
	for _, m := range list {
		if m != nil {
			result = append(result, m)
		}
	}
	return result, nil
}

// save writes list atomically.
func (d *DB) save(list []*store.MeetingRecord) error {
	payload, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return &meeting.StoreError{Op: "encode", Path: d.path, Cause: err}
	}

	dir := filepath.Dir(d.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(d.path)+".*.tmp")
	if err != nil {
		return &meeting.StoreError{Op: "write", Path: d.path, Cause: err}
	}
	tmpName := tmp.Name()
	cleanup := func(cause error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &meeting.StoreError{Op: "write", Path: d.path, Cause: cause}
	}

	if _, err := tmp.Write(payload); err != nil {
		return cleanup(err)
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &meeting.StoreError{Op: "write", Path: d.path, Cause: err}
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		os.Remove(tmpName)
		return &meeting.StoreError{Op: "rename", Path: d.path, Cause: err}
	}
	return nil
}

func (d *DB) AppendMeeting(_ context.Context, create *store.MeetingRecord) (*store.MeetingRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list, err := d.load()
	if err != nil {
		return nil, err
	}

	record := *create
	replaced := false
	for i, m := range list {
		if m.ID == record.ID {
			list[i] = &record
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, &record)
	}
	store.SortMeetings(list)

	if err := d.save(list); err != nil {
		return nil, err
	}
	result := record
	return &result, nil
}

func (d *DB) ListMeetings(_ context.Context, find *store.FindMeeting) ([]*store.MeetingRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	list, err := d.load()
	if err != nil {
		return nil, err
	}
	store.SortMeetings(list)
	return store.FilterMeetings(list, find), nil
}

func (d *DB) GetMeeting(_ context.Context, id string) (*store.MeetingRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	list, err := d.load()
	if err != nil {
		return nil, err
	}
	for _, m := range list {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, store.ErrMeetingNotFound
}

func (d *DB) RemoveMeeting(_ context.Context, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list, err := d.load()
	if err != nil {
		return false, err
	}

	kept := make([]*store.MeetingRecord, 0, len(list))
	for _, m := range list {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(list) {
		return false, nil
	}
	if err := d.save(kept); err != nil {
		return false, err
	}
	return true, nil
}

func (d *DB) PruneMeetings(_ context.Context, before time.Time) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list, err := d.load()
	if err != nil {
		return 0, err
	}

	kept := make([]*store.MeetingRecord, 0, len(list))
	for _, m := range list {
		if m.StartTime == nil || !m.StartTime.Before(before) {
			kept = append(kept, m)
		}
	}
	removed := len(list) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := d.save(kept); err != nil {
		return 0, err
	}
	return removed, nil
}
