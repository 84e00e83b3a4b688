// Package tokenstore persists a single operator's LinkedIn access token.
//
// One Sink is active per deployment context (file for batch callers, cookies
// for the browser flow); the sinks are independent and never reconciled with
// each other. There is no locking: this is a single-operator convenience, not
// a multi-tenant store.
package tokenstore

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

const DefaultFilePath = "linkedin-token.json"

// Record is the persisted token shape. Timestamps are RFC3339 in the file.
type Record struct {
	Token   string    `json:"token"`
	Expiry  time.Time `json:"expiry"`
	Created time.Time `json:"created"`
}

// Sink reads and writes the access-token record. Load reports absent for an
// expired record; expired tokens are never handed back to callers.
type Sink interface {
	Load() (Record, bool, error)
	Save(token string, expiryHours int) error
}

// FileSink stores the record as JSON on disk. The file must be kept out of
// version control.
type FileSink struct {
	Path string
	Now  func() time.Time
}

func NewFileSink(path string) *FileSink {
	if path == "" {
		path = DefaultFilePath
	}
	return &FileSink{Path: path}
}

func (s *FileSink) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *FileSink) Load() (Record, bool, error) {
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, false, fmt.Errorf("invalid token file %s: %w", s.Path, err)
	}
	if rec.Token == "" || !rec.Expiry.After(s.now()) {
		return Record{}, false, nil
	}
	return rec, true, nil
}

// Save overwrites any prior record. Expiry is always now + expiryHours.
func (s *FileSink) Save(token string, expiryHours int) error {
	if expiryHours <= 0 {
		expiryHours = 24
	}
	now := s.now()
	rec := Record{
		Token:   token,
		Expiry:  now.Add(time.Duration(expiryHours) * time.Hour),
		Created: now,
	}
	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, raw, 0o600)
}
