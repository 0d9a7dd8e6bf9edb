package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Store persists one session document at a fixed path. Writes are atomic
// (temp file, fsync, rename) so a reader only ever observes the previous or
// the new complete document, never a partial write.
type Store struct {
	path     string
	log      zerolog.Logger
	lockFile *os.File
}

// NewStore creates a store for the given file path.
func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{path: path, log: log}
}

// Path returns the designated session file path.
func (s *Store) Path() string { return s.path }

// Read loads the session document. A missing file yields a fresh empty
// document (first run). Unparseable content, failed validation, or an
// unrecognized future schema version moves the file aside as a ".corrupt"
// backup and also yields a fresh document: a damaged session file must never
// prevent startup. An older recognized version is migrated in order before
// being returned.
func (s *Store) Read() (*Document, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		s.quarantine("invalid JSON", err)
		return NewDocument(), nil
	}

	if !migrate(decoded) {
		s.quarantine("unrecognized schema version", nil)
		return NewDocument(), nil
	}

	migrated, err := json.Marshal(decoded)
	if err != nil {
		s.quarantine("unserializable after migration", err)
		return NewDocument(), nil
	}

	doc := &Document{}
	if err := json.Unmarshal(migrated, doc); err != nil {
		s.quarantine("schema mismatch", err)
		return NewDocument(), nil
	}
	if doc.Tabs == nil {
		doc.Tabs = []TabState{}
	}
	if err := doc.Validate(); err != nil {
		s.quarantine("validation failed", err)
		return NewDocument(), nil
	}
	return doc, nil
}

// Write serializes the document to a temporary file in the target directory,
// flushes it to disk, and atomically renames it over the session file.
func (s *Store) Write(doc *Document) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("refusing to persist invalid document: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("sync temp session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp session file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("commit session file: %w", err)
	}

	// Durability of the rename itself requires a directory sync. Failure
	// here does not invalidate the committed data.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	s.log.Debug().Str("path", s.path).Int("tabs", len(doc.Tabs)).Msg("session flushed")
	return nil
}

// quarantine moves the damaged session file aside as a ".corrupt" backup so
// the next write starts clean while the evidence is preserved.
func (s *Store) quarantine(reason string, cause error) {
	backup := s.path + ".corrupt"
	if err := os.Rename(s.path, backup); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("failed to back up corrupt session file")
		return
	}
	s.log.Warn().
		Str("path", s.path).
		Str("backup", backup).
		Str("reason", reason).
		AnErr("cause", cause).
		Msg("session file corrupt, reset to empty document")
}
