package source

import (
	"os"
	"path/filepath"
)

// SnapshotKind identifies which offline snapshot format a content directory
// carries.
type SnapshotKind int

const (
	SnapshotNone SnapshotKind = iota
	SnapshotJSONL
	SnapshotDB
)

// DBFile is the SQLite snapshot file name inside a content directory.
const DBFile = "qa.db"

// DetectSnapshot inspects a content directory and reports which snapshot
// format is present. SQLite wins over JSONL when both exist, since the db is
// what snapshot tooling writes last.
func DetectSnapshot(dir string) SnapshotKind {
	if dir == "" {
		return SnapshotNone
	}
	if _, err := os.Stat(filepath.Join(dir, DBFile)); err == nil {
		return SnapshotDB
	}
	if _, err := os.Stat(filepath.Join(dir, QuestionsFile)); err == nil {
		return SnapshotJSONL
	}
	return SnapshotNone
}

// String returns a human-readable snapshot kind name
func (k SnapshotKind) String() string {
	switch k {
	case SnapshotDB:
		return "sqlite snapshot"
	case SnapshotJSONL:
		return "jsonl snapshot"
	default:
		return "none"
	}
}

// OpenSnapshot opens the best available snapshot under dir.
func OpenSnapshot(dir string) (Source, SnapshotKind, error) {
	switch DetectSnapshot(dir) {
	case SnapshotDB:
		s, err := OpenDBSource(filepath.Join(dir, DBFile))
		if err != nil {
			return nil, SnapshotNone, err
		}
		return s, SnapshotDB, nil
	case SnapshotJSONL:
		s, err := OpenFileSource(dir)
		if err != nil {
			return nil, SnapshotNone, err
		}
		return s, SnapshotJSONL, nil
	}
	return nil, SnapshotNone, nil
}
