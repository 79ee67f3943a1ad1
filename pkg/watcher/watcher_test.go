package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestRelevant(t *testing.T) {
	cases := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"questions.jsonl", fsnotify.Write, true},
		{"answers.jsonl", fsnotify.Create, true},
		{"qa.db", fsnotify.Rename, true},
		{"questions.jsonl", fsnotify.Chmod, false},
		{"notes.txt", fsnotify.Write, false},
		{".questions.jsonl.swp", fsnotify.Write, false},
	}
	for _, tc := range cases {
		ev := fsnotify.Event{Name: filepath.Join("/snap", tc.name), Op: tc.op}
		if got := relevant(ev); got != tc.want {
			t.Errorf("relevant(%s, %v) = %v, want %v", tc.name, tc.op, got, tc.want)
		}
	}
}

func TestWatchCoalescesBurstIntoOneReload(t *testing.T) {
	dir := t.TempDir()
	fired := make(chan struct{}, 10)

	w, err := Watch(dir, 100*time.Millisecond, func() {
		fired <- struct{}{}
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	// A snapshot rewrite touches the file several times in quick succession.
	path := filepath.Join(dir, "questions.jsonl")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("Reload callback never fired")
	}

	select {
	case <-fired:
		t.Error("Burst should coalesce into a single reload")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatchIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	fired := make(chan struct{}, 1)

	w, err := Watch(dir, 50*time.Millisecond, func() {
		fired <- struct{}{}
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "scratch.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-fired:
		t.Error("Unrelated files must not trigger a reload")
	case <-time.After(300 * time.Millisecond):
	}
}
