/*
Copyright © 2025 Equilab
*/
package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func touchPair(t *testing.T, dir, id string) {
	t.Helper()
	for _, suffix := range []string{ForwardSuffix, ReverseSuffix} {
		if err := os.WriteFile(filepath.Join(dir, id+suffix), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestBuildComplete(t *testing.T) {
	dir := t.TempDir()
	ids := []string{"S1", "S2", "S3"}
	for _, id := range ids {
		touchPair(t, dir, id)
	}

	entries, err := Build(ids, dir)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(entries) != len(ids) {
		t.Fatalf("got %d entries, want %d", len(entries), len(ids))
	}
	for i, e := range entries {
		if e.SampleID != ids[i] {
			t.Errorf("entry %d id = %s, want %s", i, e.SampleID, ids[i])
		}
		if !filepath.IsAbs(e.ForwardPath) || !filepath.IsAbs(e.ReversePath) {
			t.Errorf("entry %s paths not absolute: %s %s", e.SampleID, e.ForwardPath, e.ReversePath)
		}
		for _, p := range []string{e.ForwardPath, e.ReversePath} {
			if _, err := os.Stat(p); err != nil {
				t.Errorf("entry %s path %s does not exist", e.SampleID, p)
			}
		}
	}
}

func TestBuildMissingPairFailsWhole(t *testing.T) {
	dir := t.TempDir()
	touchPair(t, dir, "S1")
	// S2 gets no files at all.

	entries, err := Build([]string{"S1", "S2"}, dir)
	if entries != nil {
		t.Errorf("got entries %v, want none on failure", entries)
	}
	var missErr *MissingError
	if !errors.As(err, &missErr) {
		t.Fatalf("err = %v, want MissingError", err)
	}
	if !reflect.DeepEqual(missErr.Missing, []string{"S2"}) {
		t.Errorf("missing = %v, want [S2]", missErr.Missing)
	}
	if len(missErr.Files) != 2 {
		t.Errorf("missing files = %v, want both halves reported", missErr.Files)
	}
	if !strings.Contains(err.Error(), "S2") {
		t.Errorf("error %q does not name the missing sample", err.Error())
	}
}

func TestBuildHalfPairReported(t *testing.T) {
	dir := t.TempDir()
	touchPair(t, dir, "S1")
	// Only the forward half of S2.
	if err := os.WriteFile(filepath.Join(dir, "S2"+ForwardSuffix), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Build([]string{"S1", "S2"}, dir)
	var missErr *MissingError
	if !errors.As(err, &missErr) {
		t.Fatalf("err = %v, want MissingError", err)
	}
	if !reflect.DeepEqual(missErr.Missing, []string{"S2"}) {
		t.Errorf("missing = %v, want [S2]", missErr.Missing)
	}
	if len(missErr.Files) != 1 || !strings.HasSuffix(missErr.Files[0], "S2"+ReverseSuffix) {
		t.Errorf("missing files = %v, want the reverse half only", missErr.Files)
	}
}

func TestBuildCollectsAllMissing(t *testing.T) {
	dir := t.TempDir()
	touchPair(t, dir, "S2")

	_, err := Build([]string{"S1", "S2", "S3"}, dir)
	var missErr *MissingError
	if !errors.As(err, &missErr) {
		t.Fatalf("err = %v, want MissingError", err)
	}
	if !reflect.DeepEqual(missErr.Missing, []string{"S1", "S3"}) {
		t.Errorf("missing = %v, want [S1 S3]", missErr.Missing)
	}
}

func TestBuildNoIDs(t *testing.T) {
	if _, err := Build(nil, t.TempDir()); err == nil {
		t.Fatal("expected error for empty id list")
	}
}

func TestBuildMissingDir(t *testing.T) {
	if _, err := Build([]string{"S1"}, filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing raw directory")
	}
}

func TestBuildIdempotent(t *testing.T) {
	dir := t.TempDir()
	ids := []string{"S1", "S2"}
	for _, id := range ids {
		touchPair(t, dir, id)
	}

	first, err := Build(ids, dir)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Build(ids, dir)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("rebuild differs: %v vs %v", first, second)
	}
}

func TestWriteRead(t *testing.T) {
	dir := t.TempDir()
	touchPair(t, dir, "S1")
	entries, err := Build([]string{"S1"}, dir)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "manifest.tsv")
	if err := Write(entries, path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if lines[0] != Header {
		t.Errorf("header = %q, want %q", lines[0], Header)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	back, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !reflect.DeepEqual(back, entries) {
		t.Errorf("round-trip = %v, want %v", back, entries)
	}
}

func TestReadRejectsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.tsv")
	if err := os.WriteFile(path, []byte("id\tfwd\trev\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); err == nil {
		t.Fatal("expected error for wrong header")
	}
}
