/*
Copyright © 2025 Equilab
*/
package manifest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Header is the fixed three-column header of the manifest file, in the
// layout the downstream import stage expects.
const Header = "sample-id\tforward-absolute-filepath\treverse-absolute-filepath"

// Forward and reverse read file suffixes per sample id.
const (
	ForwardSuffix = "_1.fastq.gz"
	ReverseSuffix = "_2.fastq.gz"
)

// Entry resolves one sample id to its paired-end read files.
type Entry struct {
	SampleID    string
	ForwardPath string
	ReversePath string
}

// MissingError reports every sample id that could not be resolved to a
// complete file pair. The whole set is collected before failing so one rerun
// after fixing the filesystem is enough.
type MissingError struct {
	Missing []string
	Files   []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing read files for %d sample(s) [%s]: %s",
		len(e.Missing), strings.Join(e.Missing, ", "), strings.Join(e.Files, ", "))
}

// Build resolves each sample id to <id>_1.fastq.gz and <id>_2.fastq.gz under
// rawDir. Either every id resolves to an existing pair, or Build fails with
// the complete missing set; no partial manifest is produced.
func Build(ids []string, rawDir string) ([]Entry, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("no sample ids to resolve against %s", rawDir)
	}
	if info, err := os.Stat(rawDir); err != nil {
		return nil, fmt.Errorf("raw data directory %s: %w", rawDir, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("raw data path %s is not a directory", rawDir)
	}

	entries := make([]Entry, 0, len(ids))
	var missing []string
	var missingFiles []string
	for _, id := range ids {
		forward := filepath.Join(rawDir, id+ForwardSuffix)
		reverse := filepath.Join(rawDir, id+ReverseSuffix)

		ok := true
		if _, err := os.Stat(forward); err != nil {
			missingFiles = append(missingFiles, forward)
			ok = false
		}
		if _, err := os.Stat(reverse); err != nil {
			missingFiles = append(missingFiles, reverse)
			ok = false
		}
		if !ok {
			missing = append(missing, id)
			continue
		}

		absForward, err := filepath.Abs(forward)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", forward, err)
		}
		absReverse, err := filepath.Abs(reverse)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", reverse, err)
		}
		entries = append(entries, Entry{
			SampleID:    id,
			ForwardPath: absForward,
			ReversePath: absReverse,
		})
	}

	if len(missing) > 0 {
		return nil, &MissingError{Missing: missing, Files: missingFiles}
	}
	return entries, nil
}

// Write persists the manifest as a tab-delimited file. The write is atomic:
// the file appears only on success.
func Write(entries []Entry, path string) error {
	var b strings.Builder
	b.WriteString(Header + "\n")
	for _, e := range entries {
		b.WriteString(e.SampleID + "\t" + e.ForwardPath + "\t" + e.ReversePath + "\n")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing manifest %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("finalizing manifest %s: %w", path, err)
	}
	return nil
}

// Read loads a manifest written by Write.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return nil, fmt.Errorf("manifest %s is empty", path)
	}
	if sc.Text() != Header {
		return nil, fmt.Errorf("manifest %s has unexpected header %q", path, sc.Text())
	}

	var entries []Entry
	line := 1
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) != 3 {
			return nil, fmt.Errorf("manifest %s line %d: expected 3 fields, got %d", path, line, len(fields))
		}
		entries = append(entries, Entry{
			SampleID:    fields[0],
			ForwardPath: fields[1],
			ReversePath: fields[2],
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return entries, nil
}
