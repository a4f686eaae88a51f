/*
Copyright © 2025 Equilab
*/
package reads

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fastq"
	"github.com/biogo/biogo/seq/linear"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/equilab/microbiome-prep/manifest"
)

// Stat summarizes the read pair of one sample: read counts, mean per-read
// Phred quality and mean read length for each direction.
type Stat struct {
	SampleID        string
	ForwardReads    int
	ReverseReads    int
	ForwardMeanQual float64
	ReverseMeanQual float64
	ForwardMeanLen  float64
	ReverseMeanLen  float64
}

func scanFastq(path string) (n int, meanQual, meanLen float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("opening read file %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, gzErr := gzip.NewReader(f)
		if gzErr != nil {
			return 0, 0, 0, fmt.Errorf("reading gzip %s: %w", path, gzErr)
		}
		defer gz.Close()
		r = gz
	}

	template := linear.NewQSeq("", alphabet.QLetters{}, alphabet.DNA, alphabet.Sanger)
	sc := seqio.NewScanner(fastq.NewReader(r, template))

	var quals, lens []float64
	for sc.Next() {
		s := sc.Seq().(*linear.QSeq)
		if len(s.Seq) == 0 {
			continue
		}
		var sum int
		for _, ql := range s.Seq {
			sum += int(ql.Q)
		}
		quals = append(quals, float64(sum)/float64(len(s.Seq)))
		lens = append(lens, float64(len(s.Seq)))
	}
	if scErr := sc.Error(); scErr != nil {
		return 0, 0, 0, fmt.Errorf("scanning %s: %w", path, scErr)
	}
	if len(quals) == 0 {
		return 0, 0, 0, nil
	}
	return len(quals), stat.Mean(quals, nil), stat.Mean(lens, nil), nil
}

// Summarize scans every manifest entry's read pair, at most threads samples
// at a time. Results keep the manifest order whatever the completion order.
// A forward/reverse read-count mismatch fails the run naming the sample.
func Summarize(entries []manifest.Entry, threads int) ([]Stat, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no manifest entries to summarize")
	}
	if threads < 1 {
		threads = 1
	}

	stats := make([]Stat, len(entries))
	var g errgroup.Group
	g.SetLimit(threads)
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			fn, fq, fl, err := scanFastq(e.ForwardPath)
			if err != nil {
				return fmt.Errorf("sample %s: %w", e.SampleID, err)
			}
			rn, rq, rl, err := scanFastq(e.ReversePath)
			if err != nil {
				return fmt.Errorf("sample %s: %w", e.SampleID, err)
			}
			if fn != rn {
				return fmt.Errorf("sample %s: forward has %d reads but reverse has %d", e.SampleID, fn, rn)
			}
			stats[i] = Stat{
				SampleID:        e.SampleID,
				ForwardReads:    fn,
				ReverseReads:    rn,
				ForwardMeanQual: fq,
				ReverseMeanQual: rq,
				ForwardMeanLen:  fl,
				ReverseMeanLen:  rl,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// WriteTSV persists the per-sample read statistics. The write is atomic.
func WriteTSV(stats []Stat, path string) error {
	var b strings.Builder
	b.WriteString("sample-id\tforward-reads\treverse-reads\tforward-mean-qual\treverse-mean-qual\tforward-mean-length\treverse-mean-length\n")
	for _, s := range stats {
		b.WriteString(fmt.Sprintf("%s\t%d\t%d\t%.2f\t%.2f\t%.1f\t%.1f\n",
			s.SampleID, s.ForwardReads, s.ReverseReads,
			s.ForwardMeanQual, s.ReverseMeanQual,
			s.ForwardMeanLen, s.ReverseMeanLen))
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing read stats %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing read stats %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("finalizing read stats %s: %w", path, err)
	}
	return nil
}
