package main

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kart-pricing/internal/domain/coupon"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.001
	batchSize     = 1000
	progressEvery = 100_000
)

type ingestConfig struct {
	Exclusive []string
	Strict    bool
}

type ingestStats struct {
	Lines      uint64
	Duplicates uint64
	Malformed  uint64
}

// ingester parses codes from several lists concurrently and keeps the first
// occurrence of every code.
type ingester struct {
	opts   coupon.ParseOptions
	strict bool

	mu     sync.Mutex
	filter *bloom.BloomFilter
	codes  map[string]coupon.Descriptor
	st     ingestStats
}

func newIngester(cfg ingestConfig) *ingester {
	return &ingester{
		opts:   coupon.ParseOptions{Exclusive: cfg.Exclusive},
		strict: cfg.Strict,
		filter: bloom.NewWithEstimates(bloomCapacity, bloomFPR),
		codes:  make(map[string]coupon.Descriptor),
	}
}

// add records one raw line. Blank lines and '#' comments are ignored.
func (ing *ingester) add(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	d, err := coupon.ParseCode(line, ing.opts)

	ing.mu.Lock()
	defer ing.mu.Unlock()
	ing.st.Lines++

	if err != nil {
		ing.st.Malformed++
		if ing.strict {
			return err
		}
		return nil
	}

	// A bloom miss proves the code is new; only a hit needs the exact set.
	if ing.filter.TestOrAddString(d.Code) {
		if _, dup := ing.codes[d.Code]; dup {
			ing.st.Duplicates++
			return nil
		}
	}
	ing.codes[d.Code] = d
	return nil
}

// scan reads a gzip-compressed list from r.
func (ing *ingester) scan(ctx context.Context, name string, r io.Reader) error {
	gz, err := pgzip.NewReader(r)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", name)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	var n int
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := ing.add(scanner.Text()); err != nil {
			return errors.Wrapf(err, "%s:%d", name, n+1)
		}
		n++
		if n%progressEvery == 0 {
			slog.Info("scan progress", slog.String("file", name), slog.Int("lines", n))
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", name)
	}
	return nil
}

// scanFiles scans every file concurrently.
func (ing *ingester) scanFiles(ctx context.Context, files []string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, path := range files {
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				return errors.Wrapf(err, "open %s", path)
			}
			defer func() { _ = f.Close() }()
			return ing.scan(ctx, path, f)
		})
	}
	return g.Wait()
}

// descriptors returns the collected descriptors ordered by code.
func (ing *ingester) descriptors() []coupon.Descriptor {
	ing.mu.Lock()
	defer ing.mu.Unlock()

	out := make([]coupon.Descriptor, 0, len(ing.codes))
	for _, d := range ing.codes {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b coupon.Descriptor) int { return strings.Compare(a.Code, b.Code) })
	return out
}

func (ing *ingester) stats() ingestStats {
	ing.mu.Lock()
	defer ing.mu.Unlock()
	return ing.st
}
