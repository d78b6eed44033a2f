// Command member-ingest reconciles loyalty card dumps exported from legacy
// POS systems into the customers table. A card number is accepted only when
// it appears in at least two of the three dump files; single-file entries
// are treated as export noise.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/bits"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/anasalhur/sufra-pos/internal/storage/postgres"
)

const (
	bloomCapacity = 120_000_000
	bloomFPR      = 0.001
	numFiles      = 3
	progressEvery = 10_000_000
	minCardLen    = 12
	maxCardLen    = 16
)

// fileResult holds candidate card numbers found in a single file during
// pass 2.
type fileResult struct {
	candidates map[string]uint
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing membercardsN.gz files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("member ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("member ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files := make([]string, numFiles)
	for i := range numFiles {
		files[i] = filepath.Join(dataDir, fmt.Sprintf("membercards%d.gz", i+1))
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	// Pass 1: Build bloom filters concurrently.
	slog.Info("pass 1: building bloom filters", slog.Int("files", numFiles))

	filters, err := buildBloomFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build bloom filters")
	}

	// Pass 2: Find candidate cards appearing in 2+ files.
	slog.Info("pass 2: finding candidate cards")

	validCards, err := findValidCards(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "find valid cards")
	}

	slog.Info("valid cards found", slog.Int("count", len(validCards)))

	if len(validCards) == 0 {
		slog.Info("no valid cards to insert")
		return nil
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := writeCustomers(ctx, pool, validCards); err != nil {
		return errors.Wrap(err, "write customers to database")
	}

	return nil
}

// buildBloomFilters creates one bloom filter per file, concurrently.
func buildBloomFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForFile(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return filters, nil
}

func buildFilterForFile(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamGzFile(ctx, path, func(card string) {
			if len(card) >= minCardLen && len(card) <= maxCardLen {
				filter.AddString(card)
				count++
				if count%progressEvery == 0 {
					slog.Info("pass 1 progress",
						slog.Int("file", idx+1),
						slog.Uint64("cards", count),
					)
				}
			}
		}); err != nil {
			return errors.Wrapf(err, "build filter for file %d", idx+1)
		}

		slog.Info("pass 1 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_cards", count),
		)

		filters[idx] = filter
		return nil
	}
}

// findValidCards re-streams each file and checks card numbers against OTHER
// files' bloom filters. A card is valid if it appears in 2 or more files.
func findValidCards(ctx context.Context, files []string, filters []*bloom.BloomFilter) ([]string, error) {
	results := make([]fileResult, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(findCandidatesInFile(ctx, i, f, filters, results))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Merge bitmasks from all files.
	merged := make(map[string]uint)
	for _, r := range results {
		for card, mask := range r.candidates {
			merged[card] |= mask
		}
	}

	// Keep cards appearing in 2+ files.
	var valid []string
	for card, mask := range merged {
		if bits.OnesCount(mask) >= 2 {
			valid = append(valid, card)
		}
	}

	return valid, nil
}

func findCandidatesInFile(
	ctx context.Context,
	idx int,
	path string,
	filters []*bloom.BloomFilter,
	results []fileResult,
) func() error {
	return func() error {
		candidates := make(map[string]uint)
		fileBit := uint(1) << uint(idx)
		var count uint64

		if err := streamGzFile(ctx, path, func(card string) {
			if len(card) < minCardLen || len(card) > maxCardLen {
				return
			}

			count++
			if count%progressEvery == 0 {
				slog.Info("pass 2 progress",
					slog.Int("file", idx+1),
					slog.Uint64("cards", count),
				)
			}

			// Check if this card appears in any OTHER file's bloom filter.
			for j, f := range filters {
				if j == idx {
					continue
				}
				if f.TestString(card) {
					candidates[card] |= fileBit
					break
				}
			}
		}); err != nil {
			return errors.Wrapf(err, "scan file %d for candidates", idx+1)
		}

		slog.Info("pass 2 complete",
			slog.Int("file", idx+1),
			slog.Uint64("total_cards", count),
			slog.Int("candidates", len(candidates)),
		)

		results[idx] = fileResult{candidates: candidates}
		return nil
	}
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(card string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

const upsertCustomerSQL = `INSERT INTO customers (id, name, card_number, tier, points)
	VALUES ($1, $2, $3, 0, 0)
	ON CONFLICT (card_number) DO NOTHING`

// writeCustomers upserts all reconciled card numbers as customers. Names and
// tiers are backfilled later from the CRM; new rows start at tier 0 with no
// points.
func writeCustomers(ctx context.Context, pool *pgxpool.Pool, cards []string) error {
	slog.Info("writing customers to database", slog.Int("count", len(cards)))

	for i, card := range cards {
		id := "card-" + card
		if _, err := pool.Exec(ctx, upsertCustomerSQL, id, "Member "+card, card); err != nil {
			return errors.Wrapf(err, "upsert customer for card %s", card)
		}

		if (i+1)%100 == 0 || i+1 == len(cards) {
			slog.Info("write progress", slog.Int("written", i+1), slog.Int("total", len(cards)))
		}
	}

	return nil
}
