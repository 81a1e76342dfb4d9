// catalog-ingest imports supplier product feeds into the catalog. A feed is a
// set of gzip-compressed JSONL shards; shards are streamed concurrently and a
// product id seen in an earlier line wins over later repeats.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/freshkart/storefront/internal/domain/product"
	"github.com/freshkart/storefront/internal/storage/postgres"
)

const (
	// Sized for the largest supplier dumps. A bloom false positive skips a
	// legitimate product, so the rate is kept below one in a thousand.
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001

	progressEvery = 100_000
)

type feedProduct struct {
	ID                string                       `json:"id"`
	Name              string                       `json:"name"`
	Slug              string                       `json:"slug"`
	Description       string                       `json:"description"`
	Images            []string                     `json:"images"`
	Price             decimal.Decimal              `json:"price"`
	OriginalPrice     *decimal.Decimal             `json:"originalPrice"`
	Unit              string                       `json:"unit"`
	Quantity          *int                         `json:"availableQuantity"`
	MinOrderQuantity  *int                         `json:"minOrderQuantity"`
	MaxOrderQuantity  *int                         `json:"maxOrderQuantity"`
	InStock           bool                         `json:"inStock"`
	LowStockThreshold *int                         `json:"lowStockThreshold"`
	Category          string                       `json:"category"`
	Tags              []string                     `json:"tags"`
	Customizations    []product.CustomizationGroup `json:"customizations"`
	Label             string                       `json:"label"`
	LabelColor        string                       `json:"labelColor"`
	IsFeatured        bool                         `json:"isFeatured"`
}

// seenSet tracks product ids across all shards. The bloom filter is not safe
// for concurrent use, hence the mutex.
type seenSet struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
	dupes  uint64
}

func newSeenSet() *seenSet {
	return &seenSet{filter: bloom.NewWithEstimates(bloomCapacity, bloomFPR)}
}

// markSeen reports whether the id was already recorded and records it.
func (s *seenSet) markSeen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter.TestAndAddString(id) {
		s.dupes++
		return true
	}
	return false
}

func main() {
	var (
		dataDir     string
		shards      int
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing productfeedN.jsonl.gz shards")
	flag.IntVar(&shards, "shards", 3, "number of feed shards")
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

	if err := run(ctx, dataDir, shards, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir string, shards int, databaseURL string) error {
	files := make([]string, shards)
	for i := range shards {
		files[i] = filepath.Join(dataDir, fmt.Sprintf("productfeed%d.jsonl.gz", i+1))
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return errors.Wrapf(err, "check file %s", f)
		}
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := postgres.NewProductRepository(pool)
	seen := newSeenSet()

	slog.Info("ingesting feed shards", slog.Int("shards", len(files)))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(ingestShard(ctx, i, f, repo, seen))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("ingest complete", slog.Uint64("duplicates_skipped", seen.dupes))
	return nil
}

func ingestShard(ctx context.Context, idx int, path string, repo *postgres.ProductRepository, seen *seenSet) func() error {
	return func() error {
		var count, imported uint64

		err := streamGzFile(ctx, path, func(line []byte) error {
			count++
			if count%progressEvery == 0 {
				slog.Info("ingest progress",
					slog.Int("shard", idx+1),
					slog.Uint64("lines", count),
				)
			}

			var raw feedProduct
			if err := json.Unmarshal(line, &raw); err != nil {
				// One malformed line must not sink the whole shard.
				slog.Warn("skipping malformed feed line",
					slog.Int("shard", idx+1),
					slog.Uint64("line", count),
					slog.String("error", err.Error()),
				)
				return nil
			}
			if raw.ID == "" {
				slog.Warn("skipping feed line without id",
					slog.Int("shard", idx+1),
					slog.Uint64("line", count),
				)
				return nil
			}
			if seen.markSeen(raw.ID) {
				return nil
			}

			p := toDomain(raw)
			if err := repo.Upsert(ctx, &p); err != nil {
				return errors.Wrapf(err, "upsert product %s", p.ID)
			}
			imported++
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "ingest shard %d", idx+1)
		}

		slog.Info("shard complete",
			slog.Int("shard", idx+1),
			slog.Uint64("lines", count),
			slog.Uint64("imported", imported),
		)
		return nil
	}
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line []byte) error) error {
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
	scanner.Buffer(make([]byte, 0, 1<<16), 1<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(scanner.Bytes()) == 0 {
			continue
		}
		if err := fn(scanner.Bytes()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}

func toDomain(raw feedProduct) product.Product {
	return product.Product{
		ID:                raw.ID,
		Name:              raw.Name,
		Slug:              raw.Slug,
		Description:       raw.Description,
		Images:            raw.Images,
		Price:             raw.Price,
		OriginalPrice:     raw.OriginalPrice,
		Unit:              raw.Unit,
		Quantity:          raw.Quantity,
		MinOrderQuantity:  raw.MinOrderQuantity,
		MaxOrderQuantity:  raw.MaxOrderQuantity,
		InStock:           raw.InStock,
		LowStockThreshold: raw.LowStockThreshold,
		Category:          raw.Category,
		Tags:              raw.Tags,
		Customizations:    raw.Customizations,
		Label:             raw.Label,
		LabelColor:        raw.LabelColor,
		IsActive:          true,
		IsFeatured:        raw.IsFeatured,
	}
}
