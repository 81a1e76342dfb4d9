package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/freshkart/storefront/internal/domain/product"
	"github.com/freshkart/storefront/internal/storage/postgres"
)

type productJSON struct {
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

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
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

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return seedProducts(ctx, postgres.NewProductRepository(pool), productsFile)
}

func seedProducts(ctx context.Context, repo *postgres.ProductRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var products []productJSON
	if err := json.Unmarshal(data, &products); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting products", slog.Int("count", len(products)))

	for _, raw := range products {
		p := toDomain(raw)
		if err := repo.Upsert(ctx, &p); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}

		slog.Info("upserted product", slog.String("id", p.ID), slog.String("name", p.Name))
	}

	return nil
}

func toDomain(raw productJSON) product.Product {
	// Discount is not read from the file; the repository derives it on write.
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
