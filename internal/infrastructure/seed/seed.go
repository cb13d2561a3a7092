// Package seed loads the demo catalog and accounts, mirroring the fixture
// data the storefront ships with. It runs against any repository pair, so
// both the document store and the in-memory dev store can be seeded.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alma-labs/storefront/internal/domain/catalog"
	"github.com/alma-labs/storefront/internal/domain/user"
	"github.com/alma-labs/storefront/internal/pkg/logging"
	"go.uber.org/zap"
)

type IDGenerator interface {
	NewID() string
}

var demoProducts = []catalog.Product{
	{Name: "Midnight Rose", Brand: "Floral", Description: "A mysterious blend of dark roses and vanilla", Price: 7499, Stock: 50, Image: "/alma2/images/image1.jpg"},
	{Name: "Ocean Breeze", Brand: "Fresh", Description: "Fresh ocean waves with citrus undertones", Price: 6299, Stock: 50, Image: "/alma2/images/image2.jpg"},
	{Name: "Amber Nights", Brand: "Woody", Description: "Warm amber with spicy cinnamon notes", Price: 7999, Stock: 50, Image: "/alma2/images/image3.jpg"},
	{Name: "Luxury Lipstick", Brand: "Cosmetic", Description: "Long-lasting color with moisturizing formula", Price: 2099, Stock: 100, Image: "/alma2/images/lipstick.jpg"},
	{Name: "Mascara Pro", Brand: "Cosmetic", Description: "Volumizing mascara for dramatic lashes", Price: 2699, Stock: 100, Image: "/alma2/images/mascara.jpg"},
	{Name: "Foundation Cream", Brand: "Cosmetic", Description: "Flawless coverage with natural finish", Price: 3799, Stock: 100, Image: "/alma2/images/foundation.jpg"},
}

// Demo inserts the demo catalog plus an admin and a shopper account. It is
// a no-op when the catalog already has products.
func Demo(ctx context.Context, products catalog.Repository, users user.Repository, idGen IDGenerator) error {
	logger := logging.FromContext(ctx).With(zap.String("component", "seed"))

	existing, err := products.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("seed: inspect catalog: %w", err)
	}
	if len(existing) > 0 {
		logger.Info("seed_skipped_catalog_not_empty", zap.Int("products", len(existing)))
		return nil
	}

	now := time.Now().UTC()
	for _, p := range demoProducts {
		p.ID = idGen.NewID()
		p.CreatedAt = now
		p.UpdatedAt = now
		if err := products.Insert(ctx, &p); err != nil {
			return fmt.Errorf("seed: insert product %q: %w", p.Name, err)
		}
	}

	admin, err := user.New(idGen.NewID(), "Admin", "admin@example.com", "admin123")
	if err != nil {
		return fmt.Errorf("seed: build admin: %w", err)
	}
	admin.IsAdmin = true
	if err := users.Insert(ctx, admin); err != nil && !errors.Is(err, user.ErrEmailTaken) {
		return fmt.Errorf("seed: insert admin: %w", err)
	}

	shopper, err := user.New(idGen.NewID(), "Demo Shopper", "demo@example.com", "demo123")
	if err != nil {
		return fmt.Errorf("seed: build shopper: %w", err)
	}
	if err := users.Insert(ctx, shopper); err != nil && !errors.Is(err, user.ErrEmailTaken) {
		return fmt.Errorf("seed: insert shopper: %w", err)
	}

	logger.Info("seed_complete", zap.Int("products", len(demoProducts)))
	return nil
}
