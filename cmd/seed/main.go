// Command seed populates the marketplace database with the demo dataset:
// two Greek producers, a guest buyer, and three signature products. It is
// idempotent; a database that already has users is left untouched.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akanakis/AgroMarket/internal/config"
	"github.com/akanakis/AgroMarket/internal/domain"
	"github.com/akanakis/AgroMarket/internal/repository/postgres"
	"github.com/akanakis/AgroMarket/migrations"
	"github.com/akanakis/AgroMarket/pkg/database"
	"github.com/akanakis/AgroMarket/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("agromarket-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresPoolFromDSN(ctx, cfg.PostgresDSN(), log)
	if err != nil {
		log.Error("failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		log.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := seed(ctx, pool, log); err != nil {
		log.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func seed(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger) error {
	var existing int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&existing); err != nil {
		return err
	}
	if existing > 0 {
		log.Info("database already seeded", slog.Int("users", existing))
		return nil
	}

	users := postgres.NewUserRepository(pool)
	products := postgres.NewProductRepository(pool)
	now := time.Now().UTC()

	for _, u := range seedUsers(now) {
		if err := users.Create(ctx, u); err != nil {
			return err
		}
	}
	for _, p := range seedProducts(now) {
		if err := products.Create(ctx, p); err != nil {
			return err
		}
	}

	log.Info("database seeded",
		slog.Int("users", len(seedUsers(now))),
		slog.Int("products", len(seedProducts(now))),
	)
	return nil
}

func strPtr(s string) *string { return &s }

func seedUsers(now time.Time) []*domain.User {
	return []*domain.User{
		{
			ID:             "user-001",
			Name:           "Papadopoulos Estate",
			Role:           domain.RoleProducer,
			Location:       "Kalamata, Messinia",
			FarmName:       strPtr("Papadopoulos Estate"),
			Certifications: strPtr(`["Organic Certified", "PDO"]`),
			CreatedAt:      now,
		},
		{
			ID:             "user-002",
			Name:           "Meteora Dairy",
			Role:           domain.RoleProducer,
			Location:       "Elassona, Thessaly",
			FarmName:       strPtr("Meteora Dairy"),
			Certifications: strPtr(`["Bio Hellas"]`),
			CreatedAt:      now,
		},
		{
			ID:          "user-003",
			Name:        "Guest Buyer",
			Role:        domain.RoleBuyer,
			Location:    "Athens, Attica",
			Preferences: strPtr(`["Vegetables", "Fruits", "Dairy"]`),
			CreatedAt:   now,
		},
	}
}

func seedProducts(now time.Time) []*domain.Product {
	return []*domain.Product{
		{
			ID:             "prod-001",
			Name:           "Kalamata PDO Olive Oil",
			Description:    "Cold-pressed extra virgin olive oil from our family groves in Messinia. Rich, peppery flavor with low acidity.",
			Price:          12.50,
			Unit:           "liter",
			Category:       "Oil & Olives",
			Location:       "Kalamata, Messinia",
			SellerID:       "user-001",
			SellerName:     "Papadopoulos Estate",
			ImageURL:       "https://images.unsplash.com/photo-1474979266404-7eaacbcd87c5?auto=format&fit=crop&q=80&w=800",
			Organic:        true,
			HarvestDate:    "2023-11-15",
			ExpirationDate: strPtr("2025-11-15"),
			MaxQuantity:    500,
			Rating:         4.8,
			ReviewCount:    124,
			CreatedAt:      now,
		},
		{
			ID:             "prod-002",
			Name:           "Barrel-Aged Feta Cheese",
			Description:    "Traditional feta cheese aged in oak barrels for 6 months. Made from 100% sheep milk from free-grazing herds.",
			Price:          9.80,
			Unit:           "kg",
			Category:       "Dairy & Eggs",
			Location:       "Elassona, Thessaly",
			SellerID:       "user-002",
			SellerName:     "Meteora Dairy",
			ImageURL:       "https://images.unsplash.com/photo-1626957341926-98752fc2ba90?auto=format&fit=crop&q=80&w=800",
			Organic:        false,
			HarvestDate:    "2024-03-10",
			ExpirationDate: strPtr("2024-09-10"),
			MaxQuantity:    120,
			Rating:         4.9,
			ReviewCount:    89,
			CreatedAt:      now,
		},
		{
			ID:             "prod-003",
			Name:           "Cretan Thyme Honey",
			Description:    "Pure, raw thyme honey collected from the mountains of Sfakia. Golden color with intense aroma.",
			Price:          18.00,
			Unit:           "jar",
			Category:       "Honey & Jams",
			Location:       "Sfakia, Crete",
			SellerID:       "user-001",
			SellerName:     "Papadopoulos Estate",
			ImageURL:       "https://images.unsplash.com/photo-1587049352846-4a222e784d38?auto=format&fit=crop&q=80&w=800",
			Organic:        true,
			HarvestDate:    "2023-08-20",
			ExpirationDate: strPtr("2026-08-20"),
			MaxQuantity:    200,
			Rating:         5.0,
			ReviewCount:    42,
			CreatedAt:      now,
		},
	}
}
