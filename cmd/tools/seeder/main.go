package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedProducts(ctx, pool)
	seedClients(ctx, pool)

	log.Println("Seeding completed successfully!")
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool) {
	products := []struct {
		Name      string
		Unit      string
		UnitPrice int64
		Stock     int
	}{
		{"Semen Tiga Roda 50kg", "sak", 6500000, 120},
		{"Pasir Cor", "m3", 35000000, 40},
		{"Batu Split 1-2cm", "m3", 30000000, 35},
		{"Bata Merah", "pcs", 80000, 5000},
		{"Besi Beton 10mm", "batang", 7500000, 300},
		{"Besi Beton 12mm", "batang", 10500000, 250},
		{"Cat Tembok Putih 25kg", "pail", 42500000, 24},
		{"Triplek 9mm", "lembar", 11500000, 80},
		{"Paku 5cm", "kg", 2200000, 150},
		{"Pipa PVC 3 inch", "batang", 8500000, 60},
	}

	log.Println("Seeding products...")
	for _, p := range products {
		_, err := pool.Exec(ctx, `
			INSERT INTO products (name, unit, unit_price, stock)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT DO NOTHING`,
			p.Name, p.Unit, p.UnitPrice, p.Stock)
		if err != nil {
			log.Fatalf("seed product %q: %v", p.Name, err)
		}
	}
}

func seedClients(ctx context.Context, pool *pgxpool.Pool) {
	clients := []struct {
		Name    string
		Phone   string
		Address string
	}{
		{"CV Maju Jaya", "0812-1111-2222", "Jl. Raya Bogor KM 30"},
		{"Budi Santoso", "0813-3333-4444", "Perum Griya Asri Blok C2"},
		{"PT Karya Bangun", "0821-5555-6666", "Jl. Industri No. 14"},
		{"Siti Aminah", "0858-7777-8888", "Kampung Baru RT 04/02"},
	}

	log.Println("Seeding clients...")
	for _, c := range clients {
		_, err := pool.Exec(ctx, `
			INSERT INTO clients (name, phone, address)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING`,
			c.Name, c.Phone, c.Address)
		if err != nil {
			log.Fatalf("seed client %q: %v", c.Name, err)
		}
	}
}
