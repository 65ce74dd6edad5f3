package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/noah-isme/backend-storefront/internal/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	users := seedUsers(db)
	products := seedCatalog(db)
	seedDeals(db, products, time.Now().UTC())
	seedAddresses(db, users)

	printTokens(users)
	log.Println("Seeding completed successfully!")
}

type seededUser struct {
	ID    string
	Email string
	Admin bool
}

func seedUsers(db *sql.DB) []seededUser {
	users := []struct {
		First string
		Last  string
		Email string
		Admin bool
	}{
		{"Admin", "User", "admin@storefront.test", true},
		{"Ada", "Lovelace", "ada@example.com", false},
		{"Grace", "Hopper", "grace@example.com", false},
		{"Linus", "Pauling", "linus@example.com", false},
	}

	fmt.Println("Seeding Users...")
	var out []seededUser
	for _, u := range users {
		var id string
		err := db.QueryRow(`
			INSERT INTO users (email, first_name, last_name, is_admin)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (email) DO UPDATE SET first_name = EXCLUDED.first_name
			RETURNING id;
		`, u.Email, u.First, u.Last, u.Admin).Scan(&id)
		if err != nil {
			log.Printf("Failed to seed user %s: %v", u.Email, err)
			continue
		}
		out = append(out, seededUser{ID: id, Email: u.Email, Admin: u.Admin})
	}
	return out
}

// seedCatalog upserts products and returns their ids keyed by slug. Prices are in cents.
func seedCatalog(db *sql.DB) map[string]string {
	products := []struct {
		Name       string
		Slug       string
		Base       int64
		Discounted int64
		Stock      int
		Image      string
	}{
		{"Mechanical Keyboard", "mechanical-keyboard", 12999, 10999, 40, "https://images.unsplash.com/photo-1587829741301-dc798b83add3?w=800"},
		{"Wireless Mouse", "wireless-mouse", 4999, 4999, 120, "https://images.unsplash.com/photo-1527864550417-7fd91fc51a46?w=800"},
		{"USB-C Hub", "usb-c-hub", 3999, 2999, 75, "https://images.unsplash.com/photo-1625842268584-8f3296236761?w=800"},
		{"Noise Cancelling Headphones", "noise-cancelling-headphones", 29999, 24999, 25, "https://images.unsplash.com/photo-1618366712010-f4ae9c647dcb?w=800"},
		{"27in Monitor", "27in-monitor", 34999, 34999, 12, "https://images.unsplash.com/photo-1527443224154-c4a3942d3acf?w=800"},
		{"Desk Mat", "desk-mat", 1999, 1499, 300, "https://images.unsplash.com/photo-1616627561839-074385245ff6?w=800"},
		{"Webcam 1080p", "webcam-1080p", 6999, 5999, 0, "https://images.unsplash.com/photo-1587826080692-f439cd0b70da?w=800"},
	}

	fmt.Println("Seeding Products...")
	ids := make(map[string]string, len(products))
	for _, p := range products {
		var id string
		err := db.QueryRow(`
			INSERT INTO products (name, slug, description, base_price_cents, discounted_price_cents, stock, image_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (slug) DO UPDATE SET
				base_price_cents = EXCLUDED.base_price_cents,
				discounted_price_cents = EXCLUDED.discounted_price_cents,
				stock = EXCLUDED.stock,
				updated_at = now()
			RETURNING id;
		`, p.Name, p.Slug, "Demo product: "+p.Name, p.Base, p.Discounted, p.Stock, p.Image).Scan(&id)
		if err != nil {
			log.Printf("Failed to upsert product %s: %v", p.Slug, err)
			continue
		}
		ids[p.Slug] = id
	}
	return ids
}

func seedDeals(db *sql.DB, products map[string]string, now time.Time) {
	deals := []struct {
		Name     string
		Percent  string
		StartsAt time.Time
		EndsAt   time.Time
		Products []string
	}{
		{"Spring Sale", "20", now.Add(-24 * time.Hour), now.Add(7 * 24 * time.Hour), []string{"mechanical-keyboard", "wireless-mouse"}},
		{"Audio Week", "15", now.Add(-time.Hour), now.Add(72 * time.Hour), []string{"noise-cancelling-headphones"}},
		{"Next Month", "30", now.Add(30 * 24 * time.Hour), now.Add(37 * 24 * time.Hour), []string{"27in-monitor"}},
		{"Last Season", "50", now.Add(-30 * 24 * time.Hour), now.Add(-23 * 24 * time.Hour), []string{"desk-mat"}},
	}

	fmt.Println("Seeding Deals...")
	for _, d := range deals {
		var dealID string
		err := db.QueryRow(`SELECT id FROM deals WHERE name = $1`, d.Name).Scan(&dealID)
		if err == sql.ErrNoRows {
			err = db.QueryRow(`
				INSERT INTO deals (name, discount_percent, starts_at, ends_at)
				VALUES ($1, $2, $3, $4)
				RETURNING id;
			`, d.Name, d.Percent, d.StartsAt, d.EndsAt).Scan(&dealID)
		}
		if err != nil {
			log.Printf("Failed to seed deal %s: %v", d.Name, err)
			continue
		}
		for _, slug := range d.Products {
			productID, ok := products[slug]
			if !ok {
				log.Printf("Missing product ID for %s", slug)
				continue
			}
			if _, err := db.Exec(`
				INSERT INTO product_deals (product_id, deal_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING;
			`, productID, dealID); err != nil {
				log.Printf("Failed to attach deal %s to %s: %v", d.Name, slug, err)
			}
		}
	}
}

func seedAddresses(db *sql.DB, users []seededUser) {
	fmt.Println("Seeding Addresses...")
	for _, u := range users {
		if u.Admin {
			continue
		}
		var count int
		if err := db.QueryRow(`SELECT count(*) FROM addresses WHERE user_id = $1`, u.ID).Scan(&count); err != nil {
			log.Printf("Failed to count addresses for %s: %v", u.Email, err)
			continue
		}
		if count > 0 {
			continue
		}
		_, err := db.Exec(`
			INSERT INTO addresses (user_id, label, recipient_name, phone, line1, city, state, postal_code, country, is_default)
			VALUES ($1, 'Home', $2, '+1-555-0100', '1 Demo Street', 'Springfield', 'IL', '62701', 'US', TRUE);
		`, u.ID, u.Email)
		if err != nil {
			log.Printf("Failed to seed address for %s: %v", u.Email, err)
		}
	}
}

// printTokens issues short-lived access tokens for local testing when JWT_SECRET is set.
func printTokens(users []seededUser) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return
	}
	verifier, err := auth.NewVerifier(auth.Config{
		Secret:    secret,
		Issuer:    os.Getenv("JWT_ISSUER"),
		Audience:  os.Getenv("JWT_AUDIENCE"),
		AccessTTL: 24 * time.Hour,
	})
	if err != nil {
		log.Printf("Failed to build token verifier: %v", err)
		return
	}
	fmt.Println("Access tokens (24h):")
	for _, u := range users {
		var roles []string
		if u.Admin {
			roles = append(roles, "admin")
		}
		token, _, err := verifier.SignAccessToken(u.ID, roles...)
		if err != nil {
			log.Printf("Failed to sign token for %s: %v", u.Email, err)
			continue
		}
		fmt.Printf("  %s\t%s\n", u.Email, token)
	}
}
