package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/salonlink/backend/config"
	"github.com/salonlink/backend/pkg/audit"
	"github.com/salonlink/backend/pkg/auth"
	"github.com/salonlink/backend/pkg/callers"
	"github.com/salonlink/backend/pkg/commissionrules"
	"github.com/salonlink/backend/pkg/customers"
	"github.com/salonlink/backend/pkg/database"
	"github.com/salonlink/backend/pkg/leads"
	"github.com/salonlink/backend/pkg/logger"
	"github.com/salonlink/backend/pkg/models"
	"github.com/salonlink/backend/pkg/products"
	"github.com/salonlink/backend/pkg/salons"
	"github.com/salonlink/backend/pkg/stylists"
	"github.com/salonlink/backend/pkg/testdata"
)

var seedProducts = []struct {
	title   string
	options []products.Option
}{
	{"Keratin Treatment Kit", []products.Option{{Name: "Size", Values: []string{"250ml", "500ml"}}}},
	{"Argan Oil Shampoo", []products.Option{{Name: "Size", Values: []string{"200ml", "400ml"}}}},
	{"Hair Color Pro", []products.Option{{Name: "Shade", Values: []string{"Natural Black", "Dark Brown", "Burgundy"}}}},
	{"Styling Wax", nil},
}

func main() {
	leadCount := flag.Int("leads", 200, "Number of leads to generate")
	updateChance := flag.Float64("update-chance", 0.7, "Probability a seeded lead gets a follow-up save")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for reproducible runs")
	flag.Parse()

	cfg := config.Load()

	db, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	appLog := logger.New("warn")
	auditSvc := audit.New(db.DB)
	customerSvc := customers.NewService(db.DB)
	leadSvc := leads.NewService(db.DB, nil, auditSvc, customerSvc, appLog, 0, cfg.DefaultPhoneRegion)
	callerSvc := callers.NewService(db.DB)
	salonSvc := salons.NewService(db.DB)
	stylistSvc := stylists.NewService(db.DB)
	productSvc := products.NewService(db.DB)
	ruleSvc := commissionrules.NewService(db.DB)

	// Admin account
	adminPassword, err := auth.GeneratePassword(12)
	if err != nil {
		log.Fatalf("❌ Failed to generate admin password: %v", err)
	}
	if err := insertAdmin(ctx, db, "admin@salonlink.in", adminPassword); err != nil {
		log.Fatalf("❌ Failed to create admin: %v", err)
	}
	fmt.Printf("👤 Admin: admin@salonlink.in / %s\n", adminPassword)

	// Lead caller accounts
	callerEmails := []string{"priya.caller@salonlink.in", "vikram.caller@salonlink.in"}
	for _, email := range callerEmails {
		created, err := callerSvc.Create(ctx, models.CreateUserRequest{
			Name:  "Seed Caller",
			Email: email,
			Phone: "+919000000001",
		})
		if err != nil {
			log.Printf("⚠️  Caller %s: %v", email, err)
			continue
		}
		fmt.Printf("📞 Caller: %s / %s\n", email, created.GeneratedPassword)
	}

	// Product catalog
	productIDs := make([]string, 0, len(seedProducts))
	for _, p := range seedProducts {
		product, err := productSvc.Create(ctx, p.title, p.options)
		if err != nil {
			log.Fatalf("❌ Failed to create product %q: %v", p.title, err)
		}
		productIDs = append(productIDs, product.ID)
	}
	fmt.Printf("🛍️  Products: %d\n", len(productIDs))

	// A couple of salons with stylists
	salonNames := []string{"Glow Studio Indiranagar", "Mirror Mirror Koramangala", "Urban Scissors HSR"}
	for i, name := range salonNames {
		salon, err := salonSvc.Create(ctx, salons.CreateSalonRequest{
			Name:    name,
			City:    "Bengaluru",
			State:   "Karnataka",
			Pincode: fmt.Sprintf("5600%02d", 30+i),
			Level:   "L2",
		})
		if err != nil {
			log.Fatalf("❌ Failed to create salon %q: %v", name, err)
		}
		for j := 0; j < 2; j++ {
			if _, err := stylistSvc.Create(ctx, stylists.CreateStylistRequest{
				Name:    fmt.Sprintf("Stylist %d", j+1),
				Phone:   fmt.Sprintf("+9198%08d", i*10+j),
				SalonID: salon.ID,
				Level:   "L2",
			}); err != nil {
				log.Fatalf("❌ Failed to create stylist: %v", err)
			}
		}
	}
	fmt.Printf("💈 Salons: %d\n", len(salonNames))

	// Baseline commission rules
	maxCommission := 500.0
	if _, err := ruleSvc.Create(ctx, commissionrules.CreateRuleRequest{
		Name:           "Stylist referral 10%",
		Type:           commissionrules.TypePercentage,
		Value:          10,
		MaxCommission:  &maxCommission,
		RoleApplicable: []string{"STYLIST"},
		Priority:       10,
	}); err != nil {
		log.Fatalf("❌ Failed to create commission rule: %v", err)
	}
	if _, err := ruleSvc.Create(ctx, commissionrules.CreateRuleRequest{
		Name:           "Salon referral flat",
		Type:           commissionrules.TypeFixed,
		Value:          100,
		RoleApplicable: []string{"SALON"},
		Priority:       5,
	}); err != nil {
		log.Fatalf("❌ Failed to create commission rule: %v", err)
	}

	// Leads with a realistic spread of follow-up activity
	gen := testdata.NewGenerator(testdata.GeneratorConfig{Seed: *seed})
	rng := rand.New(rand.NewSource(*seed))
	created := 0
	for i := 0; i < *leadCount; i++ {
		lead, err := leadSvc.Create(ctx, gen.Lead())
		if err != nil {
			log.Printf("⚠️  Lead %d: %v", i, err)
			continue
		}
		created++

		if rng.Float64() < *updateChance {
			if _, err := leadSvc.Update(ctx, lead.ID, gen.Update(), "seed@salonlink.in"); err != nil {
				log.Printf("⚠️  Lead update %s: %v", lead.ID, err)
			}
		}
	}
	fmt.Printf("🎯 Leads: %d\n", created)
	fmt.Println("✅ Seed complete")
}

func insertAdmin(ctx context.Context, db *database.Client, email, password string) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	query := db.DB.Rebind(`INSERT INTO users (id, name, email, phone, password_hash, role, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = db.DB.ExecContext(ctx, query,
		uuid.NewString(), "Super Admin", email, "+919999999999", hash, models.RoleSuperAdmin, true, now, now)
	return err
}
