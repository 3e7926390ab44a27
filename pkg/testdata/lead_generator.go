// Package testdata generates realistic sample data for local development
// and demos.
package testdata

import (
	"fmt"
	"math/rand"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/salonlink/backend/pkg/leadlifecycle"
	"github.com/salonlink/backend/pkg/models"
)

// indianFirstNames keeps generated leads looking like the real customer
// base instead of gofakeit's default western names.
var indianFirstNames = []string{
	"Priya", "Ananya", "Sneha", "Kavya", "Riya", "Pooja", "Neha", "Divya",
	"Rahul", "Amit", "Vikram", "Arjun", "Rohan", "Karan", "Sanjay", "Nikhil",
}

var indianLastNames = []string{
	"Sharma", "Patel", "Singh", "Kumar", "Gupta", "Mehta", "Iyer", "Nair",
	"Reddy", "Joshi", "Desai", "Kulkarni", "Chopra", "Malhotra",
}

var leadSources = []string{"website", "instagram", "facebook", "walk-in", "referral"}

var pageTypes = []string{"landing", "product", "booking", "home"}

// GeneratorConfig tunes the shape of generated leads.
type GeneratorConfig struct {
	Seed          int64
	AddressChance float64 // 0.0-1.0
	CampaignChance float64
}

// Generator produces fake customers and leads.
type Generator struct {
	rng *rand.Rand
	cfg GeneratorConfig
}

// NewGenerator creates a generator. A zero seed gives non-deterministic
// output.
func NewGenerator(cfg GeneratorConfig) *Generator {
	if cfg.AddressChance == 0 {
		cfg.AddressChance = 0.6
	}
	if cfg.CampaignChance == 0 {
		cfg.CampaignChance = 0.3
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = gofakeit.Int64()
	}
	gofakeit.Seed(seed)
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
		cfg: cfg,
	}
}

// Lead generates one create-lead payload with a valid Indian mobile number.
func (g *Generator) Lead() models.CreateLeadRequest {
	req := models.CreateLeadRequest{
		Name:     g.personName(),
		Phone:    g.indianMobile(),
		Source:   leadSources[g.rng.Intn(len(leadSources))],
		PageType: pageTypes[g.rng.Intn(len(pageTypes))],
	}

	if g.rng.Float64() < g.cfg.AddressChance {
		req.Address = gofakeit.Street()
		req.City = g.city()
		req.Pincode = fmt.Sprintf("%06d", 100000+g.rng.Intn(899999))
	}
	if g.rng.Float64() < g.cfg.CampaignChance {
		req.CampaignID = fmt.Sprintf("cmp-%04d", g.rng.Intn(10000))
	}

	return req
}

// Update generates a plausible partial save for an existing lead.
func (g *Generator) Update() models.UpdateLeadRequest {
	dispositions := leadlifecycle.Dispositions()
	call1 := string(dispositions[g.rng.Intn(len(dispositions))])

	req := models.UpdateLeadRequest{Call1: &call1}

	switch g.rng.Intn(4) {
	case 0:
		status := "contacted"
		req.Status = &status
	case 1:
		status := "dropped"
		req.Status = &status
	case 2:
		status := "converted:" + string(leadlifecycle.Channels()[g.rng.Intn(len(leadlifecycle.Channels()))])
		req.Status = &status
	}

	if g.rng.Float64() < 0.4 {
		remarks := gofakeit.Sentence(6)
		req.Remarks = &remarks
	}

	return req
}

func (g *Generator) personName() string {
	first := indianFirstNames[g.rng.Intn(len(indianFirstNames))]
	last := indianLastNames[g.rng.Intn(len(indianLastNames))]
	return first + " " + last
}

// indianMobile returns a valid-format Indian mobile number (starts 6-9).
func (g *Generator) indianMobile() string {
	first := 6 + g.rng.Intn(4)
	rest := g.rng.Intn(1_000_000_000)
	return fmt.Sprintf("+91%d%09d", first, rest)
}

func (g *Generator) city() string {
	cities := []string{"Mumbai", "Delhi", "Bangalore", "Pune", "Hyderabad", "Chennai", "Kolkata", "Ahmedabad"}
	return cities[g.rng.Intn(len(cities))]
}
