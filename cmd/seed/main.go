// Seeds a local database with demo rules, users, content and a code batch so
// the service is explorable without the CMS running.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"heritage-access-platform/internal/config"
	"heritage-access-platform/internal/domain/model"
	"heritage-access-platform/internal/domain/ports/repository"
	pg "heritage-access-platform/internal/infra/db/postgres"
	"heritage-access-platform/internal/infra/logging"
	"heritage-access-platform/internal/usecase"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	ruleRepo := pg.NewContentRuleRepo(pool)
	userRepo := pg.NewUserRepo(pool)
	codeRepo := pg.NewAccessCodeRepo(pool)

	// If rules already exist, do nothing.
	rules, err := ruleRepo.ListAll(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list rules: %v", err)
	}
	if len(rules) > 0 {
		fmt.Printf("%d rules already present. No changes.\n", len(rules))
		return
	}

	seedRules(ctx, ruleRepo)
	seedUsers(ctx, userRepo)
	seedContent(ctx, pool)
	seedCodes(ctx, codeRepo, logger)

	fmt.Println("Seed complete.")
}

func seedRules(ctx context.Context, rules repository.ContentRuleRepository) {
	price := func(v int64) *int64 { return &v }

	defaults := []*model.ContentAccessRule{
		// Type-level defaults: stories and museums are open, testimonies and
		// VR experiences are premium.
		{ContentType: model.ContentTypeStory, Tier: model.TierFree, Sensitivity: model.SensitivityStandard},
		{ContentType: model.ContentTypeMuseum, Tier: model.TierFree, Sensitivity: model.SensitivityStandard},
		{ContentType: model.ContentTypeRoute, Tier: model.TierFree, Sensitivity: model.SensitivityStandard},
		{ContentType: model.ContentTypeTestimony, Tier: model.TierPremium, Sensitivity: model.SensitivitySensitive, PriceCents: price(499)},
		{ContentType: model.ContentTypeExperience, Tier: model.TierPremium, Sensitivity: model.SensitivityStandard, PriceCents: price(999)},

		// Item overrides.
		{
			ContentType: model.ContentTypeStory, ContentID: "kwibuka-memorial-walk",
			Tier: model.TierPremium, Sensitivity: model.SensitivityHighlySensitive,
			PriceCents: price(299), TeaserDurationSeconds: 30,
		},
		{
			ContentType: model.ContentTypeMuseum, ContentID: "kigali-genocide-memorial",
			Tier: model.TierPremium, Sensitivity: model.SensitivityHighlySensitive,
			PriceCents: price(599), TeaserDurationSeconds: 20,
		},
		{
			ContentType: model.ContentTypeRoute, ContentID: "nyungwe-canopy-route",
			Tier: model.TierSponsored, Sensitivity: model.SensitivityStandard,
		},
	}
	for _, r := range defaults {
		if err := rules.Save(ctx, repository.NoTX, r); err != nil {
			log.Fatalf("seed rule %s/%s: %v", r.ContentType, r.ContentID, err)
		}
	}
	fmt.Printf("Seeded %d access rules.\n", len(defaults))
}

func seedUsers(ctx context.Context, users repository.UserRepository) {
	demo := []struct{ id, email, name string }{
		{"demo-visitor", "visitor@example.rw", "Demo Visitor"},
		{"demo-subscriber", "subscriber@example.rw", "Demo Subscriber"},
	}
	for _, d := range demo {
		u, err := model.NewUser(d.id, d.email, d.name)
		if err != nil {
			log.Fatalf("build user %s: %v", d.id, err)
		}
		if err := users.Save(ctx, repository.NoTX, u); err != nil {
			log.Fatalf("seed user %s: %v", d.id, err)
		}
	}
	fmt.Printf("Seeded %d users.\n", len(demo))
}

// seedContent projects a few documents directly; in production the CMS sync
// job owns this table.
func seedContent(ctx context.Context, pool *pgxpool.Pool) {
	const q = `
		INSERT INTO content_documents
			(content_type, id, title, slug, excerpt, hero_image_url, category, location, body, audio_narration_url, video_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (content_type, id) DO NOTHING`

	docs := []model.ContentDocument{
		{
			ID: "kwibuka-memorial-walk", Type: model.ContentTypeStory,
			Title: "The Kwibuka Memorial Walk", Slug: "kwibuka-memorial-walk",
			Excerpt:  "A guided walk through the places of remembrance in Kigali.",
			Category: "remembrance", Location: "Kigali",
			Body:              "Kwibuka means remembrance. Each April the country pauses to honor the memory of those lost in 1994. This walk follows the path survivors take every year, from the city center to the memorial gardens at Gisozi. Along the way our guides share testimonies gathered over two decades of commemoration work.",
			AudioNarrationURL: "https://cdn.example.rw/audio/kwibuka-walk.mp3",
		},
		{
			ID: "nyungwe-canopy-route", Type: model.ContentTypeRoute,
			Title: "Nyungwe Canopy Route", Slug: "nyungwe-canopy-route",
			Excerpt:  "Sixty meters above the rainforest floor.",
			Category: "nature", Location: "Nyungwe National Park",
			Body: "The canopy walkway stretches 160 meters between ancient mahogany trees.",
		},
	}
	for _, d := range docs {
		_, err := pool.Exec(ctx, q,
			string(d.Type), d.ID, d.Title, d.Slug, d.Excerpt, d.HeroImageURL,
			d.Category, d.Location, d.Body, d.AudioNarrationURL, d.VideoURL)
		if err != nil {
			log.Fatalf("seed content %s: %v", d.ID, err)
		}
	}
	fmt.Printf("Seeded %d content documents.\n", len(docs))
}

func seedCodes(ctx context.Context, codes repository.AccessCodeRepository, logger *zerolog.Logger) {
	adminUC := usecase.NewCodeAdminUseCase(codes, logger)
	agency := "demo-agency"
	expires := time.Now().AddDate(0, 6, 0)
	batch, err := adminUC.GenerateBatch(ctx, usecase.BatchSpec{
		Count:        5,
		Prefix:       "KGL",
		Type:         model.CodeTypeTourGroup,
		Grants:       model.GrantFull,
		MaxUses:      20,
		DurationDays: 30,
		AgencyID:     &agency,
		ExpiresAt:    &expires,
	})
	if err != nil {
		log.Fatalf("seed codes: %v", err)
	}
	fmt.Printf("Seeded %d tour codes:\n", len(batch))
	for _, c := range batch {
		fmt.Printf("  %s\n", c.Code)
	}
}
