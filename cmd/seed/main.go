package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"digital-menu-platform/internal/config"
	"digital-menu-platform/internal/domain"
	"digital-menu-platform/internal/domain/model"
	"digital-menu-platform/internal/domain/ports/repository"
	pg "digital-menu-platform/internal/infra/db/postgres"
	"digital-menu-platform/internal/infra/logging"
	"digital-menu-platform/internal/usecase"
)

// Seeds the catalog categories, a demo readymade shop and a pair of coupons
// into an empty database. Categories upsert quietly; the demo shop is skipped
// if its slug is already taken.
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

	userRepo := pg.NewUserRepo(pool)
	menuRepo := pg.NewMenuRepo(pool)
	itemRepo := pg.NewMenuItemRepo(pool)
	categoryRepo := pg.NewCategoryRepo(pool)
	couponRepo := pg.NewCouponRepo(pool)
	tm := pg.NewTxManager(pool)

	for _, name := range []string{"Starters", "Mains", "Desserts", "Drinks"} {
		c, err := model.NewCategory(name)
		if err != nil {
			log.Fatalf("category %q: %v", name, err)
		}
		if err := categoryRepo.Save(ctx, repository.NoTX, c); err != nil {
			log.Fatalf("save category %q: %v", name, err)
		}
	}
	fmt.Println("catalog categories seeded")

	devUC := usecase.NewDeveloperUseCase(userRepo, menuRepo, itemRepo, tm, logger)
	offer := int64(350)
	shop, err := devUC.CreateReadymadeShop(ctx, usecase.ReadymadeInput{
		Slug:        "demo-diner",
		Name:        "Demo Diner",
		Description: "A fully stocked storefront to try the platform with.",
		Theme:       "classic",
		Items: []usecase.ItemInput{
			{Name: "House Burger", Price: 650, Category: "Mains"},
			{Name: "Caesar Salad", Price: 450, OfferPrice: &offer, Category: "Starters"},
			{Name: "Cheesecake", Price: 400, Category: "Desserts"},
			{Name: "Lemonade", Price: 200, Category: "Drinks"},
		},
	})
	switch {
	case err == nil:
		fmt.Printf("demo shop seeded: slug=%s claim_code=%s\n", shop.Menu.Slug, shop.ClaimCode)
	case errors.Is(err, domain.ErrAlreadyExists):
		fmt.Println("demo shop already present. No changes.")
	default:
		log.Fatalf("seed demo shop: %v", err)
	}

	couponUC := usecase.NewCouponUseCase(couponRepo, userRepo, tm, logger)
	for _, def := range []struct {
		plan   model.SubscriptionPlan
		months int
	}{
		{model.PlanBasic, 1},
		{model.PlanPro, 6},
	} {
		c, err := couponUC.Create(ctx, def.plan, def.months)
		if err != nil {
			log.Fatalf("seed coupon: %v", err)
		}
		fmt.Printf("coupon seeded: %s (%s, %d months)\n", c.Code, c.Plan, c.DurationMonths)
	}
}
