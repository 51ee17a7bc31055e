package main

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/vibetickets/helpdesk/internal/auth"
	"github.com/vibetickets/helpdesk/internal/config"
	"github.com/vibetickets/helpdesk/internal/domain"
	"github.com/vibetickets/helpdesk/internal/observability"
	"github.com/vibetickets/helpdesk/internal/persistence"
	"github.com/vibetickets/helpdesk/internal/repository"
)

// Seeds the staff accounts and the starter reply templates. Safe to
// run repeatedly; existing rows are left alone.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	pool := pg.PoolHandle()
	users := repository.NewUserRepository(pool)
	canned := repository.NewCannedResponseRepository(pool)

	admin := seedUser(ctx, logger, users, cfg.Auth.BcryptCost, "Admin", "admin@vibetickets.com", "admin123", domain.RoleAdmin)
	seedUser(ctx, logger, users, cfg.Auth.BcryptCost, "Support Agent", "agent@vibetickets.com", "agent123", domain.RoleAgent)
	seedUser(ctx, logger, users, cfg.Auth.BcryptCost, "Demo Customer", "customer@vibetickets.com", "customer123", domain.RoleCustomer)

	seedCannedResponses(ctx, logger, canned, admin.ID)

	logger.Info("seed complete")
}

func seedUser(ctx context.Context, logger *zap.Logger, users repository.UserRepository, bcryptCost int, name, email, password string, role domain.UserRole) *domain.User {
	existing, err := users.GetByEmail(ctx, email)
	if err == nil {
		logger.Info("user exists", zap.String("email", email))
		return existing
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.Fatal("failed to look up user", zap.String("email", email), zap.Error(err))
	}

	hash, err := auth.HashPassword(password, bcryptCost)
	if err != nil {
		logger.Fatal("failed to hash password", zap.Error(err))
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := users.Create(ctx, user); err != nil {
		logger.Fatal("failed to create user", zap.String("email", email), zap.Error(err))
	}
	logger.Info("user created", zap.String("email", email), zap.String("role", string(role)))
	return user
}

func seedCannedResponses(ctx context.Context, logger *zap.Logger, canned repository.CannedResponseRepository, createdByID string) {
	existing, err := canned.List(ctx)
	if err != nil {
		logger.Fatal("failed to list canned responses", zap.Error(err))
	}
	present := make(map[string]bool, len(existing))
	for _, response := range existing {
		present[response.Title] = true
	}

	templates := []domain.CannedResponse{
		{
			Title:    "Greeting",
			Content:  "Hi! Thanks for reaching out. I'm looking into your issue and will get back to you shortly.",
			Shortcut: strPtr("//greet"),
			Category: strPtr("general"),
		},
		{
			Title:    "Request More Info",
			Content:  "Could you share a bit more detail about the problem? Screenshots and the steps you took help a lot.",
			Shortcut: strPtr("//moreinfo"),
			Category: strPtr("general"),
		},
		{
			Title:    "Issue Resolved",
			Content:  "Glad to hear it's working now! I'm marking this ticket as resolved. Feel free to reopen if anything comes up.",
			Shortcut: strPtr("//resolved"),
			Category: strPtr("closing"),
		},
		{
			Title:    "Escalating",
			Content:  "I'm escalating this to our engineering team. We'll update you here as soon as we know more.",
			Shortcut: strPtr("//escalate"),
			Category: strPtr("escalation"),
		},
	}

	for i := range templates {
		if present[templates[i].Title] {
			continue
		}
		templates[i].CreatedByID = createdByID
		if err := canned.Create(ctx, &templates[i]); err != nil {
			logger.Fatal("failed to create canned response", zap.String("title", templates[i].Title), zap.Error(err))
		}
		logger.Info("canned response created", zap.String("title", templates[i].Title))
	}
}

func strPtr(s string) *string {
	return &s
}
