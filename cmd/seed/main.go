package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/coop-scheduler/internal/auth"
	"github.com/spec-kit/coop-scheduler/internal/config"
	"github.com/spec-kit/coop-scheduler/internal/domain"
	"github.com/spec-kit/coop-scheduler/internal/observability"
	"github.com/spec-kit/coop-scheduler/internal/persistence"
	"github.com/spec-kit/coop-scheduler/internal/repository"
)

func main() {
	var (
		email          = flag.String("email", "", "login email (required)")
		password       = flag.String("password", "", "initial password (required)")
		role           = flag.String("role", string(domain.RoleEmployee), "employee, store_manager or admin")
		storeID        = flag.String("store", "", "id of an existing store the user belongs to")
		createStore    = flag.String("create-store", "", "create a store with this name and assign the user to it")
		firstName      = flag.String("first-name", "", "first name")
		lastName       = flag.String("last-name", "", "last name")
		qualifications = flag.String("qualifications", "", "comma separated qualification tags")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("-email and -password are required")
	}
	if *storeID != "" && *createStore != "" {
		log.Fatal("-store and -create-store are mutually exclusive")
	}
	if !domain.Role(*role).Valid() {
		log.Fatalf("unknown role %q", *role)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, err := persistence.OpenUserStore(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("failed to open user store", zap.Error(err))
	}
	defer store.Close()

	if _, err := store.Users.GetByEmail(ctx, *email); err == nil {
		logger.Fatal("user already exists", zap.String("email", *email))
	} else if !errors.Is(err, repository.ErrNotFound) {
		logger.Fatal("failed to look up user", zap.Error(err))
	}

	hash, err := auth.HashPassword(*password, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to hash password", zap.Error(err))
	}

	assigned, err := resolveStore(ctx, store.Stores, *storeID, *createStore, logger)
	if err != nil {
		logger.Fatal("failed to create store", zap.Error(err))
	}

	user := &domain.User{
		Email:          *email,
		PasswordHash:   hash,
		Role:           domain.Role(*role),
		Qualifications: splitList(*qualifications),
		FirstName:      *firstName,
		LastName:       *lastName,
	}
	if assigned != "" {
		user.StoreID = &assigned
	}
	if err := store.Users.Create(ctx, user); err != nil {
		logger.Fatal("failed to create user", zap.Error(err))
	}
	logger.Info("user created", zap.String("id", user.ID), zap.String("role", string(user.Role)), zap.String("db_type", store.Name))
}

// resolveStore returns the store id to assign, creating the store first when name is set.
func resolveStore(ctx context.Context, stores repository.StoreRepository, id, name string, logger *zap.Logger) (string, error) {
	if name == "" {
		return id, nil
	}
	created, err := stores.Create(ctx, name)
	if err != nil {
		return "", err
	}
	logger.Info("store created", zap.String("id", created.ID), zap.String("name", created.Name))
	return created.ID, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
