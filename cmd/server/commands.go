package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jobboard-backend/internal/applications"
	"jobboard-backend/internal/auth"
	"jobboard-backend/internal/cache"
	"jobboard-backend/internal/company"
	"jobboard-backend/internal/database"
	"jobboard-backend/internal/jobs"
	"jobboard-backend/internal/metrics"
	"jobboard-backend/internal/roles"
	"jobboard-backend/internal/seed"

	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

type ServeCmd struct{}

type MigrateCmd struct{}

type SeedCmd struct {
	File string `arg:"" type:"existingfile" help:"Path to the YAML fixture."`
}

// bootstrap opens the database, applies the schema and seeds roles and the
// configured super admin. A missing role set aborts startup.
func bootstrap(ctx context.Context, rc *runContext) (*gorm.DB, error) {
	db, err := database.Open(rc.Config, rc.Logger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := roles.EnsureSeeded(ctx, db); err != nil {
		return nil, err
	}

	users := auth.NewService(db, auth.BcryptHasher{}, nil, rc.Logger)
	if err := users.SeedSuperAdmin(ctx, rc.Config.AdminEmail, rc.Config.AdminPassword, rc.Config.AdminFullName); err != nil {
		return nil, err
	}
	return db, nil
}

func (cmd *MigrateCmd) Run(rc *runContext) error {
	db, err := bootstrap(context.Background(), rc)
	if err != nil {
		return err
	}
	rc.Logger.Info().Str("driver", rc.Config.DatabaseDriver).Msg("schema up to date")
	return database.Close(db)
}

func (cmd *SeedCmd) Run(rc *runContext) error {
	ctx := context.Background()
	db, err := bootstrap(ctx, rc)
	if err != nil {
		return err
	}
	defer database.Close(db)

	fx, err := seed.ParseFile(cmd.File)
	if err != nil {
		return err
	}

	log := rc.Logger
	s := &seed.Seeder{
		Users:        auth.NewService(db, auth.BcryptHasher{}, nil, log),
		Companies:    company.NewService(db, log),
		Jobs:         jobs.NewService(db, nil, 0, nil, log),
		Applications: applications.NewService(db, nil, log),
		Log:          log,
	}
	_, err = s.Apply(ctx, fx)
	return err
}

func (cmd *ServeCmd) Run(rc *runContext) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := bootstrap(ctx, rc)
	if err != nil {
		return err
	}
	defer database.Close(db)

	redisCache := cache.NewRedis(rc.Config.RedisAddr, rc.Config.RedisPassword, rc.Logger)
	defer redisCache.Close()

	app := newApp(newServices(db, rc.Config, redisCache, metrics.New(), rc.Logger))

	errCh := make(chan error, 1)
	go func() {
		rc.Logger.Info().Str("port", rc.Config.HTTPPort).Msg("server listening")
		errCh <- app.Listen(":" + rc.Config.HTTPPort)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		rc.Logger.Info().Msg("shutting down")
		return app.ShutdownWithTimeout(shutdownTimeout)
	}
}
