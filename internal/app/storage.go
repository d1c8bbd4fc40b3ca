package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/health"
	"github.com/vladislavdragonenkov/shop/internal/storage/memory"
	"github.com/vladislavdragonenkov/shop/internal/storage/postgres"
)

// runtimeStorage - репозитории выбранного драйвера и общий Transactor.
type runtimeStorage struct {
	customers  domain.CustomerRepository
	products   domain.ProductRepository
	orders     domain.OrderRepository
	outbox     domain.OutboxRepository
	transactor domain.Transactor
	checker    health.Checker
	close      func() error
}

func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeStorage, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory:
		return initMemoryStorage(cfg, logger)
	case StorageDriverPostgres:
		return initPostgresStorage(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func initMemoryStorage(cfg Config, logger *log.Entry) (*runtimeStorage, error) {
	store := memory.NewStore()
	if cfg.SeedFile != "" {
		if err := store.LoadSeedFile(cfg.SeedFile); err != nil {
			return nil, err
		}
		logger.WithField("seed_file", cfg.SeedFile).Info("memory store seeded")
	}

	return &runtimeStorage{
		customers:  memory.NewCustomerRepository(store),
		products:   memory.NewProductRepository(store),
		orders:     memory.NewOrderRepository(store),
		outbox:     memory.NewOutboxRepository(store),
		transactor: store,
		checker:    health.CheckerFunc(func(ctx context.Context) error { return ctx.Err() }),
		close:      func() error { return nil },
	}, nil
}

func initPostgresStorage(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeStorage, error) {
	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("%s is required for postgres storage", envPostgresDSN)
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	if cfg.PostgresAutoMigrate {
		if err := store.MigrateUp(ctx, 0); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		state, err := store.MigrationStatus(ctx)
		if err == nil {
			logger.WithField("version", state.Version).Info("postgres migrations applied")
		}
	}

	if cfg.SeedFile != "" {
		if err := seedPostgres(ctx, store, cfg.SeedFile); err != nil {
			_ = store.Close()
			return nil, err
		}
		logger.WithField("seed_file", cfg.SeedFile).Info("postgres catalog seeded")
	}

	return &runtimeStorage{
		customers:  postgres.NewCustomerRepository(store),
		products:   postgres.NewProductRepository(store),
		orders:     postgres.NewOrderRepository(store),
		outbox:     postgres.NewOutboxRepository(store),
		transactor: store,
		checker:    health.CheckerFunc(store.Ping),
		close:      store.Close,
	}, nil
}

func seedPostgres(ctx context.Context, store *postgres.Store, path string) error {
	data, err := memory.ReadSeedFile(path)
	if err != nil {
		return err
	}

	return store.WithinTx(ctx, func(ctx context.Context) error {
		for _, c := range data.Customers {
			if err := store.UpsertCustomer(ctx, domain.Customer{ID: c.ID, Name: c.Name, Email: c.Email}); err != nil {
				return fmt.Errorf("seed customer %q: %w", c.ID, err)
			}
		}
		for _, p := range data.Products {
			product := domain.Product{ID: p.ID, Name: p.Name, PriceMinor: p.PriceMinor, Quantity: p.Quantity}
			if err := store.UpsertProduct(ctx, product); err != nil {
				return fmt.Errorf("seed product %q: %w", p.ID, err)
			}
		}
		return nil
	})
}
