// Package app собирает сервис заказов из конфигурации и управляет его жизненным циклом.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/cache"
	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/health"
	"github.com/vladislavdragonenkov/shop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
	"github.com/vladislavdragonenkov/shop/internal/service/checkout"
	"github.com/vladislavdragonenkov/shop/internal/service/outbox"
	"github.com/vladislavdragonenkov/shop/internal/telemetry"
	"github.com/vladislavdragonenkov/shop/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/shop/internal/version"
)

// ServiceName используется в трейсах и логах.
const ServiceName = "shop-order-service"

// server - собранное приложение: HTTP-обработчики и фоновые компоненты.
type server struct {
	cfg    Config
	logger *log.Entry

	api     http.Handler
	ops     http.Handler
	storage *runtimeStorage
	worker  *outbox.Worker

	producer      *kafka.Producer
	redisClient   *redis.Client
	traceShutdown telemetry.Shutdown
}

// Run запускает API и служебный сервер и блокируется до отмены ctx или ошибки listener.
func Run(ctx context.Context, cfg Config, logger *log.Entry) error {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	srv, err := newServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer srv.close()

	apiLis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen api %s: %w", cfg.HTTPAddr, err)
	}
	opsLis, err := net.Listen("tcp", cfg.MetricsAddr)
	if err != nil {
		_ = apiLis.Close()
		return fmt.Errorf("listen metrics %s: %w", cfg.MetricsAddr, err)
	}

	apiSrv := &http.Server{Handler: srv.api, ReadHeaderTimeout: 5 * time.Second}
	opsSrv := &http.Server{Handler: srv.ops, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 2)
	serve := func(name string, s *http.Server, lis net.Listener) {
		logger.WithFields(log.Fields{"server": name, "addr": lis.Addr().String()}).Info("http server listening")
		if err := s.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%s server: %w", name, err)
		}
	}
	go serve("api", apiSrv, apiLis)
	go serve("ops", opsSrv, opsLis)

	workerCtx, stopWorker := context.WithCancel(context.WithoutCancel(ctx))
	var wg sync.WaitGroup
	if srv.worker != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			srv.worker.Run(workerCtx)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем сервис")
		runErr = ctx.Err()
	case err := <-errCh:
		runErr = err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	shutdownHTTP(shutdownCtx, apiSrv, logger.WithField("server", "api"))
	stopWorker()
	wg.Wait()
	shutdownHTTP(shutdownCtx, opsSrv, logger.WithField("server", "ops"))

	return runErr
}

func newServer(ctx context.Context, cfg Config, logger *log.Entry) (*server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv := &server{cfg: cfg, logger: logger}

	traceShutdown, err := telemetry.SetupTracer(ctx, ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		logger.WithError(err).Warn("tracing disabled")
		traceShutdown = func(context.Context) error { return nil }
	}
	srv.traceShutdown = traceShutdown

	storage, err := initStorage(ctx, cfg, logger.WithField("layer", "storage"))
	if err != nil {
		srv.close()
		return nil, err
	}
	srv.storage = storage

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	healthHandler := health.NewHandler(version.GetVersion())
	healthHandler.Register("storage", storage.checker, true)

	var customers domain.CustomerRepository = storage.customers
	if cfg.RedisAddr != "" {
		srv.redisClient = cache.NewRedisClient(cfg.RedisAddr)
		customerCache := cache.NewCustomerCache(storage.customers, srv.redisClient, cfg.CustomerCacheTTL,
			logger.WithField("component", "customer_cache"))
		customers = customerCache
		healthHandler.Register("redis", customerCache, false)
		logger.WithField("addr", cfg.RedisAddr).Info("customer cache enabled")
	}

	// Без брокера события некому публиковать: outbox не пишется, чтобы не копить backlog.
	var outboxRepo domain.OutboxRepository
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		producer, err := kafka.NewProducer(brokers, cfg.KafkaClientID, logger.WithField("component", "kafka"))
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without event publishing")
		} else {
			srv.producer = producer
			outboxRepo = storage.outbox
			srv.worker = newOutboxWorker(cfg, storage.outbox, producer, metrics.NewOutboxMetrics(registry), logger)
			logger.WithField("brokers", brokers).Info("kafka producer initialized")
		}
	} else {
		logger.Warn("kafka brokers are not configured, order.created events are disabled")
	}

	service := checkout.NewService(checkout.Deps{
		Customers:  customers,
		Products:   storage.products,
		Orders:     storage.orders,
		Outbox:     outboxRepo,
		Transactor: storage.transactor,
		Metrics:    metrics.NewCheckoutMetricsWithRegisterer(registry),
		Logger:     logger.WithField("component", "checkout"),
	})

	handler := httpapi.NewHandler(service, logger.WithField("layer", "http"))
	srv.api = httpapi.NewRouter(handler, metrics.NewHTTPMetrics(registry))
	srv.ops = newOpsMux(registry, healthHandler)

	return srv, nil
}

func newOutboxWorker(cfg Config, repo domain.OutboxRepository, producer *kafka.Producer, m *metrics.OutboxMetrics, logger *log.Entry) *outbox.Worker {
	options := []outbox.Option{
		outbox.WithLogger(logger.WithField("component", "outbox-worker")),
		outbox.WithMetrics(m),
		outbox.WithPollInterval(cfg.OutboxPollInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
		outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
	}
	if cfg.KafkaDLQTopic != "" {
		options = append(options, outbox.WithDLQPublisher(kafka.NewOutboxPublisher(producer, cfg.KafkaDLQTopic)))
	}
	return outbox.NewWorker(repo, kafka.NewOutboxPublisher(producer, cfg.KafkaTopic), options...)
}

// newOpsMux отдаёт /metrics и health-эндпоинты на служебном адресе.
func newOpsMux(registry *prometheus.Registry, healthHandler *health.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", health.LivenessHandler)
	return mux
}

// close освобождает ресурсы в обратном порядке создания.
func (s *server) close() {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
	defer cancel()

	if s.producer != nil {
		if err := s.producer.Close(); err != nil {
			s.logger.WithError(err).Warn("failed to close kafka producer")
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.WithError(err).Warn("failed to close redis client")
		}
	}
	if s.storage != nil {
		if err := s.storage.close(); err != nil {
			s.logger.WithError(err).Warn("failed to close storage")
		}
	}
	if s.traceShutdown != nil {
		if err := s.traceShutdown(ctx); err != nil {
			s.logger.WithError(err).Warn("failed to flush traces")
		}
	}
}

func (s *server) shutdownTimeout() time.Duration {
	if s.cfg.ShutdownTimeout > 0 {
		return s.cfg.ShutdownTimeout
	}
	return 5 * time.Second
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(ctx context.Context, srv *http.Server, logger *log.Entry) {
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
