// Package checkout оформляет заказы: проверка клиента и остатков, расчёт позиций,
// запись заказа и списание остатков.
package checkout

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vladislavdragonenkov/shop/internal/domain"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
)

var tracer = otel.Tracer("github.com/vladislavdragonenkov/shop/internal/service/checkout")

// Deps перечисляет зависимости сервиса. Outbox, Transactor и Metrics опциональны.
type Deps struct {
	Customers  domain.CustomerRepository
	Products   domain.ProductRepository
	Orders     domain.OrderRepository
	Outbox     domain.OutboxRepository
	Transactor domain.Transactor
	Metrics    *metrics.CheckoutMetrics
	Logger     *log.Entry
}

// Service выполняет оформление заказа и чтение заказов.
type Service struct {
	customers domain.CustomerRepository
	products  domain.ProductRepository
	orders    domain.OrderRepository
	outbox    domain.OutboxRepository
	tx        domain.Transactor
	metrics   *metrics.CheckoutMetrics
	logger    *log.Entry
}

// NewService создаёт сервис оформления заказов.
func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = log.WithField("component", "checkout")
	}
	return &Service{
		customers: deps.Customers,
		products:  deps.Products,
		orders:    deps.Orders,
		outbox:    deps.Outbox,
		tx:        deps.Transactor,
		metrics:   deps.Metrics,
		logger:    logger,
	}
}

// CreateOrder проверяет запрос, считает позиции и сохраняет заказ со списанием остатков.
//
// Отказы бизнес-правил (ErrInvalidRequest, ErrInvalidCustomer, ErrInvalidProductSet,
// *InsufficientStockError) ничего не меняют в хранилищах. Ошибки записи возвращаются
// как *StoreFailureError с указанием стадии.
func (s *Service) CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "checkout.CreateOrder", trace.WithAttributes(
		attribute.String("customer_id", req.CustomerID),
		attribute.Int("lines", len(req.Lines)),
	))
	defer span.End()

	order, err := s.createOrder(ctx, req)
	s.observe(req, order, err, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return order, err
	}
	span.SetAttributes(attribute.String("order_id", order.ID))
	return order, nil
}

func (s *Service) createOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	if err := req.Validate(); err != nil {
		return domain.Order{}, err
	}
	if s.tx == nil {
		return s.run(ctx, req)
	}

	var (
		order  domain.Order
		runErr error
	)
	err := s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		order, runErr = s.run(txCtx, req)
		return runErr
	})
	if runErr != nil {
		return domain.Order{}, detachOrder(runErr)
	}
	if err != nil {
		return domain.Order{}, &domain.StoreFailureError{Stage: domain.StageCommit, Err: err}
	}
	return order, nil
}

// run выполняет три стадии строго последовательно.
func (s *Service) run(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	customer, catalog, err := s.validate(ctx, req)
	if err != nil {
		return domain.Order{}, err
	}

	items, adjustments, err := compute(req.Lines, catalog)
	if err != nil {
		return domain.Order{}, err
	}

	return s.persist(ctx, customer, items, adjustments)
}

// detachOrder убирает OrderID из ошибки записи: после отката транзакции заказа нет.
func detachOrder(err error) error {
	var sf *domain.StoreFailureError
	if errors.As(err, &sf) && sf.OrderID != "" {
		return &domain.StoreFailureError{Stage: sf.Stage, Err: sf.Err}
	}
	return err
}

func (s *Service) observe(req domain.CreateOrderRequest, order domain.Order, err error, elapsed time.Duration) {
	entry := s.logger.WithFields(log.Fields{
		"customer_id": req.CustomerID,
		"lines":       len(req.Lines),
		"duration_ms": elapsed.Milliseconds(),
	})

	if err == nil {
		s.metrics.RecordOrderCreated(len(order.Items), order.AmountMinor)
		s.metrics.RecordDuration(metrics.OutcomeCreated, elapsed)
		entry.WithFields(log.Fields{
			"order_id":     order.ID,
			"amount_minor": order.AmountMinor,
		}).Info("order created")
		return
	}

	if domain.IsRejection(err) {
		reason := rejectionReason(err)
		s.metrics.RecordRejection(reason)
		s.metrics.RecordDuration(metrics.OutcomeRejected, elapsed)
		entry.WithError(err).WithField("reason", reason).Info("order rejected")
		return
	}

	s.metrics.RecordDuration(metrics.OutcomeFailed, elapsed)

	var sf *domain.StoreFailureError
	if !errors.As(err, &sf) {
		s.metrics.RecordStoreFailure("lookup", false)
		entry.WithError(err).Error("order lookup failed")
		return
	}

	recorded := domain.IsOrderRecorded(err)
	s.metrics.RecordStoreFailure(string(sf.Stage), recorded)
	if recorded {
		entry.WithError(err).WithFields(log.Fields{
			"order_id":  sf.OrderID,
			"stage":     sf.Stage,
			"reconcile": true,
		}).Error("order recorded but follow-up write failed")
		return
	}
	entry.WithError(err).WithField("stage", sf.Stage).Error("order not recorded")
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, domain.ErrInvalidCustomer):
		return "invalid_customer"
	case errors.Is(err, domain.ErrInvalidProductSet):
		return "invalid_product_set"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	default:
		return "unknown"
	}
}
