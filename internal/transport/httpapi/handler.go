// Package httpapi публикует оформление и чтение заказов по HTTP/JSON.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

const maxBodyBytes = 1 << 20

// OrderService - операции, которые handler вызывает у слоя оформления заказов.
type OrderService interface {
	CreateOrder(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error)
	GetOrder(ctx context.Context, id string) (domain.Order, error)
	ListCustomerOrders(ctx context.Context, customerID string, limit int) ([]domain.Order, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
}

// Handler обслуживает HTTP-запросы к заказам и каталогу.
type Handler struct {
	service OrderService
	logger  *log.Entry
}

// NewHandler создаёт handler; nil logger заменяется логгером компонента.
func NewHandler(service OrderService, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "httpapi")
	}
	return &Handler{service: service, logger: logger}
}

// CreateOrder обрабатывает POST /orders.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errorResponse{Code: "invalid_json", Message: err.Error()})
		return
	}

	order, err := h.service.CreateOrder(r.Context(), req.toDomain())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Location", "/orders/"+order.ID)
	writeJSON(w, http.StatusCreated, mapOrder(order))
}

// GetOrder обрабатывает GET /orders/{id}.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(order))
}

// ListCustomerOrders обрабатывает GET /customers/{id}/orders?limit=N.
func (h *Handler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, errorResponse{Code: "invalid_limit", Message: "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	orders, err := h.service.ListCustomerOrders(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := ordersResponse{Orders: make([]orderResponse, 0, len(orders))}
	for _, order := range orders {
		resp.Orders = append(resp.Orders, mapOrder(order))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetProduct обрабатывает GET /products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(product))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, body := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithFields(log.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"path":       r.URL.Path,
		}).Error("request failed")
	}
	writeError(w, status, body)
}
