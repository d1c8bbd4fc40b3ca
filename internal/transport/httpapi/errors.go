package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type stockDetail struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int64  `json:"requested"`
	Available   int64  `json:"available"`
}

type storeDetail struct {
	Stage   string `json:"stage"`
	OrderID string `json:"order_id,omitempty"`
}

// statusFor переводит доменную ошибку в HTTP-статус и машинный код.
func statusFor(err error) (int, errorResponse) {
	var (
		stock *domain.InsufficientStockError
		store *domain.StoreFailureError
	)

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, errorResponse{Code: "invalid_request", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidCustomer):
		return http.StatusUnprocessableEntity, errorResponse{Code: "invalid_customer", Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidProductSet):
		return http.StatusUnprocessableEntity, errorResponse{Code: "invalid_product_set", Message: err.Error()}
	case errors.As(err, &stock):
		return http.StatusConflict, errorResponse{
			Code:    "insufficient_stock",
			Message: err.Error(),
			Details: stockDetail{
				ProductID:   stock.ProductID,
				ProductName: stock.ProductName,
				Requested:   stock.Requested,
				Available:   stock.Available,
			},
		}
	case errors.As(err, &store):
		return http.StatusInternalServerError, errorResponse{
			Code:    "store_failure",
			Message: "order could not be stored",
			Details: storeDetail{Stage: string(store.Stage), OrderID: store.OrderID},
		}
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound, errorResponse{Code: "order_not_found", Message: err.Error()}
	case errors.Is(err, domain.ErrCustomerNotFound):
		return http.StatusNotFound, errorResponse{Code: "customer_not_found", Message: err.Error()}
	case errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound, errorResponse{Code: "product_not_found", Message: err.Error()}
	default:
		return http.StatusInternalServerError, errorResponse{Code: "internal", Message: "internal error"}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, body errorResponse) {
	writeJSON(w, status, body)
}
