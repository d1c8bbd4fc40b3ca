package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestInsufficientStockError(t *testing.T) {
	err := error(&InsufficientStockError{ProductID: "p1", ProductName: "Coffee", Requested: 10, Available: 5})

	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatal("expected errors.Is(err, ErrInsufficientStock)")
	}
	if !strings.Contains(err.Error(), "Coffee") {
		t.Fatalf("error must name the product, got %q", err.Error())
	}

	var typed *InsufficientStockError
	if !errors.As(fmt.Errorf("wrapped: %w", err), &typed) {
		t.Fatal("expected errors.As to find InsufficientStockError")
	}
	if typed.ProductID != "p1" || typed.Available != 5 {
		t.Fatalf("unexpected payload: %+v", typed)
	}
}

func TestStoreFailureError(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name         string
		err          *StoreFailureError
		wantRecorded bool
		wantInText   string
	}{
		{
			name:       "order create failed",
			err:        &StoreFailureError{Stage: StageOrderCreate, Err: cause},
			wantInText: "order_create",
		},
		{
			name:         "stock update failed after order recorded",
			err:          &StoreFailureError{Stage: StageStockUpdate, OrderID: "order-1", Err: cause},
			wantRecorded: true,
			wantInText:   "order_id=order-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, ErrStoreFailure) {
				t.Error("expected ErrStoreFailure in chain")
			}
			if !errors.Is(tt.err, cause) {
				t.Error("expected cause in chain")
			}
			if !IsStoreFailure(tt.err) {
				t.Error("IsStoreFailure() = false")
			}
			if got := IsOrderRecorded(tt.err); got != tt.wantRecorded {
				t.Errorf("IsOrderRecorded() = %v, want %v", got, tt.wantRecorded)
			}
			if !strings.Contains(tt.err.Error(), tt.wantInText) {
				t.Errorf("Error() = %q, want substring %q", tt.err.Error(), tt.wantInText)
			}
		})
	}
}

func TestIsRejection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "invalid customer", err: ErrInvalidCustomer, want: true},
		{name: "invalid product set", err: fmt.Errorf("lookup: %w", ErrInvalidProductSet), want: true},
		{name: "insufficient stock", err: &InsufficientStockError{ProductName: "x"}, want: true},
		{name: "invalid request", err: errors.Join(ErrInvalidRequest, ErrItemQtyInvalid), want: true},
		{name: "store failure", err: &StoreFailureError{Stage: StageOrderCreate, Err: errors.New("x")}, want: false},
		{name: "nil error", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRejection(tt.err); got != tt.want {
				t.Errorf("IsRejection() = %v, want %v", got, tt.want)
			}
		})
	}
}
