package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest - запрос на создание заказа не прошёл базовую проверку полей.
	ErrInvalidRequest = errors.New("invalid order request")
	// Ошибка отсутствующего идентификатора клиента.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка пустого идентификатора товара в позиции.
	ErrProductRequired = errors.New("product_id is required")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item qty must be greater than zero")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// ErrItemQtyTooLarge - количество товара в заказе превышает MaxOrderQuantity.
	ErrItemQtyTooLarge = errors.New("item qty exceeds the per-order limit")
	// ErrAmountOverflow - сумма позиции или заказа не помещается в int64.
	ErrAmountOverflow = errors.New("order amount overflows")
	// Ошибка отрицательной суммы заказа.
	ErrAmountNegative = errors.New("amount_minor must be non-negative")
	// Ошибка несоответствия суммы заказа и сумм позиций.
	ErrAmountMismatch = errors.New("order amount does not match items sum")
	// Ошибка пустого названия товара.
	ErrProductNameRequired = errors.New("product name is required")
	// ErrNegativeStock - остаток товара не может уйти в минус.
	ErrNegativeStock = errors.New("stock quantity must be non-negative")

	// ErrInvalidCustomer - клиент из запроса не найден.
	ErrInvalidCustomer = errors.New("invalid customer")
	// ErrInvalidProductSet - хотя бы один из запрошенных товаров отсутствует в каталоге.
	ErrInvalidProductSet = errors.New("invalid product set")
	// ErrInsufficientStock - на складе меньше товара, чем запрошено.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrStoreFailure - запись в хранилище (заказ или остатки) завершилась ошибкой.
	ErrStoreFailure = errors.New("store failure")

	// ErrCustomerNotFound возвращается репозиторием клиентов, если записи нет.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrProductNotFound возвращается репозиторием товаров, если записи нет.
	ErrProductNotFound = errors.New("product not found")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyExists - заказ с таким ID уже сохранён.
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrOutboxPublish - ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// InsufficientStockError описывает нехватку остатка по конкретному товару.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Requested   int64
	Available   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.ProductName, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// StoreStage определяет, на какой записи упала персистентность заказа.
type StoreStage string

const (
	// StageOrderCreate - создание заказа с позициями.
	StageOrderCreate StoreStage = "order_create"
	// StageStockUpdate - применение новых остатков.
	StageStockUpdate StoreStage = "stock_update"
	// StageEventEnqueue - запись события order.created в outbox.
	StageEventEnqueue StoreStage = "event_enqueue"
	// StageCommit - фиксация общей транзакции.
	StageCommit StoreStage = "tx_commit"
)

// StoreFailureError оборачивает ошибку хранилища и фиксирует стадию.
// OrderID заполнен только если заказ уже зафиксирован, а следующая запись не прошла:
// такое состояние требует сверки остатков.
type StoreFailureError struct {
	Stage   StoreStage
	OrderID string
	Err     error
}

func (e *StoreFailureError) Error() string {
	if e.OrderID != "" {
		return fmt.Sprintf("store failure at %s (order_id=%s): %v", e.Stage, e.OrderID, e.Err)
	}
	return fmt.Sprintf("store failure at %s: %v", e.Stage, e.Err)
}

func (e *StoreFailureError) Unwrap() []error {
	return []error{ErrStoreFailure, e.Err}
}

// IsStoreFailure проверяет, что ошибка пришла из слоя записи.
func IsStoreFailure(err error) bool {
	return errors.Is(err, ErrStoreFailure)
}

// IsOrderRecorded сообщает, что заказ записан, но последующий шаг (остатки/событие) не выполнен.
func IsOrderRecorded(err error) bool {
	var sf *StoreFailureError
	if errors.As(err, &sf) {
		return sf.OrderID != ""
	}
	return false
}

// IsRejection проверяет, что запрос отклонён бизнес-правилами, а не инфраструктурой.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidCustomer) ||
		errors.Is(err, ErrInvalidProductSet) ||
		errors.Is(err, ErrInsufficientStock)
}
