// Package memory содержит in-memory хранилище для локального запуска и тестов.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// Store - общее состояние всех in-memory репозиториев.
//
// Записи внутри WithinTx сериализуются одним мьютексом и откатываются при ошибке.
// Чтения вне транзакции могут видеть ещё не зафиксированные изменения.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	customers map[string]domain.Customer
	products  map[string]domain.Product
	orders    map[string]domain.Order
	outbox    map[string]*outboxRecord
	outboxSeq int64

	now func() time.Time
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		customers: make(map[string]domain.Customer),
		products:  make(map[string]domain.Product),
		orders:    make(map[string]domain.Order),
		outbox:    make(map[string]*outboxRecord),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type txKey struct{}

// tx накапливает обратные операции для отката.
type tx struct {
	undo []func()
}

// WithinTx выполняет fn в транзакции. Вложенный вызов присоединяется к внешней транзакции.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*tx); ok {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	current := &tx{}
	if err := fn(context.WithValue(ctx, txKey{}, current)); err != nil {
		s.mu.Lock()
		for i := len(current.undo) - 1; i >= 0; i-- {
			current.undo[i]()
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// write применяет mutate под эксклюзивной блокировкой. mutate возвращает функцию отката
// или nil, если изменений не было.
func (s *Store) write(ctx context.Context, mutate func() (func(), error)) error {
	current, inTx := ctx.Value(txKey{}).(*tx)
	if !inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	undo, err := mutate()
	if err != nil {
		return err
	}
	if inTx && undo != nil {
		current.undo = append(current.undo, undo)
	}
	return nil
}
