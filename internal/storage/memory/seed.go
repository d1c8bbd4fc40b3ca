package memory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/vladislavdragonenkov/shop/internal/domain"
)

// SeedData - содержимое файла начальных данных.
type SeedData struct {
	Customers []SeedCustomer `json:"customers"`
	Products  []SeedProduct  `json:"products"`
}

// SeedCustomer описывает клиента в файле начальных данных.
type SeedCustomer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SeedProduct описывает товар в файле начальных данных.
type SeedProduct struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceMinor int64  `json:"price_minor"`
	Quantity   int64  `json:"quantity"`
}

// ReadSeedFile читает и разбирает JSON-файл начальных данных.
func ReadSeedFile(path string) (SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedData{}, fmt.Errorf("read seed file: %w", err)
	}

	var data SeedData
	if err := json.Unmarshal(raw, &data); err != nil {
		return SeedData{}, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return data, nil
}

// LoadSeedFile читает JSON-файл и добавляет клиентов и товары в store.
func (s *Store) LoadSeedFile(path string) error {
	data, err := ReadSeedFile(path)
	if err != nil {
		return err
	}
	return s.Seed(data)
}

// Seed добавляет клиентов и товары в store.
func (s *Store) Seed(data SeedData) error {
	for _, c := range data.Customers {
		if err := s.PutCustomer(domain.Customer{ID: c.ID, Name: c.Name, Email: c.Email}); err != nil {
			return fmt.Errorf("seed customer %q: %w", c.ID, err)
		}
	}
	for _, p := range data.Products {
		product := domain.Product{ID: p.ID, Name: p.Name, PriceMinor: p.PriceMinor, Quantity: p.Quantity}
		if err := s.PutProduct(product); err != nil {
			return fmt.Errorf("seed product %q: %w", p.ID, err)
		}
	}
	return nil
}
