package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

/*
OrderServicer reads and writes the ordering ledger: a flat JSON array
of album slugs recording manual display order. Null entries are
filtered on read and slugs with no matching album are tolerated.
*/
type OrderServicer interface {
	GetOrder() ([]string, error)
	SaveOrder(order []string) error
}

type OrderServiceConfig struct {
	LedgerPath string
}

type OrderService struct {
	ledgerPath string
}

func NewOrderService(config OrderServiceConfig) OrderService {
	return OrderService{
		ledgerPath: config.LedgerPath,
	}
}

func (s OrderService) GetOrder() ([]string, error) {
	var (
		err error
		raw []byte
	)

	if raw, err = os.ReadFile(s.ledgerPath); err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}

		return nil, fmt.Errorf("error reading album order: %w", err)
	}

	entries := []*string{}

	if err = json.Unmarshal(raw, &entries); err != nil {
		slog.Error("error parsing album order", "error", err)
		return []string{}, nil
	}

	order := []string{}

	for _, entry := range entries {
		if entry != nil {
			order = append(order, *entry)
		}
	}

	return order, nil
}

func (s OrderService) SaveOrder(order []string) error {
	encoded, err := json.MarshalIndent(order, "", "  ")

	if err != nil {
		return fmt.Errorf("error encoding album order: %w", err)
	}

	if err = os.WriteFile(s.ledgerPath, encoded, 0644); err != nil {
		return fmt.Errorf("error writing album order: %w", err)
	}

	return nil
}
