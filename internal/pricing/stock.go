package pricing

import (
	"fmt"
	"strings"
)

// InsufficientStockError reports a single line whose requested quantity exceeds stock.
type InsufficientStockError struct {
	Item      string `json:"product"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

// Error implements the error interface.
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", e.Item, e.Available, e.Requested)
}

// CheckStock fails when requested exceeds available. Requesting exactly the available
// quantity succeeds.
func CheckStock(requested, available int, item string) error {
	if requested > available {
		return &InsufficientStockError{Item: item, Available: available, Requested: requested}
	}
	return nil
}

// StockRequest pairs a requested quantity with the stock currently available.
type StockRequest struct {
	Item      string
	Requested int
	Available int
}

// StockShortageError aggregates every line that could not be fulfilled.
type StockShortageError struct {
	Items []InsufficientStockError
}

// Error implements the error interface.
func (e *StockShortageError) Error() string {
	parts := make([]string, 0, len(e.Items))
	for i := range e.Items {
		parts = append(parts, e.Items[i].Error())
	}
	return strings.Join(parts, "; ")
}

// CheckAllStock validates every request and reports all shortfalls at once instead of
// stopping at the first one.
func CheckAllStock(reqs []StockRequest) error {
	var shortages []InsufficientStockError
	for _, r := range reqs {
		if r.Requested > r.Available {
			shortages = append(shortages, InsufficientStockError{Item: r.Item, Available: r.Available, Requested: r.Requested})
		}
	}
	if len(shortages) == 0 {
		return nil
	}
	return &StockShortageError{Items: shortages}
}
