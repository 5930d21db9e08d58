package model

import (
	"errors"
	"strings"

	"github.com/fekuna/omnipos-erp-service/pkg/i18n"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicateStock    = errors.New("stock for this product already exists in the warehouse")
)

// LineRequest is the total quantity an order needs of one product.
type LineRequest struct {
	ProductID   string
	ProductName string
	Quantity    int
}

type Shortage struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
	// Missing is set when the warehouse has no stock row for the product.
	Missing bool `json:"missing"`
}

func (s Shortage) Deficit() int {
	return s.Requested - s.Available
}

// Alternative is another warehouse of the same organization that can cover
// the whole requested quantity of a product.
type Alternative struct {
	ProductID     string `json:"product_id"`
	WarehouseID   string `json:"warehouse_id"`
	WarehouseName string `json:"warehouse_name"`
	Available     int    `json:"available"`
}

// StockShortageError is returned when an order cannot be fulfilled from its
// warehouse. DetailsHidden limits the message to alternative counts.
type StockShortageError struct {
	WarehouseID   string
	WarehouseName string
	Shortages     []Shortage
	Alternatives  []Alternative
	DetailsHidden bool
}

func (e *StockShortageError) Error() string {
	return e.Localize()
}

func (e *StockShortageError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Localize renders the error for the given accept-language values.
func (e *StockShortageError) Localize(langs ...string) string {
	var b strings.Builder
	b.WriteString(i18n.T("stock_shortage_header", map[string]interface{}{"Warehouse": e.WarehouseName}, langs...))

	byProduct := make(map[string][]Alternative)
	for _, a := range e.Alternatives {
		byProduct[a.ProductID] = append(byProduct[a.ProductID], a)
	}

	anyAlternative := false
	for _, s := range e.Shortages {
		b.WriteString("\n")
		if s.Missing {
			b.WriteString(i18n.T("stock_shortage_missing", map[string]interface{}{
				"Product":   s.ProductName,
				"Requested": s.Requested,
				"Warehouse": e.WarehouseName,
			}, langs...))
		} else {
			b.WriteString(i18n.T("stock_shortage_line", map[string]interface{}{
				"Product":   s.ProductName,
				"Requested": s.Requested,
				"Available": s.Available,
				"Shortage":  s.Deficit(),
			}, langs...))
		}

		alts := byProduct[s.ProductID]
		if len(alts) == 0 {
			b.WriteString("\n  ")
			b.WriteString(i18n.T("stock_alternative_none", map[string]interface{}{"Product": s.ProductName}, langs...))
			continue
		}
		anyAlternative = true
		if e.DetailsHidden {
			b.WriteString("\n  ")
			b.WriteString(i18n.Plural("stock_alternative_count", len(alts), map[string]interface{}{
				"Product": s.ProductName,
				"Count":   len(alts),
			}, langs...))
			continue
		}
		for _, a := range alts {
			b.WriteString("\n  ")
			b.WriteString(i18n.T("stock_alternative_detail", map[string]interface{}{
				"Product":   s.ProductName,
				"Warehouse": a.WarehouseName,
				"Available": a.Available,
			}, langs...))
		}
	}

	if anyAlternative {
		b.WriteString("\n")
		if e.DetailsHidden {
			b.WriteString(i18n.T("stock_suggest_contact", nil, langs...))
		} else {
			b.WriteString(i18n.T("stock_suggest_switch", nil, langs...))
		}
	}
	return b.String()
}

// CheckAvailability compares aggregated requests with the quantities on hand
// (keyed by product id). A product absent from available counts as zero.
func CheckAvailability(lines []LineRequest, available map[string]int) []Shortage {
	var out []Shortage
	for _, l := range lines {
		qty, ok := available[l.ProductID]
		if ok && qty >= l.Quantity {
			continue
		}
		out = append(out, Shortage{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Requested:   l.Quantity,
			Available:   qty,
			Missing:     !ok,
		})
	}
	return out
}

// PickAlternatives keeps the candidate stock rows outside warehouseID that
// cover a shortage in full.
func PickAlternatives(shortages []Shortage, candidates []Stock, warehouseID string) []Alternative {
	need := make(map[string]int, len(shortages))
	for _, s := range shortages {
		need[s.ProductID] = s.Requested
	}
	var out []Alternative
	for _, c := range candidates {
		req, ok := need[c.ProductID]
		if !ok || c.WarehouseID == warehouseID || c.Quantity < req {
			continue
		}
		out = append(out, Alternative{
			ProductID:     c.ProductID,
			WarehouseID:   c.WarehouseID,
			WarehouseName: c.WarehouseName,
			Available:     c.Quantity,
		})
	}
	return out
}
