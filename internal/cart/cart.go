// Package cart validates purchase quantities against available stock and
// prices lines the way checkout records them.
package cart

import (
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/peptide_shop/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOutOfStock      = errors.New("out of stock")
	ErrExceedsStock    = errors.New("quantity exceeds available stock")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrNoLine          = errors.New("no such cart line")
)

type Line struct {
	ProductID     uuid.UUID
	ProductName   string
	ProductPrice  decimal.Decimal
	VariationID   *uuid.UUID
	VariationName *string
	UnitPrice     decimal.Decimal
	Quantity      int
	Stock         int
}

// LineFor prices a product, or one of its variations when v is not nil.
// Variations carry their own price; plain products use the effective price.
func LineFor(p *models.Product, v *models.ProductVariation, now time.Time) Line {
	line := Line{
		ProductID:    p.ID,
		ProductName:  p.Name,
		ProductPrice: p.EffectivePrice(now),
		UnitPrice:    p.EffectivePrice(now),
		Stock:        p.StockQuantity,
	}
	if v != nil {
		id := v.ID
		name := v.Name
		line.VariationID = &id
		line.VariationName = &name
		line.UnitPrice = v.Price
		line.Stock = v.StockQuantity
	}
	return line
}

func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func (l Line) sameItem(o Line) bool {
	if l.ProductID != o.ProductID {
		return false
	}
	if l.VariationID == nil || o.VariationID == nil {
		return l.VariationID == nil && o.VariationID == nil
	}
	return *l.VariationID == *o.VariationID
}

type Cart struct {
	Lines []Line
}

// Add puts qty units of item into the cart, merging with an existing line
// for the same product and variation. The quantity is clamped to item.Stock;
// the returned count is what was actually added. ErrExceedsStock is returned
// alongside a partial add.
func (c *Cart) Add(item Line, qty int) (int, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	if item.Stock <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrOutOfStock, item.ProductName)
	}

	for i := range c.Lines {
		if !c.Lines[i].sameItem(item) {
			continue
		}
		current := c.Lines[i].Quantity
		if current+qty <= item.Stock {
			c.Lines[i].Quantity += qty
			c.Lines[i].Stock = item.Stock
			return qty, nil
		}
		canAdd := item.Stock - current
		if canAdd <= 0 {
			return 0, fmt.Errorf("%w: only %d available, %d already in cart", ErrExceedsStock, item.Stock, current)
		}
		c.Lines[i].Quantity += canAdd
		c.Lines[i].Stock = item.Stock
		return canAdd, fmt.Errorf("%w: only %d available, added %d of %d", ErrExceedsStock, item.Stock, canAdd, qty)
	}

	added := qty
	var err error
	if qty > item.Stock {
		added = item.Stock
		err = fmt.Errorf("%w: only %d available, added %d of %d", ErrExceedsStock, item.Stock, added, qty)
	}
	item.Quantity = added
	c.Lines = append(c.Lines, item)
	return added, err
}

// UpdateQuantity sets the quantity of line index. Zero or less removes the
// line; more than the line's stock is clamped.
func (c *Cart) UpdateQuantity(index, qty int) (int, error) {
	if index < 0 || index >= len(c.Lines) {
		return 0, ErrNoLine
	}
	if qty <= 0 {
		c.Remove(index)
		return 0, nil
	}
	line := &c.Lines[index]
	if qty > line.Stock {
		line.Quantity = line.Stock
		return line.Stock, fmt.Errorf("%w: only %d available", ErrExceedsStock, line.Stock)
	}
	line.Quantity = qty
	return qty, nil
}

func (c *Cart) Remove(index int) {
	if index < 0 || index >= len(c.Lines) {
		return
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Total())
	}
	return total
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}
