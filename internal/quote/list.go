package quote

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"menora/internal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrNoPricing       = errors.New("product has no pricing")
	ErrItemNotFound    = errors.New("item not in list")
)

// Item is one line of a shopping list. Descriptions and price are captured when
// the item is added so the list survives catalog reloads.
type Item struct {
	ID           string                `json:"item_id"`
	MenoraID     string                `json:"menora_id"`
	SupplierCode string                `json:"supplier_code"`
	Descriptions internal.Descriptions `json:"descriptions"`
	Quantity     int                   `json:"quantity"`
	UnitPrice    decimal.Decimal       `json:"unit_price"`
	Currency     string                `json:"currency"`
	Notes        string                `json:"notes,omitempty"`
	AddedAt      time.Time             `json:"added_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// Total is quantity times unit price, rounded to agorot/cents.
func (it Item) Total() decimal.Decimal {
	return RoundCurrency(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
}

// Description prefers Hebrew.
func (it Item) Description() string {
	if it.Descriptions.Hebrew != "" {
		return it.Descriptions.Hebrew
	}
	return it.Descriptions.English
}

type List struct {
	ID          string    `json:"list_id"`
	UserCode    string    `json:"user_code"`
	Name        string    `json:"list_name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Items       []Item    `json:"items"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewList(userCode, name string) *List {
	now := time.Now().UTC()
	name = strings.TrimSpace(name)
	if name == "" {
		name = "רשימת קניות"
	}
	return &List{
		ID:        uuid.NewString(),
		UserCode:  strings.TrimSpace(userCode),
		Name:      name,
		Status:    "active",
		Items:     []Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Add appends p to the list, or increases the quantity when the same product is
// already present. The unit price honours bulk tiers for the resulting quantity.
func (l *List) Add(p *internal.Product, qty int, notes string) (Item, error) {
	if qty <= 0 {
		return Item{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	if !p.IsPriced() {
		return Item{}, fmt.Errorf("%w: %s", ErrNoPricing, p.MenoraID)
	}
	now := time.Now().UTC()
	for i := range l.Items {
		it := &l.Items[i]
		if it.MenoraID != p.MenoraID {
			continue
		}
		it.Quantity += qty
		it.UnitPrice, _, _ = p.PriceFor(it.Quantity)
		if it.Notes == "" {
			it.Notes = strings.TrimSpace(notes)
		}
		it.UpdatedAt = now
		l.UpdatedAt = now
		return *it, nil
	}

	price, _, _ := p.PriceFor(qty)
	it := Item{
		ID:           uuid.NewString(),
		MenoraID:     p.MenoraID,
		SupplierCode: p.SupplierCode,
		Descriptions: p.Descriptions,
		Quantity:     qty,
		UnitPrice:    price,
		Currency:     p.Pricing.Currency,
		Notes:        strings.TrimSpace(notes),
		AddedAt:      now,
		UpdatedAt:    now,
	}
	l.Items = append(l.Items, it)
	l.UpdatedAt = now
	return it, nil
}

// SetQuantity changes an item's quantity; zero removes it.
func (l *List) SetQuantity(itemID string, qty int) error {
	if qty < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	for i := range l.Items {
		if l.Items[i].ID != itemID {
			continue
		}
		if qty == 0 {
			l.Items = append(l.Items[:i], l.Items[i+1:]...)
		} else {
			l.Items[i].Quantity = qty
			l.Items[i].UpdatedAt = time.Now().UTC()
		}
		l.UpdatedAt = time.Now().UTC()
		return nil
	}
	return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
}

func (l *List) Remove(itemID string) error {
	return l.SetQuantity(itemID, 0)
}

func (l *List) TotalQuantity() int {
	n := 0
	for _, it := range l.Items {
		n += it.Quantity
	}
	return n
}
