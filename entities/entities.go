package entities

import (
	"errors"
	"math"
	"strings"
	"time"

	"guestcart/models"

	"github.com/shopspring/decimal"
)

// ProductSnapshot is the product data captured when an item is added to
// the cart. It is never refreshed afterwards.
type ProductSnapshot struct {
	Id        int64               `json:"id"`
	Name      string              `json:"name"`
	Sku       string              `json:"sku"`
	Thumbnail string              `json:"thumbnail,omitempty"`
	Images    []string            `json:"images,omitempty"`
	Price     decimal.NullDecimal `json:"price"`
	InStock   bool                `json:"in_stock"`
}

var (
	errProductId    = errors.New("product id must be positive")
	errProductName  = errors.New("product name is required")
	errProductPrice = errors.New("product price is required")
	errNegPrice     = errors.New("product price cannot be negative")

	ErrItemIdsExhausted = errors.New("cart has no item ids left")
)

// Validate reports models.ErrBadRequest when the snapshot cannot enter a cart.
func (p ProductSnapshot) Validate() error {
	var reason error
	switch {
	case p.Id <= 0:
		reason = errProductId
	case strings.TrimSpace(p.Name) == "":
		reason = errProductName
	case !p.Price.Valid:
		reason = errProductPrice
	case p.Price.Decimal.IsNegative():
		reason = errNegPrice
	}
	if reason != nil {
		return errors.Join(models.ErrBadRequest, reason)
	}
	return nil
}

type CartItem struct {
	Id             ItemID          `json:"id"`
	ProductId      int64           `json:"product_id"`
	Quantity       int             `json:"quantity"`
	Name           string          `json:"name"`
	Sku            string          `json:"sku"`
	Price          decimal.Decimal `json:"price"`
	BasePrice      decimal.Decimal `json:"base_price"`
	Total          decimal.Decimal `json:"total"`
	BaseTotal      decimal.Decimal `json:"base_total"`
	FormattedPrice string          `json:"formatted_price"`
	FormattedTotal string          `json:"formatted_total"`
	Product        ProductSnapshot `json:"product"`
}

// Cart is the locally persisted guest cart. Derived fields are only
// meaningful after the owning service recalculated them.
type Cart struct {
	Id      string     `json:"id"`
	IsGuest bool       `json:"is_guest"`
	Items   []CartItem `json:"items"`

	ItemsCount int `json:"items_count"`
	ItemsQty   int `json:"items_qty"`

	SubTotal           decimal.Decimal `json:"sub_total"`
	BaseSubTotal       decimal.Decimal `json:"base_sub_total"`
	GrandTotal         decimal.Decimal `json:"grand_total"`
	BaseGrandTotal     decimal.Decimal `json:"base_grand_total"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	BaseDiscountAmount decimal.Decimal `json:"base_discount_amount"`
	TaxTotal           decimal.Decimal `json:"tax_total"`
	BaseTaxTotal       decimal.Decimal `json:"base_tax_total"`

	FormattedSubTotal       string `json:"formatted_sub_total"`
	FormattedGrandTotal     string `json:"formatted_grand_total"`
	FormattedDiscountAmount string `json:"formatted_discount_amount"`
	FormattedTaxTotal       string `json:"formatted_tax_total"`

	// LastItemId is the highest item id minted for this cart.
	LastItemId int64 `json:"last_item_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FindItem returns the index of the item with the given id, or -1.
func (c *Cart) FindItem(id ItemID) int {
	for i := range c.Items {
		if c.Items[i].Id == id {
			return i
		}
	}
	return -1
}

// FindProduct returns the index of the line holding productId, or -1.
func (c *Cart) FindProduct(productId int64) int {
	for i := range c.Items {
		if c.Items[i].ProductId == productId {
			return i
		}
	}
	return -1
}

// MaxQuantity bounds a single line, so quantities and their sums stay
// far from int overflow.
const MaxQuantity = 1_000_000

// NextItemId mints a fresh item id. Ids are never handed out twice for
// the same cart, even after the item holding one is removed.
func (c *Cart) NextItemId() (ItemID, error) {
	for _, item := range c.Items {
		if int64(item.Id) > c.LastItemId {
			c.LastItemId = int64(item.Id)
		}
	}
	if c.LastItemId < 0 || c.LastItemId == math.MaxInt64 {
		return 0, ErrItemIdsExhausted
	}
	c.LastItemId++
	return ItemID(c.LastItemId), nil
}

type CartRequest struct {
	ProductId int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Cart *Cart `json:"cart"`
}

type MergeResponse struct {
	Merged int `json:"merged"`
}
