package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"guestcart/entities"
	"guestcart/models"
	"guestcart/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const DefaultCartKey = "guest_cart"

var (
	errItemsNotList = errors.New("items is not a list")
	errEmptyCart    = errors.New("cart has no items")
	errQuantity     = errors.New("item quantity out of range")
	errItemCounter  = errors.New("last item id out of range")
)

// GuestCartService owns the guest cart persisted under one storage key.
// Mutations through the same service value are serialised; two values
// sharing a key still race on read-modify-write.
type GuestCartService struct {
	storage   repository.CartStorage
	formatter CurrencyFormatter
	key       string
	now       func() time.Time

	mu sync.Mutex
}

func NewGuestCartService(storage repository.CartStorage, formatter CurrencyFormatter, key string) *GuestCartService {
	if formatter == nil {
		formatter = SymbolFormatter{Symbol: "$"}
	}
	if key == "" {
		key = DefaultCartKey
	}
	return &GuestCartService{
		storage:   storage,
		formatter: formatter,
		key:       key,
		now:       time.Now,
	}
}

func (s *GuestCartService) Key() string {
	return s.key
}

// Load returns the persisted cart. A record that cannot be read or fails
// the structural checks is deleted and reported as absent.
func (s *GuestCartService) Load(ctx context.Context) (cart entities.Cart, exists bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *GuestCartService) Add(ctx context.Context, product entities.ProductSnapshot, quantity int) (cart entities.Cart, err error) {
	if err = checkQuantity(quantity); err != nil {
		return
	}
	if err = product.Validate(); err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, exists := s.load(ctx)
	if !exists {
		cart = s.newCart()
	}

	if i := cart.FindProduct(product.Id); i >= 0 {
		if cart.Items[i].Quantity > entities.MaxQuantity-quantity {
			return entities.Cart{}, fmt.Errorf("%w: line quantity cannot exceed %d", models.ErrBadRequest, entities.MaxQuantity)
		}
		cart.Items[i].Quantity += quantity
	} else {
		itemId, e := cart.NextItemId()
		if e != nil {
			return entities.Cart{}, errors.Join(models.ErrBadRequest, e)
		}
		price := product.Price.Decimal
		cart.Items = append(cart.Items, entities.CartItem{
			Id:        itemId,
			ProductId: product.Id,
			Quantity:  quantity,
			Name:      product.Name,
			Sku:       product.Sku,
			Price:     price,
			BasePrice: price,
			Product:   product,
		})
	}

	s.recalculate(&cart)
	if err = s.persist(ctx, &cart); err != nil {
		return entities.Cart{}, err
	}

	logrus.WithFields(logrus.Fields{
		"cart_key":   s.key,
		"cart_id":    cart.Id,
		"product_id": product.Id,
		"quantity":   quantity,
	}).Debug("Product added to guest cart")
	return cart, nil
}

func (s *GuestCartService) Update(ctx context.Context, itemId entities.ItemID, quantity int) (cart entities.Cart, err error) {
	if err = checkQuantity(quantity); err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, exists := s.load(ctx)
	if !exists {
		return entities.Cart{}, fmt.Errorf("guest cart: %w", models.ErrNotFoundError)
	}
	i := cart.FindItem(itemId)
	if i < 0 {
		return entities.Cart{}, fmt.Errorf("cart item %s: %w", itemId, models.ErrNotFoundError)
	}
	cart.Items[i].Quantity = quantity

	s.recalculate(&cart)
	if err = s.persist(ctx, &cart); err != nil {
		return entities.Cart{}, err
	}

	logrus.WithFields(logrus.Fields{
		"cart_key": s.key,
		"item_id":  itemId,
		"quantity": quantity,
	}).Debug("Guest cart item updated")
	return cart, nil
}

// Remove drops the item. Removing the last item deletes the record and
// reports the cart as absent.
func (s *GuestCartService) Remove(ctx context.Context, itemId entities.ItemID) (cart entities.Cart, exists bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, exists = s.load(ctx)
	if !exists {
		return
	}

	items := make([]entities.CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.Id != itemId {
			items = append(items, item)
		}
	}
	cart.Items = items

	log := logrus.WithFields(logrus.Fields{"cart_key": s.key, "item_id": itemId})
	if len(cart.Items) == 0 {
		if err = s.delete(ctx); err != nil {
			return entities.Cart{}, false, err
		}
		log.Debug("Last item removed, guest cart deleted")
		return entities.Cart{}, false, nil
	}

	s.recalculate(&cart)
	if err = s.persist(ctx, &cart); err != nil {
		return entities.Cart{}, false, err
	}
	log.Debug("Guest cart item removed")
	return cart, true, nil
}

// Clear deletes the record. Clearing an absent cart is not an error.
func (s *GuestCartService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.delete(ctx); err != nil {
		return err
	}
	logrus.WithField("cart_key", s.key).Debug("Guest cart cleared")
	return nil
}

func (s *GuestCartService) newCart() entities.Cart {
	now := s.now().UTC()
	cart := entities.Cart{
		Id:        uuid.NewString(),
		IsGuest:   true,
		Items:     []entities.CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.recalculate(&cart)
	return cart
}

func (s *GuestCartService) recalculate(cart *entities.Cart) {
	subTotal := decimal.Zero
	qty := 0
	for i := range cart.Items {
		item := &cart.Items[i]
		q := decimal.NewFromInt(int64(item.Quantity))
		item.Total = item.Price.Mul(q)
		item.BaseTotal = item.BasePrice.Mul(q)
		item.FormattedPrice = s.formatter.Format(item.Price)
		item.FormattedTotal = s.formatter.Format(item.Total)

		subTotal = subTotal.Add(item.Total)
		qty += item.Quantity
	}

	cart.IsGuest = true
	cart.ItemsCount = len(cart.Items)
	cart.ItemsQty = qty

	cart.SubTotal = subTotal
	cart.BaseSubTotal = subTotal
	cart.TaxTotal = decimal.Zero
	cart.BaseTaxTotal = decimal.Zero
	cart.DiscountAmount = decimal.Zero
	cart.BaseDiscountAmount = decimal.Zero
	cart.GrandTotal = subTotal
	cart.BaseGrandTotal = subTotal

	cart.FormattedSubTotal = s.formatter.Format(cart.SubTotal)
	cart.FormattedGrandTotal = s.formatter.Format(cart.GrandTotal)
	cart.FormattedDiscountAmount = s.formatter.Format(cart.DiscountAmount)
	cart.FormattedTaxTotal = s.formatter.Format(cart.TaxTotal)
}

func (s *GuestCartService) load(ctx context.Context) (cart entities.Cart, exists bool) {
	log := logrus.WithField("cart_key", s.key)

	data, found, err := s.storage.GetCart(ctx, s.key)
	if err != nil {
		log.WithError(err).Error("Failed to read guest cart, discarding it")
		s.discard(ctx, log)
		return
	}
	if !found {
		return
	}

	if err = checkShape(data); err == nil {
		err = json.Unmarshal(data, &cart)
	}
	if err == nil && len(cart.Items) == 0 {
		err = errEmptyCart
	}
	if err == nil {
		err = checkItems(cart)
	}
	if err != nil {
		log.WithField("reason", err.Error()).Warn("Guest cart is corrupted, discarding it")
		s.discard(ctx, log)
		return entities.Cart{}, false
	}
	return cart, true
}

// checkShape validates the raw record before it is decoded: items must be
// a JSON array and every item id must coerce to a positive integer.
func checkShape(data []byte) error {
	var shape struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &shape); err != nil {
		return fmt.Errorf("malformed record: %w", err)
	}
	raw := bytes.TrimSpace(shape.Items)
	if len(raw) == 0 || raw[0] != '[' {
		return errItemsNotList
	}

	var items []struct {
		Id json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("malformed items: %w", err)
	}
	for i, item := range items {
		var id entities.ItemID
		if err := json.Unmarshal(item.Id, &id); err != nil {
			return fmt.Errorf("item %d: %w", i, entities.ErrInvalidItemID)
		}
	}
	return nil
}

func checkQuantity(quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", models.ErrBadRequest)
	}
	if quantity > entities.MaxQuantity {
		return fmt.Errorf("%w: quantity cannot exceed %d", models.ErrBadRequest, entities.MaxQuantity)
	}
	return nil
}

// checkItems rejects decoded records whose quantities or id counter
// could not have been produced by the mutators.
func checkItems(cart entities.Cart) error {
	if cart.LastItemId < 0 {
		return errItemCounter
	}
	for i, item := range cart.Items {
		if item.Quantity <= 0 || item.Quantity > entities.MaxQuantity {
			return fmt.Errorf("item %d: %w", i, errQuantity)
		}
	}
	return nil
}

func (s *GuestCartService) persist(ctx context.Context, cart *entities.Cart) error {
	cart.UpdatedAt = s.now().UTC()
	data, err := json.Marshal(cart)
	if err != nil {
		logrus.WithField("cart_key", s.key).WithError(err).Error("Failed to encode guest cart")
		return models.ErrServerError
	}
	if err = s.storage.SetCart(ctx, s.key, data); err != nil {
		return storageError(err)
	}
	return nil
}

func (s *GuestCartService) delete(ctx context.Context) error {
	if err := s.storage.DeleteCart(ctx, s.key); err != nil {
		return storageError(err)
	}
	return nil
}

// discard is the load-side delete; its failure is only logged.
func (s *GuestCartService) discard(ctx context.Context, log *logrus.Entry) {
	if err := s.storage.DeleteCart(ctx, s.key); err != nil {
		log.WithError(err).Error("Failed to delete guest cart record")
	}
}

func storageError(err error) error {
	if errors.Is(err, models.ErrServerError) || errors.Is(err, models.ErrBadRequest) {
		return err
	}
	return fmt.Errorf("%w: %v", models.ErrServerError, err)
}
