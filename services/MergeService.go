package services

import (
	"context"
	"fmt"

	"guestcart/entities"
	"guestcart/models"

	"github.com/sirupsen/logrus"
)

type SessionReader interface {
	GetUserSessionInfo(ctx context.Context, sessionId string) (session models.UserSession, exists bool, err error)
}

type ServerCart interface {
	AddCartItem(ctx context.Context, cartKey string, productId int64, quantity int) error
}

// GuestCartSource is what the merge needs from the guest cart: read it in
// full, then discard it.
type GuestCartSource interface {
	Load(ctx context.Context) (cart entities.Cart, exists bool)
	Clear(ctx context.Context) error
}

// MergeService moves the guest cart into the server cart after login.
type MergeService struct {
	sr    SessionReader
	sc    ServerCart
	guest GuestCartSource
}

func NewMergeService(sessions SessionReader, serverCart ServerCart, guest GuestCartSource) MergeService {
	return MergeService{
		sr:    sessions,
		sc:    serverCart,
		guest: guest,
	}
}

func ServerCartKey(userId int) string {
	return fmt.Sprintf("cart:user:%d", userId)
}

// MergeGuestCart copies every guest line into the user's server cart and
// clears the guest cart. If any line fails the guest cart is kept.
func (ms MergeService) MergeGuestCart(ctx context.Context, sessionId string) (merged int, err error) {
	session, exists, err := ms.sr.GetUserSessionInfo(ctx, sessionId)
	if err != nil {
		return
	}
	if !exists {
		err = models.ErrUnautorized
		return
	}

	cart, exists := ms.guest.Load(ctx)
	if !exists {
		return
	}

	cartKey := ServerCartKey(session.UserId)
	log := logrus.WithFields(logrus.Fields{
		"user_id":  session.UserId,
		"cart_id":  cart.Id,
		"cart_key": cartKey,
	})
	for _, item := range cart.Items {
		if e := ms.sc.AddCartItem(ctx, cartKey, item.ProductId, item.Quantity); e != nil {
			log.WithField("product_id", item.ProductId).WithError(e).Error("Failed to merge guest cart item")
			err = models.ErrServerError
			return
		}
		merged++
	}

	if err = ms.guest.Clear(ctx); err != nil {
		log.WithError(err).Error("Guest cart merged but not cleared")
		return
	}
	log.WithField("merged", merged).Info("Guest cart merged into server cart")
	return
}
