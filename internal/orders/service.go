package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/premiumstore/premiumstore-backend/internal/cart"
	"github.com/premiumstore/premiumstore-backend/internal/session"
	"github.com/premiumstore/premiumstore-backend/pkg/db/models"
	pkgerrors "github.com/premiumstore/premiumstore-backend/pkg/errors"
	"github.com/premiumstore/premiumstore-backend/pkg/logger"
	"github.com/premiumstore/premiumstore-backend/pkg/types"
)

// CheckoutInput is the validated checkout form. CardNumber is used
// only to derive the card type and last four digits; it is never
// stored or charged.
type CheckoutInput struct {
	Shipping   types.ShippingInfo `json:"shipping" validate:"required"`
	CardNumber string             `json:"card_number" validate:"required,min=12,max=19"`
	CardExpiry string             `json:"card_expiry" validate:"required"`
	CardCVV    string             `json:"card_cvv" validate:"required,min=3,max=4"`
}

// UserLoader reads the mock signed-in user, when any.
type UserLoader interface {
	LoadUser(ctx context.Context, sessionID string) (session.User, error)
}

// ServiceParams groups dependencies for the checkout service.
type ServiceParams struct {
	Repo   *Repository
	Cart   cart.Service
	Users  UserLoader
	Logger *logger.Logger
	Sleep  cart.Sleeper
	Delay  time.Duration
}

// Service exposes checkout and order history.
type Service interface {
	PlaceOrder(ctx context.Context, sessionID string, input CheckoutInput) (*models.Order, error)
	ListOrders(ctx context.Context, sessionID string) ([]models.Order, error)
	GetOrder(ctx context.Context, sessionID, orderID string) (*models.Order, error)
}

type service struct {
	repo  *Repository
	cart  cart.Service
	users UserLoader
	logg  *logger.Logger
	sleep cart.Sleeper
	delay time.Duration
}

// NewService builds a checkout service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order repo is required")
	}
	if params.Cart == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart service is required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user loader is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	sleep := params.Sleep
	if sleep == nil {
		sleep = cart.SleepFor
	}
	return &service{
		repo:  params.Repo,
		cart:  params.Cart,
		users: params.Users,
		logg:  params.Logger,
		sleep: sleep,
		delay: params.Delay,
	}, nil
}

// PlaceOrder freezes the cart into an order, runs the mock payment,
// persists the order, and clears the cart and promo. Order ids encode
// the placement time: PS-<unix milliseconds>.
func (s *service) PlaceOrder(ctx context.Context, sessionID string, input CheckoutInput) (*models.Order, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if err := validateShipping(input.Shipping); err != nil {
		return nil, err
	}
	cardType, last4, err := mockCard(input.CardNumber)
	if err != nil {
		return nil, err
	}

	view, err := s.cart.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(view.Cart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	// Simulated payment-gateway latency.
	s.sleep(ctx, s.delay)
	if err := ctx.Err(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "request cancelled")
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:        fmt.Sprintf("PS-%d", now.UnixMilli()),
		SessionID: sessionID,
		Items:     freezeItems(view.Cart.Items),
		Totals: types.OrderTotals{
			Subtotal:     view.Totals.Subtotal.StringFixed(2),
			Discount:     view.Totals.Discount.StringFixed(2),
			Shipping:     view.Totals.Shipping.StringFixed(2),
			Tax:          view.Totals.Tax.StringFixed(2),
			Total:        view.Totals.Total.StringFixed(2),
			PromoCode:    view.Totals.PromoCode,
			PromoMessage: view.Totals.PromoMessage,
		},
		ShippingInfo: input.Shipping,
		PaymentInfo:  types.PaymentInfo{CardType: cardType, Last4: last4},
		PlacedAt:     now,
	}
	if user, err := s.users.LoadUser(ctx, sessionID); err == nil && user.Email != "" {
		email := user.Email
		order.UserEmail = &email
	}

	if err := s.repo.Insert(ctx, order); err != nil {
		return nil, err
	}

	// The order is durable at this point. A failed cleanup leaves a
	// stale cart, not a lost order, so log and return the order anyway.
	if err := s.cart.Clear(ctx, sessionID); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "order_id", order.ID), "clear cart after checkout", err)
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"order_id": order.ID,
		"total":    order.Totals.Total,
		"items":    len(order.Items),
	}), "order placed")
	return order, nil
}

// ListOrders returns the session's order history, newest first.
func (s *service) ListOrders(ctx context.Context, sessionID string) ([]models.Order, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return s.repo.ListBySession(ctx, sessionID)
}

// GetOrder loads one order from the session's history.
func (s *service) GetOrder(ctx context.Context, sessionID, orderID string) (*models.Order, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if strings.TrimSpace(orderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return s.repo.FindByID(ctx, sessionID, orderID)
}

func freezeItems(items []cart.LineItem) []types.OrderItem {
	frozen := make([]types.OrderItem, 0, len(items))
	for _, item := range items {
		frozen = append(frozen, types.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			Quantity:  item.Quantity,
			UnitPrice: fmt.Sprintf("%d.00", item.UnitPrice),
			Options:   item.Options,
		})
	}
	return frozen
}

func validateShipping(info types.ShippingInfo) error {
	missing := []string{}
	for field, value := range map[string]string{
		"name":        info.Name,
		"email":       info.Email,
		"phone":       info.Phone,
		"address":     info.Address,
		"city":        info.City,
		"postal_code": info.PostalCode,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping information incomplete").
			WithDetails(map[string]any{"missing": missing})
	}
	return nil
}

// mockCard classifies the card by its leading digit, the way the demo
// gateway does. No number validation beyond length and digits.
func mockCard(number string) (cardType, last4 string, err error) {
	digits := strings.ReplaceAll(strings.TrimSpace(number), " ", "")
	if len(digits) < 12 || len(digits) > 19 {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "card number length invalid")
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", "", pkgerrors.New(pkgerrors.CodeValidation, "card number must be digits")
		}
	}
	switch digits[0] {
	case '4':
		cardType = "Visa"
	case '5':
		cardType = "Mastercard"
	case '3':
		cardType = "Amex"
	case '6':
		cardType = "RuPay"
	default:
		cardType = "Card"
	}
	return cardType, digits[len(digits)-4:], nil
}
