package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	stripecustomer "github.com/stripe/stripe-go/v74/customer"
	"github.com/stripe/stripe-go/v74/webhook"
	"go.uber.org/zap"

	"github.com/vibetickets/helpdesk/internal/config"
	"github.com/vibetickets/helpdesk/internal/domain"
	"github.com/vibetickets/helpdesk/internal/repository"
	apperrors "github.com/vibetickets/helpdesk/pkg/util/errorutil"
)

// BillingService is a pass-through to Stripe: it creates checkout
// sessions and mirrors subscription state from webhook events onto the
// user record. No billing logic lives in this service.
type BillingService struct {
	users  repository.UserRepository
	cfg    config.StripeConfig
	logger *zap.Logger
}

// NewBillingService builds the service and installs the API key.
func NewBillingService(cfg config.StripeConfig, users repository.UserRepository, logger *zap.Logger) *BillingService {
	stripe.Key = cfg.SecretKey
	return &BillingService{users: users, cfg: cfg, logger: logger}
}

// CreateCheckoutSession starts a subscription checkout for the caller,
// creating the Stripe customer on first use.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, user *domain.User, successURL, cancelURL string) (string, error) {
	if user == nil {
		return "", apperrors.NewUnauthenticated("authentication required")
	}

	customerID := user.StripeCustomerID
	if customerID == nil {
		params := &stripe.CustomerParams{
			Email: stripe.String(user.Email),
		}
		if user.Name != "" {
			params.Name = stripe.String(user.Name)
		}
		params.AddMetadata("user_id", user.ID)

		created, err := stripecustomer.New(params)
		if err != nil {
			return "", apperrors.MapError(err)
		}
		if err := s.users.SetStripeCustomerID(ctx, user.ID, created.ID); err != nil {
			return "", apperrors.MapError(err)
		}
		customerID = &created.ID
	}

	if successURL == "" {
		successURL = s.cfg.SuccessURL
	}
	if cancelURL == "" {
		cancelURL = s.cfg.CancelURL
	}

	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(*customerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.cfg.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.AddMetadata("user_id", user.ID)

	checkout, err := session.New(params)
	if err != nil {
		return "", apperrors.MapError(err)
	}
	return checkout.URL, nil
}

// HandleWebhook verifies and applies a Stripe event. Unknown event
// types are acknowledged and ignored.
func (s *BillingService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	var event stripe.Event
	if s.cfg.WebhookSecret != "" && signature != "" {
		verified, err := webhook.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
		if err != nil {
			return apperrors.NewValidationError("invalid webhook signature", nil)
		}
		event = verified
	} else if err := json.Unmarshal(payload, &event); err != nil {
		// Development mode without a webhook secret.
		return apperrors.NewValidationError("invalid webhook payload", nil)
	}

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event.Data.Raw)
	case "customer.subscription.updated":
		return s.handleSubscriptionUpdated(ctx, event.Data.Raw)
	case "customer.subscription.deleted":
		return s.handleSubscriptionDeleted(ctx, event.Data.Raw)
	default:
		s.logger.Debug("ignoring stripe event", zap.String("type", string(event.Type)))
		return nil
	}
}

func (s *BillingService) handleCheckoutCompleted(ctx context.Context, raw json.RawMessage) error {
	var checkout stripe.CheckoutSession
	if err := json.Unmarshal(raw, &checkout); err != nil {
		return apperrors.NewValidationError("invalid checkout session payload", nil)
	}
	userID := checkout.Metadata["user_id"]
	if userID == "" || checkout.Subscription == nil {
		return nil
	}
	status := "active"
	if err := s.users.UpdateSubscription(ctx, userID, &checkout.Subscription.ID, &status); err != nil {
		return s.swallowUnknownUser(err, userID)
	}
	s.logger.Info("subscription activated", zap.String("user_id", userID))
	return nil
}

func (s *BillingService) handleSubscriptionUpdated(ctx context.Context, raw json.RawMessage) error {
	sub, user, err := s.resolveSubscriber(ctx, raw)
	if err != nil || user == nil {
		return err
	}
	status := string(sub.Status)
	if err := s.users.UpdateSubscription(ctx, user.ID, &sub.ID, &status); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *BillingService) handleSubscriptionDeleted(ctx context.Context, raw json.RawMessage) error {
	_, user, err := s.resolveSubscriber(ctx, raw)
	if err != nil || user == nil {
		return err
	}
	status := "canceled"
	if err := s.users.UpdateSubscription(ctx, user.ID, nil, &status); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

func (s *BillingService) resolveSubscriber(ctx context.Context, raw json.RawMessage) (*stripe.Subscription, *domain.User, error) {
	var sub stripe.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return nil, nil, apperrors.NewValidationError("invalid subscription payload", nil)
	}
	if sub.Customer == nil {
		return &sub, nil, nil
	}
	user, err := s.users.GetByStripeCustomerID(ctx, sub.Customer.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("webhook for unknown stripe customer", zap.String("customer_id", sub.Customer.ID))
			return &sub, nil, nil
		}
		return nil, nil, apperrors.MapError(err)
	}
	return &sub, user, nil
}

func (s *BillingService) swallowUnknownUser(err error, userID string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Warn("webhook for unknown user", zap.String("user_id", userID))
		return nil
	}
	return apperrors.MapError(err)
}
