// Package payment wraps the Omise API behind the gateway interface the
// booking flow uses to create payment orders.
package payment

import (
	"context"
	"fmt"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"

	"turfbook/pkg/config"
)

const sourceType = "promptpay"

type OmiseGateway struct {
	client    *omise.Client
	returnURI string
	cfg       *config.Config
}

func NewOmiseGateway(cfg *config.Config) (*OmiseGateway, error) {
	client, err := omise.NewClient(cfg.OmisePublicKey, cfg.OmiseSecretKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create omise client: %w", err)
	}

	return &OmiseGateway{
		client:    client,
		returnURI: cfg.PaymentReturnURI,
		cfg:       cfg,
	}, nil
}

// CreateOrder creates a payment source and a charge against it, carrying the
// booking ID as metadata so the webhook can resolve the booking later. The
// returned URL is where the payer authorizes the charge; it is empty when
// the charge settled immediately.
func (g *OmiseGateway) CreateOrder(ctx context.Context, bookingID string, amount int64, currency string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("charge amount must be positive, got %d", amount)
	}

	source := &omise.Source{}
	if err := g.client.Do(source, &operations.CreateSource{
		Amount:   amount,
		Currency: currency,
		Type:     sourceType,
	}); err != nil {
		return "", fmt.Errorf("failed to create payment source: %w", err)
	}

	charge := &omise.Charge{}
	if err := g.client.Do(charge, &operations.CreateCharge{
		Amount:    amount,
		Currency:  currency,
		Source:    source.ID,
		ReturnURI: g.returnURI,
		Metadata:  map[string]any{"booking_id": bookingID},
	}); err != nil {
		return "", fmt.Errorf("failed to create charge: %w", err)
	}

	g.cfg.Log.Info("Payment charge created",
		"charge_id", charge.ID,
		"booking_id", bookingID,
		"amount", amount,
		"currency", currency,
		"status", charge.Status,
	)

	return charge.AuthorizeURI, nil
}

// RetrieveEvent re-fetches a webhook event from Omise so the webhook handler
// never trusts an unverified payload.
func (g *OmiseGateway) RetrieveEvent(ctx context.Context, eventID string) (*omise.Event, error) {
	event := &omise.Event{}
	if err := g.client.Do(event, &operations.RetrieveEvent{EventID: eventID}); err != nil {
		return nil, fmt.Errorf("failed to retrieve event %s: %w", eventID, err)
	}
	return event, nil
}
