package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/omise/omise-go"

	"turfbook/pkg/config"
	apperrors "turfbook/pkg/errors"
	httputil "turfbook/pkg/http"
)

// EventVerifier re-fetches a webhook event from the payment provider, the
// only authentication Omise webhooks carry.
type EventVerifier interface {
	RetrieveEvent(ctx context.Context, eventID string) (*omise.Event, error)
}

// PaymentConfirmer marks a booking as paid. Must be idempotent: providers
// redeliver webhooks.
type PaymentConfirmer interface {
	ConfirmPayment(ctx context.Context, bookingID string) error
}

type WebhookHandler struct {
	verifier  EventVerifier
	confirmer PaymentConfirmer
	cfg       *config.Config
}

func NewWebhookHandler(verifier EventVerifier, confirmer PaymentConfirmer, cfg *config.Config) *WebhookHandler {
	return &WebhookHandler{
		verifier:  verifier,
		confirmer: confirmer,
		cfg:       cfg,
	}
}

func (h *WebhookHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payments/webhook", h.Handle)
}

type incomingEvent struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// Handle processes a charge.complete notification. Anything that is not a
// successful charge with a booking reference is acknowledged and dropped;
// returning an error would only make the provider redeliver it.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var inc incomingEvent
	if err := json.NewDecoder(r.Body).Decode(&inc); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid JSON in webhook payload"))
		return
	}
	if inc.ID == "" {
		httputil.WriteError(w, apperrors.InvalidInput("Webhook payload is missing an event ID"))
		return
	}

	event, err := h.verifier.RetrieveEvent(r.Context(), inc.ID)
	if err != nil {
		h.cfg.Log.Warn("Failed to verify webhook event", "event_id", inc.ID, "error", err)
		httputil.WriteError(w, apperrors.Unauthorized("Webhook event could not be verified"))
		return
	}

	if event.Key != "charge.complete" {
		h.cfg.Log.Info("Ignoring webhook event", "event_id", event.ID, "key", event.Key)
		w.WriteHeader(http.StatusOK)
		return
	}

	charge, err := decodeCharge(event.Data)
	if err != nil {
		h.cfg.Log.Warn("Failed to decode charge from webhook event", "event_id", event.ID, "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	bookingID, _ := charge.Metadata["booking_id"].(string)
	if bookingID == "" {
		h.cfg.Log.Warn("Charge has no booking reference", "event_id", event.ID, "charge_id", charge.ID)
		w.WriteHeader(http.StatusOK)
		return
	}

	if string(charge.Status) != "successful" {
		h.cfg.Log.Info("Charge did not succeed",
			"event_id", event.ID,
			"charge_id", charge.ID,
			"booking_id", bookingID,
			"status", charge.Status,
		)
		w.WriteHeader(http.StatusOK)
		return
	}

	if err := h.confirmer.ConfirmPayment(r.Context(), bookingID); err != nil {
		h.cfg.Log.Error("Failed to confirm payment", "booking_id", bookingID, "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.cfg.Log.Info("Payment confirmed via webhook", "booking_id", bookingID, "charge_id", charge.ID)
	w.WriteHeader(http.StatusOK)
}

// decodeCharge round-trips the event payload through JSON because the SDK
// delivers event data as an untyped value.
func decodeCharge(data any) (*omise.Charge, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var charge omise.Charge
	if err := json.Unmarshal(raw, &charge); err != nil {
		return nil, err
	}
	return &charge, nil
}
