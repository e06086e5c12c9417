package models

import (
	"errors"
	"time"
)

const (
	StatusProcessing     = "Processing"
	StatusConfirmed      = "Confirmed"
	StatusShipped        = "Shipped"
	StatusOutForDelivery = "Out for Delivery"
	StatusDelivered      = "Delivered"
	StatusCancelled      = "Cancelled"
)

var (
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrTerminalStatus     = errors.New("order status is final")
	ErrBackwardTransition = errors.New("order status cannot move backward")
)

// Ordre de progression d'une livraison; Cancelled est hors séquence.
var statusSequence = []string{
	StatusProcessing,
	StatusConfirmed,
	StatusShipped,
	StatusOutForDelivery,
	StatusDelivered,
}

func IsValidOrderStatus(status string) bool {
	return status == StatusCancelled || statusRank(status) >= 0
}

func IsTerminalStatus(status string) bool {
	return status == StatusDelivered || status == StatusCancelled
}

func statusRank(status string) int {
	for i, s := range statusSequence {
		if s == status {
			return i
		}
	}
	return -1
}

func (t *DeliveryTracking) step(status string) *TrackingStep {
	switch status {
	case StatusProcessing:
		return &t.OrderPlaced
	case StatusConfirmed:
		return &t.Confirmed
	case StatusShipped:
		return &t.Shipped
	case StatusOutForDelivery:
		return &t.OutForDelivery
	case StatusDelivered:
		return &t.Delivered
	case StatusCancelled:
		return &t.Cancelled
	}
	return nil
}

func mark(step *TrackingStep, now time.Time, overwrite bool) {
	step.Status = true
	if step.Timestamp == nil || overwrite {
		ts := now
		step.Timestamp = &ts
	}
}

// NewDeliveryTracking retourne le suivi d'une commande qui vient d'être passée.
func NewDeliveryTracking(now time.Time) DeliveryTracking {
	var t DeliveryTracking
	mark(&t.OrderPlaced, now, true)
	return t
}

// ApplyStatus fait passer la commande à target. Les étapes intermédiaires non
// encore franchies reçoivent now; les horodatages existants sont conservés.
// Revenir au statut courant ne change rien.
func (o *Order) ApplyStatus(target string, now time.Time) error {
	if !IsValidOrderStatus(target) {
		return ErrInvalidStatus
	}
	if target == o.OrderStatus {
		return nil
	}
	if IsTerminalStatus(o.OrderStatus) {
		return ErrTerminalStatus
	}

	if target == StatusCancelled {
		mark(&o.DeliveryTracking.Cancelled, now, true)
		o.OrderStatus = target
		o.UpdatedAt = now
		return nil
	}

	targetRank := statusRank(target)
	if current := statusRank(o.OrderStatus); current > targetRank {
		return ErrBackwardTransition
	}

	for _, s := range statusSequence[:targetRank] {
		mark(o.DeliveryTracking.step(s), now, false)
	}
	mark(o.DeliveryTracking.step(target), now, true)

	o.OrderStatus = target
	o.UpdatedAt = now
	return nil
}
