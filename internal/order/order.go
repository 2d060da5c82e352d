// Package order models the lifecycle of a trade order.
//
// Only the states and the allowed transitions are defined here: nothing in the
// service matches or settles orders, so callers decide when to move an order.
package order

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/otori-vision/ovt-trader/internal/market"
)

// Status состояние ордера
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// ErrInvalidTransition is returned when a status change is not allowed.
var ErrInvalidTransition = errors.New("invalid order status transition")

// transitions перечисляет все допустимые переходы
var transitions = map[Status][]Status{
	StatusPending: {StatusCompleted, StatusCancelled, StatusFailed},
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CanTransition reports whether from -> to is an allowed move.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order ордер на покупку или продажу OVT
type Order struct {
	ID        string      `json:"id"`
	Side      market.Side `json:"type"`
	Amount    int64       `json:"amount"`
	Price     float64     `json:"price"`
	Status    Status      `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}

// New creates a pending order.
func New(side market.Side, amount int64, price float64) (*Order, error) {
	if side != market.SideBuy && side != market.SideSell {
		return nil, fmt.Errorf("unknown order side %q", side)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("order amount must be positive, got %d", amount)
	}
	return &Order{
		ID:        uuid.New().String(),
		Side:      side,
		Amount:    amount,
		Price:     price,
		Status:    StatusPending,
		Timestamp: time.Now(),
	}, nil
}

// Transition moves the order to the given status.
func (o *Order) Transition(to Status) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	o.Status = to
	o.Timestamp = time.Now()
	return nil
}
