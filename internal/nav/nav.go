// =============================
// File: internal/nav/nav.go
// =============================
package nav

import (
	"errors"
	"fmt"
	"math/big"
	"time"
)

// Ограничения на изменение NAV
const (
	MinUpdateInterval     = 15 * time.Second
	MaxIncreasePercent    = 400
	MaxDecreasePercent    = 80
	MaxBuybackPaymentSats = 1_000_000_000
)

var (
	ErrInvalidNAVUpdate          = errors.New("invalid NAV update")
	ErrOperationTimeout          = errors.New("operation timeout")
	ErrInvalidBitcoinTransaction = errors.New("invalid Bitcoin transaction")
	ErrInsufficientFunds         = errors.New("insufficient funds")
	ErrInvalidSupplyChange       = errors.New("invalid supply change")
	ErrInvalidProgramState       = errors.New("invalid program state")
)

// NetworkStatus состояние синхронизации с сетью Bitcoin
type NetworkStatus string

const (
	NetworkSyncing NetworkStatus = "syncing"
	NetworkActive  NetworkStatus = "active"
	NetworkError   NetworkStatus = "error"
)

// State хранит NAV казначейства и общее предложение OVT
type State struct {
	NAVSats        uint64        `json:"nav_sats"`
	TotalSupply    uint64        `json:"total_supply"`
	LastNAVUpdate  time.Time     `json:"last_nav_update"`
	NetworkStatus  NetworkStatus `json:"network_status"`
	NetworkError   string        `json:"network_error,omitempty"`
	LastSyncHeight uint64        `json:"last_sync_height"`
}

// NewState returns a syncing state with the given supply and no NAV yet.
func NewState(totalSupply uint64) State {
	return State{
		TotalSupply:   totalSupply,
		NetworkStatus: NetworkSyncing,
	}
}

// ValidateNAVUpdate проверяет, что новое значение NAV не ноль и не
// отклоняется от текущего более чем на +400% / -80%. Первое обновление
// принимается без ограничений.
func (s *State) ValidateNAVUpdate(newNAVSats uint64) error {
	if newNAVSats == 0 {
		return fmt.Errorf("%w: NAV cannot be zero", ErrInvalidNAVUpdate)
	}
	if s.NAVSats == 0 {
		return nil
	}

	if newNAVSats > s.NAVSats {
		change := (newNAVSats - s.NAVSats) * 100 / s.NAVSats
		if change > MaxIncreasePercent {
			return fmt.Errorf("%w: increase of %d%% exceeds %d%%", ErrInvalidNAVUpdate, change, MaxIncreasePercent)
		}
		return nil
	}

	change := (s.NAVSats - newNAVSats) * 100 / s.NAVSats
	if change > MaxDecreasePercent {
		return fmt.Errorf("%w: decrease of %d%% exceeds %d%%", ErrInvalidNAVUpdate, change, MaxDecreasePercent)
	}
	return nil
}

// UpdateNAV applies a validated NAV at time now.
func (s *State) UpdateNAV(newNAVSats uint64, now time.Time) error {
	if !s.LastNAVUpdate.IsZero() && now.Sub(s.LastNAVUpdate) < MinUpdateInterval {
		return fmt.Errorf("%w: last update %s ago, minimum interval %s",
			ErrOperationTimeout, now.Sub(s.LastNAVUpdate), MinUpdateInterval)
	}
	if err := s.ValidateNAVUpdate(newNAVSats); err != nil {
		return err
	}

	s.NAVSats = newNAVSats
	s.LastNAVUpdate = now
	return nil
}

// ProcessBuybackBurn сжигает токены, выкупленные за paymentSats.
//
// Количество сжигаемых токенов: payment * supply / nav.
func (s *State) ProcessBuybackBurn(paymentSats uint64) (uint64, error) {
	if paymentSats == 0 || paymentSats > MaxBuybackPaymentSats {
		return 0, fmt.Errorf("%w: payment %d sats out of range", ErrInvalidBitcoinTransaction, paymentSats)
	}
	if s.NAVSats == 0 {
		return 0, fmt.Errorf("%w: NAV is not set", ErrInvalidProgramState)
	}

	burn := new(big.Int).SetUint64(paymentSats)
	burn.Mul(burn, new(big.Int).SetUint64(s.TotalSupply))
	burn.Quo(burn, new(big.Int).SetUint64(s.NAVSats))

	if burn.Sign() == 0 {
		return 0, ErrInsufficientFunds
	}
	if !burn.IsUint64() || burn.Uint64() > s.TotalSupply {
		return 0, fmt.Errorf("%w: burn %s exceeds supply %d", ErrInvalidSupplyChange, burn.String(), s.TotalSupply)
	}

	tokens := burn.Uint64()
	s.TotalSupply -= tokens
	return tokens, nil
}

// SetNetworkStatus records the sync status; a non-nil err marks the network as failed.
func (s *State) SetNetworkStatus(status NetworkStatus, height uint64, err error) {
	s.NetworkStatus = status
	s.LastSyncHeight = height
	s.NetworkError = ""
	if err != nil {
		s.NetworkStatus = NetworkError
		s.NetworkError = err.Error()
	}
}
