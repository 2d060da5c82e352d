package nav

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store guards a single State for concurrent API access.
type Store struct {
	mu     sync.RWMutex
	state  State
	now    func() time.Time
	logger *zap.Logger
}

// NewStore creates a store around the initial state.
func NewStore(initial State, logger *zap.Logger) *Store {
	return &Store{
		state:  initial,
		now:    time.Now,
		logger: logger.Named("nav"),
	}
}

// Snapshot returns a copy of the current state.
func (st *Store) Snapshot() State {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.state
}

// UpdateNAV validates and applies a new NAV value.
func (st *Store) UpdateNAV(newNAVSats uint64) (State, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	prev := st.state.NAVSats
	if err := st.state.UpdateNAV(newNAVSats, st.now()); err != nil {
		st.logger.Warn("NAV update rejected",
			zap.Uint64("current_nav_sats", prev),
			zap.Uint64("requested_nav_sats", newNAVSats),
			zap.Error(err))
		return st.state, err
	}

	st.logger.Info("NAV updated",
		zap.Uint64("previous_nav_sats", prev),
		zap.Uint64("nav_sats", newNAVSats))
	return st.state, nil
}

// BuybackBurn processes a buyback payment and returns the burned amount.
func (st *Store) BuybackBurn(paymentSats uint64) (uint64, State, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	burned, err := st.state.ProcessBuybackBurn(paymentSats)
	if err != nil {
		st.logger.Warn("Buyback burn rejected",
			zap.Uint64("payment_sats", paymentSats),
			zap.Error(err))
		return 0, st.state, err
	}

	st.logger.Info("Buyback burn processed",
		zap.Uint64("payment_sats", paymentSats),
		zap.Uint64("burned", burned),
		zap.Uint64("total_supply", st.state.TotalSupply))
	return burned, st.state, nil
}

// SetNetworkStatus records the backend status, keeping the last sync height.
func (st *Store) SetNetworkStatus(status NetworkStatus, err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.state.SetNetworkStatus(status, st.state.LastSyncHeight, err)
}
