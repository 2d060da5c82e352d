// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

var (
	ErrNotConnected     = errors.New("wallet not connected")
	ErrUnsupportedKind  = errors.New("unsupported wallet kind")
	ErrNetworkMismatch  = errors.New("address does not belong to the configured network")
	ErrMalformedAddress = errors.New("malformed bitcoin address")
	ErrNoAddress        = errors.New("no wallet address configured")
)

// Connector: возможность кошелька, которую потребляет торговый экран.
// Сама интеграция с браузерными кошельками находится вне этого модуля.
type Connector interface {
	// Address возвращает адрес и true, если кошелёк подключён.
	Address() (string, bool)
	Connect(ctx context.Context, kind string) error
	Disconnect(ctx context.Context) error
	Network() string
}

// Префиксы bech32 по сетям
var bech32HRP = map[string]string{
	"mainnet": "bc",
	"testnet": "tb",
	"regtest": "bcrt",
}

// Версии base58check (P2PKH, P2SH) по сетям
var base58Versions = map[string][]byte{
	"mainnet": {0x00, 0x05},
	"testnet": {0x6f, 0xc4},
	"regtest": {0x6f, 0xc4},
}

// ValidateAddress checks that address decodes and belongs to network.
// Segwit (bech32/bech32m) and legacy base58check addresses are accepted.
func ValidateAddress(address, network string) error {
	hrp, ok := bech32HRP[network]
	if !ok {
		return fmt.Errorf("unknown network %q", network)
	}

	lower := strings.ToLower(address)
	if strings.HasPrefix(lower, "bc1") || strings.HasPrefix(lower, "tb1") || strings.HasPrefix(lower, "bcrt1") {
		gotHRP, data, encoding, err := bech32.DecodeGeneric(address)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedAddress, err)
		}
		if gotHRP != hrp {
			return ErrNetworkMismatch
		}
		if err := checkWitnessProgram(data, encoding); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedAddress, err)
		}
		return nil
	}

	_, version, err := base58.CheckDecode(address)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedAddress, err)
	}
	for _, v := range base58Versions[network] {
		if v == version {
			return nil
		}
	}
	return ErrNetworkMismatch
}

// checkWitnessProgram проверяет версию witness и длину программы:
// v0 - 20 или 32 байта в bech32, v1 (taproot) - 32 байта в bech32m,
// v2..v16 - от 2 до 40 байт в bech32m.
func checkWitnessProgram(data []byte, encoding bech32.Version) error {
	if len(data) < 1 {
		return errors.New("no witness version")
	}
	version := data[0]
	if version > 16 {
		return fmt.Errorf("invalid witness version %d", version)
	}

	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return err
	}
	if len(program) < 2 || len(program) > 40 {
		return fmt.Errorf("invalid witness program length %d", len(program))
	}

	switch version {
	case 0:
		if len(program) != 20 && len(program) != 32 {
			return fmt.Errorf("invalid witness v0 program length %d", len(program))
		}
		if encoding != bech32.Version0 {
			return errors.New("witness v0 requires bech32 checksum")
		}
	case 1:
		if len(program) != 32 {
			return fmt.Errorf("invalid witness v1 program length %d", len(program))
		}
		fallthrough
	default:
		if encoding != bech32.VersionM {
			return fmt.Errorf("witness v%d requires bech32m checksum", version)
		}
	}
	return nil
}

// StaticConnector хранит заранее заданный адрес и имитирует подключение.
type StaticConnector struct {
	mu        sync.RWMutex
	network   string
	address   string
	kinds     map[string]bool
	connected bool
	kind      string
}

// NewStaticConnector validates address against network up front.
// An empty address is allowed, Connect then fails with ErrNoAddress.
// An empty kinds list accepts any wallet kind.
func NewStaticConnector(network, address string, kinds ...string) (*StaticConnector, error) {
	if _, ok := bech32HRP[network]; !ok {
		return nil, fmt.Errorf("unknown network %q", network)
	}
	if address != "" {
		if err := ValidateAddress(address, network); err != nil {
			return nil, err
		}
	}
	allowed := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		allowed[strings.ToLower(k)] = true
	}
	return &StaticConnector{
		network: network,
		address: address,
		kinds:   allowed,
	}, nil
}

func (s *StaticConnector) Address() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.connected {
		return "", false
	}
	return s.address, true
}

func (s *StaticConnector) Connect(ctx context.Context, kind string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	kind = strings.ToLower(kind)
	if len(s.kinds) > 0 && !s.kinds[kind] {
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	if s.address == "" {
		return ErrNoAddress
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = true
	s.kind = kind
	return nil
}

func (s *StaticConnector) Disconnect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.connected {
		return ErrNotConnected
	}
	s.connected = false
	s.kind = ""
	return nil
}

func (s *StaticConnector) Network() string {
	return s.network
}

// Kind returns the wallet kind of the current connection.
func (s *StaticConnector) Kind() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kind
}
