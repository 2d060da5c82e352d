package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/otori-vision/ovt-trader/internal/market"
)

// Format represents the export format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json"; empty means csv.
func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", raw)
	}
}

// Options configures the export behavior
type Options struct {
	Format Format
	Since  time.Time
	Until  time.Time
	Side   market.Side     // пусто - обе стороны
	Status market.TxStatus // пусто - любой статус
}

// CSVHeaders колонки CSV-выгрузки
func CSVHeaders() []string {
	return []string{"id", "type", "amount", "price", "timestamp", "status"}
}

func toCSV(tx market.Transaction) []string {
	return []string{
		tx.ID,
		string(tx.Side),
		strconv.FormatInt(tx.Amount, 10),
		strconv.FormatFloat(tx.Price, 'f', -1, 64),
		tx.Timestamp.UTC().Format(time.RFC3339),
		string(tx.Status),
	}
}

// TransactionExporter handles transaction history export
type TransactionExporter struct {
	logger *zap.Logger
}

// NewTransactionExporter creates a new exporter
func NewTransactionExporter(logger *zap.Logger) *TransactionExporter {
	return &TransactionExporter{
		logger: logger.Named("export"),
	}
}

// Filter applies the options and returns the matching transactions oldest first.
func (te *TransactionExporter) Filter(txs []market.Transaction, opts Options) []market.Transaction {
	filtered := make([]market.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !opts.Since.IsZero() && tx.Timestamp.Before(opts.Since) {
			continue
		}
		if !opts.Until.IsZero() && tx.Timestamp.After(opts.Until) {
			continue
		}
		if opts.Side != "" && tx.Side != opts.Side {
			continue
		}
		if opts.Status != "" && tx.Status != opts.Status {
			continue
		}
		filtered = append(filtered, tx)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.Before(filtered[j].Timestamp)
	})
	return filtered
}

// Write filters txs and writes them to w. Returns the number exported.
func (te *TransactionExporter) Write(w io.Writer, txs []market.Transaction, opts Options) (int, error) {
	filtered := te.Filter(txs, opts)

	var err error
	switch opts.Format {
	case FormatCSV, "":
		err = writeCSV(w, filtered)
	case FormatJSON:
		err = writeJSON(w, filtered)
	default:
		err = fmt.Errorf("unsupported format: %s", opts.Format)
	}
	if err != nil {
		return 0, err
	}

	te.logger.Info("Transactions exported",
		zap.Int("count", len(filtered)),
		zap.String("format", string(opts.Format)))
	return len(filtered), nil
}

func writeCSV(w io.Writer, txs []market.Transaction) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(CSVHeaders()); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, tx := range txs {
		if err := writer.Write(toCSV(tx)); err != nil {
			return fmt.Errorf("failed to write transaction: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeJSON(w io.Writer, txs []market.Transaction) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	exportData := struct {
		ExportTime       time.Time            `json:"export_time"`
		TransactionCount int                  `json:"transaction_count"`
		Transactions     []market.Transaction `json:"transactions"`
		Summary          Summary              `json:"summary"`
	}{
		ExportTime:       time.Now().UTC(),
		TransactionCount: len(txs),
		Transactions:     txs,
		Summary:          Summarize(txs),
	}

	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// Summary contains summary statistics for exported transactions
type Summary struct {
	TotalTransactions int       `json:"total_transactions"`
	ConfirmedCount    int       `json:"confirmed_count"`
	BuyCount          int       `json:"buy_count"`
	SellCount         int       `json:"sell_count"`
	BuyVolume         int64     `json:"buy_volume"`
	SellVolume        int64     `json:"sell_volume"`
	AvgBuyPrice       float64   `json:"avg_buy_price"`
	AvgSellPrice      float64   `json:"avg_sell_price"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
}

// Summarize computes counts, volumes and volume-weighted average prices.
// txs must be sorted oldest first.
func Summarize(txs []market.Transaction) Summary {
	summary := Summary{TotalTransactions: len(txs)}
	if len(txs) == 0 {
		return summary
	}
	summary.StartDate = txs[0].Timestamp
	summary.EndDate = txs[len(txs)-1].Timestamp

	buyNotional, sellNotional := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		if tx.Status == market.TxConfirmed {
			summary.ConfirmedCount++
		}
		notional := decimal.NewFromInt(tx.Amount).Mul(decimal.NewFromFloat(tx.Price))
		switch tx.Side {
		case market.SideBuy:
			summary.BuyCount++
			summary.BuyVolume += tx.Amount
			buyNotional = buyNotional.Add(notional)
		case market.SideSell:
			summary.SellCount++
			summary.SellVolume += tx.Amount
			sellNotional = sellNotional.Add(notional)
		}
	}

	if summary.BuyVolume > 0 {
		summary.AvgBuyPrice, _ = buyNotional.Div(decimal.NewFromInt(summary.BuyVolume)).Round(4).Float64()
	}
	if summary.SellVolume > 0 {
		summary.AvgSellPrice, _ = sellNotional.Div(decimal.NewFromInt(summary.SellVolume)).Round(4).Float64()
	}
	return summary
}
