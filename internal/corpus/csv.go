package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/spendwise/spendcat/internal/model"
)

// Header is the CSV header for transactions.csv.
const Header = "date,description,amount,category,user_id"

const (
	numFields  = 5
	dateFormat = "2006-01-02"
	colDate    = 0
	colDesc    = 1
	colAmount  = 2
	colCat     = 3
	colUserID  = 4
)

// Read reads all transactions from a transactions.csv reader.
func Read(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading corpus CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var txs []model.Transaction
	for i, rec := range records[1:] {
		tx, err := Unmarshal(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// Write writes transactions to a transactions.csv writer (including header).
func Write(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, tx := range txs {
		if err := cw.Write(Marshal(tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// ReadFile reads all transactions from the corpus file at path.
func ReadFile(path string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus %s: %w", path, err)
	}
	defer f.Close()

	txs, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading corpus %s: %w", path, err)
	}
	return txs, nil
}

// WriteFile writes transactions to the corpus file at path.
func WriteFile(path string, txs []model.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating corpus %s: %w", path, err)
	}
	defer f.Close()

	if err := Write(f, txs); err != nil {
		return fmt.Errorf("writing corpus %s: %w", path, err)
	}
	return nil
}

// Marshal converts a Transaction to a CSV row ([]string). A nil date is
// written as an empty field.
func Marshal(tx model.Transaction) []string {
	row := make([]string, numFields)
	if tx.Date != nil {
		row[colDate] = tx.Date.Format(dateFormat)
	}
	row[colDesc] = tx.Description
	row[colAmount] = tx.Amount.StringFixed(2)
	row[colCat] = tx.Category
	row[colUserID] = tx.UserID
	return row
}

// Unmarshal converts a CSV row to a Transaction.
func Unmarshal(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var date *time.Time
	if record[colDate] != "" {
		d, err := time.Parse(dateFormat, record[colDate])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
		}
		date = &d
	}

	if strings.TrimSpace(record[colDesc]) == "" {
		return model.Transaction{}, fmt.Errorf("empty description")
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return model.Transaction{
		Date:        date,
		Description: record[colDesc],
		Amount:      amount,
		Category:    record[colCat],
		UserID:      record[colUserID],
	}, nil
}
