package parsers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/username/twgreports/backend/src/logger"
	"github.com/username/twgreports/backend/src/models"
	"github.com/username/twgreports/backend/src/utils"
)

// transactionHeader is the declared schema of the accessory sales export.
// The header of the loaded file must match it exactly; rows that don't
// conform to it are rejected and logged, never silently reshaped.
var transactionHeader = []string{
	"adddate", "marketid", "custno", "company", "item", "itmdesc", "qty",
	"Accessory", "minprice", "Cost", "discount", "Profit",
	"adduser", "Fullname", "invno", "state",
}

var ErrSchemaMismatch = errors.New("transaction file header does not match the expected schema")

type CSVTransactionParser struct{}

func NewCSVTransactionParser() *CSVTransactionParser { return &CSVTransactionParser{} }

// Parse reads the whole export. Rows with the wrong field count or unparseable
// numeric fields are skipped with a warning. Rows with an unparseable adddate
// are kept with a zero date so they still show up in unfiltered detail
// listings while staying out of every date-filtered view.
func (p *CSVTransactionParser) Parse(file io.Reader) ([]models.Transaction, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading transaction file header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	line := 1
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) && errors.Is(parseErr.Err, csv.ErrFieldCount) {
				logger.L.Warn("Skipping transaction row with wrong field count", "line", line, "fields", len(record))
				continue
			}
			return nil, fmt.Errorf("reading transaction file at line %d: %w", line, err)
		}

		tx, err := parseRecord(record)
		if err != nil {
			logger.L.Warn("Skipping nonconforming transaction row", "line", line, "error", err)
			continue
		}
		transactions = append(transactions, tx)
	}

	logger.L.Info("Transaction file parsed", "rows", len(transactions))
	return transactions, nil
}

func validateHeader(header []string) error {
	if len(header) != len(transactionHeader) {
		return fmt.Errorf("%w: got %d columns, want %d", ErrSchemaMismatch, len(header), len(transactionHeader))
	}
	for i, name := range transactionHeader {
		if strings.TrimSpace(header[i]) != name {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrSchemaMismatch, i, header[i], name)
		}
	}
	return nil
}

func parseRecord(record []string) (models.Transaction, error) {
	qty, err := parseAmount(record[6])
	if err != nil {
		return models.Transaction{}, fmt.Errorf("qty: %w", err)
	}
	accessory, err := parseAmount(record[7])
	if err != nil {
		return models.Transaction{}, fmt.Errorf("Accessory: %w", err)
	}
	minPrice, err := parseAmount(record[8])
	if err != nil {
		return models.Transaction{}, fmt.Errorf("minprice: %w", err)
	}
	cost, err := parseAmount(record[9])
	if err != nil {
		return models.Transaction{}, fmt.Errorf("Cost: %w", err)
	}
	discount, err := parseAmount(record[10])
	if err != nil {
		return models.Transaction{}, fmt.Errorf("discount: %w", err)
	}
	profit, err := parseAmount(record[11])
	if err != nil {
		return models.Transaction{}, fmt.Errorf("Profit: %w", err)
	}

	return models.Transaction{
		AddDate:   utils.ParseTransactionDate(strings.TrimSpace(record[0])),
		MarketID:  strings.TrimSpace(record[1]),
		CustNo:    strings.TrimSpace(record[2]),
		Company:   strings.TrimSpace(record[3]),
		Item:      strings.TrimSpace(record[4]),
		ItemDesc:  strings.TrimSpace(record[5]),
		Qty:       qty,
		Accessory: accessory,
		MinPrice:  minPrice,
		Cost:      cost,
		Discount:  discount,
		Profit:    profit,
		AddUser:   strings.TrimSpace(record[12]),
		Fullname:  strings.TrimSpace(record[13]),
		InvNo:     strings.TrimSpace(record[14]),
		State:     strings.TrimSpace(record[15]),
	}, nil
}

// parseAmount tolerates the currency formatting that shows up in exports
// ("$1,234.56"). Empty cells count as zero.
func parseAmount(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, nil
	}
	return strconv.ParseFloat(cleaned, 64)
}
