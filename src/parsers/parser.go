package parsers

import (
	"io"

	"github.com/username/twgreports/backend/src/models"
)

type TransactionParser interface {
	Parse(file io.Reader) ([]models.Transaction, error)
}
