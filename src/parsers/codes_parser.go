package parsers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/username/twgreports/backend/src/logger"
	"github.com/username/twgreports/backend/src/models"
	"github.com/username/twgreports/backend/src/security/validation"
)

var ErrCodesSchemaMismatch = errors.New("user codes file must have 'username' and 'code' columns")

// ParseUserCodes loads the portal's user directory spreadsheet. Only the
// username and code columns are read; rows with a blank username are dropped.
func ParseUserCodes(path string) ([]models.UserCode, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening user codes file %s: %w", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading user codes sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrCodesSchemaMismatch
	}

	usernameCol, codeCol := -1, -1
	for i, name := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "username":
			usernameCol = i
		case "code":
			codeCol = i
		}
	}
	if usernameCol < 0 || codeCol < 0 {
		return nil, ErrCodesSchemaMismatch
	}

	var codes []models.UserCode
	for _, row := range rows[1:] {
		username := cellAt(row, usernameCol)
		if username == "" {
			continue
		}
		codes = append(codes, models.UserCode{
			Username: username,
			Code:     cellAt(row, codeCol),
		})
	}

	logger.L.Info("User codes file parsed", "users", len(codes))
	return codes, nil
}

// cellAt guards against the short rows excelize returns when trailing cells
// are empty. Cells are stripped of non-printable characters; stray control
// bytes in the code column would make every comparison fail.
func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(validation.StripUnprintable(row[col]))
}
