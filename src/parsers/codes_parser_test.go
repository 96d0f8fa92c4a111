package parsers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeCodesFile(t *testing.T, header []string, rows [][]string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "codes.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParseUserCodes(t *testing.T) {
	path := writeCodesFile(t,
		[]string{"username", "code"},
		[][]string{
			{"jdoe", "1234"},
			{"msmith", "5678"},
		})

	codes, err := ParseUserCodes(path)
	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Equal(t, "jdoe", codes[0].Username)
	assert.Equal(t, "1234", codes[0].Code)
	assert.Equal(t, "msmith", codes[1].Username)
}

func TestParseUserCodesHeaderCaseInsensitive(t *testing.T) {
	path := writeCodesFile(t,
		[]string{"Username", "CODE"},
		[][]string{{"jdoe", "1234"}})

	codes, err := ParseUserCodes(path)
	require.NoError(t, err)
	require.Len(t, codes, 1)
	assert.Equal(t, "jdoe", codes[0].Username)
}

func TestParseUserCodesExtraColumnsIgnored(t *testing.T) {
	path := writeCodesFile(t,
		[]string{"department", "username", "code"},
		[][]string{{"Sales", "jdoe", "1234"}})

	codes, err := ParseUserCodes(path)
	require.NoError(t, err)
	require.Len(t, codes, 1)
	assert.Equal(t, "1234", codes[0].Code)
}

func TestParseUserCodesSkipsBlankUsernames(t *testing.T) {
	path := writeCodesFile(t,
		[]string{"username", "code"},
		[][]string{
			{"", "1234"},
			{"jdoe", "5678"},
		})

	codes, err := ParseUserCodes(path)
	require.NoError(t, err)
	require.Len(t, codes, 1)
	assert.Equal(t, "jdoe", codes[0].Username)
}

func TestParseUserCodesMissingColumns(t *testing.T) {
	path := writeCodesFile(t,
		[]string{"name", "pin"},
		[][]string{{"jdoe", "1234"}})

	_, err := ParseUserCodes(path)
	assert.ErrorIs(t, err, ErrCodesSchemaMismatch)
}

func TestParseUserCodesMissingFile(t *testing.T) {
	_, err := ParseUserCodes(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}
