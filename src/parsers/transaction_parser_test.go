package parsers

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/twgreports/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

const goodHeader = "adddate,marketid,custno,company,item,itmdesc,qty,Accessory,minprice,Cost,discount,Profit,adduser,Fullname,invno,state"

func TestParseGoodFile(t *testing.T) {
	csvData := goodHeader + "\n" +
		"2026-09-05,M1,C100,Acme Wireless,SKU1,Car Charger,2,39.98,10.00,12.00,0.00,15.98,jdoe,John Doe,INV-1,TX\n" +
		`"9/6/2026",M2,C200,Globex,SKU2,Screen Protector,1,"$1,299.00",5.00,6.00,1.00,8.99,msmith,Mary Smith,INV-2,OK` + "\n"

	parser := NewCSVTransactionParser()
	rows, err := parser.Parse(strings.NewReader(csvData))

	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "M1", rows[0].MarketID)
	assert.Equal(t, "Acme Wireless", rows[0].Company)
	assert.Equal(t, 39.98, rows[0].Accessory)
	assert.Equal(t, 15.98, rows[0].Profit)
	assert.Equal(t, "jdoe", rows[0].AddUser)
	assert.Equal(t, 2026, rows[0].AddDate.Year())

	// Currency formatting is tolerated.
	assert.Equal(t, 1299.00, rows[1].Accessory)
}

func TestParseRejectsWrongHeader(t *testing.T) {
	csvData := "date,market,who\n2026-09-05,M1,jdoe\n"

	parser := NewCSVTransactionParser()
	_, err := parser.Parse(strings.NewReader(csvData))

	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestParseRejectsReorderedHeader(t *testing.T) {
	// Same columns, wrong order: the schema is positional.
	csvData := "marketid,adddate,custno,company,item,itmdesc,qty,Accessory,minprice,Cost,discount,Profit,adduser,Fullname,invno,state\n"

	parser := NewCSVTransactionParser()
	_, err := parser.Parse(strings.NewReader(csvData))

	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestParseSkipsShortRows(t *testing.T) {
	csvData := goodHeader + "\n" +
		"2026-09-05,M1,C100\n" +
		"2026-09-06,M1,C100,Acme,SKU1,Charger,1,10.00,5.00,6.00,0.00,4.00,jdoe,John Doe,INV-1,TX\n"

	parser := NewCSVTransactionParser()
	rows, err := parser.Parse(strings.NewReader(csvData))

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "INV-1", rows[0].InvNo)
}

func TestParseSkipsRowsWithBadNumerics(t *testing.T) {
	csvData := goodHeader + "\n" +
		"2026-09-05,M1,C100,Acme,SKU1,Charger,one,10.00,5.00,6.00,0.00,4.00,jdoe,John Doe,INV-1,TX\n" +
		"2026-09-06,M1,C100,Acme,SKU1,Charger,1,10.00,5.00,6.00,0.00,4.00,jdoe,John Doe,INV-2,TX\n"

	parser := NewCSVTransactionParser()
	rows, err := parser.Parse(strings.NewReader(csvData))

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "INV-2", rows[0].InvNo)
}

func TestParseKeepsRowsWithUnparseableDates(t *testing.T) {
	csvData := goodHeader + "\n" +
		"not-a-date,M1,C100,Acme,SKU1,Charger,1,10.00,5.00,6.00,0.00,4.00,jdoe,John Doe,INV-1,TX\n"

	parser := NewCSVTransactionParser()
	rows, err := parser.Parse(strings.NewReader(csvData))

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].AddDate.IsZero())
	assert.Equal(t, "INV-1", rows[0].InvNo)
}

func TestParseEmptyNumericCellsAreZero(t *testing.T) {
	csvData := goodHeader + "\n" +
		"2026-09-05,M1,C100,Acme,SKU1,Charger,1,10.00,,,,4.00,jdoe,John Doe,INV-1,TX\n"

	parser := NewCSVTransactionParser()
	rows, err := parser.Parse(strings.NewReader(csvData))

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 0.0, rows[0].MinPrice)
	assert.Equal(t, 0.0, rows[0].Cost)
	assert.Equal(t, 0.0, rows[0].Discount)
}
