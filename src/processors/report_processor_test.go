package processors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/twgreports/backend/src/models"
)

func newTestProcessor() *ReportProcessor {
	return NewReportProcessor(NewBonusProcessor(), "Admin")
}

func tx(user, fullname, company string, date time.Time, accessory, profit float64) models.Transaction {
	return models.Transaction{
		AddDate:   date,
		AddUser:   user,
		Fullname:  fullname,
		Company:   company,
		MarketID:  "M1",
		Qty:       1,
		Accessory: accessory,
		Profit:    profit,
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestScopeToUser(t *testing.T) {
	p := newTestProcessor()
	rows := []models.Transaction{
		tx("jdoe", "John Doe", "Acme", day(2026, 9, 1), 100, 10),
		tx("msmith", "Mary Smith", "Acme", day(2026, 9, 2), 200, 20),
		tx("jdoe", "John Doe", "Acme", day(2026, 9, 3), 300, 30),
	}

	scoped := p.ScopeToUser(rows, "jdoe")
	require.Len(t, scoped, 2)
	for _, r := range scoped {
		assert.Equal(t, "jdoe", r.AddUser)
	}

	assert.Empty(t, p.ScopeToUser(rows, "nobody"))
}

func TestScopeToUserAdminSeesEverything(t *testing.T) {
	p := newTestProcessor()
	rows := []models.Transaction{
		tx("jdoe", "John Doe", "Acme", day(2026, 9, 1), 100, 10),
		tx("msmith", "Mary Smith", "Acme", day(2026, 9, 2), 200, 20),
	}

	assert.Len(t, p.ScopeToUser(rows, "Admin"), 2)
}

func TestApplyCategoricalFilters(t *testing.T) {
	p := newTestProcessor()
	rows := []models.Transaction{
		tx("jdoe", "John Doe", "Acme", day(2026, 9, 1), 100, 10),
		tx("jdoe", "John Doe", "Globex", day(2026, 9, 2), 200, 20),
		tx("msmith", "Mary Smith", "Acme", day(2026, 9, 3), 300, 30),
	}

	filtered := p.ApplyCategoricalFilters(rows, Filters{Company: "Acme"})
	require.Len(t, filtered, 2)

	filtered = p.ApplyCategoricalFilters(rows, Filters{Fullname: "John Doe", Company: "Globex"})
	require.Len(t, filtered, 1)
	assert.Equal(t, "Globex", filtered[0].Company)

	// Empty selections disable every filter.
	assert.Len(t, p.ApplyCategoricalFilters(rows, Filters{}), 3)
}

func TestFilterByPeriodInclusiveBounds(t *testing.T) {
	p := newTestProcessor()
	rows := []models.Transaction{
		tx("jdoe", "John Doe", "Acme", day(2026, 9, 1), 100, 10),
		tx("jdoe", "John Doe", "Acme", day(2026, 9, 15), 200, 20),
		tx("jdoe", "John Doe", "Acme", day(2026, 9, 30), 300, 30),
		tx("jdoe", "John Doe", "Acme", day(2026, 10, 1), 400, 40),
	}

	filtered := p.FilterByPeriod(rows, day(2026, 9, 1), day(2026, 9, 30))
	assert.Len(t, filtered, 3)

	// A row timestamped late on the end date still counts: date granularity.
	late := tx("jdoe", "John Doe", "Acme", time.Date(2026, 9, 30, 23, 59, 0, 0, time.UTC), 1, 1)
	filtered = p.FilterByPeriod([]models.Transaction{late}, day(2026, 9, 1), day(2026, 9, 30))
	assert.Len(t, filtered, 1)
}

func TestFilterByPeriodExcludesUnknownDates(t *testing.T) {
	p := newTestProcessor()
	rows := []models.Transaction{
		tx("jdoe", "John Doe", "Acme", time.Time{}, 100, 10),
		tx("jdoe", "John Doe", "Acme", day(2026, 9, 15), 200, 20),
	}

	filtered := p.FilterByPeriod(rows, day(2026, 9, 1), day(2026, 9, 30))
	require.Len(t, filtered, 1)
	assert.Equal(t, 200.0, filtered[0].Accessory)
}

func TestResolvePeriodDefaultsToCurrentMonthClipped(t *testing.T) {
	p := newTestProcessor()
	now := day(2026, 9, 20)
	rows := []models.Transaction{
		tx("jdoe", "John Doe", "Acme", day(2026, 9, 5), 100, 10),
		tx("jdoe", "John Doe", "Acme", day(2026, 9, 18), 200, 20),
	}

	start, end, ok := p.ResolvePeriod(rows, Filters{}, now)
	require.True(t, ok)
	// Month is Sep 1..30, but the data only spans Sep 5..18.
	assert.Equal(t, day(2026, 9, 5), start)
	assert.Equal(t, day(2026, 9, 18), end)
}

func TestResolvePeriodClipsUserSelection(t *testing.T) {
	p := newTestProcessor()
	now := day(2026, 9, 20)
	rows := []models.Transaction{
		tx("jdoe", "John Doe", "Acme", day(2026, 8, 10), 100, 10),
		tx("jdoe", "John Doe", "Acme", day(2026, 9, 18), 200, 20),
	}

	reqStart := day(2026, 1, 1)
	reqEnd := day(2026, 12, 31)
	start, end, ok := p.ResolvePeriod(rows, Filters{Start: &reqStart, End: &reqEnd}, now)
	require.True(t, ok)
	assert.Equal(t, day(2026, 8, 10), start)
	assert.Equal(t, day(2026, 9, 18), end)
}

func TestResolvePeriodNoUsableDates(t *testing.T) {
	p := newTestProcessor()
	rows := []models.Transaction{
		tx("jdoe", "John Doe", "Acme", time.Time{}, 100, 10),
	}

	_, _, ok := p.ResolvePeriod(rows, Filters{}, day(2026, 9, 20))
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	p := newTestProcessor()
	rows := []models.Transaction{
		tx("jdoe", "John Doe", "Acme", day(2026, 9, 1), 2000, 500),
		tx("jdoe", "John Doe", "Acme", day(2026, 9, 2), 1000, 500),
	}

	summary := p.Summarize(rows)
	assert.Equal(t, 3000.0, summary.TotalAccessory)
	assert.Equal(t, 1000.0, summary.TotalProfit)
	assert.Equal(t, "Tier 2", summary.Tier)
	assert.Equal(t, 10.0, summary.BonusPct)
	assert.Equal(t, 100.0, summary.Bonus)
	assert.Equal(t, 2, summary.RowCount)
	assert.False(t, summary.NoData)
}

func TestSummarizeIsIdempotent(t *testing.T) {
	p := newTestProcessor()
	rows := []models.Transaction{
		tx("jdoe", "John Doe", "Acme", day(2026, 9, 1), 4000, 300),
		tx("msmith", "Mary Smith", "Acme", day(2026, 9, 2), 7000, 900),
	}

	first := p.Summarize(rows)
	second := p.Summarize(rows)
	assert.Equal(t, first, second)
}

func TestSummarizeEmpty(t *testing.T) {
	p := newTestProcessor()

	summary := p.Summarize(nil)
	assert.True(t, summary.NoData)
	assert.Equal(t, 0, summary.RowCount)
	assert.Equal(t, "Tier 1", summary.Tier)
	assert.Equal(t, 0.0, summary.Bonus)
}

func TestLeaderboardTopFiveDescending(t *testing.T) {
	p := newTestProcessor()
	now := day(2026, 9, 20)

	var rows []models.Transaction
	// Seven sellers with increasing profit, all inside September.
	users := []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7"}
	for i, u := range users {
		rows = append(rows, tx(u, "User "+u, "Acme", day(2026, 9, 10), 100, float64((i+1)*100)))
	}

	board := p.Leaderboard(rows, now)
	require.Len(t, board.Entries, 5)
	assert.Equal(t, "Sep-26", board.MonthLabel)
	assert.False(t, board.NoData)

	for i, entry := range board.Entries {
		assert.Equal(t, i+1, entry.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, board.Entries[i-1].Bonus, entry.Bonus)
		}
	}
	assert.Equal(t, "u7", board.Entries[0].AddUser)
	assert.Equal(t, "u3", board.Entries[4].AddUser)
}

func TestLeaderboardTieKeepsFirstAppearanceOrder(t *testing.T) {
	p := newTestProcessor()
	now := day(2026, 9, 20)
	rows := []models.Transaction{
		tx("first", "First Seller", "Acme", day(2026, 9, 1), 100, 500),
		tx("second", "Second Seller", "Acme", day(2026, 9, 2), 100, 500),
	}

	board := p.Leaderboard(rows, now)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "first", board.Entries[0].AddUser)
	assert.Equal(t, "second", board.Entries[1].AddUser)
}

func TestLeaderboardOnlyCurrentMonth(t *testing.T) {
	p := newTestProcessor()
	now := day(2026, 9, 20)
	rows := []models.Transaction{
		tx("old", "Old Seller", "Acme", day(2026, 8, 31), 100, 9999),
		tx("cur", "Current Seller", "Acme", day(2026, 9, 5), 100, 10),
	}

	board := p.Leaderboard(rows, now)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, "cur", board.Entries[0].AddUser)
}

func TestLeaderboardEmptyMonth(t *testing.T) {
	p := newTestProcessor()

	board := p.Leaderboard(nil, day(2026, 9, 20))
	assert.True(t, board.NoData)
	assert.Empty(t, board.Entries)
}

func TestExportRowsGroupFinerThanLeaderboard(t *testing.T) {
	p := newTestProcessor()
	rows := []models.Transaction{
		{AddUser: "jdoe", Fullname: "John Doe", MarketID: "M1", Company: "Acme", Qty: 1, Accessory: 100, Profit: 10},
		{AddUser: "jdoe", Fullname: "John Doe", MarketID: "M1", Company: "Acme", Qty: 2, Accessory: 200, Profit: 20},
		{AddUser: "jdoe", Fullname: "John Doe", MarketID: "M2", Company: "Acme", Qty: 3, Accessory: 300, Profit: 30},
	}

	exportRows := p.ExportRows(rows)
	require.Len(t, exportRows, 2)

	assert.Equal(t, "M1", exportRows[0].MarketID)
	assert.Equal(t, 3.0, exportRows[0].TotalQty)
	assert.Equal(t, 300.0, exportRows[0].TotalAccessory)
	assert.Equal(t, "M2", exportRows[1].MarketID)
	assert.Equal(t, 300.0, exportRows[1].TotalAccessory)
}

func TestDetailRowsFormatDates(t *testing.T) {
	p := newTestProcessor()
	rows := []models.Transaction{
		tx("jdoe", "John Doe", "Acme", time.Date(2026, 9, 5, 14, 30, 0, 0, time.UTC), 100, 10),
		tx("jdoe", "John Doe", "Acme", time.Time{}, 200, 20),
	}

	detail := p.DetailRows(rows)
	require.Len(t, detail, 2)
	assert.Equal(t, "09/05/2026 02:30 PM", detail[0].Date)
	assert.Equal(t, "unknown", detail[1].Date)
}

func TestFilterOptions(t *testing.T) {
	p := newTestProcessor()
	rows := []models.Transaction{
		tx("jdoe", "John Doe", "Acme", day(2026, 9, 5), 100, 10),
		tx("msmith", "Mary Smith", "Globex", day(2026, 9, 1), 200, 20),
		tx("jdoe", "John Doe", "Acme", day(2026, 9, 9), 300, 30),
	}

	opts := p.FilterOptions(rows)
	assert.Equal(t, []string{"John Doe", "Mary Smith"}, opts.Fullnames)
	assert.Equal(t, []string{"jdoe", "msmith"}, opts.Users)
	assert.Equal(t, []string{"Acme", "Globex"}, opts.Companies)
	assert.Equal(t, "2026-09-01", opts.MinDate)
	assert.Equal(t, "2026-09-09", opts.MaxDate)
}
