package processors

import (
	"sort"
	"time"

	"github.com/username/twgreports/backend/src/models"
	"github.com/username/twgreports/backend/src/utils"
)

const leaderboardSize = 5

// Filters are the dashboard's optional selections. Empty string means the
// "All" sentinel (filter disabled); nil dates mean "default to the current
// calendar month, clipped to the data".
type Filters struct {
	Fullname string
	AddUser  string
	Company  string
	Start    *time.Time
	End      *time.Time
}

// ReportProcessor runs the scoping, filtering and aggregation pipeline over
// the in-memory transaction table. It is stateless; every call is a complete
// independent pass.
type ReportProcessor struct {
	bonus     *BonusProcessor
	adminUser string
}

func NewReportProcessor(bonus *BonusProcessor, adminUser string) *ReportProcessor {
	return &ReportProcessor{
		bonus:     bonus,
		adminUser: adminUser,
	}
}

// ScopeToUser restricts the table to the acting identity. The administrative
// identity bypasses the restriction and sees every row.
func (p *ReportProcessor) ScopeToUser(rows []models.Transaction, username string) []models.Transaction {
	if username == p.adminUser {
		return rows
	}
	scoped := make([]models.Transaction, 0, len(rows))
	for _, tx := range rows {
		if tx.AddUser == username {
			scoped = append(scoped, tx)
		}
	}
	return scoped
}

// ApplyCategoricalFilters applies each selected exact-match filter in the same
// cascade order as the dashboard dropdowns. An empty selection disables the filter.
func (p *ReportProcessor) ApplyCategoricalFilters(rows []models.Transaction, f Filters) []models.Transaction {
	out := rows
	if f.Fullname != "" {
		out = filterRows(out, func(tx models.Transaction) bool { return tx.Fullname == f.Fullname })
	}
	if f.AddUser != "" {
		out = filterRows(out, func(tx models.Transaction) bool { return tx.AddUser == f.AddUser })
	}
	if f.Company != "" {
		out = filterRows(out, func(tx models.Transaction) bool { return tx.Company == f.Company })
	}
	return out
}

// ObservedDateRange returns the min and max parseable dates in the rows.
// ok is false when no row carries a usable date.
func (p *ReportProcessor) ObservedDateRange(rows []models.Transaction) (time.Time, time.Time, bool) {
	var min, max time.Time
	found := false
	for _, tx := range rows {
		if tx.AddDate.IsZero() {
			continue
		}
		d := utils.DateOnly(tx.AddDate)
		if !found {
			min, max = d, d
			found = true
			continue
		}
		if d.Before(min) {
			min = d
		}
		if d.After(max) {
			max = d
		}
	}
	return min, max, found
}

// ResolvePeriod turns the requested date selection into the effective period:
// the default is the current calendar month, and whatever was selected is
// clipped to the dates actually present in the rows. ok is false when the rows
// hold no usable dates at all, in which case no date filter applies.
func (p *ReportProcessor) ResolvePeriod(rows []models.Transaction, f Filters, now time.Time) (time.Time, time.Time, bool) {
	minDate, maxDate, ok := p.ObservedDateRange(rows)
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	monthStart, monthEnd := utils.MonthBounds(now)
	start := utils.LaterDate(minDate, monthStart)
	end := utils.EarlierDate(maxDate, monthEnd)

	if f.Start != nil {
		start = utils.DateOnly(*f.Start)
	}
	if f.End != nil {
		end = utils.DateOnly(*f.End)
	}

	// Clip to the observed range, inclusive both ends.
	start = utils.LaterDate(start, minDate)
	end = utils.EarlierDate(end, maxDate)

	return start, end, true
}

// FilterByPeriod keeps rows dated inside [start, end]. Rows with an unknown
// date never pass a date filter.
func (p *ReportProcessor) FilterByPeriod(rows []models.Transaction, start, end time.Time) []models.Transaction {
	return filterRows(rows, func(tx models.Transaction) bool {
		return utils.WithinRange(tx.AddDate, start, end)
	})
}

// Summarize totals the remaining rows and applies the tier table once to the totals.
func (p *ReportProcessor) Summarize(rows []models.Transaction) models.SummaryResult {
	var totalQty, totalAccessory, totalProfit float64
	for _, tx := range rows {
		totalQty += tx.Qty
		totalAccessory += tx.Accessory
		totalProfit += tx.Profit
	}

	tier := p.bonus.Calculate(totalAccessory, totalProfit)
	return models.SummaryResult{
		TotalQty:       totalQty,
		TotalAccessory: utils.RoundFloat(totalAccessory, 2),
		TotalProfit:    utils.RoundFloat(totalProfit, 2),
		Tier:           tier.Tier,
		BonusPct:       tier.BonusPct,
		Bonus:          tier.Bonus,
		RowCount:       len(rows),
		NoData:         len(rows) == 0,
	}
}

type bonusGroup struct {
	addUser        string
	fullname       string
	marketID       string
	company        string
	totalQty       float64
	totalAccessory float64
	totalProfit    float64
}

// Leaderboard builds the monthly top-5 board: rows within the calendar month
// containing now, grouped by (adduser, Fullname), bonus per group, sorted by
// bonus descending. The sort is stable, so ties keep the grouping order
// (first appearance in the table).
func (p *ReportProcessor) Leaderboard(rows []models.Transaction, now time.Time) models.LeaderboardResult {
	monthStart, monthEnd := utils.MonthBounds(now)
	monthRows := p.FilterByPeriod(rows, monthStart, monthEnd)

	groups := groupRows(monthRows, func(tx models.Transaction) string {
		return tx.AddUser + "\x00" + tx.Fullname
	})

	entries := make([]models.LeaderboardEntry, 0, len(groups))
	for _, g := range groups {
		tier := p.bonus.Calculate(g.totalAccessory, g.totalProfit)
		entries = append(entries, models.LeaderboardEntry{
			AddUser:        g.addUser,
			Fullname:       g.fullname,
			TotalAccessory: utils.RoundFloat(g.totalAccessory, 2),
			TotalProfit:    utils.RoundFloat(g.totalProfit, 2),
			Tier:           tier.Tier,
			BonusPct:       tier.BonusPct,
			Bonus:          tier.Bonus,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Bonus > entries[j].Bonus
	})
	if len(entries) > leaderboardSize {
		entries = entries[:leaderboardSize]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return models.LeaderboardResult{
		MonthLabel: utils.MonthLabel(now),
		Entries:    entries,
		NoData:     len(entries) == 0,
	}
}

// ExportRows regroups already-filtered summary rows by the finer
// (adduser, Fullname, marketid, company) key, with the same per-group tier math.
func (p *ReportProcessor) ExportRows(rows []models.Transaction) []models.ExportRow {
	groups := groupRows(rows, func(tx models.Transaction) string {
		return tx.AddUser + "\x00" + tx.Fullname + "\x00" + tx.MarketID + "\x00" + tx.Company
	})

	exportRows := make([]models.ExportRow, 0, len(groups))
	for _, g := range groups {
		tier := p.bonus.Calculate(g.totalAccessory, g.totalProfit)
		exportRows = append(exportRows, models.ExportRow{
			MarketID:       g.marketID,
			Company:        g.company,
			AddUser:        g.addUser,
			Fullname:       g.fullname,
			TotalQty:       g.totalQty,
			TotalAccessory: utils.RoundFloat(g.totalAccessory, 2),
			TotalProfit:    utils.RoundFloat(g.totalProfit, 2),
			Tier:           tier.Tier,
			BonusPct:       tier.BonusPct,
			Bonus:          tier.Bonus,
		})
	}
	return exportRows
}

// DetailRows lists raw rows with the date reformatted for display only.
func (p *ReportProcessor) DetailRows(rows []models.Transaction) []models.DetailRow {
	detail := make([]models.DetailRow, 0, len(rows))
	for _, tx := range rows {
		detail = append(detail, models.DetailRow{
			Date:      utils.FormatDisplayDate(tx.AddDate),
			MarketID:  tx.MarketID,
			CustNo:    tx.CustNo,
			Company:   tx.Company,
			Item:      tx.Item,
			ItemDesc:  tx.ItemDesc,
			Qty:       tx.Qty,
			Accessory: tx.Accessory,
			MinPrice:  tx.MinPrice,
			Cost:      tx.Cost,
			Discount:  tx.Discount,
			Profit:    tx.Profit,
			AddUser:   tx.AddUser,
			Fullname:  tx.Fullname,
			InvNo:     tx.InvNo,
			State:     tx.State,
		})
	}
	return detail
}

// FilterOptions collects the distinct values feeding the dashboard dropdowns,
// in first-appearance order like the source table.
func (p *ReportProcessor) FilterOptions(rows []models.Transaction) models.FilterOptions {
	opts := models.FilterOptions{
		Fullnames: distinctValues(rows, func(tx models.Transaction) string { return tx.Fullname }),
		Users:     distinctValues(rows, func(tx models.Transaction) string { return tx.AddUser }),
		Companies: distinctValues(rows, func(tx models.Transaction) string { return tx.Company }),
	}
	if min, max, ok := p.ObservedDateRange(rows); ok {
		opts.MinDate = min.Format(time.DateOnly)
		opts.MaxDate = max.Format(time.DateOnly)
	}
	return opts
}

func filterRows(rows []models.Transaction, keep func(models.Transaction) bool) []models.Transaction {
	out := make([]models.Transaction, 0, len(rows))
	for _, tx := range rows {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// groupRows accumulates per-key totals, preserving the order in which each
// key first appears. That order is the leaderboard's tie-break.
func groupRows(rows []models.Transaction, keyOf func(models.Transaction) string) []*bonusGroup {
	index := make(map[string]*bonusGroup)
	var ordered []*bonusGroup
	for _, tx := range rows {
		key := keyOf(tx)
		g, ok := index[key]
		if !ok {
			g = &bonusGroup{
				addUser:  tx.AddUser,
				fullname: tx.Fullname,
				marketID: tx.MarketID,
				company:  tx.Company,
			}
			index[key] = g
			ordered = append(ordered, g)
		}
		g.totalQty += tx.Qty
		g.totalAccessory += tx.Accessory
		g.totalProfit += tx.Profit
	}
	return ordered
}

func distinctValues(rows []models.Transaction, valueOf func(models.Transaction) string) []string {
	seen := make(map[string]bool)
	var values []string
	for _, tx := range rows {
		v := valueOf(tx)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values
}
