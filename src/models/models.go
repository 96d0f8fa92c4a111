package models

import "time"

// Transaction is a single row of the accessory sales export. The column set is
// fixed; rows that do not conform are rejected at load time.
type Transaction struct {
	AddDate   time.Time `json:"adddate"` // zero when the source date was unparseable
	MarketID  string    `json:"marketid"`
	CustNo    string    `json:"custno"`
	Company   string    `json:"company"`
	Item      string    `json:"item"`
	ItemDesc  string    `json:"itmdesc"`
	Qty       float64   `json:"qty"`
	Accessory float64   `json:"Accessory"`
	MinPrice  float64   `json:"minprice"`
	Cost      float64   `json:"Cost"`
	Discount  float64   `json:"discount"`
	Profit    float64   `json:"Profit"`
	AddUser   string    `json:"adduser"`
	Fullname  string    `json:"Fullname"`
	InvNo     string    `json:"invno"`
	State     string    `json:"state"`
}

// UserCode is one row of the portal's user directory.
type UserCode struct {
	Username string
	Code     string // plaintext, or a bcrypt hash when it starts with "$2"
}

// TierResult is the outcome of the bonus tier step function.
// BonusPct is the display percentage (8, 10, 15 or 17).
type TierResult struct {
	Tier     string  `json:"tier"`
	BonusPct float64 `json:"bonus_pct"`
	Bonus    float64 `json:"bonus"`
}

// LeaderboardEntry is one ranked row of the monthly top-5 board.
type LeaderboardEntry struct {
	Rank           int     `json:"rank"`
	AddUser        string  `json:"adduser"`
	Fullname       string  `json:"fullname"`
	TotalAccessory float64 `json:"total_accessory"`
	TotalProfit    float64 `json:"total_profit"`
	Tier           string  `json:"tier"`
	BonusPct       float64 `json:"bonus_pct"`
	Bonus          float64 `json:"bonus"`
}

type LeaderboardResult struct {
	MonthLabel string             `json:"month_label"`
	Entries    []LeaderboardEntry `json:"entries"`
	NoData     bool               `json:"no_data"`
}

// SummaryResult is the aggregated view for a user-chosen period.
type SummaryResult struct {
	TotalQty       float64 `json:"total_qty"`
	TotalAccessory float64 `json:"total_accessory"`
	TotalProfit    float64 `json:"total_profit"`
	Tier           string  `json:"tier"`
	BonusPct       float64 `json:"bonus_pct"`
	Bonus          float64 `json:"bonus"`
	StartDate      string  `json:"start_date,omitempty"`
	EndDate        string  `json:"end_date,omitempty"`
	RowCount       int     `json:"row_count"`
	NoData         bool    `json:"no_data"`
}

// DetailRow mirrors Transaction with the date reformatted for display.
type DetailRow struct {
	Date      string  `json:"adddate"`
	MarketID  string  `json:"marketid"`
	CustNo    string  `json:"custno"`
	Company   string  `json:"company"`
	Item      string  `json:"item"`
	ItemDesc  string  `json:"itmdesc"`
	Qty       float64 `json:"qty"`
	Accessory float64 `json:"Accessory"`
	MinPrice  float64 `json:"minprice"`
	Cost      float64 `json:"Cost"`
	Discount  float64 `json:"discount"`
	Profit    float64 `json:"Profit"`
	AddUser   string  `json:"adduser"`
	Fullname  string  `json:"Fullname"`
	InvNo     string  `json:"invno"`
	State     string  `json:"state"`
}

type DetailResult struct {
	Rows   []DetailRow `json:"rows"`
	NoData bool        `json:"no_data"`
}

// ExportRow is one line of the spreadsheet export, grouped finer than the
// leaderboard: per (adduser, Fullname, marketid, company).
type ExportRow struct {
	MarketID       string  `json:"marketid"`
	Company        string  `json:"company"`
	AddUser        string  `json:"adduser"`
	Fullname       string  `json:"Fullname"`
	TotalQty       float64 `json:"total_qty"`
	TotalAccessory float64 `json:"total_accessory"`
	TotalProfit    float64 `json:"total_profit"`
	Tier           string  `json:"tier"`
	BonusPct       float64 `json:"bonus_pct"`
	Bonus          float64 `json:"bonus"`
}

// FilterOptions feeds the dashboard's cascading filter dropdowns.
type FilterOptions struct {
	Fullnames []string `json:"fullnames"`
	Users     []string `json:"users"`
	Companies []string `json:"companies"`
	MinDate   string   `json:"min_date,omitempty"`
	MaxDate   string   `json:"max_date,omitempty"`
}
