package services

import (
	"fmt"
	"os"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/twgreports/backend/src/logger"
	"github.com/username/twgreports/backend/src/models"
	"github.com/username/twgreports/backend/src/parsers"
	"github.com/username/twgreports/backend/src/processors"
)

// Cache keys carry the file's mtime, so an updated export is picked up on the
// next request without serving stale rows.
const ckTransactionTable = "table_%s_%d"

type reportServiceImpl struct {
	csvPath   string
	parser    parsers.TransactionParser
	processor *processors.ReportProcessor
	cache     *cache.Cache
}

func NewReportService(csvPath string, parser parsers.TransactionParser, processor *processors.ReportProcessor, c *cache.Cache) ReportService {
	return &reportServiceImpl{
		csvPath:   csvPath,
		parser:    parser,
		processor: processor,
		cache:     c,
	}
}

// loadTable parses the transaction export, or returns the cached parse when
// the file has not changed since.
func (s *reportServiceImpl) loadTable() ([]models.Transaction, error) {
	info, err := os.Stat(s.csvPath)
	if err != nil {
		return nil, fmt.Errorf("stat transaction file %s: %w", s.csvPath, err)
	}

	key := fmt.Sprintf(ckTransactionTable, s.csvPath, info.ModTime().UnixNano())
	if cached, found := s.cache.Get(key); found {
		logger.L.Debug("Cache hit for transaction table", "path", s.csvPath)
		return cached.([]models.Transaction), nil
	}

	logger.L.Info("Cache miss for transaction table, parsing file", "path", s.csvPath)
	file, err := os.Open(s.csvPath)
	if err != nil {
		return nil, fmt.Errorf("open transaction file %s: %w", s.csvPath, err)
	}
	defer file.Close()

	rows, err := s.parser.Parse(file)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, rows, cache.DefaultExpiration)
	return rows, nil
}

func (s *reportServiceImpl) Leaderboard(username string, now time.Time) (*models.LeaderboardResult, error) {
	rows, err := s.loadTable()
	if err != nil {
		return nil, err
	}
	scoped := s.processor.ScopeToUser(rows, username)
	result := s.processor.Leaderboard(scoped, now)
	return &result, nil
}

// filteredRows runs the shared part of the summary/detail/export pipeline:
// identity scope, categorical filters, then the clipped date range.
func (s *reportServiceImpl) filteredRows(username string, f processors.Filters, now time.Time) ([]models.Transaction, time.Time, time.Time, bool, error) {
	rows, err := s.loadTable()
	if err != nil {
		return nil, time.Time{}, time.Time{}, false, err
	}

	scoped := s.processor.ScopeToUser(rows, username)
	filtered := s.processor.ApplyCategoricalFilters(scoped, f)

	start, end, hasDates := s.processor.ResolvePeriod(filtered, f, now)
	if hasDates {
		filtered = s.processor.FilterByPeriod(filtered, start, end)
	}
	return filtered, start, end, hasDates, nil
}

func (s *reportServiceImpl) Summary(username string, f processors.Filters, now time.Time) (*models.SummaryResult, error) {
	filtered, start, end, hasDates, err := s.filteredRows(username, f, now)
	if err != nil {
		return nil, err
	}

	summary := s.processor.Summarize(filtered)
	if hasDates {
		summary.StartDate = start.Format(time.DateOnly)
		summary.EndDate = end.Format(time.DateOnly)
	}
	return &summary, nil
}

func (s *reportServiceImpl) Detail(username string, f processors.Filters, now time.Time) (*models.DetailResult, error) {
	filtered, _, _, _, err := s.filteredRows(username, f, now)
	if err != nil {
		return nil, err
	}

	return &models.DetailResult{
		Rows:   s.processor.DetailRows(filtered),
		NoData: len(filtered) == 0,
	}, nil
}

func (s *reportServiceImpl) Export(username string, f processors.Filters, now time.Time) ([]byte, error) {
	filtered, _, _, _, err := s.filteredRows(username, f, now)
	if err != nil {
		return nil, err
	}

	exportRows := s.processor.ExportRows(filtered)
	return BuildBonusWorkbook(exportRows)
}

func (s *reportServiceImpl) FilterOptions(username string, f processors.Filters) (*models.FilterOptions, error) {
	rows, err := s.loadTable()
	if err != nil {
		return nil, err
	}

	scoped := s.processor.ScopeToUser(rows, username)
	filtered := s.processor.ApplyCategoricalFilters(scoped, f)
	opts := s.processor.FilterOptions(filtered)
	return &opts, nil
}

// InvalidateCache clears every cached parse, forcing a re-read on the next request.
func (s *reportServiceImpl) InvalidateCache() {
	s.cache.Flush()
	logger.L.Info("Report cache flushed")
}
