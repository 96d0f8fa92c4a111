package services

import (
	"errors"
	"time"

	"github.com/username/twgreports/backend/src/models"
	"github.com/username/twgreports/backend/src/processors"
)

// ErrInvalidCredentials deliberately covers both unknown usernames and wrong
// codes so the portal never reveals which one it was.
var ErrInvalidCredentials = errors.New("invalid username or code")

// ReportService serves the dashboard's views over the transaction export.
// Every call is scoped to the acting identity before anything else happens.
type ReportService interface {
	Leaderboard(username string, now time.Time) (*models.LeaderboardResult, error)
	Summary(username string, f processors.Filters, now time.Time) (*models.SummaryResult, error)
	Detail(username string, f processors.Filters, now time.Time) (*models.DetailResult, error)
	Export(username string, f processors.Filters, now time.Time) ([]byte, error)
	FilterOptions(username string, f processors.Filters) (*models.FilterOptions, error)
	InvalidateCache()
}

// DirectoryService is the portal's view of the username/code directory.
type DirectoryService interface {
	Usernames() ([]string, error)
	Authenticate(username, code string) error
}
