package services

import (
	"fmt"
	"os"

	"github.com/patrickmn/go-cache"

	"github.com/username/twgreports/backend/src/logger"
	"github.com/username/twgreports/backend/src/models"
	"github.com/username/twgreports/backend/src/parsers"
	"github.com/username/twgreports/backend/src/security"
)

const ckUserDirectory = "directory_%s_%d"

type directoryServiceImpl struct {
	codesPath string
	cache     *cache.Cache
}

func NewDirectoryService(codesPath string, c *cache.Cache) DirectoryService {
	return &directoryServiceImpl{
		codesPath: codesPath,
		cache:     c,
	}
}

func (s *directoryServiceImpl) load() ([]models.UserCode, error) {
	info, err := os.Stat(s.codesPath)
	if err != nil {
		return nil, fmt.Errorf("stat user codes file %s: %w", s.codesPath, err)
	}

	key := fmt.Sprintf(ckUserDirectory, s.codesPath, info.ModTime().UnixNano())
	if cached, found := s.cache.Get(key); found {
		return cached.([]models.UserCode), nil
	}

	codes, err := parsers.ParseUserCodes(s.codesPath)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, codes, cache.DefaultExpiration)
	return codes, nil
}

// Usernames lists distinct usernames in directory order for the login dropdown.
func (s *directoryServiceImpl) Usernames() ([]string, error) {
	codes, err := s.load()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	usernames := make([]string, 0, len(codes))
	for _, uc := range codes {
		if seen[uc.Username] {
			continue
		}
		seen[uc.Username] = true
		usernames = append(usernames, uc.Username)
	}
	return usernames, nil
}

// Authenticate checks the supplied code against the first directory row for
// the username. Unknown user and wrong code collapse into the same error.
func (s *directoryServiceImpl) Authenticate(username, code string) error {
	codes, err := s.load()
	if err != nil {
		return err
	}

	for _, uc := range codes {
		if uc.Username != username {
			continue
		}
		if err := security.CheckAccessCode(uc.Code, code); err != nil {
			logger.L.Warn("Access code mismatch", "username", username)
			return ErrInvalidCredentials
		}
		return nil
	}

	logger.L.Warn("Login attempt for unknown username", "username", username)
	return ErrInvalidCredentials
}
