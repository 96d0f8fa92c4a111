package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidHandoffToken is the single outcome for every verification failure.
// Malformed, tampered and expired tokens are deliberately indistinguishable to
// the caller so the response never reveals which check failed.
var ErrInvalidHandoffToken = errors.New("invalid or expired handoff token")

// HandoffService mints and verifies the bearer token the portal appends to the
// dashboard URL. The token is stateless: "{username}|{issuedAt}|{signature}"
// where signature = hex(HMAC-SHA256(secret, "{username}|{issuedAt}")).
// Validity is recomputed from the token's own fields and the wall clock on
// every request; nothing is stored and there is no revocation.
type HandoffService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewHandoffService(secret string, ttl time.Duration) *HandoffService {
	return &HandoffService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a token binding username to the current Unix time.
func (s *HandoffService) Issue(username string) string {
	return s.issueAt(username, s.now().Unix())
}

func (s *HandoffService) issueAt(username string, issuedAt int64) string {
	payload := username + "|" + strconv.FormatInt(issuedAt, 10)
	return payload + "|" + s.sign(payload)
}

// Verify returns the embedded username when the signature matches and the
// token is at most ttl old (inclusive boundary). The username is asserted by
// the token alone; it is not cross-checked against the user directory.
func (s *HandoffService) Verify(token string) (string, error) {
	parts := strings.Split(token, "|")
	if len(parts) != 3 {
		return "", ErrInvalidHandoffToken
	}

	username := parts[0]
	issuedAt, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", ErrInvalidHandoffToken
	}

	expected := s.sign(username + "|" + parts[1])
	if !hmac.Equal([]byte(parts[2]), []byte(expected)) {
		return "", ErrInvalidHandoffToken
	}

	if s.now().Unix()-issuedAt > int64(s.ttl.Seconds()) {
		return "", ErrInvalidHandoffToken
	}

	return username, nil
}

func (s *HandoffService) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
