package usecase

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/astatracker/fantacalcio-api/internal/domain/user"
)

// seqIDGenerator hands out "<prefix>-001", "<prefix>-002", ... so tests can
// predict generated ids. Safe for concurrent batches.
type seqIDGenerator struct {
	prefix string
	n      atomic.Int64
}

func (g *seqIDGenerator) NewID() (string, error) {
	return fmt.Sprintf("%s-%03d", g.prefix, g.n.Add(1)), nil
}

// stubTokens is a transparent token codec: the token is "tok-" plus the
// user id, so tests never touch real signing.
type stubTokens struct{}

func (stubTokens) Issue(principal user.Principal, now time.Time) (string, time.Time, error) {
	return "tok-" + principal.UserID, now.Add(time.Hour), nil
}

func (stubTokens) Verify(token string) (user.Principal, error) {
	userID, ok := strings.CutPrefix(token, "tok-")
	if !ok || userID == "" {
		return user.Principal{}, fmt.Errorf("malformed token %q", token)
	}
	return user.Principal{UserID: userID}, nil
}
