package challenge

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lrclib/lrclib/src/catalog"
	"github.com/lrclib/lrclib/src/infra/cache"
)

const (
	prefixLength   = 32
	prefixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	cacheKeyPrefix = "challenge:"

	// baseRate is the publish volume per ten minutes the base target is
	// calibrated for. Above it the target shrinks proportionally.
	baseRate = 100
)

// baseTarget is the easiest target ever issued: 24 leading zero bits,
// then 0xFF. A solution needs about 2^24 hash attempts on average.
var baseTarget, _ = new(big.Int).SetString("000000FF"+strings.Repeat("0", 56), 16)

// Service issues and verifies proof-of-work challenges gating the
// publish endpoints. Targets adapt to the recent publish volume, which
// a background task samples from the store once a minute.
type Service struct {
	cache *cache.Cache
	store catalog.Store

	recentPublishes atomic.Int64
}

// NewService creates a new challenge service.
func NewService(challengeCache *cache.Cache, store catalog.Store) *Service {
	return &Service{cache: challengeCache, store: store}
}

// Issue generates a fresh challenge and stores it for verification.
// The prefix is cryptographically random; the target reflects the
// current publish rate.
func (s *Service) Issue() (catalog.Challenge, error) {
	prefix, err := randomPrefix()
	if err != nil {
		return catalog.Challenge{}, fmt.Errorf("failed to generate challenge prefix: %w", err)
	}

	target := s.currentTarget()
	s.cache.Set(cacheKeyPrefix+prefix, target)

	return catalog.Challenge{Prefix: prefix, Target: target}, nil
}

// Verify checks a "<prefix>:<nonce>" publish token against its stored
// challenge and consumes the challenge on success. The cache removal
// doubles as the accept gate, so two racing verifications of the same
// token are acknowledged at most once.
func (s *Service) Verify(token string) bool {
	parts := strings.Split(token, ":")
	if len(parts) != 2 {
		return false
	}
	prefix, nonce := parts[0], parts[1]

	target, ok := s.cache.Get(cacheKeyPrefix + prefix)
	if !ok {
		return false
	}
	if !verifyAnswer(prefix, target, nonce) {
		return false
	}
	return s.cache.Remove(cacheKeyPrefix + prefix)
}

// verifyAnswer reports whether SHA-256(prefix || nonce), read as a
// big-endian integer, is at most the hex-encoded target.
func verifyAnswer(prefix, target, nonce string) bool {
	sum := sha256.Sum256([]byte(prefix + nonce))

	targetBytes, err := hex.DecodeString(target)
	if err != nil {
		return false
	}
	if len(targetBytes) != len(sum) {
		return false
	}
	return bytes.Compare(sum[:], targetBytes) <= 0
}

// currentTarget renders the target for new challenges as 64 uppercase
// hex digits. With R recent publishes above baseRate the base target is
// scaled by baseRate/R, so targets never increase as volume grows.
func (s *Service) currentTarget() string {
	r := s.recentPublishes.Load()
	if r <= baseRate {
		return fmt.Sprintf("%064X", baseTarget)
	}
	target := new(big.Int).Mul(baseTarget, big.NewInt(baseRate))
	target.Div(target, big.NewInt(r))
	return fmt.Sprintf("%064X", target)
}

// Start spawns the task refreshing the recent publish count once a
// minute, keeping the store query off the issue path.
func (s *Service) Start(ctx context.Context) {
	s.refreshRate(ctx)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.refreshRate(ctx)
			}
		}
	}()
}

func (s *Service) refreshRate(ctx context.Context) {
	count, err := s.store.RecentPublishCount(ctx)
	if err != nil {
		slog.Error("Failed to refresh recent publish count", "error", err)
		return
	}
	s.recentPublishes.Store(count)
}

func randomPrefix() (string, error) {
	alphabetLen := big.NewInt(int64(len(prefixAlphabet)))
	buf := make([]byte, prefixLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		buf[i] = prefixAlphabet[n.Int64()]
	}
	return string(buf), nil
}
