package httpapi

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/vetevidence/vetagent/internal/service/billing"
)

// Identity is the resolved caller of an authenticated request.
type Identity struct {
	UserID string
	Tier   billing.Tier
}

// Validator resolves an API key to a caller. Production deployments
// inject their own; the static validator covers key-list setups.
type Validator interface {
	Validate(ctx context.Context, apiKey string) (Identity, bool)
}

// StaticValidator accepts a fixed key list. User ids are derived from
// the key hash so logs and usage rows never contain the key itself.
type StaticValidator struct {
	keys []string
}

func NewStaticValidator(keys []string) *StaticValidator {
	return &StaticValidator{keys: keys}
}

func (v *StaticValidator) Validate(_ context.Context, apiKey string) (Identity, bool) {
	if apiKey == "" {
		return Identity{}, false
	}
	for _, k := range v.keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(apiKey)) == 1 {
			return Identity{UserID: keyFingerprint(apiKey), Tier: billing.TierFree}, true
		}
	}
	return Identity{}, false
}

func keyFingerprint(apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return "key_" + hex.EncodeToString(sum[:8])
}

// bearerToken extracts the API key from Authorization: Bearer or the
// X-API-Key header.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return r.Header.Get("X-API-Key")
}
