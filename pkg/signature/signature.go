package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/rs/zerolog"
)

// Verifier validates that a webhook body originated from the payment
// provider. The provider signs the exact bytes of the request body with
// HMAC-SHA256 using a secret shared out-of-band, and sends the hex digest in
// a header.
type Verifier struct {
	secret []byte
	logger zerolog.Logger
}

// NewVerifier creates a Verifier. An empty secret puts the verifier into
// skip mode: Verify accepts everything and logs a warning, so unsigned
// sandbox environments keep working without silently weakening production.
func NewVerifier(secret string, logger zerolog.Logger) *Verifier {
	return &Verifier{secret: []byte(secret), logger: logger}
}

// Enabled reports whether a secret is configured.
func (v *Verifier) Enabled() bool {
	return len(v.secret) > 0
}

// Verify recomputes the keyed hash over body and compares it to the claimed
// hex signature in constant time. Constant-time comparison is a correctness
// requirement at this boundary, not an optimization.
func (v *Verifier) Verify(body []byte, claimed string) bool {
	if !v.Enabled() {
		v.logger.Warn().Msg("webhook secret not configured, skipping signature verification")
		return true
	}

	claimedMAC, err := hex.DecodeString(claimed)
	if err != nil {
		// A signature that isn't valid hex can never match.
		return false
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), claimedMAC)
}

// Sign computes the hex signature for body. Used by tests and by local
// tooling that replays provider callbacks.
func (v *Verifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
