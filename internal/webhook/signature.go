// internal/webhook/signature.go
package webhook

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// SignatureHeader carries the hex-encoded HMAC-SHA512 of the raw body.
const SignatureHeader = "X-Neynar-Signature"

// VerifySignature checks the supplied hex signature against an
// HMAC-SHA512 of the exact raw body under the shared secret. The
// comparison is constant-time.
func VerifySignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	sig, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(sig, mac.Sum(nil))
}
