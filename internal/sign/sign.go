package sign

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// SignField is the payload key carrying the signature itself. It is always
// excluded from the canonical string.
const SignField = "sign"

// Scheme computes a signature over callback fields. The cashier's scheme is
// fixed by the remote side, so it lives behind an interface rather than
// being hardcoded in the verifier.
type Scheme interface {
	Name() string
	Sign(fields map[string]string, secret string) string
}

// MD5Scheme implements the legacy cashier signature: fields sorted by key
// (byte-wise ascending), joined as k=v with '&', then '&key=<secret>'
// appended, MD5-hashed and rendered as uppercase hex.
type MD5Scheme struct{}

func (MD5Scheme) Name() string {
	return "md5"
}

func (MD5Scheme) Sign(fields map[string]string, secret string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if k == SignField {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		// Absent values serialize as empty string, never "null" or omission.
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fields[k])
		b.WriteByte('&')
	}
	b.WriteString("key=")
	b.WriteString(secret)

	sum := md5.Sum([]byte(b.String()))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Verifier authenticates inbound callbacks against a shared secret.
type Verifier struct {
	scheme Scheme
	logger *zap.Logger
}

func NewVerifier(scheme Scheme, logger *zap.Logger) *Verifier {
	if scheme == nil {
		scheme = MD5Scheme{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{scheme: scheme, logger: logger}
}

// Verify recomputes the signature over fields and compares it to the claimed
// one. It fails closed: an empty secret or missing claimed signature is a
// mismatch, never an error. The secret is never logged.
func (v *Verifier) Verify(fields map[string]string, claimed, secret string) bool {
	if secret == "" {
		v.logger.Warn("callback signature rejected: no secret configured")
		return false
	}
	if claimed == "" {
		v.logger.Warn("callback signature rejected: sign field missing")
		return false
	}

	expected := v.scheme.Sign(fields, secret)
	ok := subtle.ConstantTimeCompare([]byte(expected), []byte(claimed)) == 1

	if ok {
		v.logger.Info("callback signature verified", zap.String("scheme", v.scheme.Name()))
	} else {
		v.logger.Warn("callback signature mismatch",
			zap.String("scheme", v.scheme.Name()),
			zap.String("claimed", claimed),
		)
	}
	return ok
}
