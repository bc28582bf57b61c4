package operator

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"net/url"
	"strings"
)

// RFC 6238 parameters shared with the authenticator apps operators enroll with.
const (
	totpPeriod = 30 // seconds
	totpDigits = 6
	totpSkew   = 1 // accepted steps before/after the current one
)

// GenerateMFASecret returns a new base32 secret for authenticator enrollment.
func GenerateMFASecret() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(buf), nil
}

// TOTPCode computes the code for the secret at the given counter step.
func totpCode(secret string, step int64) (string, error) {
	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(
		strings.ToUpper(strings.TrimSpace(secret)))
	if err != nil {
		return "", err
	}

	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], uint64(step))

	h := hmac.New(sha1.New, key)
	if _, err := h.Write(counter[:]); err != nil {
		return "", err
	}
	sum := h.Sum(nil)

	// dynamic truncation
	offset := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff

	return fmt.Sprintf("%06d", code%1000000), nil
}

// VerifyTOTP checks a 6-digit code against the secret, allowing one step of
// clock skew in either direction.
func VerifyTOTP(secret, code string) bool {
	code = strings.TrimSpace(code)
	if len(code) != totpDigits || secret == "" {
		return false
	}

	step := NowFunc().Unix() / totpPeriod
	for delta := int64(-totpSkew); delta <= totpSkew; delta++ {
		expected, err := totpCode(secret, step+delta)
		if err != nil {
			return false
		}
		if subtle.ConstantTimeCompare([]byte(expected), []byte(code)) == 1 {
			return true
		}
	}
	return false
}

// TOTPProvisioningURI builds the otpauth:// URI encoded in the enrollment QR code.
func TOTPProvisioningURI(op Operator, secret, issuer string) string {
	label := url.PathEscape(issuer + ":" + op.Username)
	q := make(url.Values)
	q.Set("secret", secret)
	q.Set("issuer", issuer)
	q.Set("digits", fmt.Sprint(totpDigits))
	q.Set("period", fmt.Sprint(totpPeriod))
	return "otpauth://totp/" + label + "?" + q.Encode()
}
