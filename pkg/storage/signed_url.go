package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrTokenInvalid covers malformed tokens and bad signatures.
	ErrTokenInvalid = errors.New("storage: invalid download token")
	// ErrTokenExpired is returned for well-formed tokens past their expiry.
	ErrTokenExpired = errors.New("storage: download token expired")
)

// DownloadClaims are the facts a download token vouches for.
type DownloadClaims struct {
	JobID     string
	File      string
	ExpiresAt time.Time
}

// SignedURLSigner issues HMAC-signed download tokens for export files.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL returns how long issued tokens stay valid.
func (s *SignedURLSigner) TTL() time.Duration {
	return s.ttl
}

// Generate returns a token of the form jobID.expiry.file.signature.
func (s *SignedURLSigner) Generate(jobID, file string) (string, time.Time, error) {
	if jobID == "" || file == "" {
		return "", time.Time{}, fmt.Errorf("jobID and file required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(file))
	return strings.Join([]string{jobID, ts, encoded, s.sign(jobID, ts, encoded)}, "."), expiresAt, nil
}

// Parse validates token. When allowExpired is true the expiry check is
// skipped so cleanup can still resolve old tokens.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (DownloadClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return DownloadClaims{}, ErrTokenInvalid
	}
	jobID, ts, encoded, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(jobID, ts, encoded)), []byte(signature)) {
		return DownloadClaims{}, ErrTokenInvalid
	}
	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return DownloadClaims{}, ErrTokenInvalid
	}
	file, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return DownloadClaims{}, ErrTokenInvalid
	}

	claims := DownloadClaims{JobID: jobID, File: string(file), ExpiresAt: time.Unix(expUnix, 0)}
	if !allowExpired && s.now().After(claims.ExpiresAt) {
		return claims, ErrTokenExpired
	}
	return claims, nil
}

func (s *SignedURLSigner) sign(jobID, ts, encoded string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(jobID + "|" + ts + "|" + encoded))
	return hex.EncodeToString(mac.Sum(nil))
}
