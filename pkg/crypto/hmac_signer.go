// Package crypto signs outbound lead submissions with a shared-secret HMAC.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aabadawy/Mahfal-Concierge-concierge-dashboard/pkg/canonicalize"
)

// Header names carried by a signed request.
const (
	HeaderContentType = "Content-Type"
	HeaderTimestamp   = "X-Timestamp"
	HeaderSignature   = "X-Signature"
	HeaderRequestID   = "X-Request-ID"

	ContentTypeJSON = "application/json"
)

var (
	ErrEmptySecret        = errors.New("signing secret is empty")
	ErrInvalidSignature   = errors.New("signature mismatch")
	ErrMalformedHeader    = errors.New("malformed signature header")
	ErrTimestampOutOfSkew = errors.New("timestamp outside allowed skew")
)

// SignedHeaders is the envelope produced for one submission attempt.
// It is never cached: the timestamp changes on every call to Sign.
type SignedHeaders struct {
	ContentType string
	Timestamp   string
	Signature   string
}

// Apply sets the signed headers on h.
func (s *SignedHeaders) Apply(h http.Header) {
	h.Set(HeaderContentType, s.ContentType)
	h.Set(HeaderTimestamp, s.Timestamp)
	h.Set(HeaderSignature, s.Signature)
}

// Map returns the headers keyed by their wire names.
func (s *SignedHeaders) Map() map[string]string {
	return map[string]string{
		HeaderContentType: s.ContentType,
		HeaderTimestamp:   s.Timestamp,
		HeaderSignature:   s.Signature,
	}
}

// HMACSigner computes HMAC-SHA256 signatures over canonical JSON plus a
// Unix timestamp.
type HMACSigner struct {
	secret []byte
	now    func() time.Time
}

// SignerOption configures an HMACSigner.
type SignerOption func(*HMACSigner)

// WithClock overrides the wall clock used for timestamps.
func WithClock(now func() time.Time) SignerOption {
	return func(s *HMACSigner) { s.now = now }
}

// NewHMACSigner returns a signer keyed with secret. An empty secret is a
// configuration error.
func NewHMACSigner(secret []byte, opts ...SignerOption) (*HMACSigner, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	s := &HMACSigner{
		secret: append([]byte(nil), secret...),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Sign stamps payload with the current Unix time and signs it.
func (s *HMACSigner) Sign(payload any) (*SignedHeaders, error) {
	return s.SignAt(payload, s.now().Unix())
}

// SignAt signs payload for a fixed Unix timestamp.
func (s *HMACSigner) SignAt(payload any, timestamp int64) (*SignedHeaders, error) {
	_, h, err := s.seal(payload, timestamp)
	return h, err
}

// Seal signs payload with the current time and also returns the canonical
// bytes that were signed, so the transmitted body matches the signature.
func (s *HMACSigner) Seal(payload any) ([]byte, *SignedHeaders, error) {
	return s.seal(payload, s.now().Unix())
}

func (s *HMACSigner) seal(payload any, timestamp int64) ([]byte, *SignedHeaders, error) {
	body, err := canonicalize.JCS(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("sign: %w", err)
	}
	ts := strconv.FormatInt(timestamp, 10)

	return body, &SignedHeaders{
		ContentType: ContentTypeJSON,
		Timestamp:   ts,
		Signature:   s.mac(body, ts),
	}, nil
}

// Verify checks signatureHex against payload and timestamp. When maxSkew is
// positive, timestamps further than maxSkew from the signer's clock are
// rejected.
func (s *HMACSigner) Verify(payload any, timestamp, signatureHex string, maxSkew time.Duration) error {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: timestamp %q", ErrMalformedHeader, timestamp)
	}
	got, err := hex.DecodeString(signatureHex)
	if err != nil || len(got) != sha256.Size {
		return fmt.Errorf("%w: signature", ErrMalformedHeader)
	}

	if maxSkew > 0 {
		skew := s.now().Sub(time.Unix(ts, 0))
		if skew < 0 {
			skew = -skew
		}
		if skew > maxSkew {
			return ErrTimestampOutOfSkew
		}
	}

	body, err := canonicalize.JCS(payload)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	want, _ := hex.DecodeString(s.mac(body, timestamp))
	if !hmac.Equal(got, want) {
		return ErrInvalidSignature
	}
	return nil
}

// mac signs canonical||timestamp with no separator.
func (s *HMACSigner) mac(canonical []byte, timestamp string) string {
	h := hmac.New(sha256.New, s.secret)
	h.Write(canonical)
	h.Write([]byte(timestamp))
	return hex.EncodeToString(h.Sum(nil))
}
