// Package qrtoken issues the opaque tokens encoded in job-site QR codes.
//
// A token looks like PREFIX-<site id>-<16 hex chars>. Consumers must treat
// it as an exact-match lookup key; uniqueness is guaranteed by the storage
// layer, not by the codec.
package qrtoken

import (
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"
)

// MaxLen bounds the token column.
const MaxLen = 500

const digestChars = 16

// Codec derives tokens from site identity, issuance time and a server key.
type Codec struct {
	Namespace string
	Prefix    string
	key       []byte
	now       func() time.Time
}

// New returns a Codec keyed with secret. A nil now uses time.Now.
func New(namespace, prefix, secret string, now func() time.Time) *Codec {
	if now == nil {
		now = time.Now
	}
	key := []byte(secret)
	if len(key) > blake2b.Size {
		sum := blake2b.Sum256(key)
		key = sum[:]
	}
	return &Codec{
		Namespace: namespace,
		Prefix:    prefix,
		key:       key,
		now:       now,
	}
}

// Issue returns a token for the site. attempt seeds retries after a
// uniqueness collision so a retry never repeats the previous digest.
func (c *Codec) Issue(siteID, siteName string, attempt int) (string, error) {
	h, err := blake2b.New256(c.key)
	if err != nil {
		return "", fmt.Errorf("init digest: %w", err)
	}
	raw := fmt.Sprintf("%s:%s:%s:%s:%d",
		c.Namespace, siteID, siteName, c.now().UTC().Format(time.RFC3339Nano), attempt)
	h.Write([]byte(raw))

	digest := hex.EncodeToString(h.Sum(nil))[:digestChars]
	token := fmt.Sprintf("%s-%s-%s", c.Prefix, siteID, digest)
	if len(token) > MaxLen {
		return "", fmt.Errorf("token for site %s exceeds %d chars", siteID, MaxLen)
	}
	return token, nil
}

// WellFormed rejects empty and oversized tokens before any lookup.
// Issued tokens are exact-match keys that outlive changes to the
// configured prefix or key, so their shape is not checked further.
func (c *Codec) WellFormed(token string) bool {
	return token != "" && len(token) <= MaxLen
}
