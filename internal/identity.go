package internal

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// IGSigKey is the HMAC key the Android app signs request bodies with.
	IGSigKey = "4f8732eb9ba7d1c8e8897a75d6474d4eb3f5279137431b2aafb71fafe2abe178"
	// SigKeyVersion is sent alongside every signed body.
	SigKeyVersion = "4"

	deviceIDPrefix = "android-"
	deviceIDSalt   = "12345"
	deviceIDLength = 16
)

func md5Hex(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

// GenerateDeviceID derives the Android device id for a credential pair.
// The result is a pure function of its inputs so the same account always
// presents the same device across restarts.
func GenerateDeviceID(username, password string) string {
	seed := md5Hex([]byte(username + password))
	return deviceIDPrefix + md5Hex([]byte(seed + deviceIDSalt))[:deviceIDLength]
}

// GenerateUUID returns a random version 4 UUID, optionally without hyphens.
func GenerateUUID(hyphens bool) string {
	id := uuid.NewString()
	if hyphens {
		return id
	}
	return strings.ReplaceAll(id, "-", "")
}

// GenerateSignature wraps a serialized JSON body in the signed form envelope:
//
//	ig_sig_key_version=<V>&signed_body=<hmac hex>.<percent-encoded body>
func GenerateSignature(body string) string {
	mac := hmac.New(sha256.New, []byte(IGSigKey))
	mac.Write([]byte(body))

	var b strings.Builder
	b.WriteString("ig_sig_key_version=")
	b.WriteString(SigKeyVersion)
	b.WriteString("&signed_body=")
	b.WriteString(hex.EncodeToString(mac.Sum(nil)))
	b.WriteByte('.')
	b.WriteString(escapeBody(body))
	return b.String()
}

// escapeBody percent-encodes body, spaces included, so they read as %20 rather than +.
func escapeBody(body string) string {
	return strings.ReplaceAll(url.QueryEscape(body), "+", "%20")
}

// GenerateUploadID returns the upload id the service expects: unix seconds.
func GenerateUploadID(now time.Time) string {
	return strconv.FormatInt(now.Unix(), 10)
}
