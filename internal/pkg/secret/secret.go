// Package secret turns the credential stored in configuration into the
// password used for SMTP authentication.
//
// The base64 encoding is obfuscation only: it keeps the password from being
// read over a shoulder, nothing more. Operators who need the credential off
// disk should store it in the OS keyring and reference it with the keyring
// encoding.
package secret

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// Encoding names how a configured credential is stored.
type Encoding string

const (
	// EncodingPlain means the value is the credential itself.
	EncodingPlain Encoding = "plain"
	// EncodingBase64 means the value is the base64 form of the credential.
	EncodingBase64 Encoding = "base64"
	// EncodingKeyring means the value is an account name in the OS keyring.
	EncodingKeyring Encoding = "keyring"
)

// KeyringService is the keyring service under which credentials are looked up.
const KeyringService = "mailinator"

var (
	// ErrUnknownEncoding is returned for an unsupported Encoding.
	ErrUnknownEncoding = errors.New("secret: unknown encoding")
	// ErrEmpty is returned when the resolved credential is empty.
	ErrEmpty = errors.New("secret: empty credential")
)

// Resolve decodes raw according to enc. An empty enc is treated as plain.
func Resolve(ctx context.Context, raw string, enc Encoding) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var out string
	switch Encoding(strings.ToLower(strings.TrimSpace(string(enc)))) {
	case "", EncodingPlain:
		out = raw
	case EncodingBase64:
		b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
		if err != nil {
			return "", fmt.Errorf("secret: decode base64: %w", err)
		}
		out = strings.TrimSpace(string(b))
	case EncodingKeyring:
		v, err := keyring.Get(KeyringService, strings.TrimSpace(raw))
		if err != nil {
			return "", fmt.Errorf("secret: keyring lookup %q: %w", raw, err)
		}
		out = v
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownEncoding, enc)
	}

	if out == "" {
		return "", ErrEmpty
	}
	return out, nil
}

// EncodeBase64 is the inverse of the base64 encoding, used when writing
// credentials into a config file.
func EncodeBase64(credential string) string {
	return base64.StdEncoding.EncodeToString([]byte(credential))
}
