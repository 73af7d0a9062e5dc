// Package randtoken generates short opaque tokens used as lock releaser
// identities and bus origin ids: a value a holder presents back to prove
// it is the one that acquired a given Mutex, so Release can be a no-op for
// anyone else.
package randtoken

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// Length is the default token size: enough bits to make collisions between
// concurrent holders of the same key astronomically unlikely.
const Length = 16

// maxLength is a uuid.NewString() stripped of its dashes: 32 hex characters.
const maxLength = 32

// New returns a fresh random token of the given length, drawn from a
// freshly generated UUID's hex digits.
func New(length int) (string, error) {
	if length <= 0 || length > maxLength {
		return "", errors.Newf("randtoken: length must be between 1 and %d, got %d", maxLength, length)
	}

	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return hex[:length], nil
}

// Must panics if New fails. uuid.NewString never fails on a healthy
// process, so call sites that can't usefully propagate an error (e.g.
// inside a constructor) use this.
func Must(length int) string {
	s, err := New(length)
	if err != nil {
		panic(err)
	}
	return s
}
