// Package compressor implements the optional compression stage of the
// serialization pipeline a value crosses on its way into a tier: Parser
// output, after the optional Crypter stage, is compressed before it is
// framed into the Envelope.
package compressor

import "github.com/cockroachdb/errors"

// Compressor is the interface every compression algorithm implements.
type Compressor interface {
	Compress(src []byte) ([]byte, error)
	Decompress(src []byte) ([]byte, error)
}

var ErrIncompressible = errors.New("compressor: compress error")

// ErrNotShrunk signals the compressed form isn't smaller than the input;
// callers may choose to store the input uncompressed instead.
var ErrNotShrunk = errors.New("compressor: compressed size not reduced")
