// Package parser implements the first stage of the serialization pipeline:
// turning a factory's returned value into bytes (and back) before the
// optional Compressor and Crypter stages run.
package parser

import "github.com/cockroachdb/errors"

// ErrTypeAssert signals a value handed to a Parser doesn't satisfy the
// type that parser needs (e.g. proto.Message for PbParser).
var ErrTypeAssert = errors.New("parser: type assert error")

// Parser is the interface every wire format implements.
type Parser interface {
	Marshal(any) ([]byte, error)
	Unmarshal([]byte, any) error
}
