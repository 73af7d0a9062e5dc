package stack

import (
	"github.com/cockroachdb/errors"

	"duocache/compressor"
	"duocache/crypter"
	"duocache/parser"
)

// Pipeline is the serialization chain a value crosses on its way into a
// driver and back, per SPEC_FULL.md §4.7: Marshal -> Encrypt (optional) ->
// Compress (optional) on write, the exact reverse on read. The Envelope
// framing around expiry metadata is applied separately, at the CacheStack
// level, since it operates on a cacheitem.Item rather than a bare value.
type Pipeline struct {
	Parser     parser.Parser
	Compressor compressor.Compressor // nil means compressor.NoneCompressor{}
	Crypter    crypter.Crypter       // nil disables encryption
}

// EncodeValue marshals v and runs it through the optional encrypt/compress
// stages, returning the bytes a CacheStack stores as a cacheitem.Item's
// Value.
func (p Pipeline) EncodeValue(v any) ([]byte, error) {
	b, err := p.Parser.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "stack: marshal")
	}

	if p.Crypter != nil {
		b, err = p.Crypter.Encrypt(b)
		if err != nil {
			return nil, errors.Wrap(err, "stack: encrypt")
		}
	}

	b, err = p.compressor().Compress(b)
	if err != nil {
		return nil, errors.Wrap(err, "stack: compress")
	}
	return b, nil
}

// DecodeValue reverses EncodeValue, unmarshaling the result into out (a
// pointer, per Parser's contract).
func (p Pipeline) DecodeValue(b []byte, out any) error {
	b, err := p.compressor().Decompress(b)
	if err != nil {
		return errors.Wrap(err, "stack: decompress")
	}

	if p.Crypter != nil {
		b, err = p.Crypter.Decrypt(b)
		if err != nil {
			return errors.Wrap(err, "stack: decrypt")
		}
	}

	if err := p.Parser.Unmarshal(b, out); err != nil {
		return errors.Wrap(err, "stack: unmarshal")
	}
	return nil
}

func (p Pipeline) compressor() compressor.Compressor {
	if p.Compressor == nil {
		return compressor.NoneCompressor{}
	}
	return p.Compressor
}
