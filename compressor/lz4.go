package compressor

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4"
)

// Lz4Compressor compresses with LZ4's frame format, the cheapest of the
// two algorithms on offer, favored when CPU matters more than ratio.
type Lz4Compressor struct{}

func (Lz4Compressor) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return nil, errors.CombineErrors(ErrIncompressible, err)
	}
	if err := w.Close(); err != nil {
		return nil, errors.CombineErrors(ErrIncompressible, err)
	}
	return buf.Bytes(), nil
}

func (Lz4Compressor) Decompress(src []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(src))

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
