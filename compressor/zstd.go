package compressor

import (
	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
)

// ZstdCompressor favors ratio over CPU, the usual pick for larger L2
// payloads where network/storage cost dominates.
type ZstdCompressor struct{}

func (z ZstdCompressor) Compress(src []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, errors.CombineErrors(ErrIncompressible, err)
	}
	defer enc.Close()

	return enc.EncodeAll(src, nil), nil
}

func (z ZstdCompressor) Decompress(src []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	return dec.DecodeAll(src, nil)
}
