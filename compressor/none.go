package compressor

// NoneCompressor is the identity Compressor, used when compression is
// disabled for a cache stack but the pipeline still wants a uniform
// Compressor value to call.
type NoneCompressor struct{}

func (NoneCompressor) Compress(src []byte) ([]byte, error) {
	return src, nil
}

func (NoneCompressor) Decompress(src []byte) ([]byte, error) {
	return src, nil
}
