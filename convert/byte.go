// Package convert holds small, allocation-light byte<->integer helpers and
// the Envelope binary framing built on top of them.
package convert

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// ErrConvertToByte signals a byte slice was too short to decode.
var ErrConvertToByte = errors.New("convert: to byte error")

// ErrConvertFromByte signals a byte slice couldn't be decoded as an Envelope
// (too short, or an unknown version byte).
var ErrConvertFromByte = errors.New("convert: from byte error")

func BytesToInt8(b []byte) (int8, error) {
	if len(b) < 1 {
		return 0, ErrConvertToByte
	}
	return int8(b[0]), nil
}

func Int8ToByte(i int8) []byte {
	return []byte{byte(i)}
}

func BytesToInt32(b []byte) (int32, error) {
	if len(b) < 4 {
		return 0, ErrConvertToByte
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func Int32ToByte(i int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(i))
	return b
}

func BytesToInt64(b []byte) (int64, error) {
	if len(b) < 8 {
		return 0, ErrConvertToByte
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func Int64ToByte(i int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(i))
	return b
}

func BytesToString(b []byte) (string, error) {
	return string(b), nil
}
