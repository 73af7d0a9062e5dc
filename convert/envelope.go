package convert

import "time"

// envelopeVersion guards against decoding a future, incompatible layout.
const envelopeVersion = 1

// envelopeHeaderLen is 1 (version) + 3*8 (three unix-milli timestamps).
const envelopeHeaderLen = 1 + 3*8

// EncodeEnvelope frames a value's expiry metadata around its
// already-parsed/compressed/encrypted payload, so a driver's Get can
// recover logical/physical/early expiration without a second round trip
// or a side table. Zero-value timestamps encode as 0 and decode back to
// the zero time.Time.
func EncodeEnvelope(logicalExpiresAt, physicalExpiresAt, earlyExpirationAt time.Time, payload []byte) []byte {
	out := make([]byte, envelopeHeaderLen+len(payload))
	out[0] = envelopeVersion
	copy(out[1:9], Int64ToByte(unixMilli(logicalExpiresAt)))
	copy(out[9:17], Int64ToByte(unixMilli(physicalExpiresAt)))
	copy(out[17:25], Int64ToByte(unixMilli(earlyExpirationAt)))
	copy(out[envelopeHeaderLen:], payload)
	return out
}

// DecodeEnvelope reverses EncodeEnvelope.
func DecodeEnvelope(data []byte) (logicalExpiresAt, physicalExpiresAt, earlyExpirationAt time.Time, payload []byte, err error) {
	if len(data) < envelopeHeaderLen {
		err = ErrConvertFromByte
		return
	}
	if data[0] != envelopeVersion {
		err = ErrConvertFromByte
		return
	}

	logical, err := BytesToInt64(data[1:9])
	if err != nil {
		return
	}
	physical, err := BytesToInt64(data[9:17])
	if err != nil {
		return
	}
	early, err := BytesToInt64(data[17:25])
	if err != nil {
		return
	}

	logicalExpiresAt = fromUnixMilli(logical)
	physicalExpiresAt = fromUnixMilli(physical)
	earlyExpirationAt = fromUnixMilli(early)
	payload = data[envelopeHeaderLen:]
	return
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
