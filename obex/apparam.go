package obex

import "encoding/binary"

// AppParam is a single application-parameter record, the fixed-shape
// tag/length/value triplet this client reads and writes inside an APPARAM
// header. Real OBEX application parameters are a variable-length TLV run;
// every parameter this client ever sends or parses carries a 4-byte value,
// so the codec below is narrowed to that one fixed shape rather than a
// general TLV parser.
type AppParam struct {
	Code  byte
	Value uint32
}

// appParamEncodedLen is Code(1) + Length(1) + Value(4).
const appParamEncodedLen = 6

// EncodeAppParam renders p as a 6-byte application-parameter record.
func EncodeAppParam(p AppParam) []byte {
	buf := make([]byte, appParamEncodedLen)
	buf[0] = p.Code
	buf[1] = 4
	binary.BigEndian.PutUint32(buf[2:], p.Value)
	return buf
}

// DecodeAppParam parses raw as one fixed-shape application-parameter
// record. It reports false if raw is not exactly 6 bytes long or its
// declared length isn't 4.
func DecodeAppParam(raw []byte) (AppParam, bool) {
	if len(raw) != appParamEncodedLen {
		return AppParam{}, false
	}
	if raw[1] != 4 {
		return AppParam{}, false
	}
	return AppParam{
		Code:  raw[0],
		Value: binary.BigEndian.Uint32(raw[2:6]),
	}, true
}
