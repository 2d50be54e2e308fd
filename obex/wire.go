package obex

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/sharathkunda/obexftp/errorkinds"
)

// headerClass is the wire encoding implied by a header ID's top two bits.
type headerClass byte

const (
	classUnicode headerClass = iota
	classByteSeq
	classByte1
	classUint4
)

func classOf(id HeaderID) headerClass {
	switch id >> 6 {
	case 0:
		return classUnicode
	case 1:
		return classByteSeq
	case 2:
		return classByte1
	default:
		return classUint4
	}
}

// wireID returns the byte that actually goes on the wire for a header,
// translating the internal rename sentinel back to the real NAME id.
func wireID(id HeaderID) HeaderID {
	if id == headerSourceName {
		return HeaderName
	}
	return id
}

func encodeUnicode(s string) []byte {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 0, len(units)*2+2)
	for _, u := range units {
		buf = append(buf, byte(u>>8), byte(u))
	}
	return append(buf, 0x00, 0x00)
}

func encodeASCIIZ(s string) []byte {
	return append([]byte(s), 0x00)
}

func encodeUint32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, v)
	return buf
}

// encodeHeader renders a single header's wire bytes (id plus its value,
// including the 3-byte length prefix for variable-length classes).
func encodeHeader(h header) ([]byte, error) {
	id := wireID(h.id)
	switch classOf(id) {
	case classUnicode, classByteSeq:
		total := len(h.data) + 3
		if total > 0xFFFF {
			return nil, fault.Wrap(fmt.Errorf("header %#x value too large: %d bytes", id, len(h.data)),
				ftag.With(ftag.InvalidArgument), fmsg.With("header value exceeds one packet"))
		}
		buf := make([]byte, 3, total)
		buf[0] = byte(id)
		binary.BigEndian.PutUint16(buf[1:3], uint16(total))
		return append(buf, h.data...), nil
	case classByte1:
		if len(h.data) != 1 {
			return nil, fault.Wrap(fmt.Errorf("header %#x expects 1 byte, got %d", id, len(h.data)),
				ftag.With(ftag.Internal))
		}
		return []byte{byte(id), h.data[0]}, nil
	default: // classUint4
		if len(h.data) != 4 {
			return nil, fault.Wrap(fmt.Errorf("header %#x expects 4 bytes, got %d", id, len(h.data)),
				ftag.With(ftag.Internal))
		}
		return append([]byte{byte(id)}, h.data...), nil
	}
}

// encodePacket assembles a complete OBEX request packet: opcode, 2-byte
// total length, any fixed non-header prefix bytes (CONNECT's version/
// flags/maxpacket, SETPATH's flags/constants), then the encoded headers in
// order.
func encodePacket(cmd Command, fixedPrefix []byte, hdrs []header) ([]byte, error) {
	body := make([]byte, 0, 64)
	for _, h := range hdrs {
		if h.id == setPathFlagsHeaderID {
			continue // folded into fixedPrefix by the caller
		}
		enc, err := encodeHeader(h)
		if err != nil {
			return nil, err
		}
		body = append(body, enc...)
	}

	total := 3 + len(fixedPrefix) + len(body)
	if total > 0xFFFF {
		return nil, fault.Wrap(fmt.Errorf("packet too large: %d bytes", total),
			ftag.With(ftag.InvalidArgument), fmsg.With("request does not fit in one OBEX packet"))
	}

	pkt := make([]byte, 3, total)
	pkt[0] = byte(cmd)
	binary.BigEndian.PutUint16(pkt[1:3], uint16(total))
	pkt = append(pkt, fixedPrefix...)
	pkt = append(pkt, body...)
	return pkt, nil
}

// connectPrefix is CONNECT's fixed 4-byte header: version, flags, and the
// maximum packet size this client is willing to receive.
func connectPrefix(maxPacketSize uint16) []byte {
	buf := make([]byte, 4)
	buf[0] = 0x10 // OBEX protocol version 1.0
	buf[1] = 0x00
	binary.BigEndian.PutUint16(buf[2:], maxPacketSize)
	return buf
}

// setPathPrefix extracts SETPATH's flags/constants bytes from the sentinel
// header object.go queued, so callers never need to know about the
// sentinel outside this package.
func setPathPrefix(hdrs []header) []byte {
	for _, h := range hdrs {
		if h.id == setPathFlagsHeaderID {
			return h.data
		}
	}
	return []byte{0x00, 0x00}
}

// decodedHeader is one header as read back off the wire.
type decodedHeader struct {
	ID   HeaderID
	Data []byte
}

// decodeHeaders parses a run of wire-encoded headers, stopping at the end
// of raw. It does not validate header identity against the set this client
// knows about: unrecognized headers are returned as-is so callers can
// ignore them, matching a permissive OBEX reader.
func decodeHeaders(raw []byte) ([]decodedHeader, error) {
	var out []decodedHeader
	for len(raw) > 0 {
		id := HeaderID(raw[0])
		switch classOf(id) {
		case classUnicode, classByteSeq:
			if len(raw) < 3 {
				return nil, fault.Wrap(fmt.Errorf("truncated header %#x", id), ftag.With(ftag.Internal))
			}
			n := int(binary.BigEndian.Uint16(raw[1:3]))
			if n < 3 || n > len(raw) {
				return nil, fault.Wrap(fmt.Errorf("invalid header %#x length %d", id, n), ftag.With(ftag.Internal))
			}
			out = append(out, decodedHeader{ID: id, Data: raw[3:n]})
			raw = raw[n:]
		case classByte1:
			if len(raw) < 2 {
				return nil, fault.Wrap(fmt.Errorf("truncated header %#x", id), ftag.With(ftag.Internal))
			}
			out = append(out, decodedHeader{ID: id, Data: raw[1:2]})
			raw = raw[2:]
		default:
			if len(raw) < 5 {
				return nil, fault.Wrap(fmt.Errorf("truncated header %#x", id), ftag.With(ftag.Internal))
			}
			out = append(out, decodedHeader{ID: id, Data: raw[1:5]})
			raw = raw[5:]
		}
	}
	return out, nil
}

// responsePacket is a fully parsed OBEX response.
type responsePacket struct {
	Code       ResponseCode
	MaxPktSize uint16 // only set when this was a CONNECT response
	Headers    []decodedHeader
}

// decodeResponse parses a complete response packet. isConnect indicates the
// request this responds to was CONNECT, since only then does the response
// carry the extra version/flags/maxpacket prefix before its headers.
func decodeResponse(raw []byte, isConnect bool) (*responsePacket, error) {
	if len(raw) < 3 {
		return nil, fault.Wrap(errorkinds.ErrProtocolFailure, fmsg.With("response shorter than header"))
	}
	total := int(binary.BigEndian.Uint16(raw[1:3]))
	if total != len(raw) {
		return nil, fault.Wrap(errorkinds.ErrProtocolFailure,
			fmsg.With(fmt.Sprintf("response length mismatch: header says %d, got %d", total, len(raw))))
	}

	resp := &responsePacket{Code: ResponseCode(raw[0])}
	rest := raw[3:]
	if isConnect {
		if len(rest) < 4 {
			return nil, fault.Wrap(errorkinds.ErrProtocolFailure, fmsg.With("truncated connect response prefix"))
		}
		resp.MaxPktSize = binary.BigEndian.Uint16(rest[2:4])
		rest = rest[4:]
	}

	hdrs, err := decodeHeaders(rest)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("decoding response headers"))
	}
	resp.Headers = hdrs
	return resp, nil
}
