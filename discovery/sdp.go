package discovery

import (
	"context"
	"encoding/binary"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/sharathkunda/obexftp/errorkinds"
)

// sdpPSM is the well-known L2CAP PSM for the Service Discovery Protocol.
const sdpPSM = 0x0001

// sdpAttrProtocolDescriptorList is the SDP attribute ID this browse reads
// to extract the RFCOMM channel, matching SDP_ATTR_PROTO_DESC_LIST.
const sdpAttrProtocolDescriptorList = 0x0004

// Browse connects to addr's SDP server over L2CAP and looks up an RFCOMM
// channel for the given service class, preferring the Nokia PC Suite UUID
// over the standard OBEX File Transfer class when both are present — the
// same preference the original discovery code applied for Series 60
// devices.
func Browse(ctx context.Context, addr Address, class ServiceClass) (channel int, targetUUID []byte, err error) {
	class = normalizeServiceClass(class)

	fd, err := dialL2CAP(addr, sdpPSM)
	if err != nil {
		return 0, nil, err
	}
	defer unix.Close(fd)

	if class == ServiceClassFileTransfer {
		if ch, ok := browseUUID(fd, pcSuiteUUID); ok {
			return ch, pcSuiteUUID[:], nil
		}
	}

	wellKnown := expand16(class)
	ch, ok := browseUUID(fd, wellKnown)
	if !ok {
		return 0, nil, fault.Wrap(errorkinds.ErrServiceNotFound,
			fmsg.With("no RFCOMM channel found for service class "+wellKnown.String()))
	}
	return ch, wellKnown[:], nil
}

// dialL2CAP opens a raw L2CAP connection to addr on the given PSM.
func dialL2CAP(addr Address, psm uint16) (int, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_SEQPACKET, unix.BTPROTO_L2CAP)
	if err != nil {
		return 0, fault.Wrap(errorkinds.ErrTransportInit, ftag.With(ftag.Unavailable),
			fmsg.With("opening L2CAP socket: "+err.Error()))
	}

	sa := &unix.SockaddrL2{PSM: psm, Addr: [6]byte(addr)}
	if err := unix.Connect(fd, sa); err != nil {
		unix.Close(fd)
		return 0, fault.Wrap(errorkinds.ErrLinkError, ftag.With(ftag.Unavailable),
			fmsg.With("connecting L2CAP socket: "+err.Error()))
	}
	return fd, nil
}

// browseUUID sends a minimal SDP_ServiceSearchAttrReq for target and scans
// the response for a protocol descriptor list naming an RFCOMM channel. It
// reports ok=false rather than an error when the service simply isn't
// present, since "not found" is the expected outcome for most UUIDs tried.
func browseUUID(fd int, target uuid.UUID) (channel int, ok bool) {
	req := buildServiceSearchAttrRequest(target)
	if _, err := unix.Write(fd, req); err != nil {
		return 0, false
	}

	resp := make([]byte, 672)
	n, err := unix.Read(fd, resp)
	if err != nil || n < 5 {
		return 0, false
	}

	return extractRFCOMMChannel(resp[:n])
}

// buildServiceSearchAttrRequest renders a minimal SDP PDU requesting the
// protocol descriptor list attribute for a single 128-bit UUID search
// pattern. It does not implement SDP's full continuation-state protocol;
// this client's responses always fit in one packet in practice.
func buildServiceSearchAttrRequest(target uuid.UUID) []byte {
	buf := make([]byte, 0, 64)
	buf = append(buf, 0x06)             // PDU: SDP_ServiceSearchAttrReq
	buf = append(buf, 0x00, 0x00)       // transaction ID
	buf = append(buf, 0x00, 0x00)       // parameter length, patched below
	buf = append(buf, 0x35, 0x11, 0x1C) // DataElSeq, 1 UUID128 element header
	buf = append(buf, target[:]...)
	buf = append(buf, 0xFF, 0xFF) // maximum attribute byte count
	buf = append(buf, 0x35, 0x03, 0x09) // attribute ID list: one uint16
	attr := make([]byte, 2)
	binary.BigEndian.PutUint16(attr, sdpAttrProtocolDescriptorList)
	buf = append(buf, attr...)
	buf = append(buf, 0x00) // no continuation state

	paramLen := len(buf) - 5
	binary.BigEndian.PutUint16(buf[3:5], uint16(paramLen))
	return buf
}

// extractRFCOMMChannel scans a raw SDP response for the RFCOMM protocol
// UUID (0x0003) followed by its channel number, the shape the protocol
// descriptor list takes on the wire.
func extractRFCOMMChannel(raw []byte) (int, bool) {
	const rfcommUUID16 = 0x0003
	for i := 0; i+4 < len(raw); i++ {
		if raw[i] == 0x19 && binary.BigEndian.Uint16(raw[i+1:i+3]) == rfcommUUID16 {
			if raw[i+3] == 0x09 && i+5 < len(raw) {
				return int(binary.BigEndian.Uint16(raw[i+4 : i+6])), true
			}
			if raw[i+3] == 0x08 && i+4 < len(raw) {
				return int(raw[i+4]), true
			}
		}
	}
	return 0, false
}
