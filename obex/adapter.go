package obex

import (
	"encoding/binary"
	"io"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/sharathkunda/obexftp/errorkinds"
)

// defaultMaxPacketSize is offered during CONNECT when the caller hasn't
// picked one; it comfortably fits a folder listing or a few file-info
// headers in a single packet.
const defaultMaxPacketSize = 0x2000

// frameAdapter is the Framing Adapter (component B): it owns the wire
// connection and turns Objects into packets and packets back into
// responses. A Session drives it; nothing outside this package sees it.
type frameAdapter struct {
	conn          io.ReadWriteCloser
	maxPacketSize uint16
	log           Logger
}

func newFrameAdapter(conn io.ReadWriteCloser, log Logger) *frameAdapter {
	return &frameAdapter{conn: conn, maxPacketSize: defaultMaxPacketSize, log: log}
}

// submit encodes obj and writes it as a single packet. For a streaming PUT,
// this writes only the initial (non-final) packet; the BODY chunks are
// written later via writeChunk/writeFinalChunk as the Session's event loop
// pumps its Stream Source.
func (a *frameAdapter) submit(obj *Object) error {
	var prefix []byte
	switch obj.Command {
	case CommandConnect:
		prefix = connectPrefix(a.maxPacketSize)
	case CommandSetPath:
		prefix = setPathPrefix(obj.headers)
	}

	pkt, err := encodePacket(obj.Command, prefix, obj.headers)
	if err != nil {
		return fault.Wrap(err, fmsg.With("encoding request packet"))
	}
	if a.log != nil {
		a.log.Debugf("obex: submit cmd=%#x bytes=%d id=%s", obj.Command, len(pkt), obj.ID)
	}
	if _, err := a.conn.Write(pkt); err != nil {
		return fault.Wrap(err, ftag.With(ftag.Unavailable), fmsg.With("writing request packet"))
	}
	return nil
}

// writeChunk writes one non-final continuation packet carrying a streamed
// BODY chunk. cmd is CommandPut (more to come).
func (a *frameAdapter) writeChunk(chunk []byte) error {
	hdrs := []header{{id: HeaderBody, data: chunk, flag: StreamData}}
	pkt, err := encodePacket(CommandPut, nil, hdrs)
	if err != nil {
		return fault.Wrap(err, fmsg.With("encoding body chunk"))
	}
	if _, err := a.conn.Write(pkt); err != nil {
		return fault.Wrap(err, ftag.With(ftag.Unavailable), fmsg.With("writing body chunk"))
	}
	return nil
}

// writeFinalChunk writes the terminal packet of a streamed PUT, carrying
// the last (possibly zero-length) chunk as END-OF-BODY.
func (a *frameAdapter) writeFinalChunk(chunk []byte) error {
	hdrs := []header{{id: HeaderEndOfBody, data: chunk, flag: StreamDataEnd}}
	pkt, err := encodePacket(CommandPutFinal, nil, hdrs)
	if err != nil {
		return fault.Wrap(err, fmsg.With("encoding final body chunk"))
	}
	if _, err := a.conn.Write(pkt); err != nil {
		return fault.Wrap(err, ftag.With(ftag.Unavailable), fmsg.With("writing final body chunk"))
	}
	return nil
}

// pump reads one complete response packet off the wire and decodes it.
// isConnect must be true when this responds to a CONNECT request, since
// only then does the packet carry the extra version/flags/maxpacket
// prefix ahead of its headers.
func (a *frameAdapter) pump(isConnect bool) (*responsePacket, error) {
	head := make([]byte, 3)
	if _, err := io.ReadFull(a.conn, head); err != nil {
		return nil, fault.Wrap(err, ftag.With(ftag.Unavailable), fmsg.With("reading response header"))
	}
	total := int(binary.BigEndian.Uint16(head[1:3]))
	if total < 3 {
		return nil, fault.Wrap(errorkinds.ErrProtocolFailure, fmsg.With("response declares length below header size"))
	}
	raw := make([]byte, total)
	copy(raw, head)
	if total > 3 {
		if _, err := io.ReadFull(a.conn, raw[3:]); err != nil {
			return nil, fault.Wrap(err, ftag.With(ftag.Unavailable), fmsg.With("reading response body"))
		}
	}

	resp, err := decodeResponse(raw, isConnect)
	if err != nil {
		return nil, err
	}
	if a.log != nil {
		a.log.Debugf("obex: pump code=%#x bytes=%d", resp.Code, total)
	}
	if isConnect && resp.Code == ResponseSuccess && resp.MaxPktSize > 0 && resp.MaxPktSize < a.maxPacketSize {
		a.maxPacketSize = resp.MaxPktSize
	}
	return resp, nil
}

// close releases the underlying connection.
func (a *frameAdapter) close() error {
	return a.conn.Close()
}
