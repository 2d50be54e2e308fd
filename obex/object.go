package obex

import (
	"github.com/rs/xid"
)

// header is one header field queued on an Object, ready for wire encoding.
type header struct {
	id   HeaderID
	data []byte
	flag StreamFlag
}

// Object is a request built by the Object Builder (component C) and handed
// to the Framing Adapter for submission. It is the Go realization of the
// opaque obex_object_t the C client passed across that same boundary.
type Object struct {
	// ID correlates this object's log lines and trace events across the
	// session's lifetime; it is the direct analogue of the original
	// client's per-call __func__ debug tracing, made safe to interleave
	// across concurrent log output.
	ID xid.ID

	Command Command
	headers []header

	// stream, when true, marks this as a request whose BODY header is
	// supplied incrementally by the outbound Stream Source rather than
	// attached up front. Only PUT requests use this.
	stream bool
}

func newObject(cmd Command) *Object {
	return &Object{ID: xid.New(), Command: cmd}
}

func (o *Object) addHeader(id HeaderID, data []byte, flag StreamFlag) {
	o.headers = append(o.headers, header{id: id, data: data, flag: flag})
}

// buildConnect constructs a CONNECT request carrying the given 16-byte
// service UUID as its TARGET header.
func buildConnect(targetUUID []byte) *Object {
	obj := newObject(CommandConnect)
	obj.addHeader(HeaderTarget, targetUUID, StreamWhole)
	return obj
}

// buildDisconnect constructs a DISCONNECT request.
func buildDisconnect() *Object {
	return newObject(CommandDisconnect)
}

// buildGetFile constructs a GET request for a single named object.
func buildGetFile(remotepath string) *Object {
	obj := newObject(CommandGetFinal)
	obj.addHeader(HeaderName, encodeUnicode(remotepath), StreamWhole)
	return obj
}

// buildGetListing constructs a GET request for a folder listing. folder may
// be empty, which lists the server's current working directory.
func buildGetListing(folder string) *Object {
	obj := newObject(CommandGetFinal)
	if folder != "" {
		obj.addHeader(HeaderName, encodeUnicode(folder), StreamWhole)
	}
	obj.addHeader(HeaderType, encodeASCIIZ(MimeTypeFolderListing), StreamWhole)
	return obj
}

// buildGetInfo constructs a GET request carrying an application-parameter
// record as the sole content, used to retrieve small device info values.
func buildGetInfo(opcode byte) *Object {
	obj := newObject(CommandGetFinal)
	obj.addHeader(HeaderAppParam, EncodeAppParam(AppParam{Code: opcode}), StreamWhole)
	return obj
}

// buildPut constructs a PUT request for a streamed file body. The caller
// must arrange for the Session's outbound Stream Source to be open before
// submitting this object; the BODY header itself is attached chunk by
// chunk as Session.Put pulls data from its StreamSource.
func buildPut(remotename string, length uint32) *Object {
	obj := newObject(CommandPut)
	obj.addHeader(HeaderName, encodeUnicode(remotename), StreamWhole)
	obj.addHeader(HeaderLength, encodeUint32(length), StreamWhole)
	obj.stream = true
	return obj
}

// buildPutEmpty constructs a PUT request with a NAME header and no BODY,
// which OBEX FTP servers interpret as a delete of that name.
func buildPutEmpty(name string) *Object {
	obj := newObject(CommandPutFinal)
	obj.addHeader(HeaderName, encodeUnicode(name), StreamWhole)
	return obj
}

// buildSetPath constructs a SETPATH request. An empty component with up set
// ascends one level; otherwise component names the child to descend into.
func buildSetPath(component string, up bool) *Object {
	obj := newObject(CommandSetPath)
	flags := SetPathNoCreate
	if up {
		flags |= SetPathUp
	}
	obj.addHeader(setPathFlagsHeaderID, []byte{byte(flags), 0x00}, StreamWhole)
	if !up && component != "" {
		obj.addHeader(HeaderName, encodeUnicode(component), StreamWhole)
	}
	return obj
}

// buildRename constructs a rename (move) request: CMD=PUT with an APPARAM
// op code selecting the move action and two NAME-family headers in
// sequence, source then destination — see SPEC_FULL.md's resolution of the
// "rename header layout" open question.
func buildRename(sourcename, targetname string) *Object {
	obj := newObject(CommandPutFinal)
	obj.addHeader(HeaderAppParam, EncodeAppParam(AppParam{Code: appParamOpMove}), StreamWhole)
	obj.addHeader(headerSourceName, encodeUnicode(sourcename), StreamWhole)
	obj.addHeader(HeaderName, encodeUnicode(targetname), StreamWhole)
	return obj
}

// setPathFlagsHeaderID is not a real OBEX header: SETPATH's flags and
// constants bytes are carried in the command's fixed 2-byte prefix, not a
// header. It is kept as a sentinel header id purely so buildSetPath can
// reuse the same header-queueing plumbing; wire.go special-cases it.
const setPathFlagsHeaderID HeaderID = 0xF0

// headerSourceName is a second NAME-family header used only by rename, to
// disambiguate the source name from the destination NAME header queued
// after it. Real OBEX FTP servers expect two consecutive 0x01 headers; we
// give the first one a distinct internal id so the encoder can tell them
// apart while still emitting byte 0x01 on the wire for both.
const headerSourceName HeaderID = 0xF1

// appParamOpMove is the application-parameter op code this client uses to
// select the move/rename action on a PUT-based rename request.
const appParamOpMove byte = 0x00
