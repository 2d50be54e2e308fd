package obex

import (
	"context"
	"sync/atomic"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fctx"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/sharathkunda/obexftp/errorkinds"
)

// chunkSize is the default size of each outbound BODY/inbound read chunk,
// chosen well under defaultMaxPacketSize to leave room for header overhead.
const chunkSize = 0x1000

// sessionState tracks where a Session sits in the
// idle -> submitted -> {progress}* -> {stream_empty}* -> done|link_error
// lifecycle. It exists for diagnostics and tests; it does not gate which
// methods may be called; busy is what prevents overlapping requests.
type sessionState int32

const (
	stateIdle sessionState = iota
	stateSubmitted
	stateProgress
	stateDone
	stateLinkError
)

// Session is the Session State & Event Loop (component D): the public
// surface callers use to drive one OBEX connection through its
// request/response lifecycle.
type Session struct {
	transport Transport
	adapter   *frameAdapter
	handler   EventHandler
	log       Logger

	busy  atomic.Bool
	state atomic.Int32

	connected    bool
	connectionID []byte // CONNECTION header value echoed by the peer, if any
}

// Open dials transport and returns a Session ready for Connect. The
// connection stays open across many subsequent requests; callers must
// Close it when done.
func Open(ctx context.Context, transport Transport, opts ...Option) (*Session, error) {
	cfg := newConfig(opts...)
	if err := cfg.validate(); err != nil {
		return nil, fault.Wrap(err, ftag.With(ftag.InvalidArgument), fmsg.With("validating session options"))
	}

	conn, err := transport.Dial(ctx)
	if err != nil {
		return nil, fault.Wrap(err, fctx.With(ctx, "transport", transport.Name()),
			fmsg.With("opening transport"))
	}
	dialWithDeadline(ctx, conn)

	adapter := newFrameAdapter(conn, cfg.logger)
	if cfg.MaxPacketSize != 0 {
		adapter.maxPacketSize = cfg.MaxPacketSize
	}

	s := &Session{
		transport: transport,
		adapter:   adapter,
		handler:   cfg.handler(),
		log:       cfg.logger,
	}
	s.state.Store(int32(stateIdle))
	return s, nil
}

// Close tears down the underlying connection. It does not send DISCONNECT;
// callers that want a clean protocol shutdown call Disconnect first.
func (s *Session) Close() error {
	return s.adapter.close()
}

// acquire marks the session busy for the duration of one public operation,
// returning ErrSessionBusy if another request is already in flight.
func (s *Session) acquire() error {
	if !s.busy.CompareAndSwap(false, true) {
		return fault.Wrap(errorkinds.ErrSessionBusy)
	}
	return nil
}

func (s *Session) release() {
	s.busy.Store(false)
}

func (s *Session) emit(ev Event) {
	s.handler(ev)
}

// roundTrip submits obj and reads back its single response, emitting
// Sending/Receiving events and updating session state around the call. It
// does not loop for multi-packet GET/PUT flows; callers that need that
// build it on top using this as the primitive.
func (s *Session) roundTrip(name string, obj *Object, isConnect bool) (*responsePacket, error) {
	s.state.Store(int32(stateSubmitted))
	s.emit(Event{Kind: EventSending, Name: name})

	if err := s.adapter.submit(obj); err != nil {
		s.state.Store(int32(stateLinkError))
		s.emit(Event{Kind: EventErr, Name: name})
		return nil, fault.Wrap(errorkinds.ErrLinkError, ftag.With(ftag.Unavailable),
			fmsg.With("submitting request: "+err.Error()))
	}

	s.state.Store(int32(stateProgress))
	s.emit(Event{Kind: EventReceiving, Name: name})

	resp, err := s.adapter.pump(isConnect)
	if err != nil {
		s.state.Store(int32(stateLinkError))
		s.emit(Event{Kind: EventErr, Name: name})
		return nil, fault.Wrap(errorkinds.ErrLinkError, ftag.With(ftag.Unavailable),
			fmsg.With("reading response: "+err.Error()))
	}

	s.state.Store(int32(stateDone))
	return resp, nil
}

// Connect sends CONNECT, trying each candidate target UUID in order until
// one is accepted; each rejected candidate that has another one after it
// emits EventErr named "UUID". With no candidates it sends a plain CONNECT
// carrying no TARGET header, as FTP/OPP servers accept for their default
// service.
func (s *Session) Connect(ctx context.Context, candidateTargetUUIDs ...[]byte) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	s.emit(Event{Kind: EventConnecting})

	if len(candidateTargetUUIDs) == 0 {
		candidateTargetUUIDs = [][]byte{nil}
	}

	var lastErr error
	for i, uuid := range candidateTargetUUIDs {
		obj := buildConnect(uuid)
		if uuid == nil {
			obj.headers = nil
		}
		resp, err := s.roundTrip("CONNECT", obj, true)
		if err != nil {
			return err
		}
		if resp.Code.IsSuccess() {
			s.connected = true
			if cid := findHeader(resp.Headers, HeaderConnection); cid != nil {
				s.connectionID = cid
				if s.log != nil {
					s.log.Debugf("peer assigned connection id %x", cid)
				}
			}
			s.emit(Event{Kind: EventOK, Name: "CONNECT"})
			return nil
		}
		lastErr = fault.Wrap(errorkinds.ErrProtocolFailure,
			ftag.With(ftag.PermissionDenied), fmsg.With("server rejected CONNECT"))
		if i < len(candidateTargetUUIDs)-1 {
			s.emit(Event{Kind: EventErr, Name: "UUID"})
		}
	}

	s.emit(Event{Kind: EventErr, Name: "CONNECT"})
	if lastErr == nil {
		lastErr = errorkinds.ErrConnectRejected
	}
	return fault.Wrap(errorkinds.ErrConnectRejected, fmsg.With(lastErr.Error()))
}

// Disconnect sends DISCONNECT. The Session may still be Closed afterward to
// release the transport, but no further OBEX requests may be sent on it.
func (s *Session) Disconnect(ctx context.Context) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	s.emit(Event{Kind: EventDisconnecting})
	resp, err := s.roundTrip("DISCONNECT", buildDisconnect(), false)
	if err != nil {
		return err
	}
	s.connected = false
	if !resp.Code.IsSuccess() {
		return fault.Wrap(errorkinds.ErrProtocolFailure, fmsg.With("server rejected DISCONNECT"))
	}
	s.emit(Event{Kind: EventOK, Name: "DISCONNECT"})
	return nil
}

// findHeader returns the first matching header's raw bytes, or nil.
func findHeader(hdrs []decodedHeader, id HeaderID) []byte {
	for _, h := range hdrs {
		if h.ID == id {
			return h.Data
		}
	}
	return nil
}

// Get retrieves remotepath's contents into sink, looping on CONTINUE
// responses until the server signals SUCCESS.
func (s *Session) Get(ctx context.Context, remotepath string, sink BodySink) error {
	return s.get(ctx, buildGetFile(remotepath), remotepath, sink)
}

// List retrieves a folder listing for folder (empty means the server's
// current directory) as raw XML bytes.
func (s *Session) List(ctx context.Context, folder string) ([]byte, error) {
	mem := NewMemorySink()
	if err := s.get(ctx, buildGetListing(folder), folder, mem); err != nil {
		return nil, err
	}
	return mem.Bytes(), nil
}

// FastList returns the listing in memory exactly as List does: both send
// folder directly as the GET request's NAME header, with no SETPATH chain
// beforehand, for servers that accept full relative paths.
func (s *Session) FastList(ctx context.Context, folder string) ([]byte, error) {
	return s.List(ctx, folder)
}

// Info retrieves a single application-parameter value identified by
// opcode, the GET/APPPARAM idiom OBEX FTP servers use for small capability
// and status queries.
func (s *Session) Info(ctx context.Context, opcode byte) (uint32, error) {
	mem := NewMemorySink()
	if err := s.get(ctx, buildGetInfo(opcode), "INFO", mem); err != nil {
		return 0, err
	}
	param, ok := DecodeAppParam(mem.Bytes())
	if !ok {
		return 0, fault.Wrap(errorkinds.ErrProtocolFailure, fmsg.With("info response did not decode as an app parameter"))
	}
	s.emit(Event{Kind: EventInfo, Info: param.Value})
	return param.Value, nil
}

func (s *Session) get(ctx context.Context, obj *Object, name string, sink BodySink) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	first := true
	for {
		var resp *responsePacket
		var err error
		if first {
			resp, err = s.roundTrip(name, obj, false)
			first = false
		} else {
			resp, err = s.roundTrip(name, buildGetFile(""), false)
		}
		if err != nil {
			return err
		}

		if body := findHeader(resp.Headers, HeaderBody); body != nil {
			if werr := sink.Write(body); werr != nil {
				s.emit(Event{Kind: EventErr, Name: "stream"})
				return fault.Wrap(werr, fmsg.With("writing body chunk to sink"))
			}
			s.emit(Event{Kind: EventBody, Body: body})
		}
		if end := findHeader(resp.Headers, HeaderEndOfBody); end != nil {
			if werr := sink.Write(end); werr != nil {
				s.emit(Event{Kind: EventErr, Name: "stream"})
				return fault.Wrap(werr, fmsg.With("writing final body chunk to sink"))
			}
			s.emit(Event{Kind: EventBody, Body: end})
		}
		if param := findHeader(resp.Headers, HeaderAppParam); param != nil {
			if werr := sink.Write(param); werr != nil {
				s.emit(Event{Kind: EventErr, Name: "stream"})
				return fault.Wrap(werr, fmsg.With("writing app parameter to sink"))
			}
			s.emit(Event{Kind: EventBody, Body: param})
		}

		switch {
		case resp.Code.IsSuccess():
			s.emit(Event{Kind: EventOK, Name: name})
			return nil
		case resp.Code == ResponseContinue:
			s.emit(Event{Kind: EventProgress, Name: name})
			continue
		default:
			s.emit(Event{Kind: EventErr, Name: name})
			return fault.Wrap(errorkinds.ErrProtocolFailure, fmsg.With("server rejected GET"))
		}
	}
}

// PutFile streams a local file to the server under remotename.
func (s *Session) PutFile(ctx context.Context, localpath, remotename string) error {
	src, err := NewFileSource(localpath)
	if err != nil {
		return err
	}
	defer src.Close()
	return s.Put(ctx, remotename, src, uint32(src.Size))
}

// Put streams source's contents to the server under remotename. length is
// advertised via the LENGTH header; servers generally tolerate it being 0
// when the true size isn't known up front.
func (s *Session) Put(ctx context.Context, remotename string, source StreamSource, length uint32) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	obj := buildPut(remotename, length)
	s.state.Store(int32(stateSubmitted))
	s.emit(Event{Kind: EventSending, Name: remotename})
	if err := s.adapter.submit(obj); err != nil {
		s.state.Store(int32(stateLinkError))
		s.emit(Event{Kind: EventErr, Name: remotename})
		return fault.Wrap(err, fmsg.With("submitting PUT"))
	}

	for {
		chunk, last, err := source.Next(chunkSize)
		if err != nil {
			s.state.Store(int32(stateLinkError))
			s.emit(Event{Kind: EventErr, Name: "stream"})
			// Signal abort to the peer with a zero-length STREAM_DATA chunk
			// (not STREAM_DATAEND, which would claim a clean finish) rather
			// than leaving it waiting on a dead link.
			if werr := s.adapter.writeChunk(nil); werr != nil && s.log != nil {
				s.log.Warnf("obex: failed to signal stream abort: %s", werr)
			}
			return fault.Wrap(err, fmsg.With("reading from stream source"))
		}
		if !last {
			if err := s.adapter.writeChunk(chunk); err != nil {
				s.state.Store(int32(stateLinkError))
				return fault.Wrap(err, fmsg.With("writing body chunk"))
			}
			s.emit(Event{Kind: EventProgress, Name: remotename, Info: uint32(len(chunk))})
			continue
		}
		if err := s.adapter.writeFinalChunk(chunk); err != nil {
			s.state.Store(int32(stateLinkError))
			return fault.Wrap(err, fmsg.With("writing final body chunk"))
		}
		break
	}

	resp, err := s.adapter.pump(false)
	if err != nil {
		s.state.Store(int32(stateLinkError))
		s.emit(Event{Kind: EventErr, Name: remotename})
		return fault.Wrap(err, fmsg.With("reading PUT response"))
	}
	if !resp.Code.IsSuccess() {
		s.state.Store(int32(stateDone))
		s.emit(Event{Kind: EventErr, Name: remotename})
		return fault.Wrap(errorkinds.ErrProtocolFailure, fmsg.With("server rejected PUT"))
	}
	s.state.Store(int32(stateDone))
	s.emit(Event{Kind: EventOK, Name: remotename})
	return nil
}

// Del deletes remotename, the PUT-with-no-body idiom OBEX FTP servers use
// in place of a dedicated delete command.
func (s *Session) Del(ctx context.Context, remotename string) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	resp, err := s.roundTrip(remotename, buildPutEmpty(remotename), false)
	if err != nil {
		return err
	}
	if !resp.Code.IsSuccess() {
		s.emit(Event{Kind: EventErr, Name: remotename})
		return fault.Wrap(errorkinds.ErrProtocolFailure, fmsg.With("server rejected delete"))
	}
	s.emit(Event{Kind: EventOK, Name: remotename})
	return nil
}

// Rename moves sourcename to targetname within the server's current
// directory.
func (s *Session) Rename(ctx context.Context, sourcename, targetname string) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	resp, err := s.roundTrip(sourcename, buildRename(sourcename, targetname), false)
	if err != nil {
		return err
	}
	if !resp.Code.IsSuccess() {
		s.emit(Event{Kind: EventErr, Name: sourcename})
		return fault.Wrap(errorkinds.ErrProtocolFailure, fmsg.With("server rejected rename"))
	}
	s.emit(Event{Kind: EventOK, Name: sourcename})
	return nil
}

// SetPath takes one navigation step: descend into component, or ascend one
// level when up is true and component is ignored.
func (s *Session) SetPath(ctx context.Context, component string, up bool) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	resp, err := s.roundTrip(component, buildSetPath(component, up), false)
	if err != nil {
		return err
	}
	if !resp.Code.IsSuccess() {
		s.emit(Event{Kind: EventErr, Name: component})
		return fault.Wrap(errorkinds.ErrProtocolFailure, fmsg.With("server rejected SETPATH"))
	}
	s.emit(Event{Kind: EventOK, Name: component})
	return nil
}
