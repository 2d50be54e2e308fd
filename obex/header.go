package obex

// HeaderID identifies an OBEX header field by its single-byte wire
// identifier. The high two bits of the ID encode the header's value
// encoding (unicode text, byte sequence, 1-byte int, 4-byte int); wire.go
// derives the encoding from those bits for any ID, so headers outside the
// set enumerated below still decode.
type HeaderID byte

// The header IDs used on the wire by this profile.
const (
	HeaderName       HeaderID = 0x01 // unicode text, null-terminated
	HeaderType       HeaderID = 0x42 // ascii text, null-terminated
	HeaderLength     HeaderID = 0xC3 // 4-byte integer: total object length
	HeaderTarget     HeaderID = 0x46 // byte sequence: service UUID
	HeaderBody       HeaderID = 0x48 // byte sequence: object body, partial
	HeaderEndOfBody  HeaderID = 0x49 // byte sequence: object body, final
	HeaderWho        HeaderID = 0x4A // byte sequence: responder identity
	HeaderConnection HeaderID = 0xCB // 4-byte integer: connection id
	HeaderAppParam   HeaderID = 0x4C // byte sequence: application parameters
)

// Command identifies an OBEX request's command code.
type Command byte

// The commands this client issues, plus ABORT which it only ever receives.
const (
	CommandConnect    Command = 0x80
	CommandDisconnect Command = 0x81
	CommandPut        Command = 0x02
	CommandPutFinal   Command = 0x82
	CommandGet        Command = 0x03
	CommandGetFinal   Command = 0x83
	CommandSetPath    Command = 0x85
	CommandAbort      Command = 0xFF
)

// ResponseCode identifies an OBEX response's status code. The final bit
// (0x80, "final packet of this response") is not stripped: all status
// comparisons in this package use the code exactly as seen on the wire,
// matching real OBEX servers which always set it on a response.
type ResponseCode byte

// The response codes this client distinguishes explicitly; any other value
// is treated as a generic failure.
const (
	ResponseContinue ResponseCode = 0x90
	ResponseSuccess  ResponseCode = 0xA0
	ResponseForbidden ResponseCode = 0xC3
	ResponseNotFound  ResponseCode = 0xC4
)

// IsSuccess reports whether code represents OBEX_RSP_SUCCESS.
func (c ResponseCode) IsSuccess() bool {
	return c == ResponseSuccess
}

// SetPathFlags are the flag byte carried alongside a SETPATH request.
type SetPathFlags byte

const (
	// SetPathDown descends into the named child folder (the default;
	// the flag's bit is clear).
	SetPathDown SetPathFlags = 0x00
	// SetPathUp ascends to the parent folder without creating anything
	// and without a NAME header.
	SetPathUp SetPathFlags = 0x01
	// SetPathNoCreate asks the server not to create the named folder if
	// it does not already exist. SetPath and Navigate always set it;
	// PutTree's descent into a local subdirectory (setPathCreate) leaves
	// it clear so the server may create the folder.
	SetPathNoCreate SetPathFlags = 0x02
)

// StreamFlag marks how a BODY header's bytes relate to the rest of the
// stream being sent.
type StreamFlag byte

const (
	// StreamWhole carries the header's bytes as the complete value; no
	// further stream-empty events will be serviced for this header.
	StreamWhole StreamFlag = iota
	// StreamData carries one chunk of a stream still in progress.
	StreamData
	// StreamDataEnd carries the final chunk (possibly zero-length) of a
	// stream; the framing layer will not request more data afterward.
	StreamDataEnd
)

// MimeTypeFolderListing is the MIME type attached to the TYPE header of a
// folder-listing GET request.
const MimeTypeFolderListing = "x-obex/folder-listing"
