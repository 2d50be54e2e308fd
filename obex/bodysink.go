package obex

import (
	"bytes"
	"io"
	"os"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"github.com/sharathkunda/obexftp/errorkinds"
)

// BodySink receives the inbound BODY/END-OF-BODY bytes of a GET response as
// they arrive, one chunk per packet. It replaces the original client's
// malloc-and-memcpy growable buffer with whatever owned destination the
// caller wants: memory, a local file, or a test double.
type BodySink interface {
	Write(chunk []byte) error
	Close() error
}

// MemorySink accumulates the full body in memory; used for listings and
// small info replies where the caller wants the bytes back directly.
type MemorySink struct {
	buf bytes.Buffer
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Write(chunk []byte) error {
	_, err := s.buf.Write(chunk)
	return err
}

func (s *MemorySink) Close() error { return nil }

// Bytes returns the accumulated body. The returned slice aliases the
// sink's internal buffer and must not be retained across further writes.
func (s *MemorySink) Bytes() []byte { return s.buf.Bytes() }

// FileSink streams the inbound body straight to an open local file,
// avoiding a full in-memory copy for large file transfers.
type FileSink struct {
	f *os.File
}

// NewFileSink opens path for writing, truncating any existing content.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fault.Wrap(err, ftag.With(ftag.Internal), fmsg.With("creating local destination file"),
			fault.Wrap(errorkinds.ErrLocalFileOpen))
	}
	return &FileSink{f: f}, nil
}

func (s *FileSink) Write(chunk []byte) error {
	if _, err := s.f.Write(chunk); err != nil {
		return fault.Wrap(err, ftag.With(ftag.Internal), fmsg.With("writing local destination file"),
			fault.Wrap(errorkinds.ErrLocalFileWrite))
	}
	return nil
}

func (s *FileSink) Close() error { return s.f.Close() }

// StreamSource supplies the outbound BODY bytes of a PUT request, one chunk
// at a time. Next reports last=true on the chunk that should be sent as
// END-OF-BODY, which may be zero-length.
type StreamSource interface {
	Next(maxChunk int) (chunk []byte, last bool, err error)
}

// BytesSource streams a fixed in-memory payload, used for small PUTs built
// from data the caller already has in hand.
type BytesSource struct {
	data []byte
	pos  int
}

// NewBytesSource wraps data for streaming.
func NewBytesSource(data []byte) *BytesSource { return &BytesSource{data: data} }

func (s *BytesSource) Next(maxChunk int) ([]byte, bool, error) {
	if s.pos >= len(s.data) {
		return nil, true, nil
	}
	end := s.pos + maxChunk
	if end > len(s.data) {
		end = len(s.data)
	}
	chunk := s.data[s.pos:end]
	s.pos = end
	return chunk, s.pos >= len(s.data), nil
}

// FileSource streams a local file's contents as the body of a PUT.
type FileSource struct {
	f    *os.File
	Size int64
}

// NewFileSource opens path for reading and stats it for the LENGTH header.
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Wrap(err, ftag.With(ftag.Internal), fmsg.With("opening local source file"),
			fault.Wrap(errorkinds.ErrLocalFileOpen))
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fault.Wrap(err, ftag.With(ftag.Internal), fmsg.With("stating local source file"),
			fault.Wrap(errorkinds.ErrLocalFileStat))
	}
	return &FileSource{f: f, Size: info.Size()}, nil
}

func (s *FileSource) Next(maxChunk int) ([]byte, bool, error) {
	buf := make([]byte, maxChunk)
	n, err := s.f.Read(buf)
	if err != nil && err != io.EOF {
		return nil, false, fault.Wrap(err, ftag.With(ftag.Internal), fmsg.With("reading local source file"),
			fault.Wrap(errorkinds.ErrLocalFileOpen))
	}
	last := err == io.EOF
	return buf[:n], last, nil
}

func (s *FileSource) Close() error { return s.f.Close() }
