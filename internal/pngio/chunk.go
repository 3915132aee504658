// Package pngio implements the PNG chunk layer used by graymix.
//
// Decoding of pixel data is left to image/png; this package only inspects
// the chunks that precede the image data (to learn the source color type and
// whether a transparency chunk is present) and writes 8-bit grayscale
// streams row by row.
package pngio

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
)

// Signature is the 8-byte PNG file signature.
const Signature = "\x89PNG\r\n\x1a\n"

// Chunk types used by this package.
const (
	chunkIHDR = "IHDR"
	chunkTRNS = "tRNS"
	chunkIDAT = "IDAT"
	chunkIEND = "IEND"
)

// maxChunkLength is the largest chunk length allowed by the PNG format.
const maxChunkLength = 1<<31 - 1

// Chunk layer errors.
var (
	// ErrSignature is returned when the stream does not start with the PNG signature.
	ErrSignature = errors.New("pngio: not a PNG stream")

	// ErrTruncated is returned when a chunk extends past the end of the stream.
	ErrTruncated = errors.New("pngio: truncated stream")

	// ErrChecksum is returned when a chunk CRC does not match its contents.
	ErrChecksum = errors.New("pngio: chunk checksum mismatch")
)

// chunk is one parsed chunk. data aliases the input stream.
type chunk struct {
	typ  string
	data []byte
}

// chunkScanner walks the chunks of an in-memory PNG stream.
type chunkScanner struct {
	buf []byte
	off int
}

func newChunkScanner(data []byte) (*chunkScanner, error) {
	if len(data) < len(Signature) || string(data[:len(Signature)]) != Signature {
		return nil, ErrSignature
	}
	return &chunkScanner{buf: data, off: len(Signature)}, nil
}

// next returns the next chunk, or io.EOF at the end of the stream.
func (s *chunkScanner) next() (chunk, error) {
	if s.off == len(s.buf) {
		return chunk{}, io.EOF
	}
	if len(s.buf)-s.off < 12 {
		return chunk{}, ErrTruncated
	}
	n := binary.BigEndian.Uint32(s.buf[s.off:])
	if n > maxChunkLength || int(n) > len(s.buf)-s.off-12 {
		return chunk{}, ErrTruncated
	}
	start := s.off + 4
	end := start + 4 + int(n)
	want := binary.BigEndian.Uint32(s.buf[end:])
	if crc32.ChecksumIEEE(s.buf[start:end]) != want {
		return chunk{}, ErrChecksum
	}
	c := chunk{typ: string(s.buf[start : start+4]), data: s.buf[start+4 : end]}
	s.off = end + 4
	return c, nil
}

// writeChunk writes one chunk with its length and CRC to w.
func writeChunk(w io.Writer, typ string, data []byte) error {
	var header [8]byte
	binary.BigEndian.PutUint32(header[:4], uint32(len(data))) //nolint:gosec // callers keep chunks below 2^31
	copy(header[4:], typ)

	crc := crc32.NewIEEE()
	_, _ = crc.Write(header[4:])
	_, _ = crc.Write(data)

	var footer [4]byte
	binary.BigEndian.PutUint32(footer[:], crc.Sum32())

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := w.Write(footer[:])
	return err
}
