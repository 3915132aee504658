package pngio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// idatSize is the payload size at which an IDAT chunk is flushed.
const idatSize = 1 << 16

// Writer errors.
var (
	// ErrRowLength is returned when a row does not match the image width.
	ErrRowLength = errors.New("pngio: row length does not match width")

	// ErrRowCount is returned for too many rows, or too few rows at Close.
	ErrRowCount = errors.New("pngio: row count does not match height")

	// ErrClosed is returned when writing to a closed Gray8Writer.
	ErrClosed = errors.New("pngio: writer is closed")
)

// zlibPools holds reusable zlib writers per compression level.
var zlibPools sync.Map // map[int]*sync.Pool

func zlibPool(level int) *sync.Pool {
	if p, ok := zlibPools.Load(level); ok {
		return p.(*sync.Pool)
	}
	p, _ := zlibPools.LoadOrStore(level, &sync.Pool{})
	return p.(*sync.Pool)
}

func getZlibWriter(w io.Writer, level int) (*zlib.Writer, error) {
	if zw, ok := zlibPool(level).Get().(*zlib.Writer); ok {
		zw.Reset(w)
		return zw, nil
	}
	return zlib.NewWriterLevel(w, level)
}

func putZlibWriter(zw *zlib.Writer, level int) {
	zlibPool(level).Put(zw)
}

// idatWriter splits the zlib stream into IDAT chunks.
type idatWriter struct {
	w io.Writer
}

func (iw idatWriter) Write(p []byte) (int, error) {
	if err := writeChunk(iw.w, chunkIDAT, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Gray8Writer writes an 8-bit grayscale, non-interlaced PNG stream one row
// at a time, top to bottom. Rows use filter type 0.
//
// Gray8Writer is not safe for concurrent use.
type Gray8Writer struct {
	w      io.Writer
	level  int
	width  int
	height int
	rows   int

	buf    *bufio.Writer // batches zlib output into IDAT-sized chunks
	zw     *zlib.Writer
	line   []byte // filter byte + samples
	closed bool
	err    error
}

// NewGray8Writer writes the signature and IHDR to w and returns a writer
// for the rows. level is a zlib compression level
// (zlib.NoCompression .. zlib.BestCompression, or zlib.DefaultCompression).
func NewGray8Writer(w io.Writer, width, height, level int) (*Gray8Writer, error) {
	if width <= 0 || height <= 0 || width > maxChunkLength || height > maxChunkLength {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrBadHeader, width, height)
	}
	if level < zlib.HuffmanOnly || level > zlib.BestCompression {
		return nil, fmt.Errorf("pngio: invalid compression level %d", level)
	}

	if _, err := io.WriteString(w, Signature); err != nil {
		return nil, err
	}
	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(width))  //nolint:gosec // checked above
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(height)) //nolint:gosec // checked above
	ihdr[8] = 8
	ihdr[9] = byte(ColorGray)
	// compression, filter and interlace methods are all 0
	if err := writeChunk(w, chunkIHDR, ihdr[:]); err != nil {
		return nil, err
	}

	buf := bufio.NewWriterSize(idatWriter{w: w}, idatSize)
	zw, err := getZlibWriter(buf, level)
	if err != nil {
		return nil, err
	}
	return &Gray8Writer{
		w:      w,
		level:  level,
		width:  width,
		height: height,
		buf:    buf,
		zw:     zw,
		line:   make([]byte, 1+width),
	}, nil
}

// WriteRow appends one row of width samples.
func (g *Gray8Writer) WriteRow(row []uint8) error {
	if g.closed {
		return ErrClosed
	}
	if g.err != nil {
		return g.err
	}
	if len(row) != g.width {
		return fmt.Errorf("%w: got %d, want %d", ErrRowLength, len(row), g.width)
	}
	if g.rows == g.height {
		return fmt.Errorf("%w: more than %d rows", ErrRowCount, g.height)
	}
	copy(g.line[1:], row)
	if _, err := g.zw.Write(g.line); err != nil {
		g.err = err
		return err
	}
	g.rows++
	return nil
}

// Close finishes the zlib stream and writes the trailing IEND chunk.
// It fails if fewer than height rows were written.
func (g *Gray8Writer) Close() error {
	if g.closed {
		return ErrClosed
	}
	g.closed = true
	defer putZlibWriter(g.zw, g.level)

	if g.err != nil {
		return g.err
	}
	if g.rows != g.height {
		return fmt.Errorf("%w: wrote %d of %d rows", ErrRowCount, g.rows, g.height)
	}
	if err := g.zw.Close(); err != nil {
		return err
	}
	if err := g.buf.Flush(); err != nil {
		return err
	}
	return writeChunk(g.w, chunkIEND, nil)
}
