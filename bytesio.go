// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// readU8 reads one byte at the given offset with bounds checking.
func readU8(ra io.ReaderAt, at int64) (byte, error) {
	var b [1]byte
	if _, err := ra.ReadAt(b[:], at); err != nil {
		return 0, fmt.Errorf("%w: read u8 at %d: %v", ErrTruncated, at, err)
	}
	return b[0], nil
}

// readU16LE reads a little-endian uint16 at the given offset with bounds checking.
func readU16LE(ra io.ReaderAt, at int64) (uint16, error) {
	var b [2]byte
	if _, err := ra.ReadAt(b[:], at); err != nil {
		return 0, fmt.Errorf("%w: read u16 at %d: %v", ErrTruncated, at, err)
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

// readU32LE reads a little-endian uint32 at the given offset with bounds checking.
func readU32LE(ra io.ReaderAt, at int64) (uint32, error) {
	var b [4]byte
	if _, err := ra.ReadAt(b[:], at); err != nil {
		return 0, fmt.Errorf("%w: read u32 at %d: %v", ErrTruncated, at, err)
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// readU64LE reads a little-endian uint64 at the given offset with bounds checking.
func readU64LE(ra io.ReaderAt, at int64) (uint64, error) {
	var b [8]byte
	if _, err := ra.ReadAt(b[:], at); err != nil {
		return 0, fmt.Errorf("%w: read u64 at %d: %v", ErrTruncated, at, err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// readASCII4 reads four bytes as a fixed ASCII tag at the given offset.
func readASCII4(ra io.ReaderAt, at int64) ([4]byte, error) {
	var b [4]byte
	if _, err := ra.ReadAt(b[:], at); err != nil {
		return b, fmt.Errorf("%w: read magic at %d: %v", ErrTruncated, at, err)
	}
	return b, nil
}

// sliceAt returns an owned copy of n bytes starting at offset at, bounds-checked
// against overflow before any read is attempted.
func sliceAt(ra io.ReaderAt, at, n int64) ([]byte, error) {
	if at < 0 || n < 0 {
		return nil, fmt.Errorf("%w: negative slice bounds at=%d n=%d", ErrInvalidOffset, at, n)
	}
	if n > 0 && at > math.MaxInt64-n {
		return nil, fmt.Errorf("%w: slice bounds overflow at=%d n=%d", ErrInvalidOffset, at, n)
	}

	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := io.ReadFull(io.NewSectionReader(ra, at, n), buf); err != nil {
		return nil, fmt.Errorf("%w: slice at %d len %d: %v", ErrTruncated, at, n, err)
	}
	return buf, nil
}

// align4 returns the next multiple of 4 greater than or equal to pos.
func align4(pos int64) int64 {
	return (pos + 3) &^ 3
}

// checkedUint32ToInt converts a uint32 to int with platform-safe overflow checking.
func checkedUint32ToInt(v uint32) (int, error) {
	if uint64(v) > uint64(math.MaxInt) {
		return 0, ErrSizeOverflow
	}
	return int(v), nil
}

// checkedUint64ToInt64 converts a uint64 to int64 with overflow checking, used
// when narrowing 64-bit offsets/sizes for in-memory indexing (spec.md §4.1).
func checkedUint64ToInt64(v uint64) (int64, error) {
	if v > uint64(math.MaxInt64) {
		return 0, ErrSizeOverflow
	}
	return int64(v), nil
}

// byteSink is a little-endian write sink used by the encoder.
type byteSink struct {
	w   *bufio.Writer
	pos int64
}

// newByteSink wraps an io.Writer with a buffered little-endian write sink.
func newByteSink(w io.Writer, bufSize int) *byteSink {
	if bufSize <= 0 {
		bufSize = 32 * 1024
	}
	return &byteSink{w: bufio.NewWriterSize(w, bufSize)}
}

// writeU32LE writes a little-endian uint32.
func (s *byteSink) writeU32LE(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return s.writeBytes(b[:])
}

// writeU64LE writes a little-endian uint64.
func (s *byteSink) writeU64LE(v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return s.writeBytes(b[:])
}

// writeU16LE writes a little-endian uint16.
func (s *byteSink) writeU16LE(v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return s.writeBytes(b[:])
}

// writeBytes writes raw bytes and advances the sink's position counter.
func (s *byteSink) writeBytes(b []byte) error {
	n, err := s.w.Write(b)
	s.pos += int64(n)
	if err != nil {
		return fmt.Errorf("xrai: write: %w", err)
	}
	return nil
}

// writeZeroPad writes n zero bytes, used for alignment padding between sections.
func (s *byteSink) writeZeroPad(n int) error {
	if n <= 0 {
		return nil
	}
	var zero [4]byte
	return s.writeBytes(zero[:n])
}

// Flush flushes the underlying buffered writer.
func (s *byteSink) Flush() error {
	return s.w.Flush()
}
