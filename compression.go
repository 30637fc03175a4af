// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
)

// CompressionAlgorithm identifies the section compression algorithm carried in flags bits 8-15.
type CompressionAlgorithm uint8

// Section flags layout (spec.md §6).
const (
	// sectionFlagCompressed is bit 0: payload is compressed.
	sectionFlagCompressed uint32 = 1 << 0
	// sectionFlagAlgoShift is the bit offset of the 8-bit algorithm field.
	sectionFlagAlgoShift = 8
	// sectionFlagAlgoMask isolates the 8-bit algorithm field once shifted.
	sectionFlagAlgoMask uint32 = 0xFF
)

// Supported/tolerated compression algorithm IDs.
const (
	// AlgorithmDeflateAlias (0) is tolerated as a deflate alias by lenient decoders.
	AlgorithmDeflateAlias CompressionAlgorithm = 0
	// AlgorithmDeflate (1) is RFC 1951 deflate.
	AlgorithmDeflate CompressionAlgorithm = 1
)

// deflateBytes compresses raw using RFC 1951 deflate at the given level.
func deflateBytes(raw []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("%w: new deflate writer: %v", ErrEncoderInputInvalid, err)
	}
	if _, err := w.Write(raw); err != nil {
		return nil, fmt.Errorf("%w: deflate write: %v", ErrEncoderInputInvalid, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: deflate close: %v", ErrEncoderInputInvalid, err)
	}
	return buf.Bytes(), nil
}

// inflateBytes decompresses a single-shot deflate stream, rejecting output
// larger than limit to guard against decompression bombs (spec.md §4.3).
func inflateBytes(compressed []byte, limit int64) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer func() { _ = r.Close() }()

	limited := io.LimitReader(r, limit+1)
	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressionFailed, err)
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("%w: inflated size exceeds limit %d", ErrDecompressionFailed, limit)
	}
	return out, nil
}

// shouldCompressBySize reports whether a raw payload size clears the benefit-gate threshold.
func shouldCompressBySize(size int, threshold uint32) bool {
	return uint32(size) >= threshold //nolint:gosec // size is bounded well under uint32 range in practice
}

// compressSectionIfBeneficial implements the encoder's benefit gate (spec.md §4.3):
// compression is attempted only when raw is at least threshold bytes, and retained only
// when the compressed output is strictly smaller. It returns the bytes to
// write and the section flags to record.
func compressSectionIfBeneficial(raw []byte, level int, threshold uint32) ([]byte, uint32, error) {
	if !shouldCompressBySize(len(raw), threshold) {
		return raw, 0, nil
	}

	compressed, err := deflateBytes(raw, level)
	if err != nil {
		return nil, 0, err
	}

	if len(compressed) >= len(raw) {
		return raw, 0, nil
	}

	flags := sectionFlagCompressed | (uint32(AlgorithmDeflate) << sectionFlagAlgoShift)
	return compressed, flags, nil
}

// decodeSectionAlgorithm extracts the compression algorithm from section flags.
func decodeSectionAlgorithm(flags uint32) (compressed bool, algo CompressionAlgorithm) {
	compressed = flags&sectionFlagCompressed != 0
	algo = CompressionAlgorithm((flags >> sectionFlagAlgoShift) & sectionFlagAlgoMask)
	return compressed, algo
}

// decompressSectionPayload inflates a section's payload according to its
// flags, applying the lenient algorithm-ID-0-means-deflate policy unless
// strict is set (spec.md's Open Question resolution, see DESIGN.md).
func decompressSectionPayload(raw []byte, flags uint32, maxInflatedSize int64, strict bool) ([]byte, error) {
	compressed, algo := decodeSectionAlgorithm(flags)
	if !compressed {
		return raw, nil
	}

	switch algo {
	case AlgorithmDeflate:
		return inflateBytes(raw, maxInflatedSize)
	case AlgorithmDeflateAlias:
		if strict {
			return nil, fmt.Errorf("%w: algorithm id 0 rejected in strict mode", ErrUnknownCompressionAlgo)
		}
		return inflateBytes(raw, maxInflatedSize)
	default:
		return nil, fmt.Errorf("%w: algorithm id %d", ErrUnknownCompressionAlgo, algo)
	}
}
