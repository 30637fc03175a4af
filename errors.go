// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

import "errors"

// Sentinel errors for XRAI container operations. Use errors.Is in callers.
var (
	// ErrInvalidMagic means the first four bytes are not "XRAI".
	ErrInvalidMagic = errors.New("xrai: invalid magic bytes")
	// ErrUnsupportedVersion means the major version exceeds what this decoder supports.
	ErrUnsupportedVersion = errors.New("xrai: unsupported major version")
	// ErrTruncated means a read went past the end of the source.
	ErrTruncated = errors.New("xrai: truncated read")
	// ErrInvalidOffset means a computed offset or size is out of file bounds or overflows.
	ErrInvalidOffset = errors.New("xrai: section offset out of bounds")
	// ErrTooManySections means the section count exceeds the configured maximum.
	ErrTooManySections = errors.New("xrai: too many sections")
	// ErrMissingRequiredSection means the required metadata section (type 1) is absent.
	ErrMissingRequiredSection = errors.New("xrai: missing required metadata section")
	// ErrInvalidMetadata means the metadata section is not valid JSON or lacks asset.version.
	ErrInvalidMetadata = errors.New("xrai: metadata is not valid JSON or lacks asset.version")
	// ErrDecompressionFailed means inflate failed or the inflated size exceeds the configured cap.
	ErrDecompressionFailed = errors.New("xrai: section decompression failed")
	// ErrUnknownCompressionAlgo means section flags name a compression algorithm this decoder does not support.
	ErrUnknownCompressionAlgo = errors.New("xrai: unknown section compression algorithm")
	// ErrInvalidJSONPayload means a JSON-typed section failed to parse.
	ErrInvalidJSONPayload = errors.New("xrai: section JSON payload is invalid")
	// ErrEncoderInputInvalid means the caller-supplied document cannot be encoded.
	ErrEncoderInputInvalid = errors.New("xrai: document cannot be encoded")
	// ErrNilWriter means the destination writer is nil.
	ErrNilWriter = errors.New("xrai: writer is nil")
	// ErrNilReader means the source reader is nil.
	ErrNilReader = errors.New("xrai: reader is nil")
	// ErrSizeOverflow means a size or offset exceeds the codec's addressable range.
	ErrSizeOverflow = errors.New("xrai: size exceeds addressable range")
	// ErrInvalidSectionName means a section name is not part of the closed registry.
	ErrInvalidSectionName = errors.New("xrai: invalid section name")
	// ErrInvalidExtractPath means a requested output path escapes or is otherwise unsafe.
	ErrInvalidExtractPath = errors.New("xrai: invalid output path")
)
