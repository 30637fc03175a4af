// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

import (
	"fmt"
	"io"
)

// EncodeStream writes doc to sink the same way Encode does, without ever
// materializing the full container in memory: the layout is computed first
// (every section is already fully serialized in memory, same as Encode),
// then header, TOC, and section bodies are streamed out in ChunkSize writes
// (spec.md §4.4 "streaming variant").
func EncodeStream(doc *Document, opts EncodeOptions, sink io.Writer) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrEncoderInputInvalid)
	}
	if sink == nil {
		return ErrNilWriter
	}

	opts.applyDefaults()
	align := !opts.NoAlign

	working := cloneDocumentForEncode(doc)
	if err := ensureMetadataVersion(working); err != nil {
		return err
	}

	planned, err := planSections(working, opts)
	if err != nil {
		return err
	}
	if len(planned) > DefaultMaxSectionCount {
		return fmt.Errorf("%w: %d sections", ErrTooManySections, len(planned))
	}

	layout := computeLayout(planned, align)

	bs := newByteSink(sink, opts.WriterBufferSize)

	if err := writeHeaderAndTOCToSink(bs, planned, layout); err != nil {
		return err
	}
	if err := writeSectionBodiesChunked(bs, planned, layout, align, opts.ChunkSize); err != nil {
		return err
	}

	return bs.Flush()
}

// writeHeaderAndTOCToSink writes the header and TOC directly to a byteSink
// wrapping the caller's io.Writer, mirroring writeHeaderAndTOC's in-memory twin.
func writeHeaderAndTOCToSink(sink *byteSink, planned []plannedSection, layout encodeLayout) error {
	if err := sink.writeBytes(magic[:]); err != nil {
		return err
	}
	if err := sink.writeBytes([]byte{formatMajor, formatMinor}); err != nil {
		return err
	}
	if err := sink.writeU16LE(0); err != nil {
		return err
	}
	if err := sink.writeU64LE(uint64(layout.tocOffset)); err != nil {
		return err
	}

	if err := sink.writeU32LE(uint32(len(planned))); err != nil { //nolint:gosec // bounded by TooManySections check
		return err
	}
	for i, sec := range planned {
		if err := sink.writeU32LE(uint32(sec.id)); err != nil {
			return err
		}
		if err := sink.writeU64LE(uint64(layout.offsets[i])); err != nil {
			return err
		}
		if err := sink.writeU64LE(uint64(len(sec.body))); err != nil {
			return err
		}
		if err := sink.writeU32LE(sec.flags); err != nil {
			return err
		}
	}
	return nil
}

// writeSectionBodiesChunked writes each section's padding and body to sink in
// chunkSize pieces, so a single large section never requires one giant write.
func writeSectionBodiesChunked(sink *byteSink, planned []plannedSection, layout encodeLayout, align bool, chunkSize int) error {
	for i, sec := range planned {
		if align {
			if err := sink.writeZeroPad(layout.paddings[i]); err != nil {
				return err
			}
		}
		body := sec.body
		for len(body) > 0 {
			n := chunkSize
			if n > len(body) {
				n = len(body)
			}
			if err := sink.writeBytes(body[:n]); err != nil {
				return err
			}
			body = body[n:]
		}
	}
	return nil
}
