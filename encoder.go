// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// plannedSection holds one section's fully materialized write-ready bytes
// and the flags to record for it, computed before any byte is written so the
// full layout (and therefore every offset) is known up front -- unlike the
// teacher's placeholder-then-patch-back table, this encoder needs no seek
// because nothing here is unknown-size streamed raw (spec.md §4.4 step 3).
type plannedSection struct {
	name  string
	id    SectionID
	flags uint32
	body  []byte
}

// Encode assembles doc into a complete container according to opts and
// returns the full byte sequence (spec.md §4.4).
func Encode(doc *Document, opts EncodeOptions) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrEncoderInputInvalid)
	}

	opts.applyDefaults()
	align := !opts.NoAlign

	working := cloneDocumentForEncode(doc)
	if err := ensureMetadataVersion(working); err != nil {
		return nil, err
	}

	planned, err := planSections(working, opts)
	if err != nil {
		return nil, err
	}
	if len(planned) > DefaultMaxSectionCount {
		return nil, fmt.Errorf("%w: %d sections", ErrTooManySections, len(planned))
	}

	layout := computeLayout(planned, align)

	var buf bytes.Buffer
	buf.Grow(int(layout.totalSize))
	if err := writeHeaderAndTOC(&buf, planned, layout); err != nil {
		return nil, err
	}
	if err := writeSectionBodies(&buf, planned, layout, align); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// encodeLayout describes precomputed offsets for every planned section.
type encodeLayout struct {
	tocOffset   int64
	dataStart   int64
	offsets     []int64
	paddings    []int
	totalSize   int64
}

// computeLayout computes the header+TOC+aligned-section-body layout (spec.md §4.4 step 3).
func computeLayout(planned []plannedSection, align bool) encodeLayout {
	layout := encodeLayout{
		tocOffset: headerSize,
		offsets:   make([]int64, len(planned)),
		paddings:  make([]int, len(planned)),
	}

	dataStart := headerSize + tocHeadSize + int64(len(planned))*tocEntSize
	layout.dataStart = dataStart

	pos := dataStart
	for i, sec := range planned {
		padded := pos
		if align {
			padded = align4(pos)
		}
		layout.paddings[i] = int(padded - pos)
		layout.offsets[i] = padded
		pos = padded + int64(len(sec.body))
	}
	layout.totalSize = pos

	return layout
}

// writeHeaderAndTOC writes the fixed 16-byte header followed by the TOC.
func writeHeaderAndTOC(buf *bytes.Buffer, planned []plannedSection, layout encodeLayout) error {
	sink := newByteSink(buf, 0)

	if err := sink.writeBytes(magic[:]); err != nil {
		return err
	}
	if err := sink.writeBytes([]byte{formatMajor, formatMinor}); err != nil {
		return err
	}
	if err := sink.writeU16LE(0); err != nil { // file flags, reserved
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

	return sink.Flush()
}

// writeSectionBodies writes each section's padding and body in declaration order.
func writeSectionBodies(buf *bytes.Buffer, planned []plannedSection, layout encodeLayout, align bool) error {
	sink := newByteSink(buf, 0)
	for i, sec := range planned {
		if align {
			if err := sink.writeZeroPad(layout.paddings[i]); err != nil {
				return err
			}
		}
		if err := sink.writeBytes(sec.body); err != nil {
			return err
		}
	}
	return sink.Flush()
}

// planSections serializes, optionally compresses, and orders every non-empty
// recognized section from doc (spec.md §4.4 step 2).
func planSections(doc *Document, opts EncodeOptions) ([]plannedSection, error) {
	planned := make([]plannedSection, 0, len(registryOrder))

	for _, id := range registryOrder {
		name, _ := NameOf(id)
		payload, ok := doc.Get(name)
		if !ok {
			continue
		}

		raw, err := serializePayload(name, payload)
		if err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			continue
		}

		body, flags := raw, uint32(0)
		if opts.Compress {
			body, flags, err = compressSectionIfBeneficial(raw, opts.CompressionLevel, opts.CompressionThreshold)
			if err != nil {
				return nil, err
			}
		}

		planned = append(planned, plannedSection{name: name, id: id, flags: flags, body: body})
	}

	for _, sec := range doc.Sections() {
		if _, ok := TypeIDOf(sec.Name); ok {
			continue // already handled above in canonical order
		}
		if sec.Name == "_format" {
			continue // decoder-attached format info, never encoded
		}
		if sec.Payload.Kind != PayloadUnknown {
			return nil, fmt.Errorf("%w: section %q is not part of the closed registry", ErrInvalidSectionName, sec.Name)
		}
		if len(sec.Payload.Bytes) == 0 {
			continue
		}

		body, flags := sec.Payload.Bytes, uint32(0)
		var err error
		if opts.Compress {
			body, flags, err = compressSectionIfBeneficial(sec.Payload.Bytes, opts.CompressionLevel, opts.CompressionThreshold)
			if err != nil {
				return nil, err
			}
		}
		planned = append(planned, plannedSection{name: sec.Name, id: sec.Payload.UnknownID, flags: flags, body: body})
	}

	return planned, nil
}

// serializePayload turns a Payload into wire bytes per its registry interpretation.
func serializePayload(name string, payload Payload) ([]byte, error) {
	switch payload.Kind {
	case PayloadJSON:
		if payload.JSON == nil {
			return nil, nil
		}
		out, err := json.Marshal(payload.JSON)
		if err != nil {
			return nil, fmt.Errorf("%w: section %q: %v", ErrEncoderInputInvalid, name, err)
		}
		return out, nil
	case PayloadOpaque:
		return payload.Bytes, nil
	default:
		return nil, fmt.Errorf("%w: section %q has unexpected payload kind", ErrEncoderInputInvalid, name)
	}
}

// cloneDocumentForEncode returns a shallow copy so Encode never mutates the caller's Document.
func cloneDocumentForEncode(doc *Document) *Document {
	clone := NewDocument()
	for _, sec := range doc.Sections() {
		clone.Set(sec.Name, sec.Payload)
	}
	return clone
}

// ensureMetadataVersion injects asset.version/generator/copyright defaults
// into the metadata section when absent (spec.md §4.4 step 1).
func ensureMetadataVersion(doc *Document) error {
	name, _ := NameOf(SectionMetadata)
	payload, ok := doc.Get(name)
	if !ok {
		payload = Payload{Kind: PayloadJSON, JSON: map[string]any{}}
	}
	if payload.Kind != PayloadJSON {
		return fmt.Errorf("%w: metadata section must be JSON", ErrEncoderInputInvalid)
	}

	srcRoot, ok := asObjectOrNew(payload.JSON)
	if !ok {
		return fmt.Errorf("%w: metadata section root must be a JSON object", ErrEncoderInputInvalid)
	}

	srcAsset, ok := asObjectOrNew(srcRoot["asset"])
	if !ok {
		return fmt.Errorf("%w: metadata.asset must be a JSON object", ErrEncoderInputInvalid)
	}

	// Copy both maps so the caller's metadata tree is never written to.
	root := make(map[string]any, len(srcRoot)+1)
	for k, v := range srcRoot {
		root[k] = v
	}
	asset := make(map[string]any, len(srcAsset)+3)
	for k, v := range srcAsset {
		asset[k] = v
	}
	if _, hasVersion := asset["version"]; !hasVersion {
		asset["version"] = "1.0"
		asset["generator"] = "xrai-encoder"
		asset["copyright"] = ""
	}
	root["asset"] = asset

	payload.JSON = root
	doc.Set(name, payload)
	return nil
}

// asObjectOrNew returns v as a map[string]any, or a fresh empty map if v is nil.
// It reports false if v is non-nil and not an object.
func asObjectOrNew(v any) (map[string]any, bool) {
	if v == nil {
		return map[string]any{}, true
	}
	m, ok := v.(map[string]any)
	return m, ok
}
