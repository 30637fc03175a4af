// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// tocEntry is one parsed table-of-contents record (spec.md §6).
type tocEntry struct {
	id     SectionID
	offset int64
	size   int64
	flags  uint32
}

// Validate performs the same structural checks Decode runs before parsing any
// section, without materializing a Document (spec.md §4.5, idempotent).
func Validate(data []byte) ValidationResult {
	ra := bytes.NewReader(data)
	_, entries, err := parseHeaderAndTOC(ra, int64(len(data)), DefaultMaxSectionCount)
	if err != nil {
		return ValidationResult{Valid: false, Errors: []error{err}}
	}
	if err := requireMetadataEntry(entries); err != nil {
		return ValidationResult{Valid: false, Errors: []error{err}}
	}
	return ValidationResult{Valid: true}
}

// Decode parses a complete in-memory container into a Document
// (spec.md §4.5: header -> TOC bounds -> per-entry bounds -> require
// metadata -> per-section decompress/interpret/attach -> merge metadata
// top-level keys into the document root -> attach _format).
func Decode(data []byte, opts DecodeOptions) (*Document, error) {
	opts.applyDefaults()
	ra := bytes.NewReader(data)

	format, entries, err := parseHeaderAndTOC(ra, int64(len(data)), opts.MaxSectionCount)
	if err != nil {
		return nil, err
	}

	doc := NewDocument()
	doc.Format = format

	if err := requireMetadataEntry(entries); err != nil {
		return nil, err
	}

	for _, entry := range entries {
		raw, err := sliceAt(ra, entry.offset, entry.size)
		if err != nil {
			return nil, err
		}

		name, payload, warnErr := decodeSectionEntry(entry, raw, opts)
		if warnErr != nil {
			if opts.Strict {
				return nil, warnErr
			}
			doc.Warnings = append(doc.Warnings, Warning{Section: name, Err: warnErr})
			logWarnf(opts.Logger, "xrai: doc %s: section %q: %v", doc.ID, name, warnErr)
			payload = Payload{Kind: PayloadOpaque, Bytes: raw}
		}

		doc.Set(name, payload)
	}

	if err := mergeMetadataIntoRoot(doc); err != nil {
		if opts.Strict {
			return nil, err
		}
		doc.Warnings = append(doc.Warnings, Warning{Section: "metadata", Err: err})
		logWarnf(opts.Logger, "xrai: doc %s: %v", doc.ID, err)
	}

	return doc, nil
}

// DecodeStream reads a complete container from src into memory and decodes
// it the same way Decode does (spec.md §4.5's streaming variant: the TOC can
// point anywhere in the file, so a full buffer is required before any
// section can be resolved).
func DecodeStream(src io.Reader, opts DecodeOptions) (*Document, error) {
	if src == nil {
		return nil, ErrNilReader
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return Decode(data, opts)
}

// parseHeaderAndTOC validates and parses the 16-byte header and TOC,
// returning format info and the bounds-checked entry list.
func parseHeaderAndTOC(ra io.ReaderAt, fileLen int64, maxSectionCount int) (FormatInfo, []tocEntry, error) {
	if maxSectionCount <= 0 {
		maxSectionCount = DefaultMaxSectionCount
	}
	if fileLen < headerSize {
		return FormatInfo{}, nil, fmt.Errorf("%w: file smaller than header", ErrTruncated)
	}

	tag, err := readASCII4(ra, 0)
	if err != nil {
		return FormatInfo{}, nil, err
	}
	if tag != magic {
		return FormatInfo{}, nil, ErrInvalidMagic
	}

	major, err := readU8(ra, 4)
	if err != nil {
		return FormatInfo{}, nil, err
	}
	minor, err := readU8(ra, 5)
	if err != nil {
		return FormatInfo{}, nil, err
	}
	if major > formatMajor {
		return FormatInfo{}, nil, fmt.Errorf("%w: major %d", ErrUnsupportedVersion, major)
	}

	flags, err := readU16LE(ra, 6)
	if err != nil {
		return FormatInfo{}, nil, err
	}
	tocOffsetRaw, err := readU64LE(ra, 8)
	if err != nil {
		return FormatInfo{}, nil, err
	}
	tocOffset, err := checkedUint64ToInt64(tocOffsetRaw)
	if err != nil {
		return FormatInfo{}, nil, err
	}
	if tocOffset < headerSize || tocOffset > fileLen-tocHeadSize {
		return FormatInfo{}, nil, fmt.Errorf("%w: TOC offset %d", ErrInvalidOffset, tocOffset)
	}

	countRaw, err := readU32LE(ra, tocOffset)
	if err != nil {
		return FormatInfo{}, nil, err
	}
	count, err := checkedUint32ToInt(countRaw)
	if err != nil {
		return FormatInfo{}, nil, err
	}
	if count > maxSectionCount {
		return FormatInfo{}, nil, fmt.Errorf("%w: %d sections", ErrTooManySections, count)
	}

	entries := make([]tocEntry, 0, count)
	pos := tocOffset + tocHeadSize
	for i := 0; i < count; i++ {
		if pos > fileLen-tocEntSize {
			return FormatInfo{}, nil, fmt.Errorf("%w: TOC entry %d out of bounds", ErrTruncated, i)
		}

		idRaw, err := readU32LE(ra, pos)
		if err != nil {
			return FormatInfo{}, nil, err
		}
		offsetRaw, err := readU64LE(ra, pos+4)
		if err != nil {
			return FormatInfo{}, nil, err
		}
		sizeRaw, err := readU64LE(ra, pos+12)
		if err != nil {
			return FormatInfo{}, nil, err
		}
		entryFlags, err := readU32LE(ra, pos+20)
		if err != nil {
			return FormatInfo{}, nil, err
		}

		offset, err := checkedUint64ToInt64(offsetRaw)
		if err != nil {
			return FormatInfo{}, nil, err
		}
		size, err := checkedUint64ToInt64(sizeRaw)
		if err != nil {
			return FormatInfo{}, nil, err
		}
		if offset < headerSize || size < 0 || offset > fileLen-size {
			return FormatInfo{}, nil, fmt.Errorf("%w: section %d at [%d,+%d)", ErrInvalidOffset, idRaw, offset, size)
		}

		entries = append(entries, tocEntry{id: SectionID(idRaw), offset: offset, size: size, flags: entryFlags})
		pos += tocEntSize
	}

	return FormatInfo{Major: major, Minor: minor, Flags: flags}, entries, nil
}

// requireMetadataEntry enforces that the metadata section (type 1) is present.
func requireMetadataEntry(entries []tocEntry) error {
	for _, e := range entries {
		if e.id == SectionMetadata {
			return nil
		}
	}
	return ErrMissingRequiredSection
}

// decodeSectionEntry decompresses and interprets one section's raw bytes,
// returning its logical name and Payload. A non-nil error is recoverable:
// callers fall back to an opaque payload and record a Warning unless Strict.
func decodeSectionEntry(entry tocEntry, raw []byte, opts DecodeOptions) (string, Payload, error) {
	name, recognized := NameOf(entry.id)
	if !recognized {
		name = unknownSectionName(entry.id)
		if !opts.LenientUnknownSections {
			return name, Payload{}, fmt.Errorf("section type %d is reserved or out of range", entry.id)
		}
		body, err := decompressSectionPayload(raw, entry.flags, opts.MaxInflatedSize, opts.Strict)
		if err != nil {
			return name, Payload{}, err
		}
		return name, Payload{Kind: PayloadUnknown, Bytes: body, UnknownID: entry.id}, nil
	}

	body, err := decompressSectionPayload(raw, entry.flags, opts.MaxInflatedSize, opts.Strict)
	if err != nil {
		return name, Payload{}, err
	}

	switch InterpretationOf(entry.id) {
	case KindJSON:
		var tree any
		if err := json.Unmarshal(body, &tree); err != nil {
			return name, Payload{}, fmt.Errorf("%w: %v", ErrInvalidJSONPayload, err)
		}
		return name, Payload{Kind: PayloadJSON, JSON: tree}, nil
	default:
		return name, Payload{Kind: PayloadOpaque, Bytes: body}, nil
	}
}

// mergeMetadataIntoRoot copies the metadata section's top-level JSON keys
// into the Document, then stamps the reserved _format entry, per spec.md
// §4.5's "merge metadata top-level keys into document root" step. It is a
// recoverable condition, not fatal, when metadata is not a JSON object.
func mergeMetadataIntoRoot(doc *Document) error {
	name, _ := NameOf(SectionMetadata)
	payload, ok := doc.Get(name)
	if !ok {
		return fmt.Errorf("%w: metadata section absent after parse", ErrMissingRequiredSection)
	}
	if payload.Kind != PayloadJSON {
		return fmt.Errorf("%w: metadata is not JSON", ErrInvalidMetadata)
	}
	root, ok := payload.JSON.(map[string]any)
	if !ok {
		doc.Set(name, opaqueMetadataFallback(payload))
		return fmt.Errorf("%w: metadata root is not a JSON object", ErrInvalidMetadata)
	}
	asset, ok := root["asset"].(map[string]any)
	if !ok || asset["version"] == nil {
		doc.Set(name, opaqueMetadataFallback(payload))
		return fmt.Errorf("%w: metadata.asset.version missing", ErrInvalidMetadata)
	}

	doc.setMetaRoot(root)
	doc.Set("_format", Payload{Kind: PayloadJSON, JSON: map[string]any{
		"major": doc.Format.Major,
		"minor": doc.Format.Minor,
		"flags": doc.Format.Flags,
	}})
	return nil
}

// opaqueMetadataFallback re-renders a JSON-typed metadata payload as opaque
// bytes, for spec.md §7 error kind 7's "warning + opaque payload in lenient
// mode" recovery when the parsed metadata tree fails a structural check
// (root not an object, asset.version missing) rather than JSON parsing
// itself, which decodeSectionEntry already opaque-ifies on its own.
func opaqueMetadataFallback(payload Payload) Payload {
	raw, err := json.Marshal(payload.JSON)
	if err != nil {
		return Payload{Kind: PayloadOpaque}
	}
	return Payload{Kind: PayloadOpaque, Bytes: raw}
}

// logWarnf emits a warning through logger if non-nil.
func logWarnf(logger Logger, format string, args ...any) {
	if logger == nil {
		return
	}
	logger.Warnf(format, args...)
}
