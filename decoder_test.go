// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

import (
	"errors"
	"testing"
)

func TestDecodeRejectsBadMagic(t *testing.T) {
	t.Parallel()

	data := make([]byte, headerSize+4)
	copy(data, "NOPE")
	if _, err := Decode(data, DefaultDecodeOptions()); !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("Decode with bad magic = %v, want ErrInvalidMagic", err)
	}
}

func TestDecodeRejectsTruncatedHeader(t *testing.T) {
	t.Parallel()

	if _, err := Decode([]byte{'X', 'R', 'A'}, DefaultDecodeOptions()); !errors.Is(err, ErrTruncated) {
		t.Fatalf("Decode of too-short data = %v, want ErrTruncated", err)
	}
}

func TestDecodeRejectsMissingMetadata(t *testing.T) {
	t.Parallel()

	doc := NewDocument()
	doc.Set("geometry", Payload{Kind: PayloadJSON, JSON: map[string]any{"x": 1.0}})

	// Encode injects a metadata section, so build via Encode and then
	// corrupt the metadata TOC entry's type id so requireMetadataEntry
	// can't find it.
	out, err := Encode(doc, EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	corrupted := append([]byte(nil), out...)
	for i := headerSize + tocHeadSize; i+4 <= len(corrupted); i += tocEntSize {
		id := uint32(corrupted[i]) | uint32(corrupted[i+1])<<8 | uint32(corrupted[i+2])<<16 | uint32(corrupted[i+3])<<24
		if SectionID(id) == SectionMetadata {
			corrupted[i] = 0xFF
			corrupted[i+1] = 0
			corrupted[i+2] = 0
			corrupted[i+3] = 0
		}
	}

	if _, err := Decode(corrupted, DefaultDecodeOptions()); !errors.Is(err, ErrMissingRequiredSection) {
		t.Fatalf("Decode without metadata = %v, want ErrMissingRequiredSection", err)
	}
}

func TestDecodeLenientUnknownSection(t *testing.T) {
	t.Parallel()

	doc := NewDocument()
	doc.Set("metadata", Payload{Kind: PayloadJSON, JSON: map[string]any{
		"asset": map[string]any{"version": "1.0"},
	}})
	doc.sections = append(doc.sections, DocumentSection{
		Name:    "unknown_42",
		Payload: Payload{Kind: PayloadUnknown, Bytes: []byte("custom"), UnknownID: 42},
	})
	doc.index["unknown_42"] = len(doc.sections) - 1

	out, err := Encode(doc, EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	opts := DefaultDecodeOptions()
	decoded, err := Decode(out, opts)
	if err != nil {
		t.Fatalf("Decode (lenient): %v", err)
	}
	payload, ok := decoded.Get("unknown_42")
	if !ok || payload.Kind != PayloadUnknown || string(payload.Bytes) != "custom" {
		t.Fatalf("unknown_42 payload = %+v, want preserved opaque bytes", payload)
	}

	opts.LenientUnknownSections = false
	opts.Strict = true
	if _, err := Decode(out, opts); err == nil {
		t.Fatalf("expected strict decode of an unrecognized section type to fail")
	}
}

func TestDecodeMetadataMergeShadowsSectionGet(t *testing.T) {
	t.Parallel()

	doc := NewDocument()
	doc.Set("metadata", Payload{Kind: PayloadJSON, JSON: map[string]any{
		"asset":    map[string]any{"version": "1.0"},
		"geometry": "shadow-value",
	}})
	doc.Set("geometry", Payload{Kind: PayloadJSON, JSON: map[string]any{"real": true}})

	out, err := Encode(doc, EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(out, DefaultDecodeOptions())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	got, ok := decoded.Get("geometry")
	if !ok {
		t.Fatalf("Get(geometry) missing")
	}
	if got.JSON != "shadow-value" {
		t.Fatalf("Get(geometry) = %v, want metadata root value to shadow the section", got.JSON)
	}

	sections := decoded.Sections()
	found := false
	for _, s := range sections {
		if s.Name == "geometry" {
			found = true
			m := s.Payload.JSON.(map[string]any)
			if m["real"] != true {
				t.Fatalf("Sections() geometry payload should be the real section, got %v", m)
			}
		}
	}
	if !found {
		t.Fatalf("Sections() should still list the canonical geometry section")
	}
}

func TestDecodeAttachesFormatInfo(t *testing.T) {
	t.Parallel()

	doc := sampleDocument()
	out, err := Encode(doc, EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(out, DefaultDecodeOptions())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Format.Major != formatMajor || decoded.Format.Minor != formatMinor {
		t.Fatalf("Format = %+v, want major=%d minor=%d", decoded.Format, formatMajor, formatMinor)
	}

	formatPayload, ok := decoded.Get("_format")
	if !ok {
		t.Fatalf("_format section missing")
	}
	m := formatPayload.JSON.(map[string]any)
	if int(m["major"].(uint8)) != formatMajor {
		t.Fatalf("_format.major = %v, want %d", m["major"], formatMajor)
	}
}

func TestDecodeStreamRejectsNilReader(t *testing.T) {
	t.Parallel()

	if _, err := DecodeStream(nil, DefaultDecodeOptions()); !errors.Is(err, ErrNilReader) {
		t.Fatalf("DecodeStream(nil) = %v, want ErrNilReader", err)
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	t.Parallel()

	doc := sampleDocument()
	out, err := Encode(doc, EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	first := Validate(out)
	second := Validate(out)
	if first.Valid != second.Valid {
		t.Fatalf("Validate is not idempotent: %v then %v", first, second)
	}
	if !first.Valid {
		t.Fatalf("Validate should accept a freshly encoded container, got errors: %v", first.Errors)
	}
}
