// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

import (
	"bytes"
	"io"
	"testing"
)

func TestEncodeStreamMatchesEncode(t *testing.T) {
	t.Parallel()

	doc := sampleDocument()

	inMemory, err := Encode(doc, EncodeOptions{Compress: true})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var buf bytes.Buffer
	if err := EncodeStream(doc, EncodeOptions{Compress: true}, &buf); err != nil {
		t.Fatalf("EncodeStream: %v", err)
	}

	if !bytes.Equal(inMemory, buf.Bytes()) {
		t.Fatalf("EncodeStream output differs from Encode output")
	}
}

func TestEncodeStreamRejectsNilSink(t *testing.T) {
	t.Parallel()

	doc := sampleDocument()
	if err := EncodeStream(doc, EncodeOptions{}, nil); err == nil {
		t.Fatalf("EncodeStream(nil sink) should fail")
	}
}

func TestEncodeStreamChunking(t *testing.T) {
	t.Parallel()

	doc := NewDocument()
	doc.Set("metadata", Payload{Kind: PayloadJSON, JSON: map[string]any{
		"asset": map[string]any{"version": "1.0"},
	}})
	doc.Set("buffers", Payload{Kind: PayloadOpaque, Bytes: bytes.Repeat([]byte{0x11}, 10000)})

	var buf bytes.Buffer
	if err := EncodeStream(doc, EncodeOptions{ChunkSize: 17}, &buf); err != nil {
		t.Fatalf("EncodeStream with small chunk size: %v", err)
	}

	decoded, err := Decode(buf.Bytes(), DefaultDecodeOptions())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, ok := decoded.Get("buffers")
	if !ok || !bytes.Equal(got.Bytes, bytes.Repeat([]byte{0x11}, 10000)) {
		t.Fatalf("buffers payload corrupted by small-chunk streaming write")
	}
}

func TestStreamDecoderEventOrder(t *testing.T) {
	t.Parallel()

	doc := sampleDocument()
	out, err := Encode(doc, EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	sd, err := DecodeStreamEvents(bytes.NewReader(out), DefaultDecodeOptions())
	if err != nil {
		t.Fatalf("DecodeStreamEvents: %v", err)
	}

	first, err := sd.Next()
	if err != nil || first.Kind != EventTocKnown {
		t.Fatalf("first event = %+v, %v; want EventTocKnown", first, err)
	}

	var sawStart, sawEnd bool
	for {
		ev, err := sd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		switch ev.Kind {
		case EventSectionStart:
			if sawStart && !sawEnd {
				t.Fatalf("got a second SectionStart before the previous SectionEnd")
			}
			sawStart, sawEnd = true, false
		case EventSectionEnd:
			sawEnd = true
		}
	}
	if !sawStart || !sawEnd {
		t.Fatalf("expected at least one complete section start/end pair")
	}
}

func TestDecodeStreamEventsRejectsNilReader(t *testing.T) {
	t.Parallel()

	if _, err := DecodeStreamEvents(nil, DefaultDecodeOptions()); err == nil {
		t.Fatalf("DecodeStreamEvents(nil) should fail")
	}
}
