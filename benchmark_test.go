// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

import (
	"bytes"
	"testing"
)

func benchDocument(buffersSize int) *Document {
	doc := NewDocument()
	doc.Set("metadata", Payload{Kind: PayloadJSON, JSON: map[string]any{
		"asset": map[string]any{"version": "1.0"},
	}})
	doc.Set("geometry", Payload{Kind: PayloadJSON, JSON: map[string]any{
		"vertices": []any{1.0, 2.0, 3.0, 4.0, 5.0, 6.0},
	}})
	doc.Set("buffers", Payload{Kind: PayloadOpaque, Bytes: bytes.Repeat([]byte{0x5A}, buffersSize)})
	return doc
}

func BenchmarkEncode(b *testing.B) {
	doc := benchDocument(64 << 10)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(doc, EncodeOptions{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncodeCompressed(b *testing.B) {
	doc := benchDocument(64 << 10)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(doc, EncodeOptions{Compress: true}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	out, err := Encode(benchDocument(64<<10), EncodeOptions{})
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(out, DefaultDecodeOptions()); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecodeStream(b *testing.B) {
	out, err := Encode(benchDocument(64<<10), EncodeOptions{Compress: true})
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DecodeStream(bytes.NewReader(out), DefaultDecodeOptions()); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkValidate(b *testing.B) {
	out, err := Encode(benchDocument(64<<10), EncodeOptions{})
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if result := Validate(out); !result.Valid {
			b.Fatal(result.Errors)
		}
	}
}
