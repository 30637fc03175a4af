// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

/*
Package xrai provides encode, decode, streaming, and in-place section-edit
operations for XRAI containers: a header-plus-table-of-contents binary
format holding typed, optionally deflate-compressed sections (metadata,
geometry, materials, animations, audio, AI components, VFX, buffers,
images, scene, extensions). It is designed for both whole-file and
streaming workflows: Decode/Encode operate on an in-memory byte slice,
while DecodeStream/EncodeStream and the pull-iterator
DecodeStreamEvents/StreamDecoder.Next stream a container through an
io.Reader/io.Writer without requiring the caller to buffer it themselves.

Compression rules (summary):
  - the encoder only attempts compression on sections at or above
    CompressionThreshold bytes;
  - compressed output is kept only when it is strictly smaller than raw;
  - decoding treats algorithm ID 0 as a deflate alias unless Strict is set.

# Decoding

Decode a complete container held in memory:

	data, err := os.ReadFile("scene.xrai")
	if err != nil {
	    return err
	}
	doc, err := xrai.Decode(data, xrai.DefaultDecodeOptions())
	if err != nil {
	    return err
	}
	scene, _ := doc.Get("scene")

Stream-decode from an io.Reader:

	f, err := os.Open("scene.xrai")
	if err != nil {
	    return err
	}
	defer f.Close()
	doc, err := xrai.DecodeStream(f, xrai.DefaultDecodeOptions())
	if err != nil {
	    return err
	}
	_ = doc

Pull section events one at a time instead of materializing a Document:

	sd, err := xrai.DecodeStreamEvents(f, xrai.DefaultDecodeOptions())
	if err != nil {
	    return err
	}
	for {
	    ev, err := sd.Next()
	    if err == io.EOF {
	        break
	    }
	    if err != nil {
	        return err
	    }
	    _ = ev
	}

A per-process result cache avoids re-decoding the same bytes twice:

	dec := xrai.NewDecoder(xrai.DecodeOptions{UseCache: true})
	doc, err := dec.DecodeFile("scene.xrai")

# Encoding

Build a Document and encode it:

	doc := xrai.NewDocument()
	doc.Set("metadata", xrai.Payload{Kind: xrai.PayloadJSON, JSON: map[string]any{
	    "asset": map[string]any{"version": "1.0"},
	}})
	doc.Set("scene", xrai.Payload{Kind: xrai.PayloadJSON, JSON: sceneTree})

	out, err := xrai.Encode(doc, xrai.EncodeOptions{Compress: true})
	if err != nil {
	    return err
	}
	if err := os.WriteFile("scene.xrai", out, 0o644); err != nil {
	    return err
	}

Stream-encode directly to a writer:

	f, err := os.Create("scene.xrai")
	if err != nil {
	    return err
	}
	defer f.Close()
	if err := xrai.EncodeStream(doc, xrai.EncodeOptions{Compress: true}, f); err != nil {
	    return err
	}

# Editing sections in place

	editor, err := xrai.OpenSectionEditor("scene.xrai", xrai.SectionEditorOptions{BackupKeep: 1})
	if err != nil {
	    return err
	}
	if err := editor.ReplaceSection("scene", newScenePayload); err != nil {
	    return err
	}
	if _, err := editor.Commit(ctx); err != nil {
	    return err
	}

# Dumping sections to disk

	doc, err := xrai.Decode(data, xrai.DefaultDecodeOptions())
	if err != nil {
	    return err
	}
	paths, err := xrai.DumpSections(doc, "out/", xrai.DumpOptions{JSONIndent: true})
	if err != nil {
	    return err
	}
	_ = paths
*/
package xrai
