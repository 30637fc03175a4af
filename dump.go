// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DumpOptions configures DumpSections.
type DumpOptions struct {
	// JSONIndent enables "  "-indented JSON output for JSON sections.
	JSONIndent bool
}

// DumpSections writes every section of doc to dstDir as one file per
// section, named after its registry name ("metadata.json", "images.bin",
// ...) or "unknown_<id>.bin" for unrecognized sections, colliding names
// resolved deterministically via SanitizeSectionFileName. Grounded on the
// teacher's Extract, narrowed from a parallel worker pool over an
// arbitrarily large, arbitrarily nested archive entry set (extract.go's
// scale) to a single-pass flat write over XRAI's small fixed section count
// (cmd/xrai's "decode --output").
func DumpSections(doc *Document, dstDir string, opts DumpOptions) ([]string, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrEncoderInputInvalid)
	}

	dstRootAbs, err := filepath.Abs(dstDir)
	if err != nil {
		return nil, fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(dstRootAbs, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	used := make(map[string]struct{})
	written := make([]string, 0, len(doc.Sections()))

	for _, sec := range doc.Sections() {
		body, ext, err := dumpSectionBody(sec.Payload, opts)
		if err != nil {
			return written, fmt.Errorf("section %q: %w", sec.Name, err)
		}

		fileName, err := SanitizeSectionFileName(sec.Name+ext, used)
		if err != nil {
			return written, fmt.Errorf("section %q: %w", sec.Name, err)
		}

		outPath := filepath.Join(dstRootAbs, fileName)
		if err := os.WriteFile(outPath, body, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", outPath, err)
		}
		written = append(written, outPath)
	}

	return written, nil
}

// dumpSectionBody renders one section's payload to bytes and picks its file extension.
func dumpSectionBody(payload Payload, opts DumpOptions) ([]byte, string, error) {
	switch payload.Kind {
	case PayloadJSON:
		var (
			out []byte
			err error
		)
		if opts.JSONIndent {
			out, err = json.MarshalIndent(payload.JSON, "", "  ")
		} else {
			out, err = json.Marshal(payload.JSON)
		}
		if err != nil {
			return nil, "", err
		}
		return out, ".json", nil
	default:
		return payload.Bytes, ".bin", nil
	}
}
