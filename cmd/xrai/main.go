// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

// Command xrai is a thin CLI wrapper over the xrai container codec:
// encode, decode, and convert subcommands, per spec.md §6.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/xrai"
)

// Exit codes, per spec.md §6.
const (
	exitOK        = 0
	exitUserErr   = 1
	exitIOErr     = 2
	exitFormatErr = 3
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches to a subcommand and returns the process exit code.
// Kept separate from main for testability, the common Go CLI pattern used
// across the corpus's CLI-shaped examples.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "usage: xrai <encode|decode|convert> ...")
		return exitUserErr
	}

	switch args[0] {
	case "encode":
		return runEncode(args[1:], stdout, stderr)
	case "decode":
		return runDecode(args[1:], stdout, stderr)
	case "convert":
		return runConvert(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown subcommand %q\n", args[0])
		return exitUserErr
	}
}

// runEncode implements `xrai encode <src> <out> [--compress] [--compression-level N] [--metadata FILE]`.
func runEncode(args []string, _, stderr io.Writer) int {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	compress := fs.Bool("compress", false, "enable deflate compression")
	level := fs.Int("compression-level", 0, "deflate level, 1..9")
	metadataFile := fs.String("metadata", "", "JSON file merged into the metadata section")
	if err := fs.Parse(args); err != nil {
		return exitUserErr
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(stderr, "usage: xrai encode <src> <out> [flags]")
		return exitUserErr
	}
	srcPath, outPath := fs.Arg(0), fs.Arg(1)

	srcData, err := os.ReadFile(srcPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitIOErr
	}

	var tree any
	if err := json.Unmarshal(srcData, &tree); err != nil {
		fmt.Fprintln(stderr, "src is not valid JSON:", err)
		return exitFormatErr
	}

	doc := xrai.NewDocument()
	root, ok := tree.(map[string]any)
	if !ok {
		fmt.Fprintln(stderr, "src JSON root must be an object keyed by section name")
		return exitFormatErr
	}
	for name, value := range root {
		doc.Set(name, xrai.Payload{Kind: xrai.PayloadJSON, JSON: value})
	}

	if *metadataFile != "" {
		metaData, err := os.ReadFile(*metadataFile)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitIOErr
		}
		var metaTree any
		if err := json.Unmarshal(metaData, &metaTree); err != nil {
			fmt.Fprintln(stderr, "metadata file is not valid JSON:", err)
			return exitFormatErr
		}
		doc.Set("metadata", xrai.Payload{Kind: xrai.PayloadJSON, JSON: metaTree})
	}

	out, err := xrai.Encode(doc, xrai.EncodeOptions{Compress: *compress, CompressionLevel: *level})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFormatErr
	}

	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		fmt.Fprintln(stderr, err)
		return exitIOErr
	}

	return exitOK
}

// runDecode implements `xrai decode <in> [--output DIR] [--info] [--metadata] [--validate]`.
func runDecode(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(stderr)
	outputDir := fs.String("output", "", "directory to dump each section into")
	info := fs.Bool("info", false, "print format/section summary")
	metaOnly := fs.Bool("metadata", false, "print only the metadata section as JSON")
	validateOnly := fs.Bool("validate", false, "validate structure and exit, without decoding sections")
	if err := fs.Parse(args); err != nil {
		return exitUserErr
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: xrai decode <in> [flags]")
		return exitUserErr
	}
	inPath := fs.Arg(0)

	data, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitIOErr
	}

	if *validateOnly {
		result := xrai.Validate(data)
		if !result.Valid {
			for _, e := range result.Errors {
				fmt.Fprintln(stderr, e)
			}
			return exitFormatErr
		}
		fmt.Fprintln(stdout, "valid")
		return exitOK
	}

	doc, err := xrai.Decode(data, xrai.DefaultDecodeOptions())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return classifyDecodeError(err)
	}

	if *metaOnly {
		meta, _ := doc.Get("metadata")
		enc, _ := json.MarshalIndent(meta.JSON, "", "  ")
		fmt.Fprintln(stdout, string(enc))
	} else if *info {
		fmt.Fprintf(stdout, "format: major=%d minor=%d\n", doc.Format.Major, doc.Format.Minor)
		for _, sec := range doc.Sections() {
			fmt.Fprintf(stdout, "  section %s (%s)\n", sec.Name, payloadKindName(sec.Payload.Kind))
		}
		for _, w := range doc.Warnings {
			fmt.Fprintf(stdout, "  warning: %s: %v\n", w.Section, w.Err)
		}
	}

	if *outputDir != "" {
		paths, err := xrai.DumpSections(doc, *outputDir, xrai.DumpOptions{JSONIndent: true})
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitIOErr
		}
		for _, p := range paths {
			fmt.Fprintln(stdout, p)
		}
	}

	return exitOK
}

// runConvert implements `xrai convert <in> <out> [--from FMT] [--to FMT]`. Only
// the xrai<->xrai identity conversion (re-encode with different options) and
// xrai->json (a single JSON document of every JSON-typed section; opaque and
// unknown sections are not included) are supported; other format pairs are
// outside this codec's scope.
func runConvert(args []string, _, stderr io.Writer) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	from := fs.String("from", "xrai", "source format: xrai")
	to := fs.String("to", "json", "destination format: xrai or json")
	if err := fs.Parse(args); err != nil {
		return exitUserErr
	}
	if fs.NArg() != 2 {
		fmt.Fprintln(stderr, "usage: xrai convert <in> <out> [flags]")
		return exitUserErr
	}
	inPath, outPath := fs.Arg(0), fs.Arg(1)

	if *from != "xrai" {
		fmt.Fprintf(stderr, "unsupported --from %q\n", *from)
		return exitUserErr
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitIOErr
	}

	doc, err := xrai.Decode(data, xrai.DefaultDecodeOptions())
	if err != nil {
		fmt.Fprintln(stderr, err)
		return classifyDecodeError(err)
	}

	switch *to {
	case "json":
		root := make(map[string]any, len(doc.Sections()))
		for _, sec := range doc.Sections() {
			if sec.Payload.Kind == xrai.PayloadJSON {
				root[sec.Name] = sec.Payload.JSON
			}
		}
		out, err := json.MarshalIndent(root, "", "  ")
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitFormatErr
		}
		if err := os.WriteFile(outPath, out, 0o644); err != nil {
			fmt.Fprintln(stderr, err)
			return exitIOErr
		}
	case "xrai":
		out, err := xrai.Encode(doc, xrai.EncodeOptions{Compress: true})
		if err != nil {
			fmt.Fprintln(stderr, err)
			return exitFormatErr
		}
		if err := os.WriteFile(outPath, out, 0o644); err != nil {
			fmt.Fprintln(stderr, err)
			return exitIOErr
		}
	default:
		fmt.Fprintf(stderr, "unsupported --to %q\n", *to)
		return exitUserErr
	}

	return exitOK
}

// classifyDecodeError maps a decode error to spec.md §6's fixed exit codes:
// structural/format problems are 3, everything else reported by Decode is
// treated as a format error since Decode never returns a bare I/O error
// (callers read the file themselves before calling Decode).
func classifyDecodeError(err error) int {
	if errors.Is(err, xrai.ErrNilReader) {
		return exitUserErr
	}
	return exitFormatErr
}

// payloadKindName renders a PayloadKind for --info output.
func payloadKindName(kind xrai.PayloadKind) string {
	switch kind {
	case xrai.PayloadJSON:
		return "json"
	case xrai.PayloadOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}
