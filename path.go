// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

import (
	"fmt"
	"path"
	"strings"
)

// NormalizePath converts a path to normalized slash-separated form: it trims
// spaces, accepts both "/" and "\", removes leading "./" and "/", and cleans
// "." and ".." segments. Adapted from the teacher's archive-member path
// normalizer. Neither the CLI nor DumpSections calls it.
func NormalizePath(raw string) string {
	raw = normalizePathForMatching(raw)
	raw = strings.TrimPrefix(raw, "/")
	raw = path.Clean("/" + raw)
	raw = strings.TrimPrefix(raw, "/")
	if raw == "." {
		return ""
	}

	return strings.TrimSuffix(raw, "/")
}

// normalizePathForMatching normalizes user/input paths for matcher use.
func normalizePathForMatching(p string) string {
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, `\`, `/`)
	p = strings.TrimPrefix(p, "./")
	return p
}

// normalizeOutputFileName converts a registry section name (or a synthesized
// "unknown_<id>" name) plus its file extension into a single flat file name,
// rejecting empty or nested names. DumpSections names its files through
// SanitizeSectionFileName instead.
func normalizeOutputFileName(sectionName, ext string) (string, error) {
	normalized := NormalizePath(sectionName)
	if normalized == "" || strings.ContainsAny(normalized, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidExtractPath, sectionName)
	}

	return normalized + ext, nil
}
