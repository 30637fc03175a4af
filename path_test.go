// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

import (
	"errors"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "slash", in: "/", want: ""},
		{name: "clean", in: "out/models/scene1", want: "out/models/scene1"},
		{name: "windows", in: `.\out\models\scene1\`, want: "out/models/scene1"},
		{name: "dot segments", in: "./a/../b//c", want: "b/c"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := NormalizePath(tc.in)
			if got != tc.want {
				t.Fatalf("NormalizePath(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeOutputFileName(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		got, err := normalizeOutputFileName("metadata", ".json")
		if err != nil {
			t.Fatalf("normalizeOutputFileName: %v", err)
		}
		if got != "metadata.json" {
			t.Fatalf("normalizeOutputFileName=%q, want %q", got, "metadata.json")
		}
	})

	t.Run("rejects nested path", func(t *testing.T) {
		t.Parallel()

		_, err := normalizeOutputFileName("sub/escape", ".bin")
		if !errors.Is(err, ErrInvalidExtractPath) {
			t.Fatalf("expected ErrInvalidExtractPath, got %v", err)
		}
	})

	t.Run("rejects empty", func(t *testing.T) {
		t.Parallel()

		_, err := normalizeOutputFileName("", ".bin")
		if !errors.Is(err, ErrInvalidExtractPath) {
			t.Fatalf("expected ErrInvalidExtractPath, got %v", err)
		}
	})
}
