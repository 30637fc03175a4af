// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

// Logger receives warnings for recoverable per-section decode conditions.
// The zero value of DecodeOptions carries a nil Logger, which is silent;
// spec.md's "decoder logs, returns raw bytes" behavior is satisfied by
// Document.Warnings regardless of whether a Logger is configured.
type Logger interface {
	Warnf(format string, args ...any)
}

// noopLogger discards all messages.
type noopLogger struct{}

func (noopLogger) Warnf(string, ...any) {}
