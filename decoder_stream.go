// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

import (
	"bytes"
	"fmt"
	"io"
)

// SectionEventKind discriminates the events a StreamDecoder yields.
type SectionEventKind int

// Section event kinds, in the order a StreamDecoder emits them.
const (
	// EventTocKnown fires once the table of contents has been fully parsed.
	EventTocKnown SectionEventKind = iota
	// EventSectionStart fires before a section's first chunk.
	EventSectionStart
	// EventSectionBytes carries one chunk of a section's decompressed bytes.
	EventSectionBytes
	// EventSectionEnd fires after a section's last chunk.
	EventSectionEnd
)

// SectionEvent is one event yielded by StreamDecoder.Next.
type SectionEvent struct {
	Kind    SectionEventKind
	Section SectionID
	Name    string
	Chunk   []byte
}

// StreamDecoder is a pull iterator over a container's sections, grounded on
// extract.go's per-entry streaming shape but adapted from a worker pool
// (parallel, safe for random-access disk extraction) to a single sequential
// iterator, since a general io.Reader source cannot be read out of order
// (spec.md §9: "callers pull via Next, not callbacks").
type StreamDecoder struct {
	opts    DecodeOptions
	format  FormatInfo
	entries []tocEntry
	data    []byte

	entryIdx   int
	chunkOff   int
	pendingBuf []byte
	state      streamState
}

type streamState int

const (
	streamStateTOC streamState = iota
	streamStateSectionStart
	streamStateSectionBytes
	streamStateSectionEnd
	streamStateDone
)

// DecodeStreamEvents buffers src fully (the TOC may point anywhere in the
// stream) then returns a StreamDecoder ready to yield events via Next.
func DecodeStreamEvents(src io.Reader, opts DecodeOptions) (*StreamDecoder, error) {
	if src == nil {
		return nil, ErrNilReader
	}
	opts.applyDefaults()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	ra := bytes.NewReader(data)
	format, entries, err := parseHeaderAndTOC(ra, int64(len(data)), opts.MaxSectionCount)
	if err != nil {
		return nil, err
	}
	if err := requireMetadataEntry(entries); err != nil {
		return nil, err
	}

	return &StreamDecoder{
		opts:    opts,
		format:  format,
		entries: entries,
		data:    data,
		state:   streamStateTOC,
	}, nil
}

// Next returns the next SectionEvent, or io.EOF once every section has been
// emitted. Chunk bytes are only valid until the next call to Next.
func (sd *StreamDecoder) Next() (SectionEvent, error) {
	switch sd.state {
	case streamStateTOC:
		sd.state = streamStateSectionStart
		return SectionEvent{Kind: EventTocKnown}, nil

	case streamStateSectionStart:
		if sd.entryIdx >= len(sd.entries) {
			sd.state = streamStateDone
			return SectionEvent{}, io.EOF
		}
		entry := sd.entries[sd.entryIdx]
		raw, err := sliceAt(bytes.NewReader(sd.data), entry.offset, entry.size)
		if err != nil {
			return SectionEvent{}, err
		}
		body, err := decompressSectionPayload(raw, entry.flags, sd.opts.MaxInflatedSize, sd.opts.Strict)
		if err != nil {
			if sd.opts.Strict {
				return SectionEvent{}, err
			}
			body = raw
		}
		sd.pendingBuf = body
		sd.chunkOff = 0
		sd.state = streamStateSectionBytes
		return SectionEvent{Kind: EventSectionStart, Section: entry.id, Name: sectionEventName(entry.id)}, nil

	case streamStateSectionBytes:
		entry := sd.entries[sd.entryIdx]
		const chunkSize = DefaultChunkSize
		if sd.chunkOff >= len(sd.pendingBuf) {
			sd.state = streamStateSectionEnd
			return sd.Next()
		}
		end := sd.chunkOff + chunkSize
		if end > len(sd.pendingBuf) {
			end = len(sd.pendingBuf)
		}
		chunk := sd.pendingBuf[sd.chunkOff:end]
		sd.chunkOff = end
		return SectionEvent{Kind: EventSectionBytes, Section: entry.id, Name: sectionEventName(entry.id), Chunk: chunk}, nil

	case streamStateSectionEnd:
		entry := sd.entries[sd.entryIdx]
		sd.entryIdx++
		sd.pendingBuf = nil
		sd.state = streamStateSectionStart
		return SectionEvent{Kind: EventSectionEnd, Section: entry.id, Name: sectionEventName(entry.id)}, nil

	default:
		return SectionEvent{}, io.EOF
	}
}

// sectionEventName resolves a type ID to its logical or forward-compatible name.
func sectionEventName(id SectionID) string {
	if name, ok := NameOf(id); ok {
		return name
	}
	return unknownSectionName(id)
}
