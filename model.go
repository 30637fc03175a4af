// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

import "github.com/google/uuid"

// Internal binary layout and format limits.
const (
	headerSize  = 16 // fixed container header size in bytes
	tocHeadSize = 4  // TOC section-count field size in bytes
	tocEntSize  = 24 // TOC entry size in bytes
	maxNameLen  = 512
)

// Default codec tuning values.
const (
	// DefaultCompressThreshold is the minimum raw payload size the encoder will attempt to compress.
	DefaultCompressThreshold = 1024
	// DefaultMaxInflatedSize bounds decompressed payload size to guard against decompression bombs.
	DefaultMaxInflatedSize = 256 << 20
	// DefaultMaxSectionCount is the default cap on the number of sections a container may carry.
	DefaultMaxSectionCount = 100
	// DefaultCompressionLevel is the deflate level used when the caller does not specify one.
	DefaultCompressionLevel = 6
	// DefaultChunkSize is the default streaming chunk size for EncodeStream and StreamDecoder.Next.
	DefaultChunkSize = 64 * 1024
)

// magic is the four ASCII bytes every container begins with.
var magic = [4]byte{'X', 'R', 'A', 'I'}

// formatMajor is the only major version this codec writes and the highest it accepts.
const formatMajor = 1

// formatMinor is the minor version this codec writes.
const formatMinor = 0

// PayloadKind discriminates how a section's bytes are interpreted.
type PayloadKind int

// Payload kinds.
const (
	// PayloadJSON means JSON holds the parsed tree and Bytes is unset.
	PayloadJSON PayloadKind = iota
	// PayloadOpaque means Bytes holds the section's raw content, not interpreted by the codec.
	PayloadOpaque
	// PayloadUnknown means the section type ID was not in the closed registry; Bytes holds raw content.
	PayloadUnknown
)

// Payload is the tagged sum Json(tree) | Opaque(bytes) | Unknown(id, bytes) from spec.md §9.
type Payload struct {
	// Kind discriminates which field is meaningful.
	Kind PayloadKind
	// JSON holds the parsed tree when Kind == PayloadJSON.
	JSON any
	// Bytes holds raw content when Kind == PayloadOpaque or PayloadUnknown.
	Bytes []byte
	// UnknownID holds the original type ID when Kind == PayloadUnknown.
	UnknownID SectionID
}

// DocumentSection is one named section with its payload, kept in an ordered
// slice (not a bare map) so that decode->encode round-trips preserve order,
// mirroring the teacher's "kept in parse order" idiom for archive headers.
type DocumentSection struct {
	Name    string
	Payload Payload
}

// FormatInfo carries the reserved _format metadata attached to every decoded Document.
type FormatInfo struct {
	Major uint8
	Minor uint8
	Flags uint16
}

// Warning is a per-section recoverable condition collected during a lenient decode.
type Warning struct {
	Section string
	Err     error
}

// Document is the decoded tree: an ordered set of named sections plus format info.
// A Document returned by the decoder owns its payload buffers for its lifetime.
// Encoder and decoder never mutate a caller-supplied Document.
//
// Decode merges the metadata section's top-level JSON keys into the
// Document's root namespace: Get consults those merged keys before it
// consults section names, so a metadata key shadows a section of the same
// name. This merge rule exists purely for lookup convenience; Sections and
// the encoder are unaffected by it. Decode also stores the reserved
// "_format" entry as a JSON section, which Sections lists and the encoder skips.
type Document struct {
	sections []DocumentSection
	index    map[string]int
	metaRoot map[string]any
	// ID is a synthetic, process-local correlation ID, useful for tying a
	// Document's decode warnings and a subsequent SectionEditor.Commit back
	// to the same logical run in structured logs. It carries no on-wire
	// meaning and is never encoded into a section.
	ID uuid.UUID
	// Format is populated by the decoder; ignored by the encoder.
	Format FormatInfo
	// Warnings collects recoverable per-section decode failures (spec.md §7).
	Warnings []Warning
}

// NewDocument returns an empty Document ready for section assignment.
func NewDocument() *Document {
	return &Document{index: make(map[string]int), ID: uuid.New()}
}

// Set assigns or replaces a named section's payload, preserving first-seen order.
func (d *Document) Set(name string, payload Payload) {
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[name]; ok {
		d.sections[i].Payload = payload
		return
	}
	d.index[name] = len(d.sections)
	d.sections = append(d.sections, DocumentSection{Name: name, Payload: payload})
}

// setMetaRoot records the metadata section's merged top-level keys, consulted
// by Get before section names. Used only by the decoder.
func (d *Document) setMetaRoot(root map[string]any) {
	d.metaRoot = root
}

// Get returns the payload for name, consulting merged metadata root keys
// before section names (see the Document doc comment).
func (d *Document) Get(name string) (Payload, bool) {
	if d == nil {
		return Payload{}, false
	}
	if v, ok := d.metaRoot[name]; ok {
		return Payload{Kind: PayloadJSON, JSON: v}, true
	}
	if d.index == nil {
		return Payload{}, false
	}
	i, ok := d.index[name]
	if !ok {
		return Payload{}, false
	}
	return d.sections[i].Payload, true
}

// Delete removes a named section if present.
func (d *Document) Delete(name string) {
	if d == nil || d.index == nil {
		return
	}
	i, ok := d.index[name]
	if !ok {
		return
	}
	d.sections = append(d.sections[:i], d.sections[i+1:]...)
	delete(d.index, name)
	for n, idx := range d.index {
		if idx > i {
			d.index[n] = idx - 1
		}
	}
}

// Sections returns a copy of the document's sections in their stored order.
func (d *Document) Sections() []DocumentSection {
	if d == nil {
		return nil
	}
	out := make([]DocumentSection, len(d.sections))
	copy(out, d.sections)
	return out
}

// EncodeOptions configures Encode/EncodeStream behavior.
type EncodeOptions struct {
	// Compress enables the deflate benefit gate for eligible sections.
	Compress bool
	// CompressionLevel is the deflate level, 1..9. Zero means DefaultCompressionLevel.
	CompressionLevel int
	// NoAlign disables 4-byte alignment padding before each section body.
	// Alignment is on by default; set this to produce a tightly packed layout.
	NoAlign bool
	// ChunkSize is the streaming write chunk size for EncodeStream. Zero means DefaultChunkSize.
	ChunkSize int
	// CompressionThreshold overrides DefaultCompressThreshold; mainly a test hook.
	CompressionThreshold uint32
	// WriterBufferSize is the buffered writer size in bytes.
	WriterBufferSize int
}

// applyDefaults fills zero-valued encode options with defaults.
func (o *EncodeOptions) applyDefaults() {
	if o.CompressionLevel == 0 {
		o.CompressionLevel = DefaultCompressionLevel
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.CompressionThreshold == 0 {
		o.CompressionThreshold = DefaultCompressThreshold
	}
	if o.WriterBufferSize < 4096 {
		o.WriterBufferSize = DefaultChunkSize
	}
}

// DecodeOptions configures Decode/DecodeStream/Validate behavior.
type DecodeOptions struct {
	// UseCache enables the optional per-Decoder result cache.
	UseCache bool
	// ValidateOnLoad runs structural validation before parsing sections. Default true.
	ValidateOnLoad bool
	// MaxSectionCount caps the accepted section count. Zero means DefaultMaxSectionCount.
	MaxSectionCount int
	// MaxInflatedSize bounds decompressed payload size. Zero means DefaultMaxInflatedSize.
	MaxInflatedSize int64
	// LenientUnknownSections surfaces unrecognized type IDs as unknown_<id> payloads. Default true.
	// When false, an unrecognized type ID is a per-section error: fatal under Strict, otherwise
	// recorded as a Warning with the section kept as opaque bytes under its unknown_<id> name.
	LenientUnknownSections bool
	// Strict disables lenient JSON/algorithm-ID fallbacks, turning recoverable errors fatal.
	Strict bool
	// Logger receives warnings for recoverable per-section conditions. Nil means silent.
	Logger Logger
}

// applyDefaults fills zero-valued numeric decode options with defaults.
// It never touches ValidateOnLoad/LenientUnknownSections: their documented
// default is true, so callers should start from DefaultDecodeOptions rather
// than rely on applyDefaults to flip a zero-valued bool to true.
func (o *DecodeOptions) applyDefaults() {
	if o.MaxSectionCount <= 0 {
		o.MaxSectionCount = DefaultMaxSectionCount
	}
	if o.MaxInflatedSize <= 0 {
		o.MaxInflatedSize = DefaultMaxInflatedSize
	}
	if o.Logger == nil {
		o.Logger = noopLogger{}
	}
}

// DefaultDecodeOptions returns options matching spec.md §4.5's stated defaults:
// ValidateOnLoad=true, LenientUnknownSections=true.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{
		ValidateOnLoad:         true,
		LenientUnknownSections: true,
		MaxSectionCount:        DefaultMaxSectionCount,
		MaxInflatedSize:        DefaultMaxInflatedSize,
	}
}

// ValidationResult is the outcome of Validate: either valid, or invalid with a reason list.
type ValidationResult struct {
	Valid  bool
	Errors []error
}
