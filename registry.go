// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

import "fmt"

// SectionID is the 32-bit numeric identifier for a section kind, stable across versions.
type SectionID uint32

// Recognized section type IDs. Type ID 0 and the 12-100 range are reserved;
// IDs above 100 are never valid.
const (
	SectionMetadata     SectionID = 1
	SectionGeometry     SectionID = 2
	SectionMaterials    SectionID = 3
	SectionAnimations   SectionID = 4
	SectionAudio        SectionID = 5
	SectionAIComponents SectionID = 6
	SectionVFX          SectionID = 7
	SectionBuffers      SectionID = 8
	SectionImages       SectionID = 9
	SectionScene        SectionID = 10
	SectionExtensions   SectionID = 11
)

// SectionKind reports how a section's payload is interpreted.
type SectionKind int

// Payload interpretation kinds.
const (
	// KindJSON means the payload is a UTF-8 JSON document.
	KindJSON SectionKind = iota
	// KindOpaque means the payload is not interpreted by the codec.
	KindOpaque
)

// registryEntry describes one closed registry record.
type registryEntry struct {
	name string
	kind SectionKind
}

// registry is the fixed mapping between section type IDs and logical names.
// It is closed: adding a section type is a code change, not runtime registration.
var registry = map[SectionID]registryEntry{
	SectionMetadata:     {name: "metadata", kind: KindJSON},
	SectionGeometry:     {name: "geometry", kind: KindJSON},
	SectionMaterials:    {name: "materials", kind: KindJSON},
	SectionAnimations:   {name: "animations", kind: KindJSON},
	SectionAudio:        {name: "audio", kind: KindOpaque},
	SectionAIComponents: {name: "aiComponents", kind: KindJSON},
	SectionVFX:          {name: "vfx", kind: KindJSON},
	SectionBuffers:      {name: "buffers", kind: KindOpaque},
	SectionImages:       {name: "images", kind: KindOpaque},
	SectionScene:        {name: "scene", kind: KindJSON},
	SectionExtensions:   {name: "extensions", kind: KindJSON},
}

// registryOrder lists recognized section IDs in canonical ascending order,
// the order the encoder writes sections in (spec.md §4.4).
var registryOrder = []SectionID{
	SectionMetadata,
	SectionGeometry,
	SectionMaterials,
	SectionAnimations,
	SectionAudio,
	SectionAIComponents,
	SectionVFX,
	SectionBuffers,
	SectionImages,
	SectionScene,
	SectionExtensions,
}

// nameToID is the reverse index built once from registry.
var nameToID = func() map[string]SectionID {
	out := make(map[string]SectionID, len(registry))
	for id, entry := range registry {
		out[entry.name] = id
	}
	return out
}()

// NameOf returns the logical section name for a recognized type ID.
func NameOf(id SectionID) (string, bool) {
	entry, ok := registry[id]
	if !ok {
		return "", false
	}
	return entry.name, true
}

// TypeIDOf returns the recognized type ID for a logical section name.
func TypeIDOf(name string) (SectionID, bool) {
	id, ok := nameToID[name]
	return id, ok
}

// InterpretationOf returns how a recognized type ID's payload should be interpreted.
// Callers must first confirm the ID is recognized via NameOf or TypeIDOf.
func InterpretationOf(id SectionID) SectionKind {
	return registry[id].kind
}

// isReservedOrInvalid reports whether a type ID is outside the closed registry:
// reserved (0 and 12-100) or invalid (>100).
func isReservedOrInvalid(id SectionID) bool {
	if _, ok := registry[id]; ok {
		return false
	}
	return true
}

// unknownSectionName synthesizes the forward-compatible name for an unrecognized type ID.
func unknownSectionName(id SectionID) string {
	return fmt.Sprintf("unknown_%d", id)
}
