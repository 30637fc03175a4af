// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeSampleContainer(t *testing.T, path string) {
	t.Helper()
	out, err := Encode(sampleDocument(), EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestSectionEditorReplaceAndCommit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "container.xrai")
	writeSampleContainer(t, path)

	editor, err := OpenSectionEditor(path, SectionEditorOptions{})
	if err != nil {
		t.Fatalf("OpenSectionEditor: %v", err)
	}
	if err := editor.ReplaceSection("geometry", Payload{Kind: PayloadJSON, JSON: map[string]any{"replaced": true}}); err != nil {
		t.Fatalf("ReplaceSection: %v", err)
	}

	doc, err := editor.Commit(context.Background())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	got, ok := doc.Get("geometry")
	if !ok {
		t.Fatalf("geometry missing after Commit")
	}
	m := got.JSON.(map[string]any)
	if m["replaced"] != true {
		t.Fatalf("geometry not replaced, got %v", m)
	}

	reread, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	redecoded, err := Decode(reread, DefaultDecodeOptions())
	if err != nil {
		t.Fatalf("Decode rewritten file: %v", err)
	}
	got2, _ := redecoded.Get("geometry")
	m2 := got2.JSON.(map[string]any)
	if m2["replaced"] != true {
		t.Fatalf("on-disk container was not rewritten with the replacement")
	}
}

func TestSectionEditorDeleteSection(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "container.xrai")
	writeSampleContainer(t, path)

	editor, err := OpenSectionEditor(path, SectionEditorOptions{})
	if err != nil {
		t.Fatalf("OpenSectionEditor: %v", err)
	}
	if err := editor.DeleteSection("images"); err != nil {
		t.Fatalf("DeleteSection: %v", err)
	}

	doc, err := editor.Commit(context.Background())
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if _, ok := doc.Get("images"); ok {
		t.Fatalf("images section should be gone after delete+commit")
	}
}

func TestSectionEditorRejectsUnregisteredSectionName(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "container.xrai")
	writeSampleContainer(t, path)

	editor, err := OpenSectionEditor(path, SectionEditorOptions{})
	if err != nil {
		t.Fatalf("OpenSectionEditor: %v", err)
	}
	if err := editor.ReplaceSection("not-a-real-section", Payload{Kind: PayloadOpaque, Bytes: []byte("x")}); err == nil {
		t.Fatalf("ReplaceSection with an unregistered name should fail")
	}
}

func TestSectionEditorCommitRemovesBackupWhenBackupKeepZero(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "container.xrai")
	writeSampleContainer(t, path)

	editor, err := OpenSectionEditor(path, SectionEditorOptions{BackupKeep: 0})
	if err != nil {
		t.Fatalf("OpenSectionEditor: %v", err)
	}
	if err := editor.DeleteSection("images"); err != nil {
		t.Fatalf("DeleteSection: %v", err)
	}
	if _, err := editor.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Fatalf("backup file should have been removed when BackupKeep is 0")
	}
}

func TestSectionEditorCommitRollsBackOnReencodeFailure(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "container.xrai")
	writeSampleContainer(t, path)
	original, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile original: %v", err)
	}

	editor, err := OpenSectionEditor(path, SectionEditorOptions{})
	if err != nil {
		t.Fatalf("OpenSectionEditor: %v", err)
	}
	// Stage a section name the closed registry doesn't recognize, bypassing
	// ReplaceSection's own validation, so Encode fails inside
	// commitFromBackup after the backup rename has already happened.
	editor.ops = append(editor.ops, sectionEditOp{
		kind:    sectionEditReplace,
		name:    "not-a-real-section",
		payload: Payload{Kind: PayloadOpaque, Bytes: []byte("x")},
	})

	if _, err := editor.Commit(context.Background()); err == nil {
		t.Fatalf("Commit should fail when re-encoding with an unregistered section name")
	}

	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Fatalf("backup file should have been restored over the original path, not left behind")
	}

	restored, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile restored: %v", err)
	}
	if !bytes.Equal(original, restored) {
		t.Fatalf("container at %s was not restored to its pre-commit bytes after rollback", path)
	}
}

func TestSectionEditorCommitKeepsBackupWhenRequested(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "container.xrai")
	writeSampleContainer(t, path)

	editor, err := OpenSectionEditor(path, SectionEditorOptions{BackupKeep: 1})
	if err != nil {
		t.Fatalf("OpenSectionEditor: %v", err)
	}
	if err := editor.DeleteSection("images"); err != nil {
		t.Fatalf("DeleteSection: %v", err)
	}
	if _, err := editor.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Fatalf("backup file should exist when BackupKeep > 0: %v", err)
	}

	backupData, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("ReadFile backup: %v", err)
	}
	backupDoc, err := Decode(backupData, DefaultDecodeOptions())
	if err != nil {
		t.Fatalf("Decode backup: %v", err)
	}
	if _, ok := backupDoc.Get("images"); !ok {
		t.Fatalf("backup should still contain the pre-edit images section")
	}
}
