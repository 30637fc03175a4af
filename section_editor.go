// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/xrai

package xrai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// SectionEditorOptions configures SectionEditor.Commit's backup rotation and
// the decode/encode passes it runs internally.
type SectionEditorOptions struct {
	// BackupKeep is how many prior container generations to retain as
	// path+".bak", path+".bak.1", etc. Zero means no backup is kept.
	BackupKeep int
	// Decode configures the read-back of the existing container.
	Decode DecodeOptions
	// Encode configures the rewritten container.
	Encode EncodeOptions
}

func (o *SectionEditorOptions) applyDefaults() {
	if o.BackupKeep < 0 {
		o.BackupKeep = 0
	}
	o.Decode.applyDefaults()
	o.Encode.applyDefaults()
}

// SectionEditor accumulates section-level edits against an on-disk container
// and applies them on Commit in one backup-then-atomic-rewrite-then-rollback
// transaction, grounded on the teacher's Editor/Commit/prepareBackupSlot
// shape but narrowed to two XRAI-scale operations: whole-section replace
// and whole-section delete (no per-entry add,
// since sections are a closed registry, not an open archive namespace).
type SectionEditor struct {
	path string
	ops  []sectionEditOp
	opts SectionEditorOptions
}

type sectionEditKind uint8

const (
	sectionEditReplace sectionEditKind = iota + 1
	sectionEditDelete
)

type sectionEditOp struct {
	kind    sectionEditKind
	name    string
	payload Payload
}

// OpenSectionEditor creates a staged editor for a file-based container rewrite.
func OpenSectionEditor(path string, opts SectionEditorOptions) (*SectionEditor, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidExtractPath)
	}

	opts.applyDefaults()
	return &SectionEditor{path: trimmed, opts: opts}, nil
}

// ReplaceSection stages a section replacement (or addition) for the next Commit.
func (e *SectionEditor) ReplaceSection(name string, payload Payload) error {
	if e == nil {
		return ErrNilReader
	}
	if _, ok := TypeIDOf(name); !ok {
		return fmt.Errorf("%w: %q", ErrInvalidSectionName, name)
	}

	e.ops = append(e.ops, sectionEditOp{kind: sectionEditReplace, name: name, payload: payload})
	return nil
}

// DeleteSection stages a section removal for the next Commit.
func (e *SectionEditor) DeleteSection(name string) error {
	if e == nil {
		return ErrNilReader
	}

	e.ops = append(e.ops, sectionEditOp{kind: sectionEditDelete, name: name})
	return nil
}

// Commit decodes the existing container, applies every staged operation,
// re-encodes, and atomically replaces the file, rolling back to the original
// on any failure after the backup swap.
func (e *SectionEditor) Commit(ctx context.Context) (*Document, error) {
	if e == nil {
		return nil, ErrNilReader
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	backupPath := e.path + ".bak"
	if err := prepareBackupSlot(backupPath, e.opts.BackupKeep); err != nil {
		return nil, err
	}
	if err := os.Rename(e.path, backupPath); err != nil {
		return nil, fmt.Errorf("move container to backup: %w", err)
	}

	doc, err := e.commitFromBackup(backupPath)
	if err != nil {
		if rollbackErr := rollbackFromBackup(e.path, backupPath); rollbackErr != nil {
			return nil, fmt.Errorf("%v (rollback failed: %v)", err, rollbackErr)
		}
		return nil, err
	}

	if e.opts.BackupKeep == 0 {
		if err := removeIfExists(backupPath); err != nil {
			return nil, fmt.Errorf("remove backup: %w", err)
		}
	}

	return doc, nil
}

// commitFromBackup rereads, edits, and rewrites the container from its backup copy.
func (e *SectionEditor) commitFromBackup(backupPath string) (*Document, error) {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}

	doc, err := Decode(data, e.opts.Decode)
	if err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}

	for _, op := range e.ops {
		switch op.kind {
		case sectionEditReplace:
			doc.Set(op.name, op.payload)
		case sectionEditDelete:
			doc.Delete(op.name)
		default:
			return nil, fmt.Errorf("unknown section edit kind: %d", op.kind)
		}
	}

	out, err := Encode(doc, e.opts.Encode)
	if err != nil {
		return nil, fmt.Errorf("re-encode container: %w", err)
	}

	if err := os.WriteFile(e.path, out, 0o600); err != nil {
		return nil, fmt.Errorf("write container: %w", err)
	}

	return doc, nil
}

// prepareBackupSlot rotates or removes existing backup generations before a new commit.
func prepareBackupSlot(backupPath string, keep int) error {
	if keep < 0 {
		keep = 0
	}

	switch keep {
	case 0, 1:
		return removeIfExists(backupPath)
	default:
		oldest := fmt.Sprintf("%s.%d", backupPath, keep-1)
		if err := removeIfExists(oldest); err != nil {
			return err
		}

		for i := keep - 2; i >= 1; i-- {
			from := fmt.Sprintf("%s.%d", backupPath, i)
			to := fmt.Sprintf("%s.%d", backupPath, i+1)
			if err := renameIfExists(from, to); err != nil {
				return err
			}
		}

		return renameIfExists(backupPath, backupPath+".1")
	}
}

// renameIfExists renames from to to when from exists.
func renameIfExists(from, to string) error {
	_, err := os.Stat(from)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", from, err)
	}

	if err := removeIfExists(to); err != nil {
		return err
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s to %s: %w", from, to, err)
	}
	return nil
}

// removeIfExists removes path when present.
func removeIfExists(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) || err == nil {
		return nil
	}
	return fmt.Errorf("remove %s: %w", path, err)
}

// rollbackFromBackup restores the backup copy over path after a failed commit.
func rollbackFromBackup(path, backupPath string) error {
	_ = os.Remove(path)
	if err := os.Rename(backupPath, path); err != nil {
		return fmt.Errorf("restore backup: %w", err)
	}
	return nil
}
