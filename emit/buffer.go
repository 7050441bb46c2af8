// Package emit is the byte sink shared by every backend.
package emit

import (
	"encoding/binary"
	"fmt"

	"github.com/colorfulnotion/rtsimd/rterrors"
)

// Label marks a position in the instruction stream.
type Label struct {
	Name string
	id   int
}

// FixupKind selects how a label reference is patched.
type FixupKind uint8

const (
	// Rel32 is an x86 32-bit displacement relative to the end of the instruction.
	Rel32 FixupKind = iota
	// MIPS16 is a MIPS branch offset in words relative to the delay slot,
	// stored in the low 16 bits of the branch word.
	MIPS16
)

type fixup struct {
	kind  FixupKind
	at    int // patch offset
	end   int // offset the displacement is relative to
	label *Label
}

// Buffer appends encoded bytes in program order.
type Buffer struct {
	code   []byte
	labels []int // bound offsets by label id, -1 unbound
	fixups []fixup
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{code: make([]byte, 0, 256)}
}

// EmitB appends one byte.
func (b *Buffer) EmitB(v byte) { b.code = append(b.code, v) }

// EmitBytes appends raw bytes.
func (b *Buffer) EmitBytes(v ...byte) { b.code = append(b.code, v...) }

// EmitU16 appends a little-endian half-word.
func (b *Buffer) EmitU16(v uint16) { b.code = binary.LittleEndian.AppendUint16(b.code, v) }

// EmitU32 appends a little-endian word.
func (b *Buffer) EmitU32(v uint32) { b.code = binary.LittleEndian.AppendUint32(b.code, v) }

// EmitU64 appends a little-endian double word.
func (b *Buffer) EmitU64(v uint64) { b.code = binary.LittleEndian.AppendUint64(b.code, v) }

// EmitW appends one 32-bit instruction word.
func (b *Buffer) EmitW(w uint32) { b.EmitU32(w) }

// Len returns the number of bytes emitted so far.
func (b *Buffer) Len() int { return len(b.code) }

// Bytes returns the emitted bytes without resolving fixups.
func (b *Buffer) Bytes() []byte { return b.code }

// NewLabel creates an unbound label.
func (b *Buffer) NewLabel(name string) *Label {
	l := &Label{Name: name, id: len(b.labels)}
	b.labels = append(b.labels, -1)
	return l
}

// Bind attaches l to the current offset.
func (b *Buffer) Bind(l *Label) error {
	if l == nil || l.id >= len(b.labels) {
		return fmt.Errorf("%w: foreign label", rterrors.ErrLabel)
	}
	if b.labels[l.id] >= 0 {
		return fmt.Errorf("%w: %q bound twice", rterrors.ErrLabel, l.Name)
	}
	b.labels[l.id] = len(b.code)
	return nil
}

// Fix records a reference to l. at is the patch offset, end the offset the
// displacement is measured from.
func (b *Buffer) Fix(kind FixupKind, at, end int, l *Label) {
	b.fixups = append(b.fixups, fixup{kind: kind, at: at, end: end, label: l})
}

// Finish resolves all fixups and returns the final code.
func (b *Buffer) Finish() ([]byte, error) {
	for _, f := range b.fixups {
		if f.label == nil || f.label.id >= len(b.labels) || b.labels[f.label.id] < 0 {
			name := ""
			if f.label != nil {
				name = f.label.Name
			}
			return nil, fmt.Errorf("%w: %q never bound", rterrors.ErrLabel, name)
		}
		rel := int64(b.labels[f.label.id] - f.end)
		switch f.kind {
		case Rel32:
			if rel < -1<<31 || rel >= 1<<31 {
				return nil, fmt.Errorf("%w: rel32 %d", rterrors.ErrBranchRange, rel)
			}
			binary.LittleEndian.PutUint32(b.code[f.at:], uint32(int32(rel)))
		case MIPS16:
			words := rel >> 2
			if rel&3 != 0 || words < -1<<15 || words >= 1<<15 {
				return nil, fmt.Errorf("%w: mips offset %d", rterrors.ErrBranchRange, rel)
			}
			w := binary.LittleEndian.Uint32(b.code[f.at:])
			w = w&0xFFFF0000 | uint32(uint16(int16(words)))
			binary.LittleEndian.PutUint32(b.code[f.at:], w)
		}
	}
	return b.code, nil
}
