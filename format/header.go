// Package format implements the self-describing binary sidecar files an
// Engine snapshot is saved as: a fixed-size header with a magic number,
// version, and CRC32 checksum, plus length-framed payload sidecars for
// vectors, adjacency, tags, and labels.
package format

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

const (
	// Magic identifies a streamvamana snapshot header ("SVAM").
	Magic uint32 = 0x5356414D
	// Version is the current on-disk format version.
	Version uint32 = 1
	// HeaderSize is the fixed encoded size of Header in bytes: 76 bytes
	// of fields, a 4-byte checksum, and 16 reserved bytes.
	HeaderSize = 96

	fieldsSize = 76
)

// Flag bits recorded in Header.Flags.
const (
	// FlagCompressed marks the vector/graph/tag/label sidecars as zstd-compressed.
	FlagCompressed uint32 = 1 << 0
	// FlagHasUniversal marks UniversalLabel as meaningful.
	FlagHasUniversal uint32 = 1 << 1
)

// Header is the fixed-size preamble of a snapshot's .meta file. It fully
// describes how to interpret the accompanying sidecar files without
// needing the live Engine.
type Header struct {
	Magic       uint32
	Version     uint32
	Flags       uint32
	Metric      uint32 // kernel.Metric
	Dim         uint32 // caller-visible dimension, pre MIPS augmentation
	Capacity    uint32 // slot capacity of the engine that was saved
	LiveCount   uint64 // number of LIVE points persisted
	FrozenCount uint32 // number of FROZEN points persisted
	R           uint32
	L           uint32
	AlphaMilli  uint32 // Alpha * 1000, rounded

	UniversalLabel uint32 // meaningful only if Flags&FlagHasUniversal

	MaxNormBits uint64 // math.Float64bits(maxNorm)

	GenerationID [16]byte // random id distinguishing snapshots of the same engine

	Checksum uint32
	Reserved [16]byte
}

// Validate checks the magic, version, and checksum.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("format: bad magic 0x%08X (want 0x%08X)", h.Magic, Magic)
	}
	if h.Version != Version {
		return fmt.Errorf("format: unsupported version %d (want %d)", h.Version, Version)
	}
	if h.Dim == 0 {
		return errors.New("format: dimension cannot be zero")
	}
	if got, want := h.Checksum, h.computeChecksum(); got != want {
		return fmt.Errorf("format: header checksum mismatch 0x%08X (want 0x%08X)", got, want)
	}
	return nil
}

func (h *Header) encodeFields(buf []byte) {
	off := 0
	putU32 := func(v uint32) { binary.LittleEndian.PutUint32(buf[off:], v); off += 4 }
	putU64 := func(v uint64) { binary.LittleEndian.PutUint64(buf[off:], v); off += 8 }

	putU32(h.Magic)
	putU32(h.Version)
	putU32(h.Flags)
	putU32(h.Metric)
	putU32(h.Dim)
	putU32(h.Capacity)
	putU64(h.LiveCount)
	putU32(h.FrozenCount)
	putU32(h.R)
	putU32(h.L)
	putU32(h.AlphaMilli)
	putU32(h.UniversalLabel)
	putU64(h.MaxNormBits)
	copy(buf[off:], h.GenerationID[:])
	off += len(h.GenerationID)
	if off != fieldsSize {
		panic("format: header field layout drifted from fieldsSize")
	}
}

func (h *Header) computeChecksum() uint32 {
	buf := make([]byte, fieldsSize)
	h.encodeFields(buf)
	return crc32.ChecksumIEEE(buf)
}

// SetChecksum recomputes and stores the header checksum.
func (h *Header) SetChecksum() {
	h.Checksum = h.computeChecksum()
}

// WriteTo encodes the header (fixing up the checksum first) to w.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	h.SetChecksum()

	buf := make([]byte, HeaderSize)
	h.encodeFields(buf[:fieldsSize])
	binary.LittleEndian.PutUint32(buf[fieldsSize:], h.Checksum)
	copy(buf[fieldsSize+4:], h.Reserved[:])

	n, err := w.Write(buf)
	return int64(n), err
}

// ReadFrom decodes a header from r. It does not call Validate; callers
// should call Validate explicitly once decoded.
func (h *Header) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, HeaderSize)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return int64(n), err
	}

	off := 0
	getU32 := func() uint32 { v := binary.LittleEndian.Uint32(buf[off:]); off += 4; return v }
	getU64 := func() uint64 { v := binary.LittleEndian.Uint64(buf[off:]); off += 8; return v }

	h.Magic = getU32()
	h.Version = getU32()
	h.Flags = getU32()
	h.Metric = getU32()
	h.Dim = getU32()
	h.Capacity = getU32()
	h.LiveCount = getU64()
	h.FrozenCount = getU32()
	h.R = getU32()
	h.L = getU32()
	h.AlphaMilli = getU32()
	h.UniversalLabel = getU32()
	h.MaxNormBits = getU64()
	copy(h.GenerationID[:], buf[off:off+len(h.GenerationID)])
	off += len(h.GenerationID)
	h.Checksum = getU32()
	off += 4
	copy(h.Reserved[:], buf[off:])

	return int64(n), nil
}

// AlphaFloat returns Alpha as a float32.
func (h *Header) AlphaFloat() float32 {
	return float32(h.AlphaMilli) / 1000.0
}

// Compressed reports whether FlagCompressed is set.
func (h *Header) Compressed() bool {
	return h.Flags&FlagCompressed != 0
}
