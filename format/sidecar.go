package format

import (
	"encoding/binary"
	"fmt"
)

// Sidecar file suffixes under a save/load path prefix.
const (
	SuffixMeta    = ".meta"
	SuffixVectors = ".vectors"
	SuffixGraph   = ".graph"
	SuffixTags    = ".tags"
	SuffixLabels  = ".labels"
)

func MetaPath(prefix string) string    { return prefix + SuffixMeta }
func VectorsPath(prefix string) string { return prefix + SuffixVectors }
func GraphPath(prefix string) string   { return prefix + SuffixGraph }
func TagsPath(prefix string) string    { return prefix + SuffixTags }
func LabelsPath(prefix string) string  { return prefix + SuffixLabels }

// EncodeUint32Slice little-endian encodes a flat []uint32.
func EncodeUint32Slice(vals []uint32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

// DecodeUint32Slice is the inverse of EncodeUint32Slice.
func DecodeUint32Slice(data []byte) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("format: uint32 slice payload not a multiple of 4 bytes (%d)", len(data))
	}
	out := make([]uint32, len(data)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return out, nil
}

// EncodeLists encodes a slice of variable-length uint32 lists as
// [count uint32][for each list: len uint32, elements...], used for both
// the adjacency sidecar (one neighbor list per point) and the labels
// sidecar (one label-id list per point).
func EncodeLists(lists [][]uint32) []byte {
	size := 4
	for _, l := range lists {
		size += 4 + 4*len(l)
	}
	buf := make([]byte, size)
	off := 0
	binary.LittleEndian.PutUint32(buf[off:], uint32(len(lists)))
	off += 4
	for _, l := range lists {
		binary.LittleEndian.PutUint32(buf[off:], uint32(len(l)))
		off += 4
		for _, v := range l {
			binary.LittleEndian.PutUint32(buf[off:], v)
			off += 4
		}
	}
	return buf
}

// DecodeLists is the inverse of EncodeLists.
func DecodeLists(data []byte) ([][]uint32, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("format: lists payload too short (%d bytes)", len(data))
	}
	off := 0
	count := binary.LittleEndian.Uint32(data[off:])
	off += 4

	out := make([][]uint32, count)
	for i := range out {
		if off+4 > len(data) {
			return nil, fmt.Errorf("format: lists payload truncated at list %d", i)
		}
		n := binary.LittleEndian.Uint32(data[off:])
		off += 4
		if off+4*int(n) > len(data) {
			return nil, fmt.Errorf("format: lists payload truncated in list %d body", i)
		}
		l := make([]uint32, n)
		for j := range l {
			l[j] = binary.LittleEndian.Uint32(data[off:])
			off += 4
		}
		out[i] = l
	}
	return out, nil
}
