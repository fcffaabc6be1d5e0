package format

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// payloadHeaderSize is [crc32 uint32][rawLen uint32][compressed uint8].
const payloadHeaderSize = 9

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func putZstdEncoder(enc *zstd.Encoder) { zstdEncoderPool.Put(enc) }

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) { zstdDecoderPool.Put(dec) }

// WritePayload writes raw as a length-framed, checksummed sidecar file at
// path, optionally zstd-compressed.
func WritePayload(path string, compress bool, raw []byte) error {
	data := raw
	compressedFlag := byte(0)

	if compress && len(raw) > 0 {
		enc := getZstdEncoder()
		data = enc.EncodeAll(raw, nil)
		putZstdEncoder(enc)
		compressedFlag = 1
	}

	hdr := make([]byte, payloadHeaderSize)
	binary.LittleEndian.PutUint32(hdr[0:], crc32.ChecksumIEEE(raw))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(raw)))
	hdr[8] = compressedFlag

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(hdr); err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		return err
	}
	return nil
}

// ReadPayload reads and verifies a sidecar file written by WritePayload.
func ReadPayload(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	hdr := make([]byte, payloadHeaderSize)
	if _, err := io.ReadFull(f, hdr); err != nil {
		return nil, fmt.Errorf("format: reading payload header of %s: %w", path, err)
	}
	wantCRC := binary.LittleEndian.Uint32(hdr[0:])
	rawLen := binary.LittleEndian.Uint32(hdr[4:])
	compressed := hdr[8] == 1

	body, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	raw := body
	if compressed {
		dec := getZstdDecoder()
		raw, err = dec.DecodeAll(body, make([]byte, 0, rawLen))
		putZstdDecoder(dec)
		if err != nil {
			return nil, fmt.Errorf("format: decompressing %s: %w", path, err)
		}
	}

	if uint32(len(raw)) != rawLen {
		return nil, fmt.Errorf("format: %s: length mismatch, got %d want %d", path, len(raw), rawLen)
	}
	if got := crc32.ChecksumIEEE(raw); got != wantCRC {
		return nil, fmt.Errorf("format: %s: checksum mismatch 0x%08X want 0x%08X", path, got, wantCRC)
	}

	return raw, nil
}
