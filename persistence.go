package streamvamana

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/google/uuid"
	"github.com/hupe1980/streamvamana/format"
	"github.com/hupe1980/streamvamana/internal/kernel"
	"github.com/hupe1980/streamvamana/internal/labels"
	"github.com/hupe1980/streamvamana/internal/store"
)

// Save writes a snapshot of the engine to path.meta plus sidecar files
// (path.vectors, path.graph, path.tags, path.labels): a fixed header
// followed by length-framed, checksummed sidecars. Only LIVE and FROZEN
// points are persisted; TOMBSTONED slots are dropped and every surviving
// slot is remapped to a dense 0..N-1 index (frozen points first, then
// live points). If compact is true, the sidecars are additionally
// zstd-compressed.
func (e *Engine[T]) Save(path string, compact bool) error {
	all := e.vecs.Snapshot()

	var frozen, live []uint32
	for _, s := range all {
		switch e.vecs.State(s) {
		case store.Frozen:
			frozen = append(frozen, s)
		case store.Live:
			live = append(live, s)
		}
	}

	order := make([]uint32, 0, len(frozen)+len(live))
	order = append(order, frozen...)
	order = append(order, live...)

	oldToNew := make(map[uint32]uint32, len(order))
	for i, s := range order {
		oldToNew[s] = uint32(i)
	}

	vectors := make([][]T, len(order))
	for i, s := range order {
		vectors[i] = e.vecs.Vec(s)
	}

	tags := make([]uint32, len(live))
	for i, s := range live {
		tag, _ := e.vecs.TagOf(s)
		tags[i] = uint32(tag)
	}

	adjLists := make([][]uint32, len(order))
	for i, s := range order {
		neighbors := e.adj.Snapshot(s)
		remapped := make([]uint32, 0, len(neighbors))
		for _, n := range neighbors {
			if nn, ok := oldToNew[n]; ok {
				remapped = append(remapped, nn)
			}
		}
		adjLists[i] = remapped
	}

	labelLists := make([][]uint32, len(order))
	for i, s := range order {
		ls := e.lbls.Labels(s)
		l := make([]uint32, len(ls))
		for j, x := range ls {
			l[j] = uint32(x)
		}
		labelLists[i] = l
	}

	e.mu.RLock()
	maxNorm := e.maxNorm
	e.mu.RUnlock()

	hdr := format.Header{
		Magic:       format.Magic,
		Version:     format.Version,
		Metric:      uint32(e.metric),
		Dim:         uint32(e.dim),
		Capacity:    uint32(e.vecs.Capacity()),
		LiveCount:   uint64(len(live)),
		FrozenCount: uint32(len(frozen)),
		R:           uint32(e.params.R),
		L:           uint32(e.params.L),
		AlphaMilli:  uint32(math.Round(float64(e.params.Alpha) * 1000)),
		MaxNormBits: math.Float64bits(maxNorm),
	}
	if compact {
		hdr.Flags |= format.FlagCompressed
	}
	if ul, ok := e.lbls.Universal(); ok {
		hdr.Flags |= format.FlagHasUniversal
		hdr.UniversalLabel = uint32(ul)
	}
	if id, err := uuid.NewRandom(); err == nil {
		copy(hdr.GenerationID[:], id[:])
	}

	metaFile, err := os.Create(format.MetaPath(path))
	if err != nil {
		e.logger.LogSnapshot(context.Background(), path, err)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if _, err := hdr.WriteTo(metaFile); err != nil {
		metaFile.Close()
		e.logger.LogSnapshot(context.Background(), path, err)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := metaFile.Close(); err != nil {
		e.logger.LogSnapshot(context.Background(), path, err)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	if err := format.WritePayload(format.VectorsPath(path), compact, encodeVectorsF64(vectors)); err != nil {
		e.logger.LogSnapshot(context.Background(), path, err)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := format.WritePayload(format.GraphPath(path), compact, format.EncodeLists(adjLists)); err != nil {
		e.logger.LogSnapshot(context.Background(), path, err)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := format.WritePayload(format.TagsPath(path), compact, format.EncodeUint32Slice(tags)); err != nil {
		e.logger.LogSnapshot(context.Background(), path, err)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := format.WritePayload(format.LabelsPath(path), compact, format.EncodeLists(labelLists)); err != nil {
		e.logger.LogSnapshot(context.Background(), path, err)
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	e.logger.LogSnapshot(context.Background(), path, nil)
	return nil
}

// Load reconstructs an Engine from a snapshot written by Save. The
// resulting engine has capacity equal to the original engine's capacity
// at save time (Header.Capacity), so callers may resume inserting after
// Load up to that ceiling; slots beyond the persisted point count start
// FREE.
func Load[T kernel.Numeric](path string) (*Engine[T], error) {
	metaFile, err := os.Open(format.MetaPath(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	var hdr format.Header
	_, err = hdr.ReadFrom(metaFile)
	metaFile.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := hdr.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	metric := kernel.Metric(hdr.Metric)
	dim := int(hdr.Dim)
	capacity := int(hdr.Capacity)
	frozenN := int(hdr.FrozenCount)
	liveN := int(hdr.LiveCount)
	total := frozenN + liveN

	storeDim := dim
	if metric == kernel.MIPS {
		storeDim = dim + 1
	}

	vecBytes, err := format.ReadPayload(format.VectorsPath(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	vectors, err := decodeVectorsF64[T](vecBytes, total, storeDim)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	tagBytes, err := format.ReadPayload(format.TagsPath(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	tags, err := format.DecodeUint32Slice(tagBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	if len(tags) != liveN {
		return nil, fmt.Errorf("%w: tag count %d does not match header live count %d", ErrIO, len(tags), liveN)
	}

	graphBytes, err := format.ReadPayload(format.GraphPath(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	adjLists, err := format.DecodeLists(graphBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	labelBytes, err := format.ReadPayload(format.LabelsPath(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	labelLists, err := format.DecodeLists(labelBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	params := Params{
		L:             int(hdr.L),
		R:             int(hdr.R),
		Alpha:         hdr.AlphaFloat(),
		SaturateGraph: true,
		FilterListSize: int(hdr.L),
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	e, err := New[T](metric, dim, capacity, params)
	if err != nil {
		return nil, err
	}

	for i := 0; i < total; i++ {
		var slot uint32
		var loadErr error
		if i < frozenN {
			slot, loadErr = e.vecs.AllocateFrozen(vectors[i])
		} else {
			slot, loadErr = e.vecs.Allocate(store.Tag(tags[i-frozenN]), vectors[i])
		}
		if loadErr != nil {
			return nil, fmt.Errorf("%w: restoring point %d: %v", ErrIO, i, loadErr)
		}
		if int(slot) != i {
			return nil, &InvariantViolationError{Condition: "loaded slot index diverged from persisted compact index"}
		}
	}

	for i, neighbors := range adjLists {
		e.adj.Set(uint32(i), neighbors)
	}

	if hdr.Flags&format.FlagHasUniversal != 0 {
		e.lbls.SetUniversal(labels.Label(hdr.UniversalLabel))
	}
	for i, ls := range labelLists {
		if len(ls) == 0 {
			continue
		}
		converted := make([]labels.Label, len(ls))
		for j, l := range ls {
			converted[j] = labels.Label(l)
		}
		e.lbls.Set(uint32(i), converted)
		for _, l := range converted {
			e.lbls.SetMedoid(l, uint32(i)) // reservoir sampling restarts fresh after load
		}
	}

	if frozenN > 0 {
		frozenSlots := make([]uint32, frozenN)
		for i := 0; i < frozenN; i++ {
			frozenSlots[i] = uint32(i)
		}
		e.mu.Lock()
		e.entryPoints = frozenSlots
		e.mu.Unlock()
	} else if liveN > 0 {
		e.mu.Lock()
		e.entryPoints = []uint32{uint32(0)}
		e.mu.Unlock()
	}

	e.mu.Lock()
	e.maxNorm = math.Float64frombits(hdr.MaxNormBits)
	e.mu.Unlock()

	e.logger.LogLoad(context.Background(), path, total, nil)

	return e, nil
}

// encodeVectorsF64 flattens vectors into a float64 little-endian buffer.
// Every element type this package supports (int8, uint8, float32) round
// trips exactly through float64, so this trades a few bytes of file size
// for one codec path instead of one per element type.
func encodeVectorsF64[T kernel.Numeric](vectors [][]T) []byte {
	if len(vectors) == 0 {
		return nil
	}
	dim := len(vectors[0])
	buf := make([]byte, len(vectors)*dim*8)
	off := 0
	for _, v := range vectors {
		for _, x := range v {
			putFloat64(buf[off:], float64(x))
			off += 8
		}
	}
	return buf
}

func decodeVectorsF64[T kernel.Numeric](data []byte, count, dim int) ([][]T, error) {
	want := count * dim * 8
	if len(data) != want {
		return nil, fmt.Errorf("format: vectors payload is %d bytes, want %d (count=%d dim=%d)", len(data), want, count, dim)
	}
	out := make([][]T, count)
	off := 0
	for i := range out {
		v := make([]T, dim)
		for j := range v {
			v[j] = kernel.FromFloat[T](getFloat64(data[off:]))
			off += 8
		}
		out[i] = v
	}
	return out, nil
}

func putFloat64(buf []byte, f float64) {
	bits := math.Float64bits(f)
	for i := 0; i < 8; i++ {
		buf[i] = byte(bits >> (8 * i))
	}
}

func getFloat64(buf []byte) float64 {
	var bits uint64
	for i := 0; i < 8; i++ {
		bits |= uint64(buf[i]) << (8 * i)
	}
	return math.Float64frombits(bits)
}
