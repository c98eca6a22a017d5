// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gogpu/dsgpu/gpu3d"
	"github.com/gogpu/dsgpu/internal/meta"
	"github.com/gogpu/dsgpu/internal/shaders"
	"github.com/gogpu/dsgpu/internal/span"
	"github.com/gogpu/dsgpu/internal/tiling"
	"github.com/gogpu/dsgpu/internal/variant"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DefaultSubmitTimeout bounds blocking waits on submitted work.
const DefaultSubmitTimeout = 5 * time.Second

// pollInterval is the sleep between completion polls while waiting.
const pollInterval = 200 * time.Microsecond

// Config configures a Rasterizer.
type Config struct {
	// Format selects WGSL or SPIR-V shader modules.
	Format ShaderFormat

	// Cache resolves polygon textures. Nil selects a cache that maps every
	// texture to a single white texel.
	Cache gpu3d.TextureCache

	// SubmitTimeout bounds readback waits. Zero means DefaultSubmitTimeout.
	SubmitTimeout time.Duration
}

// FrameStats describes the last frame passed to RenderFrame.
type FrameStats struct {
	Polygons     int
	Variants     int
	SpanSetups   int
	ScanlineRecs int

	// PipelineSwitches counts rasterise pipeline changes inside the frame.
	PipelineSwitches int

	// Skipped is set when the frame was identical to the previous one.
	Skipped bool
}

// submission is a command buffer the GPU may still be executing, together
// with the bind groups it references.
type submission struct {
	index      uint64
	cmdBuf     hal.CommandBuffer
	bindGroups []hal.BindGroup
}

func (s *submission) free(device hal.Device) {
	for _, bg := range s.bindGroups {
		device.DestroyBindGroup(bg)
	}
	s.bindGroups = nil
	if s.cmdBuf != nil {
		device.FreeCommandBuffer(s.cmdBuf)
		s.cmdBuf = nil
	}
}

// Rasterizer turns the polygon list of a frame into a framebuffer with a
// fixed chain of compute kernels.
//
// Rasterizer is safe for concurrent use; calls are serialized.
type Rasterizer struct {
	mu sync.Mutex

	device hal.Device
	queue  hal.Queue
	cfg    Config

	pipes    *pipelineSet
	res      *resources
	textures *textureBinder
	cache    gpu3d.TextureCache

	engine  *span.Engine
	batcher *variant.Batcher

	layout     tiling.Layout
	configured bool
	closed     bool

	inflight []submission
	frames   uint64
	stats    FrameStats
	capture  captureState

	scratch []byte
}

// NewRasterizer creates the device objects that do not depend on the
// resolution scale. SetRenderSettings must be called before rendering.
func NewRasterizer(device hal.Device, queue hal.Queue, cfg Config) (*Rasterizer, error) {
	if device == nil || queue == nil {
		return nil, ErrComputeUnavailable
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = DefaultSubmitTimeout
	}

	pipes, err := newPipelineSet(device, cfg.Format)
	if err != nil {
		return nil, err
	}
	res, err := newResources(device)
	if err != nil {
		pipes.destroy()
		return nil, err
	}
	textures, err := newTextureBinder(device, queue, pipes.rasterGroup)
	if err != nil {
		res.destroy()
		pipes.destroy()
		return nil, err
	}

	r := &Rasterizer{
		device:   device,
		queue:    queue,
		cfg:      cfg,
		pipes:    pipes,
		res:      res,
		textures: textures,
		cache:    cfg.Cache,
	}
	if r.cache == nil {
		r.cache = &whiteCache{white: textures.white}
	}
	r.batcher = variant.NewBatcher(r.cache)

	slogger().Debug("gpu: rasterizer created", "format", cfg.Format.String())
	return r, nil
}

// SetRenderSettings derives the tile geometry for scale and reallocates the
// scale dependent resources. Changing the scale discards every compiled
// pipeline because tile constants are part of the shader source. Calling
// it again with the same arguments does nothing.
func (r *Rasterizer) SetRenderSettings(scale int, hiRes bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	l, err := tiling.New(scale, hiRes)
	if err != nil {
		return err
	}
	if r.configured && l == r.layout {
		return nil
	}

	if r.configured && !sameSizes(r.layout, l) {
		if err := r.drain(); err != nil {
			return err
		}
	}
	realloc, err := r.res.configure(l, r.pipes)
	if err != nil {
		r.configured = false
		return err
	}
	if realloc {
		r.pipes.reset(l)
		r.capture = captureState{}
	}

	if r.engine == nil {
		r.engine = span.NewEngine(l)
	} else {
		r.engine.Configure(l)
	}
	r.layout = l
	r.configured = true
	return nil
}

// Layout returns the active tile geometry.
func (r *Rasterizer) Layout() tiling.Layout {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.layout
}

// ShaderCompileStep builds one shader permutation and reports its index and
// the total permutation count.
func (r *Rasterizer) ShaderCompileStep() (current, count int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, shaders.Count, ErrClosed
	}
	if !r.configured {
		return 0, shaders.Count, ErrNotConfigured
	}
	return r.pipes.compileStep()
}

// NeedsShaderCompile reports whether permutations remain to be built.
func (r *Rasterizer) NeedsShaderCompile() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipes.needsCompile()
}

// Stats returns the statistics of the last frame.
func (r *Rasterizer) Stats() FrameStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Framebuffer returns the view of the scaled output texture and its size.
// The view is replaced when the scale changes.
func (r *Rasterizer) Framebuffer() (view hal.TextureView, width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.configured || r.res.framebuffer == nil {
		return nil, 0, 0
	}
	return r.res.framebuffer.view, r.layout.ScreenWidth, r.layout.ScreenHeight
}

// Reset resets the texture cache and drops the bind groups built from it.
func (r *Rasterizer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.cache.Reset()
	r.release(r.textures.invalidate())
	r.batcher.Reset()
	if r.engine != nil {
		r.engine.Reset()
	}
}

// RenderFrame builds the records of every polygon in fs, uploads them and
// submits the kernel chain. It reports false when the frame was skipped
// because nothing changed since the previous one.
func (r *Rasterizer) RenderFrame(fs *gpu3d.FrameState) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.closed:
		return false, ErrClosed
	case !r.configured:
		return false, ErrNotConfigured
	case r.pipes.err != nil:
		return false, r.pipes.err
	case !r.pipes.ready():
		return false, ErrShadersNotReady
	case fs == nil:
		return false, ErrNilFrameState
	}
	r.retire()

	if r.cache.Update(fs) {
		r.release(r.textures.invalidate())
	} else if fs.FrameIdentical && r.frames > 0 {
		r.stats.Skipped = true
		slogger().Debug("gpu: identical frame skipped")
		return false, nil
	}

	if err := r.buildRecords(fs); err != nil {
		return false, err
	}
	if err := r.upload(fs); err != nil {
		return false, err
	}

	cmdBuf, err := r.encodeFrame(fs)
	if err != nil {
		return false, err
	}
	idx, err := r.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		r.device.FreeCommandBuffer(cmdBuf)
		return false, fmt.Errorf("gpu: submit frame: %w", err)
	}
	r.inflight = append(r.inflight, submission{index: idx, cmdBuf: cmdBuf})
	r.frames++
	r.capture = captureState{lines: r.capture.lines}

	slogger().Debug("gpu: frame submitted",
		"submission", idx,
		"polygons", r.stats.Polygons,
		"variants", r.stats.Variants,
		"span_setups", r.stats.SpanSetups)
	return true, nil
}

// buildRecords runs the variant batcher and the span engine over every
// polygon of the frame.
func (r *Rasterizer) buildRecords(fs *gpu3d.FrameState) error {
	r.engine.Reset()
	r.batcher.Reset()
	for i, p := range fs.Polygons {
		v, layer, err := r.batcher.Assign(fs, p)
		if err != nil {
			return fmt.Errorf("gpu: polygon %d: assign variant: %w", i, err)
		}
		if err := r.engine.Add(p, v, layer); err != nil {
			return fmt.Errorf("gpu: polygon %d: build spans: %w", i, err)
		}
	}
	r.stats = FrameStats{
		Polygons:     len(r.engine.Polygons()),
		Variants:     r.batcher.Len(),
		SpanSetups:   len(r.engine.Setups()),
		ScanlineRecs: r.engine.NumSetupIndices(),
	}
	return nil
}

// upload writes the frame records. The meta uniform is written every frame
// because the compositing kernels read the clear values from it.
func (r *Rasterizer) upload(fs *gpu3d.FrameState) error {
	u := meta.Pack(fs, r.stats.Polygons, r.stats.Variants)
	if err := r.res.metaUniform.Write(r.queue, 0, u.Bytes()); err != nil {
		return err
	}
	if r.stats.SpanSetups == 0 {
		return nil
	}

	r.scratch = span.AppendSetups(r.scratch[:0], r.engine.Setups())
	if err := r.res.ySpanSetups.Write(r.queue, 0, r.scratch); err != nil {
		return err
	}
	r.scratch = span.AppendIndices(r.scratch[:0], r.engine.Indices())
	if err := r.res.ySpanIndices.Write(r.queue, 0, r.scratch); err != nil {
		return err
	}
	r.scratch = span.AppendPolygons(r.scratch[:0], r.engine.Polygons())
	if err := r.res.polygons.Write(r.queue, 0, r.scratch); err != nil {
		return err
	}
	r.scratch = appendVariantUniforms(r.scratch[:0], r.batcher.Variants())
	return r.res.variantUniform.Write(r.queue, 0, r.scratch)
}

// appendVariantUniforms encodes one record per variant at the dynamic
// offset stride.
func appendVariantUniforms(dst []byte, variants []variant.Variant) []byte {
	for i := range variants {
		v := &variants[i]
		var rec [variantUniformStride]byte
		binary.LittleEndian.PutUint32(rec[0:], uint32(i))
		binary.LittleEndian.PutUint32(rec[8:], math.Float32bits(float32(max(v.Width, 1))))
		binary.LittleEndian.PutUint32(rec[12:], math.Float32bits(float32(max(v.Height, 1))))
		dst = append(dst, rec[:]...)
	}
	return dst
}

// frameEncoder records the compute passes of one frame.
type frameEncoder struct {
	enc   hal.CommandEncoder
	pipes *pipelineSet
	group hal.BindGroup
}

func (f *frameEncoder) begin(label string) hal.ComputePassEncoder {
	return f.enc.BeginComputePass(&hal.ComputePassDescriptor{Label: label})
}

// dispatch records a pass running permutation perm over x*y*z workgroups.
func (f *frameEncoder) dispatch(perm int, group1 hal.BindGroup, x, y, z uint32) {
	name := shaders.All()[perm].Name()
	if x == 0 || y == 0 || z == 0 {
		slogger().Debug("gpu: empty dispatch skipped", "permutation", name)
		return
	}
	pass := f.begin(name)
	pass.SetPipeline(f.pipes.pipeline(perm))
	pass.SetBindGroup(0, f.group, []uint32{0})
	if group1 != nil {
		pass.SetBindGroup(1, group1, nil)
	}
	pass.Dispatch(x, y, z)
	pass.End()
	slogger().Debug("gpu: dispatched", "permutation", name, "workgroups", [3]uint32{x, y, z})
}

// dispatchIndirect records a pass whose size the GPU computed earlier.
func (f *frameEncoder) dispatchIndirect(perm int, d IndirectDispatch) {
	name := shaders.All()[perm].Name()
	pass := f.begin(name)
	pass.SetPipeline(f.pipes.pipeline(perm))
	pass.SetBindGroup(0, f.group, []uint32{0})
	d.encode(pass)
	pass.End()
	slogger().Debug("gpu: dispatched indirect", "permutation", name, "offset", d.Offset())
}

// barrier makes every kernel written buffer visible to the next stage.
func (r *Rasterizer) barrier(enc hal.CommandEncoder) {
	const rw = gputypes.BufferUsageStorage
	bufs := [...]*Buffer{r.res.xSpanSetups, r.res.binResult, r.res.workDescs, r.res.tileMemory, r.res.finalTiles}
	barriers := make([]hal.BufferBarrier, 0, len(bufs))
	for _, b := range bufs {
		barriers = append(barriers, hal.BufferBarrier{
			Buffer: b.Raw(),
			Usage:  hal.BufferUsageTransition{OldUsage: rw, NewUsage: rw},
		})
	}
	enc.TransitionBuffers(barriers)
}

// copyIndirectArgs copies the bin result header into the indirect argument
// buffer consumed by DispatchIndirect.
func (r *Rasterizer) copyIndirectArgs(enc hal.CommandEncoder) {
	bin, args := r.res.binResult.Raw(), r.res.indirect.Raw()
	enc.TransitionBuffers([]hal.BufferBarrier{
		{Buffer: bin, Usage: hal.BufferUsageTransition{
			OldUsage: gputypes.BufferUsageStorage, NewUsage: gputypes.BufferUsageCopySrc}},
		{Buffer: args, Usage: hal.BufferUsageTransition{
			OldUsage: gputypes.BufferUsageIndirect, NewUsage: gputypes.BufferUsageCopyDst}},
	})
	enc.CopyBufferToBuffer(bin, args, []hal.BufferCopy{{Size: tiling.BinHeaderSize()}})
	enc.TransitionBuffers([]hal.BufferBarrier{
		{Buffer: bin, Usage: hal.BufferUsageTransition{
			OldUsage: gputypes.BufferUsageCopySrc, NewUsage: gputypes.BufferUsageStorage}},
		{Buffer: args, Usage: hal.BufferUsageTransition{
			OldUsage: gputypes.BufferUsageCopyDst, NewUsage: gputypes.BufferUsageIndirect}},
	})
}

// encodeFrame records the kernel chain. The coarse mask clear always runs
// so counters of a previous frame never leak into the next one.
func (r *Rasterizer) encodeFrame(fs *gpu3d.FrameState) (hal.CommandBuffer, error) {
	enc, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "dsgpu_frame"})
	if err != nil {
		return nil, fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("dsgpu_frame"); err != nil {
		return nil, fmt.Errorf("gpu: begin encoding: %w", err)
	}

	l := r.layout
	wbuffer := fs.WBuffer()
	f := &frameEncoder{enc: enc, pipes: r.pipes, group: r.res.group0}

	f.dispatch(shaders.ClearCoarseBinMask(), nil, l.ClearCoarseBinMaskGroups(), 1, 1)

	if r.stats.SpanSetups > 0 {
		nVariants := uint32(r.stats.Variants)
		r.barrier(enc)
		f.dispatch(shaders.ClearIndirectWorkCount(), nil, tiling.DivCeil32(nVariants, 32), 1, 1)
		r.barrier(enc)
		f.dispatch(shaders.InterpXSpans(wbuffer), nil, tiling.DivCeil32(uint32(r.stats.ScanlineRecs), 32), 1, 1)
		r.barrier(enc)
		f.dispatch(shaders.BinCombined(), nil,
			tiling.DivCeil32(uint32(r.stats.Polygons), 32), uint32(l.CoarseTilesX), uint32(l.CoarseTilesY))
		r.barrier(enc)
		f.dispatch(shaders.CalculateWorkListOffset(), nil, tiling.DivCeil32(nVariants, 32), 1, 1)
		r.barrier(enc)
		r.copyIndirectArgs(enc)
		f.dispatchIndirect(shaders.SortWork(), sortWorkDispatch(r.res.indirect))
		r.barrier(enc)
		if err := r.encodeRasterise(f, fs, wbuffer); err != nil {
			enc.DiscardEncoding()
			return nil, err
		}
	}

	r.barrier(enc)
	f.dispatch(shaders.DepthBlend(wbuffer), nil, uint32(l.TilesPerLine), uint32(l.TileLines), 1)
	r.barrier(enc)

	r.res.framebuffer.transition(enc, gputypes.TextureUsageStorageBinding)
	r.res.lowRes.transition(enc, gputypes.TextureUsageStorageBinding)
	f.dispatch(shaders.FinalPass(shaders.FinalPassMask(fs.DispCnt)), r.res.finalGroup,
		uint32(l.ScreenWidth)/32, uint32(l.ScreenHeight), 1)
	r.res.framebuffer.transition(enc, gputypes.TextureUsageTextureBinding)

	cmdBuf, err := enc.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("gpu: end encoding: %w", err)
	}
	return cmdBuf, nil
}

// encodeRasterise records one indirect dispatch per variant in creation
// order inside a single pass, switching pipeline and texture bindings only
// when they change.
func (r *Rasterizer) encodeRasterise(f *frameEncoder, fs *gpu3d.FrameState, wbuffer bool) error {
	variants := r.batcher.Variants()
	groups := make([]hal.BindGroup, len(variants))
	for i := range variants {
		bg, err := r.textures.bindGroup(variants[i].Texture, variants[i].Sampler)
		if err != nil {
			return err
		}
		groups[i] = bg
	}

	highlight := fs.DispCnt&gpu3d.DispCntHighlight != 0
	pass := f.begin("rasterise")
	current := -1
	var boundTex, boundSampler uint32
	bound := false
	for i := range variants {
		v := &variants[i]
		perm := shaders.Rasterise(wbuffer, shaders.RasterModeFor(v.Textured(), v.BlendMode, highlight))
		if perm != current {
			pass.SetPipeline(r.pipes.pipeline(perm))
			current = perm
			r.stats.PipelineSwitches++
		}
		if !bound || v.Texture.ID != boundTex || v.Sampler != boundSampler {
			pass.SetBindGroup(1, groups[i], nil)
			boundTex, boundSampler, bound = v.Texture.ID, v.Sampler, true
		}
		pass.SetBindGroup(0, f.group, []uint32{uint32(i) * variantUniformStride})
		variantDispatch(r.res.indirect, uint32(i)).encode(pass)
	}
	pass.End()

	slogger().Debug("gpu: rasterised variants",
		"variants", len(variants),
		"pipeline_switches", r.stats.PipelineSwitches)
	return nil
}

// retire frees submissions the GPU has finished.
func (r *Rasterizer) retire() {
	done := r.queue.PollCompleted()
	kept := r.inflight[:0]
	for i := range r.inflight {
		if r.inflight[i].index <= done {
			r.inflight[i].free(r.device)
			continue
		}
		kept = append(kept, r.inflight[i])
	}
	clear(r.inflight[len(kept):])
	r.inflight = kept
}

// release destroys bind groups once no submission can reference them.
func (r *Rasterizer) release(groups []hal.BindGroup) {
	if len(groups) == 0 {
		return
	}
	if n := len(r.inflight); n > 0 {
		r.inflight[n-1].bindGroups = append(r.inflight[n-1].bindGroups, groups...)
		return
	}
	for _, bg := range groups {
		r.device.DestroyBindGroup(bg)
	}
}

// waitFor blocks until submission index completes or the timeout passes.
func (r *Rasterizer) waitFor(index uint64) error {
	deadline := time.Now().Add(r.cfg.SubmitTimeout)
	for r.queue.PollCompleted() < index {
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: submission %d after %v", ErrSubmitTimeout, index, r.cfg.SubmitTimeout)
		}
		time.Sleep(pollInterval)
	}
	r.retire()
	return nil
}

// drain waits for the device to go idle and frees every submission.
func (r *Rasterizer) drain() error {
	err := r.device.WaitIdle()
	for i := range r.inflight {
		r.inflight[i].free(r.device)
	}
	r.inflight = r.inflight[:0]
	if err != nil {
		return fmt.Errorf("gpu: wait idle: %w", err)
	}
	return nil
}

// Close waits for outstanding work and releases every device object.
func (r *Rasterizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	err := r.drain()
	r.textures.destroy()
	r.res.destroy()
	r.pipes.destroy()
	r.configured = false
	slogger().Debug("gpu: rasterizer closed", "frames", r.frames)
	return err
}
