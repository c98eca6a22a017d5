// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command dsframe renders a synthetic 3D frame with the compute renderer
// and writes the native resolution capture as a PNG.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"os"
	"time"

	"golang.org/x/image/draw"

	"github.com/gogpu/dsgpu"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

const (
	nativeWidth  = 256
	nativeHeight = 192
)

func main() {
	var (
		scale   = flag.Int("scale", 1, "resolution scale (1-16)")
		hiRes   = flag.Bool("hires", false, "use sub-pixel vertex coordinates")
		output  = flag.String("out", "frame.png", "output file")
		spirv   = flag.Bool("spirv", false, "compile shaders to SPIR-V with naga")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		dsgpu.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	device, queue, cleanup, err := openDevice()
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}
	defer cleanup()

	opts := []dsgpu.Option{
		dsgpu.WithScale(*scale),
		dsgpu.WithHiResCoordinates(*hiRes),
	}
	if *spirv {
		opts = append(opts, dsgpu.WithShaderFormat(dsgpu.ShaderSPIRV))
	}
	r, err := dsgpu.New(device, queue, opts...)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Close()

	start := time.Now()
	for r.NeedsShaderCompile() {
		if _, _, err := r.ShaderCompileStep(); err != nil {
			log.Fatalf("Shader compilation failed: %v", err)
		}
	}
	log.Printf("Compiled shaders in %v", time.Since(start).Round(time.Millisecond))

	fs, err := scene()
	if err != nil {
		log.Fatalf("Failed to build scene: %v", err)
	}
	if _, err := r.RenderFrame(fs); err != nil {
		log.Fatalf("Failed to render: %v", err)
	}
	if err := r.PrepareCaptureFrame(); err != nil {
		log.Fatalf("Failed to start capture: %v", err)
	}

	img, err := capture(r)
	if err != nil {
		log.Fatalf("Failed to read capture: %v", err)
	}
	if *scale > 1 {
		img = upscale(img, *scale)
	}
	if err := savePNG(*output, img); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	st := r.Stats()
	log.Printf("Frame saved to %s (%dx%d, %d polygons, %d variants, %d span setups)",
		*output, img.Bounds().Dx(), img.Bounds().Dy(), st.Polygons, st.Variants, st.SpanSetups)
}

// openDevice opens the first compute capable Vulkan adapter, preferring
// discrete and integrated GPUs.
func openDevice() (hal.Device, hal.Queue, func(), error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, nil, nil, fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create instance: %w", err)
	}

	var selected *hal.ExposedAdapter
	adapters := instance.EnumerateAdapters(nil)
	for i := range adapters {
		if !dsgpu.AdapterSupportsCompute(adapters[i]) {
			continue
		}
		if selected == nil ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
		}
		if selected.Info.DeviceType == gputypes.DeviceTypeDiscreteGPU {
			break
		}
	}
	if selected == nil {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("no compute capable adapter among %d", len(adapters))
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, nil, fmt.Errorf("open device: %w", err)
	}
	log.Printf("Using %s", selected.Info.Name)

	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup, nil
}

// capture converts the packed 6-bit capture lines into an RGBA image.
func capture(r *dsgpu.Renderer) (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, nativeWidth, nativeHeight))
	for y := 0; y < nativeHeight; y++ {
		line, err := r.GetLine(y)
		if err != nil {
			return nil, err
		}
		for x, p := range line {
			img.SetRGBA(x, y, color.RGBA{
				R: expand6(p & 0x3F),
				G: expand6((p >> 8) & 0x3F),
				B: expand6((p >> 16) & 0x3F),
				A: expand5((p >> 24) & 0x1F),
			})
		}
	}
	return img, nil
}

func expand6(c uint32) uint8 { return uint8(c<<2 | c>>4) }
func expand5(c uint32) uint8 { return uint8(c<<3 | c>>2) }

func upscale(src *image.RGBA, scale int) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
