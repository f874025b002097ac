// Command pointsdemo simulates a bouncing particle field and renders it
// to a PNG as white 2x2 point sprites on black.
//
// By default every frame is stepped and rasterized on the CPU. With -gpu
// the frames go through points.RenderField and the registered wgpu
// accelerator, falling back to the CPU when no device is available.
package main

import (
	"flag"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/points"
)

func main() {
	var (
		count   = flag.Int("count", points.DefaultCount, "particle count")
		width   = flag.Int("width", 800, "framebuffer width")
		height  = flag.Int("height", 600, "framebuffer height")
		frames  = flag.Int("frames", 120, "frames to simulate")
		dt      = flag.Float64("dt", 1.0/60.0, "seconds advanced per frame")
		seed    = flag.Int64("seed", 1, "field seed")
		gpu     = flag.Bool("gpu", false, "render through the registered accelerator")
		sized   = flag.Bool("sized", true, "draw 2x2 sprites instead of single pixels")
		scale   = flag.Int("scale", 1, "integer upscale factor for the output")
		output  = flag.String("output", "points.png", "output PNG path")
		verbose = flag.Bool("v", false, "debug logging to stderr")
	)
	flag.Parse()

	if *verbose {
		points.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	field := points.NewField(*count, points.WithSeed(*seed))
	defer field.Close()

	target := points.NewFramebuffer(*width, *height)
	params := points.FrameParams{StepDT: float32(*dt), SizeOverride: *sized}

	start := time.Now()
	for i := 0; i < *frames; i++ {
		if err := renderFrame(target, field, params, *gpu); err != nil {
			log.Fatalf("Frame %d failed: %v", i, err)
		}
	}
	printStats(field.Count(), *frames, time.Since(start))

	if err := savePNG(*output, target, *scale); err != nil {
		log.Fatalf("Failed to save %s: %v", *output, err)
	}
	log.Printf("Saved %s (%dx%d)", *output, *width**scale, *height**scale)
}

// renderFrame advances the field by one step and draws it into target.
// The GPU path hands both to the accelerator in a single call; the CPU
// path steps and rasterizes directly.
func renderFrame(target points.Framebuffer, field *points.Field, params points.FrameParams, gpu bool) error {
	if gpu {
		return points.RenderField(target, field, params)
	}
	if params.StepDT > 0 {
		field.Step(params.StepDT)
	}
	return points.RasterizeField(target, field.Particles(), params.SizeOverride)
}

// printStats reports throughput with grouped thousands, so ten million
// particle-steps read as 10,000,000.
func printStats(count, frames int, elapsed time.Duration) {
	p := message.NewPrinter(language.English)
	perSec := float64(count) * float64(frames) / elapsed.Seconds()
	_, _ = p.Printf("%d particles, %d frames in %v (%.0f particle-steps/s)\n",
		count, frames, elapsed.Round(time.Millisecond), perSec)
}

// savePNG writes the framebuffer to path. A scale factor above one
// upscales with nearest-neighbor so individual sprites stay crisp.
func savePNG(path string, target points.Framebuffer, scale int) error {
	img := &image.RGBA{
		Pix:    target.Data,
		Stride: target.Stride,
		Rect:   image.Rect(0, 0, target.Width, target.Height),
	}

	out := image.Image(img)
	if scale > 1 {
		dst := image.NewRGBA(image.Rect(0, 0, target.Width*scale, target.Height*scale))
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
		out = dst
	}

	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	return png.Encode(f, out)
}
