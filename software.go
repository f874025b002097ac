package points

import (
	"math"
	"sync"

	"github.com/gogpu/points/internal/parallel"
)

// bandParallelThreshold is the pixel count above which the rasterizer splits
// the frame into row bands across the worker pool.
const bandParallelThreshold = 1 << 16

var (
	rasterPoolOnce sync.Once
	rasterPool     *parallel.WorkerPool
)

// sharedRasterPool returns the package-wide pool for band-parallel
// rasterization. Created on first use and kept for the process lifetime.
func sharedRasterPool() *parallel.WorkerPool {
	rasterPoolOnce.Do(func() {
		rasterPool = parallel.NewWorkerPool(0)
	})
	return rasterPool
}

// renderFieldCPU is the fallback path behind RenderField.
func renderFieldCPU(target Framebuffer, ps []Particle, sizeOverride bool) error {
	return RasterizeField(target, ps, sizeOverride)
}

// RasterizeField renders the particles into the target on the CPU: the frame
// is cleared to opaque black, then every particle runs through the vertex
// transform and its point sprite is filled with the constant color.
//
// With sizeOverride set, each sprite covers the pixels whose centers fall in
// the PointSize square centered on the transformed position, matching the
// GPU quad rasterization rule. Without it the size control value is ignored
// and each point lights the single pixel containing its position.
//
// Particles whose transformed position is non-finite rasterize nothing; that
// is the rasterizer's clipping rule, the transform itself passed the values
// through.
func RasterizeField(target Framebuffer, ps []Particle, sizeOverride bool) error {
	if err := validateTarget(target); err != nil {
		return err
	}

	if target.Width*target.Height >= bandParallelThreshold {
		pool := sharedRasterPool()
		pool.ForSpans(target.Height, func(yMin, yMax int) {
			rasterizeBand(target, ps, yMin, yMax, sizeOverride)
		})
		return nil
	}

	rasterizeBand(target, ps, 0, target.Height, sizeOverride)
	return nil
}

// rasterizeBand clears and draws the rows [yMin, yMax). Bands are disjoint,
// so concurrent bands never touch the same byte.
func rasterizeBand(target Framebuffer, ps []Particle, yMin, yMax int, sizeOverride bool) {
	for y := yMin; y < yMax; y++ {
		row := target.Data[y*target.Stride : y*target.Stride+target.Width*4]
		for x := 0; x < len(row); x += 4 {
			row[x+0] = 0
			row[x+1] = 0
			row[x+2] = 0
			row[x+3] = 255
		}
	}

	fw := float64(target.Width)
	fh := float64(target.Height)

	for i := range ps {
		v := TransformVertex(ps[i].Pos)

		cx := float64(v.Clip[0])
		cy := float64(v.Clip[1])
		if math.IsNaN(cx) || math.IsInf(cx, 0) || math.IsNaN(cy) || math.IsInf(cy, 0) {
			continue
		}

		// Viewport transform: clip space is [-1, 1] with Y up, pixels have
		// Y down.
		px := (cx + 1) * 0.5 * fw
		py := (1 - cy) * 0.5 * fh

		// The constant interpolant, premultiplied at full coverage.
		r := uint8(v.Color[0]*255 + 0.5)
		g := uint8(v.Color[1]*255 + 0.5)
		b := uint8(v.Color[2]*255 + 0.5)

		if !sizeOverride {
			// Point covers the single pixel containing its position.
			ix := int(math.Floor(px))
			iy := int(math.Floor(py))
			if ix < 0 || ix >= target.Width || iy < yMin || iy >= yMax {
				continue
			}
			off := iy*target.Stride + ix*4
			target.Data[off+0] = r
			target.Data[off+1] = g
			target.Data[off+2] = b
			target.Data[off+3] = 255
			continue
		}

		// Sprite quad covers pixel centers in the half-open PointSize square.
		half := float64(v.Size) / 2
		minX := int(math.Ceil(px - half - 0.5))
		maxX := int(math.Ceil(px + half - 0.5))
		minY := int(math.Ceil(py - half - 0.5))
		maxY := int(math.Ceil(py + half - 0.5))

		minX = max(minX, 0)
		maxX = min(maxX, target.Width)
		minY = max(minY, yMin)
		maxY = min(maxY, yMax)

		for y := minY; y < maxY; y++ {
			off := y*target.Stride + minX*4
			for x := minX; x < maxX; x++ {
				target.Data[off+0] = r
				target.Data[off+1] = g
				target.Data[off+2] = b
				target.Data[off+3] = 255
				off += 4
			}
		}
	}
}
