//go:build !nogpu

package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// sampleCount is the sample count for all sprite pipelines. Sprite coverage
// is defined at pixel centers, so targets are single-sampled.
const sampleCount = 1

// frameTextures holds the offscreen color target for sprite rendering.
//
//   - Color: 1x sample, BGRA8Unorm, RenderAttachment | CopySrc
//
// CopySrc usage allows the frame to be copied into a staging buffer for
// host readback after the render pass.
type frameTextures struct {
	colorTex  hal.Texture
	colorView hal.TextureView
	width     uint32
	height    uint32
}

// ensureTextures creates or recreates the color target if the requested
// dimensions differ from the current size. If dimensions match and the
// texture exists, this is a no-op. The labelPrefix parameter distinguishes
// GPU debug labels between different owners.
func (ft *frameTextures) ensureTextures(device hal.Device, w, h uint32, labelPrefix string) error {
	if ft.width == w && ft.height == h && ft.colorTex != nil {
		return nil
	}
	ft.destroyTextures(device)

	size := hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1}

	colorTex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         labelPrefix + "_color",
		Size:          size,
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create color texture: %w", err)
	}
	ft.colorTex = colorTex

	colorView, err := device.CreateTextureView(colorTex, &hal.TextureViewDescriptor{
		Label: labelPrefix + "_color_view",
	})
	if err != nil {
		ft.destroyTextures(device)
		return fmt.Errorf("create color view: %w", err)
	}
	ft.colorView = colorView

	ft.width = w
	ft.height = h
	return nil
}

// destroyTextures releases all texture resources and resets dimensions.
func (ft *frameTextures) destroyTextures(device hal.Device) {
	if ft.colorView != nil {
		device.DestroyTextureView(ft.colorView)
		ft.colorView = nil
	}
	if ft.colorTex != nil {
		device.DestroyTexture(ft.colorTex)
		ft.colorTex = nil
	}
	ft.width = 0
	ft.height = 0
}
