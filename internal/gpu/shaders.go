//go:build !nogpu

package gpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

// Embedded WGSL shader sources.
// These are compiled at build time using go:embed directives.

//go:embed shaders/sprite.wgsl
var spriteShaderSource string

//go:embed shaders/update.wgsl
var updateShaderSource string

// SpriteShaderSource returns the WGSL source for the point sprite shader.
func SpriteShaderSource() string { return spriteShaderSource }

// UpdateShaderSource returns the WGSL source for the integration compute shader.
func UpdateShaderSource() string { return updateShaderSource }

// compileToSPIRV compiles WGSL source to SPIR-V words for backends that
// reject WGSL compute modules. SPIR-V is little-endian 32-bit words.
func compileToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}

	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
