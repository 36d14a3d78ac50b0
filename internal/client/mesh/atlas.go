package mesh

import "voxelgrid.ai/internal/sim/world/block"

// TextureAtlas resolves texture names to array layers. An empty name means
// "no layer" and maps to 0.
type TextureAtlas interface {
	Layer(name string) uint8
}

// StaticAtlas assigns layers in list order, starting at 1.
type StaticAtlas map[string]uint8

func NewStaticAtlas(names ...string) StaticAtlas {
	a := make(StaticAtlas, len(names))
	for i, n := range names {
		a[n] = uint8(i + 1)
	}
	return a
}

func (a StaticAtlas) Layer(name string) uint8 {
	if name == "" {
		return 0
	}
	return a[name]
}

// DefaultTextureNames are the layers every client atlas carries.
var DefaultTextureNames = []string{"dirt", "grass-top", "grass-side", "stone", "sand", "glass"}

func textureLayers(atlas TextureAtlas, b block.Block, face block.Face) [3]uint8 {
	base, overlay, detail := block.TextureNames(b, face)
	return [3]uint8{atlas.Layer(base), atlas.Layer(overlay), atlas.Layer(detail)}
}
