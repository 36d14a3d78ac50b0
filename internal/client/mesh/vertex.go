package mesh

import (
	"encoding/binary"

	"voxelgrid.ai/internal/sim/world/block"
)

// SurfaceVertex is the packed per-vertex format consumed by the shader.
//
//	D0: x | y<<5 | z<<10 | face<<15 | nth<<18
//	D1: base | overlay<<8 | detail<<16
//	Illumination: r | g<<8 | b<<16 | sun<<24
type SurfaceVertex struct {
	D0           uint32
	D1           uint32
	Illumination uint32
}

const VertexSize = 12

func PackVertex(pos [3]uint32, face block.Face, nth uint32, tex [3]uint8, illum uint32) SurfaceVertex {
	return SurfaceVertex{
		D0:           pos[0]&0x1f | (pos[1]&0x1f)<<5 | (pos[2]&0x1f)<<10 | uint32(face&0x7)<<15 | (nth&0x3)<<18,
		D1:           uint32(tex[0]) | uint32(tex[1])<<8 | uint32(tex[2])<<16,
		Illumination: illum,
	}
}

func (v SurfaceVertex) Position() [3]uint32 {
	return [3]uint32{v.D0 & 0x1f, (v.D0 >> 5) & 0x1f, (v.D0 >> 10) & 0x1f}
}

func (v SurfaceVertex) Face() block.Face { return block.Face((v.D0 >> 15) & 0x7) }

func (v SurfaceVertex) Nth() uint32 { return (v.D0 >> 18) & 0x3 }

// Illumination packs the light of the block a face looks into. Coloured
// light is not modelled yet, so only the sun channel is set.
func Illumination(b block.Block) uint32 {
	var r, g, bl uint32
	sun := uint32(b.Light())
	return r | g<<8 | bl<<16 | sun<<24
}

type Geometry struct {
	Vertices   []SurfaceVertex
	Indices    []uint32
	IndexCount uint32
}

func (g Geometry) Empty() bool { return g.IndexCount == 0 }

// VertexBytes lays the vertices out little-endian, 12 bytes each.
func (g Geometry) VertexBytes() []byte {
	out := make([]byte, 0, len(g.Vertices)*VertexSize)
	for _, v := range g.Vertices {
		out = binary.LittleEndian.AppendUint32(out, v.D0)
		out = binary.LittleEndian.AppendUint32(out, v.D1)
		out = binary.LittleEndian.AppendUint32(out, v.Illumination)
	}
	return out
}

func (g Geometry) IndexBytes() []byte {
	out := make([]byte, 0, len(g.Indices)*4)
	for _, i := range g.Indices {
		out = binary.LittleEndian.AppendUint32(out, i)
	}
	return out
}
