package block

import "strings"

// Kind is the block type tag. The set is closed; per-kind behaviour lives in
// the switch-based helpers below instead of per-block objects.
type Kind uint8

const (
	Air Kind = iota
	Dirt
	Grass
	Stone
	Sand
	Glass

	numKinds
)

var kindNames = [numKinds]string{"AIR", "DIRT", "GRASS", "STONE", "SAND", "GLASS"}

func (k Kind) String() string {
	if k >= numKinds {
		return "UNKNOWN"
	}
	return kindNames[k]
}

func (k Kind) Valid() bool { return k < numKinds }

func ParseKind(s string) (Kind, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return Air, false
}

const MaxLight = 15

// Meta byte layout:
//
//	bits 0-3  light intensity (0..15)
//	bit  4    secondary axis (0..1)
//	bits 5-7  primary axis (0..5)
const (
	lightMask      = 0x0F
	secondaryShift = 4
	secondaryMask  = 0x01 << secondaryShift
	primaryShift   = 5
	primaryMask    = 0x07 << primaryShift

	MaxSecondary = 1
)

// Block is one voxel: a kind plus its packed metadata byte. Two blocks with
// the same kind but different light or orientation are different values.
type Block struct {
	Kind Kind
	Meta uint8
}

func New(k Kind) Block { return Block{Kind: k} }

func (b Block) Light() uint8 { return b.Meta & lightMask }

func (b Block) WithLight(l uint8) Block {
	if l > MaxLight {
		assertf(false, "light %d out of range", l)
		l = MaxLight
	}
	b.Meta = b.Meta&^lightMask | l
	return b
}

// Primary is the face the block's up vector points to.
func (b Block) Primary() Face {
	p := Face((b.Meta & primaryMask) >> primaryShift)
	if p > Back {
		assertf(false, "primary axis %d out of range", p)
		return Top
	}
	return p
}

func (b Block) Secondary() uint8 { return (b.Meta & secondaryMask) >> secondaryShift }

func (b Block) WithOrientation(primary Face, secondary uint8) Block {
	if primary > Back {
		assertf(false, "primary axis %d out of range", primary)
		primary = Top
	}
	if secondary > MaxSecondary {
		assertf(false, "secondary axis %d out of range", secondary)
		secondary = MaxSecondary
	}
	b.Meta = b.Meta&lightMask | uint8(primary)<<primaryShift | secondary<<secondaryShift
	return b
}

func (b Block) IsAir() bool { return b.Kind == Air }

// IsTransparent reports partial transparency: light passes and faces behind
// it are visible.
func (b Block) IsTransparent() bool {
	switch b.Kind {
	case Air, Glass:
		return true
	default:
		return false
	}
}

func (b Block) DoesNotRender() bool {
	switch b.Kind {
	case Air:
		return true
	default:
		return false
	}
}

func (b Block) IsUnbreakable() bool {
	switch b.Kind {
	case Air:
		return true
	default:
		return false
	}
}

func (b Block) IsFluid() bool { return false }

func (b Block) ID() uint64 { return uint64(b.Kind) }

func (b Block) String() string { return b.Kind.String() }

// TextureNames returns the base, overlay and detail texture names for a face.
// Empty names mean "no layer".
func TextureNames(b Block, face Face) (base, overlay, detail string) {
	switch b.Kind {
	case Dirt:
		return "dirt", "", ""
	case Grass:
		if RotateFace(b, face) == Top {
			return "grass-top", "", ""
		}
		return "grass-side", "", ""
	case Stone:
		return "stone", "", ""
	case Sand:
		return "sand", "", ""
	case Glass:
		return "glass", "", ""
	default:
		return "", "", ""
	}
}
