package m2

import "github.com/davidrios/wow-vr/blp"

// BlendMode mirrors an M2 material record's blend-mode field. Only the
// values needed to distinguish opaque from alpha-tested geometry are
// named; any other value is carried through uninterpreted.
type BlendMode uint16

const (
	BlendOpaque   BlendMode = 0
	BlendAlphaKey BlendMode = 1
)

// AlphaMode is the resolved alpha-test behavior for a material.
type AlphaMode int

const (
	AlphaOpaque AlphaMode = iota
	AlphaMask
)

// CullMode is the resolved back-face culling behavior for a material.
type CullMode int

const (
	CullBack CullMode = iota
	CullNone
)

const materialFlagNoBackfaceCulling = 0x4

// Material is a fully resolved, render-ready material: its texture (if
// any was fetchable and decodable), blend behavior and cull mode.
type Material struct {
	BlendMode   BlendMode
	TextureName string
	Texture     *blp.Image
	AlphaMode   AlphaMode
	CullMode    CullMode
}

// buildMaterial resolves a texture unit's material and texture-combo
// indices into the material's static (non-I/O) fields. Texture decoding
// is filled in separately by Load, since it requires fetching bytes.
func buildMaterial(m *Model, tu TextureUnit) *Material {
	var mode BlendMode
	var flags uint16
	if int(tu.MaterialIndex) < len(m.Materials) {
		rec := m.Materials[tu.MaterialIndex]
		mode = BlendMode(rec.BlendMode)
		flags = rec.Flags
	}

	var texName string
	if int(tu.TextureComboIndex) < len(m.TextureCombos) {
		texIdx := m.TextureCombos[tu.TextureComboIndex]
		if int(texIdx) < len(m.Textures) {
			texName = m.Textures[texIdx].Filename
		}
	}

	alphaMode := AlphaOpaque
	if mode == BlendAlphaKey {
		alphaMode = AlphaMask
	}

	cull := CullBack
	if flags&materialFlagNoBackfaceCulling != 0 {
		cull = CullNone
	}

	return &Material{
		BlendMode:   mode,
		TextureName: texName,
		AlphaMode:   alphaMode,
		CullMode:    cull,
	}
}
