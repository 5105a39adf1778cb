package m2

// Skin is a decoded companion view (".skin") file: it narrows a model's
// shared vertex array down to the subset a given view actually draws,
// grouped into sub-meshes and textured by texture units.
//
// Byte layout (magic "SKIN" + five (count,offset)/value fields) is not
// fixed by any authoritative source in this project's history; it
// follows the field set and widths documented for the companion view
// format and is internally consistent with the encoder side of this
// package's tests.
type Skin struct {
	VertexIndices []uint16 // index into the owning Model's Vertices
	Triangles     []uint16 // index into VertexIndices, 3 per face
	Submeshes     []Submesh
	TextureUnits  []TextureUnit
	BoneCountMax  uint32
}

// Submesh names a contiguous run of the triangle-index array plus the
// contiguous range of model vertices it touches.
type Submesh struct {
	VertexStart    uint16
	VertexCount    uint16
	TriangleStart  uint32
	TriangleCount  uint32
}

// TextureUnit binds one sub-mesh to a material and texture combination.
// Fields beyond SubmeshIndex, MaterialIndex and TextureComboIndex are
// retained for layout fidelity but not interpreted by this decoder.
type TextureUnit struct {
	Flags                      uint16
	ShaderID                   uint16
	SubmeshIndex               uint16
	MaterialIndex              uint16
	TextureComboIndex          uint16
	TextureCoordComboIndex     uint16
	TextureWeightComboIndex    uint16
	TextureTransformComboIndex uint16
}

const skinMagic = "SKIN"

func decodeSkin(raw []byte) (*Skin, error) {
	c := newCursor(raw)

	if len(raw) < 4 {
		return nil, ErrTruncated
	}
	if string(raw[0:4]) != skinMagic {
		return nil, ErrInvalidMagic
	}
	c.pos = 4

	vertexIndicesRef, err := c.arrayRef()
	if err != nil {
		return nil, err
	}
	trianglesRef, err := c.arrayRef()
	if err != nil {
		return nil, err
	}
	submeshesRef, err := c.arrayRef()
	if err != nil {
		return nil, err
	}
	textureUnitsRef, err := c.arrayRef()
	if err != nil {
		return nil, err
	}
	boneCountMax, err := c.u32()
	if err != nil {
		return nil, err
	}

	vertexIndices, err := decodeU16Array(vertexIndicesRef, raw)
	if err != nil {
		return nil, err
	}
	triangles, err := decodeU16Array(trianglesRef, raw)
	if err != nil {
		return nil, err
	}

	const submeshSize = 12 // vertexStart(2)+vertexCount(2)+triangleStart(4)+triangleCount(4)
	subB, err := submeshesRef.slice(raw, submeshSize)
	if err != nil {
		return nil, err
	}
	submeshes := make([]Submesh, submeshesRef.count)
	for i := range submeshes {
		rec := subB[i*submeshSize : i*submeshSize+submeshSize]
		submeshes[i] = Submesh{
			VertexStart:   uint16(rec[0]) | uint16(rec[1])<<8,
			VertexCount:   uint16(rec[2]) | uint16(rec[3])<<8,
			TriangleStart: leU32(rec[4:8]),
			TriangleCount: leU32(rec[8:12]),
		}
	}

	const tuSize = 16
	tuB, err := textureUnitsRef.slice(raw, tuSize)
	if err != nil {
		return nil, err
	}
	textureUnits := make([]TextureUnit, textureUnitsRef.count)
	for i := range textureUnits {
		rec := tuB[i*tuSize : i*tuSize+tuSize]
		u16 := func(off int) uint16 { return uint16(rec[off]) | uint16(rec[off+1])<<8 }
		textureUnits[i] = TextureUnit{
			Flags:                       u16(0),
			ShaderID:                    u16(2),
			SubmeshIndex:                u16(4),
			MaterialIndex:               u16(6),
			TextureComboIndex:           u16(8),
			TextureCoordComboIndex:      u16(10),
			TextureWeightComboIndex:     u16(12),
			TextureTransformComboIndex:  u16(14),
		}
	}

	return &Skin{
		VertexIndices: vertexIndices,
		Triangles:     triangles,
		Submeshes:     submeshes,
		TextureUnits:  textureUnits,
		BoneCountMax:  boneCountMax,
	}, nil
}
