package m2

import (
	"encoding/binary"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFetcher serves fixed byte slices by name, for tests that exercise
// Load's companion-skin and texture resolution without any archive.
type fakeFetcher struct {
	files map[string][]byte
}

func (f *fakeFetcher) ReadBytes(name string) ([]byte, error) {
	b, ok := f.files[name]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", name)
	}
	return b, nil
}

func putU32(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:off+4], v) }
func putF32(b []byte, off int, v float32) {
	putU32(b, off, math.Float32bits(v))
}

// buildMD20 assembles a minimal legacy MD20 payload with one vertex, one
// texture, one material and one texture combo entry. An empty textureName
// leaves the texture's filename array empty (count 0), exercising the
// no-texture material path.
func buildMD20(t *testing.T, name, textureName string, views uint32) []byte {
	t.Helper()

	const headerFixedSize = 4 + 4 + 8 + 4 + // magic,version,name ref,flags
		8*5 + // globalLoops..boneLookup
		8 + // vertices
		4 + // viewCount
		8 + // colors
		8 + // textures
		8*3 + // textureWeights,textureTransforms,replaceableTextureLookups
		8 + // materials
		8 + // boneCombos
		8 + // textureCombos
		8*3 + // textureCoordCombos,transparencyLookups,textureTransformLookups
		4*3*2 + 4 + 4*3*2 + 4 + // bbox,bsRadius,collisionBox,collisionSphereRadius
		8*11 // collisionIndices..particleEmitters

	nameBytes := append([]byte(name), 0)
	vertexData := make([]byte, vertexSize)
	putF32(vertexData, 0, 1)
	putF32(vertexData, 4, 2)
	putF32(vertexData, 8, 3)
	vertexData[12] = 255 // bone weight 0
	vertexData[16] = 0   // bone index 0
	putF32(vertexData, 20, 0)
	putF32(vertexData, 24, 1)
	putF32(vertexData, 28, 0)
	putF32(vertexData, 32, 0.25)
	putF32(vertexData, 36, 0.75)

	var texNameBytes []byte
	if textureName != "" {
		texNameBytes = append([]byte(textureName), 0)
	}

	const texRecSize = 16
	textureData := make([]byte, texRecSize)
	// type=0, flags=0, filename ref filled below once offsets known

	materialData := []byte{0, 0, byte(BlendAlphaKey), 0} // flags=0, blendMode=1

	textureComboData := []byte{0, 0} // one u16: index 0

	buf := make([]byte, headerFixedSize)
	pos := 0
	putU32(buf, pos, md20Magic)
	pos += 4
	putU32(buf, pos, 0) // version
	pos += 4

	nameOff := uint32(len(buf))
	buf = append(buf, nameBytes...)

	putU32(buf, pos, uint32(len(nameBytes)))
	putU32(buf, pos+4, nameOff)
	pos += 8

	putU32(buf, pos, 0) // flags
	pos += 4

	zeroRef := func() { putU32(buf, pos, 0); putU32(buf, pos+4, 0); pos += 8 }
	for i := 0; i < 5; i++ {
		zeroRef() // globalLoops..boneLookup
	}

	vertOff := uint32(len(buf))
	buf = append(buf, vertexData...)
	putU32(buf, pos, 1)
	putU32(buf, pos+4, vertOff)
	pos += 8

	putU32(buf, pos, views) // viewCount
	pos += 4

	zeroRef() // colors

	texOff := uint32(len(buf))
	buf = append(buf, textureData...)
	putU32(buf, pos, 1)
	putU32(buf, pos+4, texOff)
	pos += 8

	for i := 0; i < 3; i++ {
		zeroRef() // textureWeights,textureTransforms,replaceableTextureLookups
	}

	matOff := uint32(len(buf))
	buf = append(buf, materialData...)
	putU32(buf, pos, 1)
	putU32(buf, pos+4, matOff)
	pos += 8

	zeroRef() // boneCombos

	comboOff := uint32(len(buf))
	buf = append(buf, textureComboData...)
	putU32(buf, pos, 1)
	putU32(buf, pos+4, comboOff)
	pos += 8

	for i := 0; i < 3; i++ {
		zeroRef() // textureCoordCombos,transparencyLookups,textureTransformLookups
	}

	for i := 0; i < 6; i++ { // bbox min,max
		putF32(buf, pos, 0)
		pos += 4
	}
	putF32(buf, pos, 1) // bsRadius
	pos += 4
	for i := 0; i < 6; i++ { // collision box
		putF32(buf, pos, 0)
		pos += 4
	}
	putF32(buf, pos, 1) // collision sphere radius
	pos += 4

	for i := 0; i < 11; i++ {
		zeroRef() // collisionIndices..particleEmitters
	}

	// Now patch the texture record's filename ref, placed after all fixed
	// fields since it must itself live in the growing buffer.
	if len(texNameBytes) > 0 {
		texNameOff := uint32(len(buf))
		buf = append(buf, texNameBytes...)
		binary.LittleEndian.PutUint32(buf[texOff+8:texOff+12], uint32(len(texNameBytes)))
		binary.LittleEndian.PutUint32(buf[texOff+12:texOff+16], texNameOff)
	}

	return buf
}

// buildSkin assembles a minimal companion view with one vertex index, one
// degenerate triangle, one sub-mesh and one texture unit pointing at
// material 0 / texture-combo 0.
func buildSkin(t *testing.T) []byte {
	t.Helper()

	const headerSize = 4 + 8*4 + 4 // magic + 4 array refs + boneCountMax

	vertexIndexData := []byte{0, 0} // one u16: 0
	triangleData := []byte{0, 0, 0, 0, 0, 0} // three u16, all 0

	const submeshSize = 12
	submeshData := make([]byte, submeshSize)
	// VertexStart=0,VertexCount=1
	submeshData[2] = 1
	// TriangleStart=0
	// TriangleCount=3
	binary.LittleEndian.PutUint32(submeshData[8:12], 3)

	const tuSize = 16
	tuData := make([]byte, tuSize)
	// Flags, ShaderID zero; SubmeshIndex=0 (offset4); MaterialIndex=0 (offset6);
	// TextureComboIndex=0 (offset8); remaining zero.

	buf := make([]byte, headerSize)
	copy(buf[0:4], skinMagic)
	pos := 4

	viOff := uint32(len(buf))
	buf = append(buf, vertexIndexData...)
	putU32(buf, pos, 1)
	putU32(buf, pos+4, viOff)
	pos += 8

	triOff := uint32(len(buf))
	buf = append(buf, triangleData...)
	putU32(buf, pos, 3)
	putU32(buf, pos+4, triOff)
	pos += 8

	subOff := uint32(len(buf))
	buf = append(buf, submeshData...)
	putU32(buf, pos, 1)
	putU32(buf, pos+4, subOff)
	pos += 8

	tuOff := uint32(len(buf))
	buf = append(buf, tuData...)
	putU32(buf, pos, 1)
	putU32(buf, pos+4, tuOff)
	pos += 8

	putU32(buf, pos, 1) // boneCountMax
	pos += 4

	return buf
}

func TestDecodeLegacyMinimal(t *testing.T) {
	raw := buildMD20(t, "Creature\\Test\\Test.mdx", "tex.blp", 1)

	m, err := Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, "Creature\\Test\\Test.mdx", m.Name())
	require.Len(t, m.Vertices, 1)
	require.Len(t, m.Textures, 1)
	assert.Equal(t, "tex.blp", m.Textures[0].Filename)
	require.Len(t, m.Materials, 1)
	assert.Equal(t, BlendAlphaKey, BlendMode(m.Materials[0].BlendMode))
	assert.Equal(t, 1, m.ViewCount())
}

func TestCoordinateFixup(t *testing.T) {
	raw := buildMD20(t, "model", "tex.blp", 1)

	m, err := Decode(raw)
	require.NoError(t, err)

	require.Len(t, m.Vertices, 1)
	// source (1,2,3) -> (x,z,-y) = (1,3,-2)
	assert.InDelta(t, 1, m.Vertices[0].Position.X(), 1e-6)
	assert.InDelta(t, 3, m.Vertices[0].Position.Y(), 1e-6)
	assert.InDelta(t, -2, m.Vertices[0].Position.Z(), 1e-6)
	// normal source (0,1,0) -> (0,0,-1)
	assert.InDelta(t, 0, m.Vertices[0].Normal.X(), 1e-6)
	assert.InDelta(t, 0, m.Vertices[0].Normal.Y(), 1e-6)
	assert.InDelta(t, -1, m.Vertices[0].Normal.Z(), 1e-6)
}

func TestLoadAssemblesMeshAndMaterial(t *testing.T) {
	raw := buildMD20(t, "Creature\\Test\\Test.mdx", "tex.blp", 1)
	skin := buildSkin(t)

	fetch := &fakeFetcher{files: map[string][]byte{
		"Creature\\Test\\Test00.skin": skin,
	}}

	m, err := Load("Creature\\Test\\Test.m2", raw, fetch, nil)
	require.NoError(t, err)

	require.Len(t, m.Meshes, 1)
	mesh := m.Meshes[0]
	require.Len(t, mesh.Indices, 3)
	for _, idx := range mesh.Indices {
		assert.Less(t, int(idx), len(m.Vertices))
	}
	require.NotNil(t, mesh.Material)
	assert.Equal(t, "tex.blp", mesh.Material.TextureName)
	// texture fetch failed (not registered in fakeFetcher), so Texture
	// stays nil and a diagnostic is recorded instead of an error.
	assert.Nil(t, mesh.Material.Texture)
	assert.Len(t, m.Diagnostics, 1)
}

func TestLoadEmptyTextureNameSkipsFetch(t *testing.T) {
	raw := buildMD20(t, "model", "", 1)
	skin := buildSkin(t)

	fetch := &fakeFetcher{files: map[string][]byte{
		"mode.skin": skin,
	}}

	// name is 4 chars "mode", stripping 3 leaves "m", so skin name becomes
	// "m00.skin"; register that instead.
	fetch.files["m00.skin"] = skin

	m, err := Load("mode", raw, fetch, nil)
	require.NoError(t, err)
	require.Len(t, m.Meshes, 1)
	assert.Equal(t, "", m.Meshes[0].Material.TextureName)
	assert.Nil(t, m.Meshes[0].Material.Texture)
	assert.Empty(t, m.Diagnostics)
}

func TestLoadMissingSkinIsFatal(t *testing.T) {
	raw := buildMD20(t, "model", "tex.blp", 1)
	fetch := &fakeFetcher{files: map[string][]byte{}}

	_, err := Load("model", raw, fetch, nil)
	assert.Error(t, err)
}

func TestSkeletonNameDerivation(t *testing.T) {
	raw := buildMD20(t, "model", "tex.blp", 0)
	m, err := Decode(raw)
	require.NoError(t, err)

	fetch := &fakeFetcher{files: map[string][]byte{}}
	loaded, err := Load("Creature\\Foo\\Foo.m2", raw, fetch, nil)
	require.NoError(t, err)
	assert.Equal(t, "Creature\\Foo\\Foo.skel", loaded.SkeletonName)
	_ = m
}

func TestDecodeChunkedWrapper(t *testing.T) {
	payload := buildMD20(t, "model", "tex.blp", 0)

	var buf []byte
	appendChunk := func(tag string, data []byte) {
		buf = append(buf, []byte(tag)...)
		sizeBuf := make([]byte, 4)
		binary.LittleEndian.PutUint32(sizeBuf, uint32(len(data)))
		buf = append(buf, sizeBuf...)
		buf = append(buf, data...)
	}
	appendChunk("MD21", payload)
	appendChunk("SFID", []byte{1, 0, 0, 0, 2, 0, 0, 0})

	m, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, "model", m.Name())
	require.Contains(t, m.FileIDOverrides, "SFID")
	assert.Equal(t, []uint32{1, 2}, m.FileIDOverrides["SFID"])
}

func TestDecodeInvalidMagic(t *testing.T) {
	_, err := Decode([]byte("NOPE"))
	assert.ErrorIs(t, err, ErrInvalidMagic)
}

func TestDecodeTruncated(t *testing.T) {
	_, err := Decode([]byte{0x01, 0x02})
	assert.ErrorIs(t, err, ErrTruncated)
}
