package m2

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	md20Magic uint32 = 0x3032444D // "MD20"
	md21Magic uint32 = 0x3132444D // "MD21"

	flagUseTextureCombinerCombos = 0x8

	vertexSize = 48
)

// Texture is one entry of an M2 model's texture array: its logical
// filename (may be empty for a runtime-replaceable texture slot).
type Texture struct {
	Type     uint32
	Flags    uint32
	Filename string
}

// MaterialRecord is one entry of an M2 model's materials array.
type MaterialRecord struct {
	Flags     uint16
	BlendMode uint16
}

// Model is a fully decoded M2 payload plus, after Load, its assembled
// per-submesh geometry and resolved materials.
type Model struct {
	Version              uint32
	name                 string
	BoundingBoxMin       mgl32.Vec3
	BoundingBoxMax       mgl32.Vec3
	BoundingSphereRadius float32

	Vertices      []Vertex
	Textures      []Texture
	Materials     []MaterialRecord
	TextureCombos []uint16

	viewCount int

	// SkeletonName is the derived ".skel" companion name, following the
	// same derivation rule as a companion skin name but with a different
	// suffix. Populated by Load; never fetched or parsed, since animation
	// playback is out of scope.
	SkeletonName string

	// FileIDOverrides carries the raw payload of any recognized MD21
	// sub-chunk (SFID, TXID, SKID, BFID, AFID), reinterpreted as a u32
	// array, for a consumer that resolves companions by numeric file id
	// instead of by name. This decoder always uses name derivation itself.
	FileIDOverrides map[string][]uint32

	// Meshes holds the assembled submesh geometry and resolved materials
	// after Load; empty until Load succeeds.
	Meshes []Mesh

	// Diagnostics records recoverable issues (currently: missing or
	// undecodable textures referenced by a texture unit).
	Diagnostics []string
}

// Name returns the model's embedded name field, trimming a trailing NUL.
func (m *Model) Name() string { return m.name }

// ViewCount returns the number of companion skin files this model
// references, per its header's views field.
func (m *Model) ViewCount() int { return m.viewCount }

// Decode parses the MD20 or MD21-wrapped payload in raw into a Model.
// It performs no I/O: companion skins and textures are resolved
// separately by Load.
func Decode(raw []byte) (*Model, error) {
	if len(raw) < 4 {
		return nil, ErrTruncated
	}

	magic, err := newCursor(raw).u32()
	if err != nil {
		return nil, err
	}

	switch magic {
	case md20Magic:
		return decodePayload(raw, nil)
	case md21Magic:
		return decodeChunked(raw)
	default:
		return nil, ErrInvalidMagic
	}
}

func decodeChunked(raw []byte) (*Model, error) {
	var payload []byte
	overrides := make(map[string][]uint32)

	pos := 0
	for pos+8 <= len(raw) {
		tag := string(raw[pos : pos+4])
		size := int(leU32(raw[pos+4 : pos+8]))
		pos += 8

		if pos+size > len(raw) {
			return nil, ErrTruncated
		}
		chunk := raw[pos : pos+size]

		switch tag {
		case "MD21":
			payload = chunk
		case "SFID", "TXID", "SKID", "BFID", "AFID":
			overrides[tag] = decodeU32Array(chunk)
		}

		pos += size
	}

	if payload == nil {
		return nil, ErrInvalidMagic
	}

	return decodePayload(payload, overrides)
}

func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func decodeU32Array(b []byte) []uint32 {
	n := len(b) / 4
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = leU32(b[i*4 : i*4+4])
	}
	return out
}

func decodePayload(payload []byte, overrides map[string][]uint32) (*Model, error) {
	c := newCursor(payload)

	magic, err := c.u32()
	if err != nil {
		return nil, err
	}
	if magic != md20Magic {
		return nil, ErrInvalidMagic
	}

	version, err := c.u32()
	if err != nil {
		return nil, err
	}

	nameRef, err := c.arrayRef()
	if err != nil {
		return nil, err
	}
	flags, err := c.u32()
	if err != nil {
		return nil, err
	}

	// Order below matches the MD20 field layout exactly, count-then-offset.
	var refs [24]arrayRef

	if refs[0], err = c.arrayRef(); err != nil { // globalLoops
		return nil, err
	}
	if refs[1], err = c.arrayRef(); err != nil { // animations
		return nil, err
	}
	if refs[2], err = c.arrayRef(); err != nil { // animationLookup
		return nil, err
	}
	if refs[3], err = c.arrayRef(); err != nil { // bones
		return nil, err
	}
	if refs[4], err = c.arrayRef(); err != nil { // boneLookup
		return nil, err
	}

	verticesRef, err := c.arrayRef()
	if err != nil {
		return nil, err
	}

	viewCount, err := c.u32()
	if err != nil {
		return nil, err
	}

	if refs[5], err = c.arrayRef(); err != nil { // colors
		return nil, err
	}
	texturesRef, err := c.arrayRef()
	if err != nil {
		return nil, err
	}
	if refs[6], err = c.arrayRef(); err != nil { // textureWeights
		return nil, err
	}
	if refs[7], err = c.arrayRef(); err != nil { // textureTransforms
		return nil, err
	}
	if refs[8], err = c.arrayRef(); err != nil { // replaceableTextureLookups
		return nil, err
	}
	materialsRef, err := c.arrayRef()
	if err != nil {
		return nil, err
	}
	if refs[9], err = c.arrayRef(); err != nil { // boneCombos
		return nil, err
	}
	textureCombosRef, err := c.arrayRef()
	if err != nil {
		return nil, err
	}
	if refs[10], err = c.arrayRef(); err != nil { // textureCoordCombos
		return nil, err
	}
	if refs[11], err = c.arrayRef(); err != nil { // transparencyLookups
		return nil, err
	}
	if refs[12], err = c.arrayRef(); err != nil { // textureTransformLookups
		return nil, err
	}

	bbox, err := readBox(c)
	if err != nil {
		return nil, err
	}
	bsRadius, err := c.f32()
	if err != nil {
		return nil, err
	}
	_, err = readBox(c) // collision box, unused by this decoder
	if err != nil {
		return nil, err
	}
	if _, err = c.f32(); err != nil { // collision sphere radius
		return nil, err
	}

	// refs[13..23]: collisionIndices, collisionPositions, collisionNormals,
	// attachments, attachmentLookup, events, lights, cameras, cameraLookup,
	// ribbonEmitters, particleEmitters.
	for i := 13; i <= 23; i++ {
		if refs[i], err = c.arrayRef(); err != nil {
			return nil, err
		}
	}

	if flags&flagUseTextureCombinerCombos != 0 {
		if _, err = c.arrayRef(); err != nil { // textureCombinerCombos, unused
			return nil, err
		}
	}

	name, err := readNulString(nameRef, payload)
	if err != nil {
		return nil, err
	}

	vertices, err := decodeVertices(verticesRef, payload)
	if err != nil {
		return nil, err
	}

	textures, err := decodeTextures(texturesRef, payload)
	if err != nil {
		return nil, err
	}

	materials, err := decodeMaterials(materialsRef, payload)
	if err != nil {
		return nil, err
	}

	textureCombos, err := decodeU16Array(textureCombosRef, payload)
	if err != nil {
		return nil, err
	}

	return &Model{
		Version:              version,
		name:                 name,
		BoundingBoxMin:       bbox[0],
		BoundingBoxMax:       bbox[1],
		BoundingSphereRadius: bsRadius,
		Vertices:             vertices,
		Textures:             textures,
		Materials:            materials,
		TextureCombos:        textureCombos,
		viewCount:            int(viewCount),
		FileIDOverrides:      overrides,
	}, nil
}

func readBox(c *cursor) ([2]mgl32.Vec3, error) {
	var box [2]mgl32.Vec3
	for i := 0; i < 2; i++ {
		x, err := c.f32()
		if err != nil {
			return box, err
		}
		y, err := c.f32()
		if err != nil {
			return box, err
		}
		z, err := c.f32()
		if err != nil {
			return box, err
		}
		box[i] = mgl32.Vec3{x, y, z}
	}
	return box, nil
}

func readNulString(ref arrayRef, payload []byte) (string, error) {
	if ref.count == 0 {
		return "", nil
	}
	b, err := ref.slice(payload, 1)
	if err != nil {
		return "", err
	}
	if len(b) > 0 && b[len(b)-1] == 0 {
		b = b[:len(b)-1]
	}
	if !isValidUTF8(b) {
		return "", ErrInvalidUTF8
	}
	return string(b), nil
}

func isValidUTF8(b []byte) bool {
	return strings.ToValidUTF8(string(b), "�") == string(b)
}

func decodeTextures(ref arrayRef, payload []byte) ([]Texture, error) {
	const recSize = 16 // type(4) + flags(4) + filename arrayRef(8)
	b, err := ref.slice(payload, recSize)
	if err != nil {
		return nil, err
	}

	out := make([]Texture, ref.count)
	for i := range out {
		rec := b[i*recSize : i*recSize+recSize]
		typ := leU32(rec[0:4])
		flags := leU32(rec[4:8])
		nameRef := arrayRef{count: leU32(rec[8:12]), offset: leU32(rec[12:16])}

		name, err := readNulString(nameRef, payload)
		if err != nil {
			return nil, err
		}

		out[i] = Texture{Type: typ, Flags: flags, Filename: name}
	}
	return out, nil
}

func decodeMaterials(ref arrayRef, payload []byte) ([]MaterialRecord, error) {
	const recSize = 4 // flags(2) + blendMode(2)
	b, err := ref.slice(payload, recSize)
	if err != nil {
		return nil, err
	}

	out := make([]MaterialRecord, ref.count)
	for i := range out {
		rec := b[i*recSize : i*recSize+recSize]
		out[i] = MaterialRecord{
			Flags:     uint16(rec[0]) | uint16(rec[1])<<8,
			BlendMode: uint16(rec[2]) | uint16(rec[3])<<8,
		}
	}
	return out, nil
}

func decodeU16Array(ref arrayRef, payload []byte) ([]uint16, error) {
	b, err := ref.slice(payload, 2)
	if err != nil {
		return nil, err
	}
	out := make([]uint16, ref.count)
	for i := range out {
		out[i] = uint16(b[i*2]) | uint16(b[i*2+1])<<8
	}
	return out, nil
}
