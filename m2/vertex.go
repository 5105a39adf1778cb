package m2

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is one entry of an M2 model's shared vertex array, already
// transformed into the engine's right-handed, Z-up coordinate system.
type Vertex struct {
	Position    mgl32.Vec3
	BoneWeights [4]uint8
	BoneIndices [4]uint8
	Normal      mgl32.Vec3
	UV0         mgl32.Vec2
	UV1         mgl32.Vec2
}

// fixupCoords converts a raw model-space vector into the engine's
// coordinate system: (x, y, z) -> (x, z, -y). Applied exactly once, at
// vertex deserialization, to both positions and normals.
func fixupCoords(x, y, z float32) mgl32.Vec3 {
	return mgl32.Vec3{x, z, -y}
}

func decodeVertices(ref arrayRef, payload []byte) ([]Vertex, error) {
	b, err := ref.slice(payload, vertexSize)
	if err != nil {
		return nil, err
	}

	out := make([]Vertex, ref.count)
	for i := range out {
		rec := b[i*vertexSize : i*vertexSize+vertexSize]

		px := leF32(rec[0:4])
		py := leF32(rec[4:8])
		pz := leF32(rec[8:12])

		var weights, indices [4]uint8
		copy(weights[:], rec[12:16])
		copy(indices[:], rec[16:20])

		nx := leF32(rec[20:24])
		ny := leF32(rec[24:28])
		nz := leF32(rec[28:32])

		out[i] = Vertex{
			Position:    fixupCoords(px, py, pz),
			BoneWeights: weights,
			BoneIndices: indices,
			Normal:      fixupCoords(nx, ny, nz),
			UV0:         mgl32.Vec2{leF32(rec[32:36]), leF32(rec[36:40])},
			UV1:         mgl32.Vec2{leF32(rec[40:44]), leF32(rec[44:48])},
		}
	}
	return out, nil
}

func leF32(b []byte) float32 {
	return math.Float32frombits(leU32(b))
}
