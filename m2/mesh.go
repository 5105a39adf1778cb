package m2

// Mesh is one sub-mesh of one companion view, fully assembled: an index
// buffer into the owning Model's Vertices, and its resolved material.
type Mesh struct {
	ViewIndex    int
	SubmeshIndex int
	Indices      []uint16 // index into Model.Vertices
	Material     *Material
}

// buildMeshes assembles every sub-mesh of skin into Mesh values, resolving
// materials through a per-(materialIndex,textureComboIndex) cache so that
// identical texture units share one Material instance, and through
// materialCache so repeated texture units across calls also share one.
func buildMeshes(m *Model, skin *Skin, viewIndex int, materialCache map[[2]uint32]*Material) []Mesh {
	submeshMaterial := make(map[int]*Material, len(skin.Submeshes))

	// Last texture-unit wins when more than one names the same sub-mesh.
	for _, tu := range skin.TextureUnits {
		key := [2]uint32{uint32(tu.MaterialIndex), uint32(tu.TextureComboIndex)}
		mat, ok := materialCache[key]
		if !ok {
			mat = buildMaterial(m, tu)
			materialCache[key] = mat
		}
		submeshMaterial[int(tu.SubmeshIndex)] = mat
	}

	meshes := make([]Mesh, len(skin.Submeshes))
	for i, sm := range skin.Submeshes {
		indices := make([]uint16, sm.TriangleCount)
		for k := uint32(0); k < sm.TriangleCount; k++ {
			triIdx := skin.Triangles[sm.TriangleStart+k]
			indices[k] = skin.VertexIndices[triIdx]
		}
		meshes[i] = Mesh{
			ViewIndex:    viewIndex,
			SubmeshIndex: i,
			Indices:      indices,
			Material:     submeshMaterial[i],
		}
	}
	return meshes
}
