package m2

import (
	"fmt"
	"strings"

	"github.com/davidrios/wow-vr/blp"
)

// Fetcher resolves a logical asset name to its raw bytes. It is
// satisfied by an assets.Facade; kept as a narrow interface here so
// this package never imports assets (which itself wraps m2).
type Fetcher interface {
	ReadBytes(name string) ([]byte, error)
}

// Logger receives recoverable diagnostics during Load. A nil Logger is
// replaced with a no-op implementation.
type Logger interface {
	Warnf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...interface{}) {}

// Load decodes the model payload in raw, then fetches and assembles
// every companion view (".skin") file and every texture its materials
// reference. name is the logical path the model itself was fetched
// under; it is the basis for companion-name derivation (see the
// SkeletonName field).
//
// A missing or malformed companion skin is fatal, since a model with no
// drawable views is not usable. A missing or undecodable texture is
// recoverable: the affected material is left with a nil Texture and a
// diagnostic is appended to Diagnostics.
func Load(name string, raw []byte, fetch Fetcher, logger Logger) (*Model, error) {
	if logger == nil {
		logger = nopLogger{}
	}

	m, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	base := name
	if len(base) > 3 {
		base = base[:len(base)-3]
	}
	m.SkeletonName = base + ".skel"

	materialCache := make(map[[2]uint32]*Material)
	textureCache := make(map[string]*blp.Image)

	for i := 0; i < m.viewCount; i++ {
		skinName := fmt.Sprintf("%s%02d.skin", base, i)

		skinData, err := fetch.ReadBytes(skinName)
		if err != nil {
			return nil, fmt.Errorf("m2: fetching companion skin %q: %w", skinName, err)
		}
		skin, err := decodeSkin(skinData)
		if err != nil {
			return nil, fmt.Errorf("m2: decoding companion skin %q: %w", skinName, err)
		}

		meshes := buildMeshes(m, skin, i, materialCache)
		m.Meshes = append(m.Meshes, meshes...)
	}

	for _, mat := range materialCache {
		resolveTexture(mat, fetch, textureCache, &m.Diagnostics, logger)
	}

	return m, nil
}

func resolveTexture(mat *Material, fetch Fetcher, cache map[string]*blp.Image, diagnostics *[]string, logger Logger) {
	name := strings.TrimSpace(mat.TextureName)
	if name == "" {
		return
	}

	if img, ok := cache[name]; ok {
		mat.Texture = img
		return
	}

	data, err := fetch.ReadBytes(name)
	if err != nil {
		msg := fmt.Sprintf("texture %q: %v", name, err)
		logger.Warnf("m2: %s", msg)
		*diagnostics = append(*diagnostics, msg)
		cache[name] = nil
		return
	}

	img, err := blp.Decode(data)
	if err != nil {
		msg := fmt.Sprintf("texture %q: %v", name, err)
		logger.Warnf("m2: %s", msg)
		*diagnostics = append(*diagnostics, msg)
		cache[name] = nil
		return
	}

	cache[name] = img
	mat.Texture = img
}
