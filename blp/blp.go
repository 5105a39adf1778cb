// Package blp decodes BLP2 texture containers: DXT1/DXT3/DXT5
// block-compressed mip 0 is parsed into a GPU-ready Image descriptor.
// Palettized and JPEG content, and mips beyond 0, are out of scope.
package blp

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

const (
	magic = "BLP2"

	headerSize   = 20 // magic(4) + type(4) + compression(1) + alphaBits(1) + preferredFormat(1) + hasMips(1) + width(4) + height(4)
	mipTableOff  = headerSize
	mipCount     = 16
	mipEntrySize = 4 // either all-offsets or all-sizes array entry
)

// Content kinds (the "type" field).
const (
	contentJPEG = 0
	contentDirect = 1 // raw/DXT payload
)

// Compression kinds.
const (
	compressionPalette = 1
	compressionDXT     = 2
)

// Pixel formats (the "preferred format" byte), as laid out by the
// compression==DXT branch.
const (
	pixelDXT1 = 0
	pixelDXT3 = 1
	pixelDXT5 = 7
)

var (
	// ErrInvalidMagic is returned when the file does not start with "BLP2".
	ErrInvalidMagic = errors.New("blp: invalid magic")
	// ErrTruncated is returned when the buffer is too short for its header or mip 0.
	ErrTruncated = errors.New("blp: truncated data")
	// ErrUnsupportedTextureFormat is returned for any (content, compression, pixel format)
	// triple other than DXT1/DXT3/DXT5.
	ErrUnsupportedTextureFormat = errors.New("blp: unsupported texture format")
)

// Image is a decoded, GPU-ready texture descriptor. Format and Dimension
// use the same vocabulary (github.com/cogentcore/webgpu/wgpu) a consumer
// would use to call Device.CreateTexture directly.
type Image struct {
	Width     uint32
	Height    uint32
	Depth     uint32
	MipLevels uint32
	Dimension wgpu.TextureDimension
	Format    wgpu.TextureFormat

	// Data is mip level 0's compressed block payload, verbatim. Row pitch
	// is dictated by the 4x4-pixel block layout of Format; this package
	// does not re-pack it.
	Data []byte
}

type header struct {
	contentKind      uint32
	compressionKind  uint8
	alphaBits        uint8
	pixelFormat      uint8
	hasMips          uint8
	width            uint32
	height           uint32
}

// Decode parses a BLP2 buffer and returns its mip-0 image descriptor.
func Decode(data []byte) (*Image, error) {
	if len(data) < headerSize {
		return nil, ErrTruncated
	}
	if string(data[0:4]) != magic {
		return nil, ErrInvalidMagic
	}

	h := header{
		contentKind:     binary.LittleEndian.Uint32(data[4:8]),
		compressionKind: data[8],
		alphaBits:       data[9],
		pixelFormat:     data[10],
		hasMips:         data[11],
		width:           binary.LittleEndian.Uint32(data[12:16]),
		height:          binary.LittleEndian.Uint32(data[16:20]),
	}

	if len(data) < mipTableOff+2*mipCount*mipEntrySize {
		return nil, ErrTruncated
	}
	offsets := make([]uint32, mipCount)
	sizes := make([]uint32, mipCount)
	for i := 0; i < mipCount; i++ {
		offsets[i] = binary.LittleEndian.Uint32(data[mipTableOff+i*4 : mipTableOff+i*4+4])
	}
	sizesOff := mipTableOff + mipCount*4
	for i := 0; i < mipCount; i++ {
		sizes[i] = binary.LittleEndian.Uint32(data[sizesOff+i*4 : sizesOff+i*4+4])
	}

	format, err := selectFormat(h)
	if err != nil {
		return nil, err
	}

	mip0Off, mip0Size := offsets[0], sizes[0]
	if uint64(mip0Off)+uint64(mip0Size) > uint64(len(data)) {
		return nil, ErrTruncated
	}

	payload := make([]byte, mip0Size)
	copy(payload, data[mip0Off:mip0Off+mip0Size])

	return &Image{
		Width:     h.width,
		Height:    h.height,
		Depth:     1,
		MipLevels: 1,
		Dimension: wgpu.TextureDimension2D,
		Format:    format,
		Data:      payload,
	}, nil
}

func selectFormat(h header) (wgpu.TextureFormat, error) {
	if h.contentKind != contentDirect || h.compressionKind != compressionDXT {
		return 0, fmt.Errorf("%w: content=%d compression=%d pixelFormat=%d", ErrUnsupportedTextureFormat, h.contentKind, h.compressionKind, h.pixelFormat)
	}

	switch h.pixelFormat {
	case pixelDXT1:
		return wgpu.TextureFormatBC1RGBAUnorm, nil
	case pixelDXT3:
		return wgpu.TextureFormatBC2RGBAUnorm, nil
	case pixelDXT5:
		return wgpu.TextureFormatBC3RGBAUnorm, nil
	default:
		return 0, fmt.Errorf("%w: content=%d compression=%d pixelFormat=%d", ErrUnsupportedTextureFormat, h.contentKind, h.compressionKind, h.pixelFormat)
	}
}

// BlockSize returns the compressed-payload length expected for a mip of
// the given pixel dimensions and format — used by tests and by callers
// sizing their own buffers (Property 9).
func BlockSize(format wgpu.TextureFormat, width, height uint32) uint32 {
	blocksWide := (width + 3) / 4
	blocksHigh := (height + 3) / 4

	var bytesPerBlock uint32
	switch format {
	case wgpu.TextureFormatBC1RGBAUnorm:
		bytesPerBlock = 8
	default:
		bytesPerBlock = 16
	}

	return blocksWide * blocksHigh * bytesPerBlock
}
