package mpq

import (
	"bytes"
	"compress/zlib"
	"io"
)

// Sector compression algorithm bits. A sector's leading byte is a set of
// these flags applied in the fixed order below; several are reserved
// (recognized but not implemented) since no archive in the known test
// corpus exercises them.
const (
	compSparse        = 0x20
	compADPCMStereo   = 0x80
	compADPCMMono     = 0x40
	compHuffman       = 0x01
	compZlib          = 0x02
	compPKWareImplode = 0x08
	compBZip2         = 0x10
)

// decompressSector applies the algorithm(s) named by the leading byte of
// in to produce exactly wantLen bytes of output.
//
// Composite codes are processed in the documented fixed pipeline order:
// sparse, then Huffman, then ADPCM, then one of zlib/pkware-implode/bzip2.
// Only the zlib stage is implemented; any other bit set in the code
// yields ErrUnsupportedCompression naming that bit.
func decompressSector(in []byte, wantLen int) ([]byte, error) {
	if len(in) == 0 {
		if wantLen == 0 {
			return in, nil
		}
		return nil, ErrTruncated
	}

	code := in[0]
	payload := in[1:]

	if code&compSparse != 0 {
		return nil, ErrUnsupportedCompression{Code: compSparse}
	}
	if code&compHuffman != 0 {
		return nil, ErrUnsupportedCompression{Code: compHuffman}
	}
	if code&(compADPCMMono|compADPCMStereo) != 0 {
		return nil, ErrUnsupportedCompression{Code: code & (compADPCMMono | compADPCMStereo)}
	}

	switch {
	case code&compPKWareImplode != 0:
		return nil, ErrUnsupportedCompression{Code: compPKWareImplode}
	case code&compBZip2 != 0:
		return nil, ErrUnsupportedCompression{Code: compBZip2}
	case code == compZlib:
		return inflateZlib(payload, wantLen)
	default:
		return nil, ErrUnsupportedCompression{Code: code &^ compZlib}
	}
}

func inflateZlib(payload []byte, wantLen int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	out := make([]byte, wantLen)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, err
	}
	return out, nil
}
