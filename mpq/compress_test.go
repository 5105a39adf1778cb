package mpq

import (
	"bytes"
	"compress/zlib"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompressSectorZlib(t *testing.T) {
	plain := []byte("the quick brown fox jumps over the lazy dog")

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(plain)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	sector := append([]byte{0x02}, buf.Bytes()...)

	got, err := decompressSector(sector, len(plain))
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestDecompressSectorUnsupportedCode(t *testing.T) {
	_, err := decompressSector([]byte{0x10, 0xAA}, 10)

	var uc ErrUnsupportedCompression
	require.ErrorAs(t, err, &uc)
	assert.Equal(t, byte(compBZip2), uc.Code)
}

func TestDecompressSectorSparseFlaggedAsUnsupported(t *testing.T) {
	_, err := decompressSector([]byte{0x22, 0xAA}, 10)

	var uc ErrUnsupportedCompression
	require.ErrorAs(t, err, &uc)
	assert.Equal(t, byte(compSparse), uc.Code)
}
