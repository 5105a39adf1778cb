package crypto

import (
	"encoding/binary"
	"errors"
)

// ErrMisaligned is returned by Decrypt when the input length is not a
// multiple of 4 bytes, since the cipher operates on little-endian uint32 words.
var ErrMisaligned = errors.New("crypto: data length is not a multiple of 4")

// Decrypt decrypts data in place using key, per the MPQ stream cipher.
// len(data) must be a multiple of 4.
func Decrypt(data []byte, key uint32) error {
	if len(data)%4 != 0 {
		return ErrMisaligned
	}

	t := Table()
	s1 := key
	var s2 uint32 = 0xEEEEEEEE

	for off := 0; off < len(data); off += 4 {
		in := binary.LittleEndian.Uint32(data[off : off+4])

		s2 += t[0x400+(s1&0xFF)]
		out := in ^ (s1 + s2)

		s1 = ((^s1 << 21) + 0x11111111) | (s1 >> 11)
		s2 = out + s2 + (s2 << 5) + 3

		binary.LittleEndian.PutUint32(data[off:off+4], out)
	}

	return nil
}

// DetectFileKey derives the decryption key for an encrypted file's content
// from its base name (the final path component, case-insensitive), and
// applies the "fix key" adjustment used by blocks whose FIX_KEY flag is set.
//
// This is referenced by the block-flag taxonomy in the archive format but
// is not exercised by any archive in the known test corpus; it is provided
// so Archive.Read can serve such files if encountered rather than failing
// outright.
func DetectFileKey(baseName string, fixKey bool, blockOffset, fileSize uint32) uint32 {
	key := HashString(baseName, HashTableOffset)
	if fixKey {
		key = (key + blockOffset) ^ fileSize
	}
	return key
}
