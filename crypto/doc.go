// Package crypto implements the StormLib-compatible cipher table, name
// hashing and block decryption used by MPQ archives.
//
// The table construction, hash function and decrypt routine below are
// deterministic and match the algorithm used by every MPQ-reading tool
// since the original Storm library; see the MoPaQ format notes referenced
// from the mpq package's doc comment.
package crypto
