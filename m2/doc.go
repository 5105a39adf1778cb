// Package m2 decodes World of Warcraft M2 model files (legacy MD20 header
// or MD21-chunked), their companion SKIN view files, and resolves
// per-submesh material descriptors from a model's texture units.
//
// Each array reference in the MD20 payload is stored as a (count,
// offset) pair, count first.
package m2
