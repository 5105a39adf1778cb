package assets

import "errors"

var (
	// ErrClosed is returned by any Facade method called after Close.
	ErrClosed = errors.New("assets: facade closed")
	// ErrNotFound is returned when a name resolves to no archive member.
	ErrNotFound = errors.New("assets: asset not found")
	// ErrWrongKind is returned when LoadTexture is called on a name
	// already cached as a model, or vice versa.
	ErrWrongKind = errors.New("assets: asset cached as a different kind")
)
