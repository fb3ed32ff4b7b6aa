package gen

import "errors"

var (
	// ErrProviderUnavailable indicates the generation backend is not configured.
	ErrProviderUnavailable = errors.New("generation provider unavailable")
	// ErrNoImage indicates the model responded without an image part.
	ErrNoImage = errors.New("no image returned by model")
	// ErrNoClip indicates no stock clip matched the search keyword.
	ErrNoClip = errors.New("no stock clip found")
)
