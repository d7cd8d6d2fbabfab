package image

import (
	"context"

	"photobooth/internal/imagegen"
)

// Generator is the contract for text-to-image providers.
type Generator interface {
	Generate(ctx context.Context, req imagegen.Request) (imagegen.ImageSet, error)
}

// Stylizer is the contract for image-to-image providers. A soft failure
// (imagegen.IsSoftFailure) means the provider cannot handle the request shape.
type Stylizer interface {
	Stylize(ctx context.Context, req imagegen.Request) (imagegen.ImageSet, error)
}
