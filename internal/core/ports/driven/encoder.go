package driven

import "github.com/custodia-labs/glaximini/internal/core/domain"

// AnimationEncoder serializes compiled exports into a delivery format.
type AnimationEncoder interface {
	// Encode serializes the animation tree.
	Encode(anim *domain.Animation) ([]byte, error)

	// Sticker converts an encoded animation into a compressed sticker payload.
	Sticker(encoded []byte) ([]byte, error)
}
