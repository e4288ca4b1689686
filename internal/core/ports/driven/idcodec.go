package driven

// IDCodec converts internal numeric ids to the opaque ids clients see.
type IDCodec interface {
	// Encode returns the public id for a row id.
	Encode(id int64) string

	// Decode returns the row id for a public id, or domain.ErrInvalidInput.
	Decode(publicID string) (int64, error)
}
