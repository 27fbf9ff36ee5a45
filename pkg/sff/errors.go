package sff

import "errors"

var (
	// Format errors
	ErrInvalidSignature   = errors.New("sff: invalid signature")
	ErrUnsupportedVersion = errors.New("sff: unsupported version")
	ErrTruncated          = errors.New("sff: truncated container")
	ErrLayout             = errors.New("sff: region layout mismatch")

	// Sprite errors
	ErrInvalidSprite   = errors.New("sff: invalid sprite")
	ErrDuplicateSprite = errors.New("sff: duplicate sprite number")
	ErrSpriteIndex     = errors.New("sff: sprite index out of range")
)
