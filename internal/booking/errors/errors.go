package errors

import "errors"

var (
	ErrSlotTaken = errors.New("slot already has a booking")

	ErrNotFound = errors.New("booking not found")
)
