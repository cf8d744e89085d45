package mcslices

import "errors"

var (
	ErrNoPalette      = errors.New("no palette loaded")
	ErrNoWorld        = errors.New("no world loaded")
	ErrInvalidBatch   = errors.New("invalid batch size")
	ErrCanvasNotReady = errors.New("canvas is not finished")
)
