package easel

import "errors"

var (
	// ErrNoInput is returned when a load is called without a document.
	ErrNoInput = errors.New("easel: no input")
	// ErrUnknownType is returned when a serialized object names a type the
	// class registry has no factory for.
	ErrUnknownType = errors.New("easel: unknown object type")
	// ErrInvalidScene is returned for documents that are not scene objects.
	ErrInvalidScene = errors.New("easel: invalid scene document")
	// ErrDisposed is returned by operations that need a live canvas.
	ErrDisposed = errors.New("easel: canvas disposed")
	// ErrSuperseded is returned by a load that a newer load replaced.
	ErrSuperseded = errors.New("easel: load superseded")
	// ErrUnsupportedFormat is returned for unknown export formats.
	ErrUnsupportedFormat = errors.New("easel: unsupported format")
)
