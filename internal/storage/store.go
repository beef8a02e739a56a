package storage

import (
	"errors"
)

const (
	// Std is the path standing for stdin or stdout.
	Std = "-"
)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
	ClosedErr       = errors.New("closed")
)
