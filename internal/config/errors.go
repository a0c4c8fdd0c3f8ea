package config

import (
	"errors"
)

// Loading and validation failures. Load wraps every cause with one of these.
var (
	ErrInvalidConfig = errors.New("sampleapi: invalid configuration")
	ErrLoadConfig    = errors.New("sampleapi: cannot load configuration")
)
