package service

import (
	"time"

	"github.com/rs/zerolog"
)

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func nopIfNil(logger *zerolog.Logger) *zerolog.Logger {
	if logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return logger
}
