package aio

import (
	"io"

	"github.com/rs/zerolog/log"
)

// Close closes the given closer and logs any close failure.
func Close(c io.Closer) {
	if c == nil {
		return
	}

	if err := c.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close resource")
	}
}
