package main

import (
	"bufio"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/airwave-cli/airwave/internal/domain/player"
)

// readVolumeKeys translates digit keys from in into volume changes on the
// session. Input arrives line-buffered unless the terminal is in raw mode;
// digits take effect as soon as they are read either way. Returns when in
// is closed.
func readVolumeKeys(in io.Reader, session *player.Session, render *renderer) {
	reader := bufio.NewReader(in)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return
		}
		if b < '0' || b > '9' {
			continue
		}
		level := int(b - '0')
		if session.Volume() == level {
			continue
		}
		if err := session.SetVolume(level); err != nil {
			log.Debug().Err(err).Int("level", level).Msg("Volume change rejected")
			continue
		}
		render.Progress()
	}
}
