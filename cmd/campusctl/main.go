package main

import (
	"os"

	"github.com/yigit/campushub/internal/pkg/logger"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logger.Debug().Err(err).Msg("campusctl failed")
		os.Exit(1)
	}
}
