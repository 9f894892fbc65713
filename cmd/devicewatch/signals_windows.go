package main

import (
	"os"

	"golang.org/x/sys/windows"
)

var shutdownSignals = []os.Signal{os.Interrupt, windows.SIGTERM}
