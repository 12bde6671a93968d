package main

import (
	"os"
	"os/signal"
	"syscall"
)

// waitForQuit blocks until SIGHUP, SIGINT, SIGQUIT, or SIGTERM arrives and
// returns the one received.
func waitForQuit() os.Signal {
	quitSig := make(chan os.Signal, 1)
	defer close(quitSig)
	signal.Notify(quitSig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	return <-quitSig
}
