// Package rpc lets another process control a running emulator: stop it,
// save and load snapshot slots, and query its status.
package rpc

import (
	"net"

	"emuhost/emu/log"
)

var modRPC = log.NewModule("rpc")

const serviceName = "emu"

// Status is a summary of the running session.
type Status struct {
	Title  string
	Region string
	Frame  uint64
	Slots  []int // occupied snapshot slots

	Bursts      uint64
	DriftResets uint64
	Redraws     uint64
}

func UnusedPort() int {
	l, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		panic("pickUnusedPort failed: " + err.Error())
	}
	port := l.Addr().(*net.TCPAddr).Port
	if err := l.Close(); err != nil {
		panic("pickUnusedPort failed: " + err.Error())
	}
	return port
}
