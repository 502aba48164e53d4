package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
)

func init() {
	// SDL video and GL calls must happen on the main thread.
	runtime.LockOSThread()
}

func main() {
	cli := parseArgs(os.Args[1:])

	switch cli.mode {
	case versionMode:
		printVersion()
	case printConfigMode:
		printConfigMain(cli)
	case remoteMode:
		remoteMain(cli.Remote)
	case runMode:
		os.Exit(runMain(cli))
	}
}

func printVersion() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("emuhost", version, runtime.Version())
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s: %s\n", fmt.Sprintf(format, args...), err)
	os.Exit(1)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
