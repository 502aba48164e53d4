package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"slices"
	"strings"
	"syscall"

	"emuhost/cores/testcard"
	"emuhost/emu"
	"emuhost/emu/core"
	"emuhost/emu/rpc"
	"emuhost/emu/statsview"
)

func loadConfig(cli CLI) emu.Config {
	cfg, err := emu.LoadConfig(cli.Config)
	checkf(err, "failed to load configuration")
	checkf(cfg.Check(), "invalid configuration")
	return cfg
}

// runMain runs the emulator with the built-in test card until the window is
// closed or the process is interrupted.
func runMain(cli CLI) (exitcode int) {
	args := cli.Run
	cfg := loadConfig(cli)

	if args.Profile != "" && !slices.Contains(cfg.ProfileNames(), args.Profile) {
		fatalf("unknown profile %q, available profiles: %s", args.Profile, strings.Join(cfg.ProfileNames(), ", "))
	}

	if args.CPUProfile != "" {
		f, err := os.Create(args.CPUProfile)
		checkf(err, "failed to create cpu profile file")
		checkf(pprof.StartCPUProfile(f), "failed to start cpu profile")
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
			fmt.Println("CPU profile written to", args.CPUProfile)
		}()
	}

	if args.Statsview {
		sv := statsview.Launch(statsview.DefaultAddr)
		defer sv.Stop()
	}

	engine := testcard.New("Test Card", core.NTSC)
	emulator, err := emu.Launch(engine, cfg, emu.LaunchOptions{
		Profile:     args.Profile,
		Region:      args.Region,
		RecordAudio: args.RecordAudio,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start emulator: %v\n", err)
		return 1
	}

	if args.Port != 0 {
		server, err := rpc.NewServer(args.Port, remoteEmu{emulator})
		if err != nil {
			emulator.Close()
			fmt.Fprintf(os.Stderr, "RPC error: %v\n", err)
			return 1
		}
		defer server.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		emulator.Stop()
	}()

	runErr := emulator.Run()
	closeErr := emulator.Close()
	if closeErr != nil {
		fmt.Fprintf(os.Stderr, "error during shutdown: %v\n", closeErr)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "fatal error:\n\temulator stopped: %s\n", runErr)
		return 1
	}
	return 0
}

// printConfigMain writes the effective configuration to stdout.
func printConfigMain(cli CLI) {
	cfg := loadConfig(cli)
	checkf(cfg.Encode(os.Stdout), "failed to encode configuration")
}
