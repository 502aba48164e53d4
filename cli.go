package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"emuhost/emu/log"
)

type mode byte

const (
	runMode         mode = iota // Run the emulator
	printConfigMode             // Print the effective config
	remoteMode                  // Control a running emulator
	versionMode                 // Show emuhost version
)

type (
	CLI struct {
		Run         Run         `cmd:"" help:"Run the emulator. (default command)" default:"withargs"`
		PrintConfig PrintConfig `cmd:"" help:"Print the effective configuration as TOML." name:"print-config"`
		Remote      Remote      `cmd:"" help:"Control an emulator started with --port."`
		Version     Version     `cmd:"" help:"Show emuhost version."`

		Config  string     `name:"config" help:"${config_help}" type:"path" placeholder:"FILE"`
		Verbose bool       `name:"verbose" short:"v" help:"Enable all log modules."`
		Log     logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`

		mode mode
	}

	Run struct {
		Profile     string `name:"profile" help:"${profile_help}" placeholder:"NAME"`
		Region      string `name:"region" help:"${region_help}" enum:"auto,ntsc,pal" default:"auto"`
		RecordAudio string `name:"record-audio" help:"Record the audio output to a WAV file." type:"path" placeholder:"FILE"`
		Statsview   bool   `name:"statsview" help:"${statsview_help}"`
		CPUProfile  string `name:"cpuprofile" help:"Write CPU profile to file." type:"path"`
		Port        int    `name:"port" help:"Accept remote control on this localhost port."`
	}

	Remote struct {
		Port   int    `name:"port" help:"Port of the running emulator." required:""`
		Action string `arg:"" help:"One of status, stop, save or load." enum:"status,stop,save,load"`
		Slot   int    `arg:"" help:"Snapshot slot (0-9), required for save and load." optional:"" default:"-1"`
	}

	PrintConfig struct{}
	Version     struct{}
)

var vars = kong.Vars{
	"config_help":    "Configuration file. (default: <user config dir>/emuhost/config.toml)",
	"profile_help":   "Input profile, as named in the [profiles] section of the configuration.",
	"region_help":    "Force the console region (auto, ntsc or pal).",
	"statsview_help": "Serve runtime statistics at http://localhost:12600/debug/statsview.",
	"log_help":       "Enable logging for specified modules.",
}

func parseArgs(args []string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("emuhost"),
		kong.Description("Real-time emulator host."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	if cfg.Verbose {
		log.EnableDebugModules(log.ModuleMaskAll)
	}

	switch ctx.Command() {
	case "print-config":
		cfg.mode = printConfigMode
	case "remote <action>", "remote <action> <slot>":
		cfg.mode = remoteMode
	case "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") || ctx.Command() == "" {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}
		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(lm))
	return nil
}
