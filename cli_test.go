package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"emuhost/emu/log"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		args    []string
		mode    mode
		region  string
		profile string
	}{
		{args: nil, mode: runMode, region: "auto"},
		{args: []string{"run", "--region", "pal"}, mode: runMode, region: "pal"},
		{args: []string{"--profile", "mouse"}, mode: runMode, region: "auto", profile: "mouse"},
		{args: []string{"version"}, mode: versionMode},
		{args: []string{"print-config"}, mode: printConfigMode},
		{args: []string{"remote", "--port", "12345", "status"}, mode: remoteMode},
		{args: []string{"remote", "--port", "12345", "save", "3"}, mode: remoteMode},
	}
	for _, tt := range tests {
		cli := parseArgs(tt.args)
		if cli.mode != tt.mode {
			t.Errorf("parseArgs(%q).mode = %d, want %d", tt.args, cli.mode, tt.mode)
		}
		if tt.mode != runMode {
			continue
		}
		if cli.Run.Region != tt.region {
			t.Errorf("parseArgs(%q).Run.Region = %q, want %q", tt.args, cli.Run.Region, tt.region)
		}
		if cli.Run.Profile != tt.profile {
			t.Errorf("parseArgs(%q).Run.Profile = %q, want %q", tt.args, cli.Run.Profile, tt.profile)
		}
	}
}

func TestParseRemoteArgs(t *testing.T) {
	tests := []struct {
		args []string
		want Remote
	}{
		{[]string{"remote", "--port", "12345", "status"}, Remote{Port: 12345, Action: "status", Slot: -1}},
		{[]string{"remote", "--port", "12345", "save", "3"}, Remote{Port: 12345, Action: "save", Slot: 3}},
		{[]string{"remote", "--port", "1", "load", "0"}, Remote{Port: 1, Action: "load", Slot: 0}},
	}
	for _, tt := range tests {
		cli := parseArgs(tt.args)
		if diff := cmp.Diff(tt.want, cli.Remote); diff != "" {
			t.Errorf("parseArgs(%q).Remote mismatch (-want +got):\n%s", tt.args, diff)
		}
	}
}

func TestRemoteValidate(t *testing.T) {
	tests := []struct {
		remote  Remote
		wantErr bool
	}{
		{Remote{Action: "status", Slot: -1}, false},
		{Remote{Action: "stop", Slot: -1}, false},
		{Remote{Action: "save", Slot: -1}, true},
		{Remote{Action: "load", Slot: -1}, true},
		{Remote{Action: "save", Slot: 0}, false},
		{Remote{Action: "load", Slot: 9}, false},
		{Remote{Action: "save", Slot: 10}, true},
	}
	for _, tt := range tests {
		err := tt.remote.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s %d: Validate() = %v, want error: %t", tt.remote.Action, tt.remote.Slot, err, tt.wantErr)
		}
	}
}

func TestLogFlag(t *testing.T) {
	defer log.DisableDebugModules(log.ModuleMaskAll)

	parseArgs([]string{"--log", "pacer,sound"})
	if !log.ModPacer.Enabled(log.DebugLevel) || !log.ModSound.Enabled(log.DebugLevel) {
		t.Errorf("pacer and sound debug logs should be enabled")
	}
	if log.ModVideo.Enabled(log.DebugLevel) {
		t.Errorf("video debug logs should not be enabled")
	}
}
