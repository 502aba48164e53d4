package main

import (
	"fmt"

	"emuhost/emu"
	"emuhost/emu/rpc"
	"emuhost/hw/snapshot"
)

// remoteEmu serves remote calls on the emulation loop goroutine.
type remoteEmu struct {
	*emu.Emulator
}

func (r remoteEmu) SaveSlot(slot int) error {
	var err error
	if derr := r.Do(func(s *emu.Session) { err = s.SaveSlot(slot) }); derr != nil {
		return derr
	}
	return err
}

func (r remoteEmu) LoadSlot(slot int) (bool, error) {
	var (
		loaded bool
		err    error
	)
	if derr := r.Do(func(s *emu.Session) { loaded, err = s.LoadSlot(slot) }); derr != nil {
		return false, derr
	}
	return loaded, err
}

func (r remoteEmu) Status() (rpc.Status, error) {
	var st rpc.Status
	err := r.Do(func(s *emu.Session) {
		stats := s.Stats()
		st = rpc.Status{
			Title:       s.Metadata().Title,
			Region:      s.Region().String(),
			Frame:       s.Frame(),
			Bursts:      stats.Bursts,
			DriftResets: stats.DriftResets,
			Redraws:     stats.Redraws,
		}
		for slot := range snapshot.NumSlots {
			if s.HasSlot(slot) {
				st.Slots = append(st.Slots, slot)
			}
		}
	})
	return st, err
}

// Validate is called by kong once the remote command is parsed.
func (r Remote) Validate() error {
	switch r.Action {
	case "save", "load":
		if r.Slot < 0 {
			return fmt.Errorf("%s needs a slot", r.Action)
		}
		if r.Slot >= snapshot.NumSlots {
			return fmt.Errorf("slot %d out of range (0-%d)", r.Slot, snapshot.NumSlots-1)
		}
	}
	return nil
}

// remoteMain sends one command to a running emulator.
func remoteMain(args Remote) {
	client, err := rpc.NewClient(args.Port)
	checkf(err, "failed to connect to emulator")
	defer client.Close()

	switch args.Action {
	case "status":
		st, err := client.Status()
		checkf(err, "remote call failed")
		fmt.Printf("%s (%s)\n", st.Title, st.Region)
		fmt.Printf("frame:        %d\n", st.Frame)
		fmt.Printf("bursts:       %d\n", st.Bursts)
		fmt.Printf("drift resets: %d\n", st.DriftResets)
		fmt.Printf("redraws:      %d\n", st.Redraws)
		fmt.Printf("slots:        %v\n", st.Slots)
	case "stop":
		checkf(client.Stop(), "remote call failed")
	case "save":
		checkf(client.SaveSlot(args.Slot), "remote call failed")
		fmt.Println("saved slot", args.Slot)
	case "load":
		loaded, err := client.LoadSlot(args.Slot)
		checkf(err, "remote call failed")
		if !loaded {
			fmt.Println("slot", args.Slot, "is empty")
			return
		}
		fmt.Println("loaded slot", args.Slot)
	}
}
