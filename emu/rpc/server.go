package rpc

import (
	"errors"
	"net"
	"net/rpc"
	"strconv"
)

// Emu is the emulator side of the remote control.
type Emu interface {
	Stop()
	SaveSlot(slot int) error
	LoadSlot(slot int) (loaded bool, err error)
	Status() (Status, error)
}

type emuProxy struct {
	emu Emu
}

func (ep *emuProxy) Stop(_ int, ok *bool) error {
	ep.emu.Stop()
	*ok = true
	return nil
}

func (ep *emuProxy) SaveSlot(slot int, ok *bool) error {
	err := ep.emu.SaveSlot(slot)
	*ok = err == nil
	return err
}

func (ep *emuProxy) LoadSlot(slot int, loaded *bool) (err error) {
	*loaded, err = ep.emu.LoadSlot(slot)
	return err
}

func (ep *emuProxy) Status(_ int, reply *Status) (err error) {
	*reply, err = ep.emu.Status()
	return err
}

// Server serves remote calls to an Emu on a localhost TCP port.
type Server struct {
	l net.Listener
}

func NewServer(port int, emu Emu) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName(serviceName, &emuProxy{emu: emu}); err != nil {
		return nil, err
	}
	l, err := net.Listen("tcp", "localhost:"+strconv.Itoa(port))
	if err != nil {
		return nil, err
	}

	modRPC.InfoZ("rpc server listening").Int("port", port).End()
	go srv.Accept(l)
	return &Server{l: l}, nil
}

func (s *Server) Close() error {
	err := s.l.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
