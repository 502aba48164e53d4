package rpc

import (
	"fmt"
	"net/rpc"
	"strconv"
	"time"
)

type Client struct {
	client *rpc.Client
}

// NewClient connects to the server listening on port, retrying for a short
// while in case the emulator is still starting.
func NewClient(port int) (*Client, error) {
	var (
		client *rpc.Client
		err    error
	)
	const maxretries = 5
	for i := range maxretries {
		if client, err = rpc.Dial("tcp", "localhost:"+strconv.Itoa(port)); err == nil {
			break
		}
		modRPC.WarnZ("dial tcp failed").Error("err", err).Int("retry", i).End()
		time.Sleep(250 * time.Millisecond)
	}

	if client == nil {
		return nil, fmt.Errorf("dial failed max retries: %v", err)
	}

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	modRPC.DebugZ("closing rpc client").End()
	return c.client.Close()
}

func (c *Client) Stop() error                     { return call(c.client, "Stop", 0) }
func (c *Client) SaveSlot(slot int) error         { return call(c.client, "SaveSlot", slot) }
func (c *Client) LoadSlot(slot int) (bool, error) { return request[bool](c.client, "LoadSlot", slot) }
func (c *Client) Status() (Status, error)         { return request[Status](c.client, "Status", 0) }

func call(client *rpc.Client, method string, args any) error {
	_, err := request[bool](client, method, args)
	return err
}

func request[T any](client *rpc.Client, method string, args any) (T, error) {
	var reply T
	if err := client.Call(serviceName+"."+method, args, &reply); err != nil {
		return reply, fmt.Errorf("%s: %w", method, err)
	}
	return reply, nil
}
