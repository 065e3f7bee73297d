package events

import (
	"context"
	"encoding/json"
	"errors"

	"go-pos-billing/internal/ws"
)

var ErrHubBusy = errors.New("websocket hub queue full, event dropped")

// broadcaster is the part of ws.Hub the publisher needs
type broadcaster interface {
	Send(msg []byte) bool
}

// HubPublisher broadcasts events to websocket clients. Events published
// from one goroutine are delivered in publish order; a full hub queue drops
// the event instead of blocking the caller.
type HubPublisher struct {
	hub broadcaster
}

func NewHubPublisher(hub *ws.Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) Publish(_ context.Context, evt Event) error {
	msg, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	if !p.hub.Send(msg) {
		return ErrHubBusy
	}
	return nil
}
