package interaction

import (
	"strconv"
	"time"

	"github.com/odrive-host/odrive-go/pkg/log"
	"github.com/odrive-host/odrive-go/pkg/wire"
)

// Capture helpers. All must be called with mu held.

func (c *Client) logRequest(frame wire.Frame) {
	if c.logger == nil {
		return
	}
	ex := &log.ExchangeEvent{
		Type:         log.ExchangeRequest,
		Sequence:     frame.Sequence,
		EndpointID:   frame.EndpointID,
		AckRequested: frame.AckRequested,
		ResponseSize: frame.ResponseSize,
		Payload:      frame.Payload,
	}
	if frame.ReadRequest {
		addr := frame.Address
		ex.Address = &addr
	}
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: c.sessionID,
		Serial:    c.serial,
		Direction: log.DirectionOut,
		Layer:     log.LayerExchange,
		Category:  log.CategoryMessage,
		Exchange:  ex,
	})
}

func (c *Client) logReply(reply wire.Reply, elapsed time.Duration) {
	if c.logger == nil {
		return
	}
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: c.sessionID,
		Serial:    c.serial,
		Direction: log.DirectionIn,
		Layer:     log.LayerExchange,
		Category:  log.CategoryMessage,
		Exchange: &log.ExchangeEvent{
			Type:     log.ExchangeReply,
			Sequence: reply.Sequence,
			Payload:  reply.Payload,
			Duration: &elapsed,
		},
	})
}

func (c *Client) logError(frame wire.Frame, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: c.sessionID,
		Serial:    c.serial,
		Layer:     log.LayerExchange,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerExchange,
			Message: err.Error(),
			Context: "endpoint " + strconv.Itoa(int(frame.EndpointID)),
		},
	})
}
