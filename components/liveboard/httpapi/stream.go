package httpapi

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-liveboard/components/liveboard"
	"github.com/valyala/fasthttp"
)

const keepAliveInterval = 15 * time.Second

// HandleEvents streams board events as server-sent events until the client
// goes away.
func (h *Handlers) HandleEvents(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	events, cancel := h.Events.Subscribe()
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()
		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()
		_ = streamEvents(w, events, ticker.C)
	}))
	return nil
}

// streamEvents writes events until the channel closes or a write fails.
func streamEvents(w *bufio.Writer, events <-chan liveboard.BoardEvent, keepAlive <-chan time.Time) error {
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := writeSSE(w, event); err != nil {
				return err
			}
		case <-keepAlive:
			if _, err := w.WriteString(": ping\n\n"); err != nil {
				return err
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}
}

func writeSSE(w *bufio.Writer, event liveboard.BoardEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Reason, data); err != nil {
		return err
	}
	return w.Flush()
}

// requireUpgrade rejects plain HTTP requests on the websocket route.
func requireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleSocket pushes board events over a websocket. Inbound frames are only
// read to notice when the peer closes.
func (h *Handlers) HandleSocket() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		events, cancel := h.Events.Subscribe()
		defer cancel()

		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := conn.WriteJSON(event); err != nil {
					return
				}
			case <-closed:
				return
			}
		}
	})
}
