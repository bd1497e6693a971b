package realtime

import (
	"fmt"
	"io"
	"log"
	"net/http"

	"golang.org/x/net/websocket"
)

// Handler serves the websocket endpoint viewers connect to. When allowedOrigin
// is not "*", the handshake Origin must match it exactly.
func Handler(hub *Hub, allowedOrigin string) http.Handler {
	return websocket.Server{
		Handshake: func(cfg *websocket.Config, r *http.Request) error {
			return checkOrigin(cfg, r, allowedOrigin)
		},
		Handler: func(conn *websocket.Conn) {
			serveConn(conn, hub)
		},
	}
}

func checkOrigin(cfg *websocket.Config, r *http.Request, allowedOrigin string) error {
	origin, err := websocket.Origin(cfg, r)
	if err != nil {
		return err
	}
	cfg.Origin = origin
	if allowedOrigin == "*" {
		return nil
	}
	if origin == nil || origin.String() != allowedOrigin {
		return fmt.Errorf("origin %v is not allowed", origin)
	}
	return nil
}

func serveConn(conn *websocket.Conn, hub *Hub) {
	defer func() {
		_ = conn.Close()
	}()

	sub := hub.Subscribe()
	log.Printf("realtime: client connected %s (%s)", sub.ID, conn.Request().RemoteAddr)

	done := make(chan struct{})
	go func() {
		defer close(done)
		discardIncoming(conn)
	}()

	defer func() {
		hub.Unsubscribe(sub)
		log.Printf("realtime: client disconnected %s", sub.ID)
	}()

	for {
		select {
		case frame, ok := <-sub.C:
			if !ok {
				return
			}
			if err := websocket.JSON.Send(conn, frame); err != nil {
				log.Printf("realtime: send to %s failed: %v", sub.ID, err)
				return
			}
		case <-done:
			return
		}
	}
}

// discardIncoming reads until the peer goes away. Viewers only receive.
func discardIncoming(conn *websocket.Conn) {
	var msg []byte
	for {
		if err := websocket.Message.Receive(conn, &msg); err != nil {
			if err != io.EOF {
				log.Printf("realtime: read error: %v", err)
			}
			return
		}
	}
}
