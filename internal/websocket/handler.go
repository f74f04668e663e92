// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/seawatch/internal/logging"
)

// Handler upgrades HTTP requests and registers the connection with hub.
// CheckOrigin is left to the CORS middleware in front of it.
func Handler(hub *Hub) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
			return
		}
		client := NewClient(hub, conn)
		select {
		case hub.Register <- client:
		case <-r.Context().Done():
			_ = conn.Close()
			return
		}
		client.Start()
	}
}
