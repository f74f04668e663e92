// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

/*
Package websocket pushes abnormal events to browser clients as they are
raised, maintained and lowered.

A single Hub goroutine owns the client set. Handler upgrades
/api/v1/ws requests and registers a Client, which runs a read pump (pings,
close detection) and a write pump (messages, keepalive pings). Producers call
BroadcastJSON or BroadcastEvent; both never block, and a client whose send
buffer is full is disconnected.

Messages are JSON envelopes:

	{"type":"event","data":{...models.Event...}}
	{"type":"free_flow","data":[...]}
	{"type":"pong","data":null}
*/
package websocket
