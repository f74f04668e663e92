// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

/*
Package eventprocessor publishes abnormal events and free flow results to
downstream consumers through watermill.

Two transports are supported:

  - gochannel: an in-process pub/sub. Consumers inside the process subscribe
    through Publisher.Subscribe. This is the default.
  - nats: a watermill-nats publisher against an external server or the
    EmbeddedServer started by the supervisor. JetStream is optional.

Every publish goes through a gobreaker circuit breaker so a dead broker does
not stall the analysis goroutines. Breaker transitions are logged and
exported as metrics.

Messages are JSON envelopes with a kind and a version:

	{"version":1,"kind":"event.ongoing","published_at":"...","event":{...}}
	{"version":1,"kind":"freeflow","published_at":"...","free_flow":{...}}

Topics are "<prefix>.events" and "<prefix>.freeflow"; the prefix defaults to
"seawatch".
*/
package eventprocessor
