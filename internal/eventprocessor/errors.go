// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

package eventprocessor

import "errors"

// ErrPublisherClosed is returned when publishing after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// ErrNoSubscriber is returned by Subscribe when the transport has no
// in-process subscriber.
var ErrNoSubscriber = errors.New("transport has no in-process subscriber")

// ErrInvalidConfig is returned when configuration is invalid.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrInvalidMessage is returned when a message cannot be built or decoded.
var ErrInvalidMessage = errors.New("invalid message")
