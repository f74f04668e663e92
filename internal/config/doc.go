// Seawatch - AIS Abnormal Vessel Behaviour Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seawatch

/*
Package config loads the Seawatch configuration.

Configuration is layered with koanf v2. Later layers override earlier ones:

 1. Defaults: the DefaultConfig of every component package
 2. Config file: an optional YAML file, CONFIG_PATH or the first of
    DefaultConfigPaths that exists
 3. Environment variables: mapped explicitly by envTransformFunc

# Sections

	logging     level, format, caller, timestamp
	server      HTTP listener and timeouts
	grid        cell resolution in degrees
	statistics  trained statistics store, cache and speed buckets
	events      event repository (memory or duckdb)
	tracker     track table, blacklist, interpolation, stale age
	behaviour   raise and lower thresholds
	analysis    per analysis enable flags and parameters
	filter      location box, ship name skip list, downsampling
	ingest      message source (file, mqtt or nats)
	notify      webhook, redis, websocket and publisher delivery
	publisher   watermill event publisher (gochannel or nats)
	nats        embedded NATS server
	api         CORS, rate limiting and query limits

# Environment Variables

Variables are not derived from the section names. Only the names listed in
envTransformFunc are read, for example:

	ANALYSIS_COG_PD=0.0005          -> analysis.cog.pd
	INGEST_SOURCE=mqtt              -> ingest.source
	TRACKER_BLACKLIST=1,2,3         -> tracker.blacklist
	FILTER_SHIPNAME_SKIP=PILOT*,TUG -> filter.shipname_skip

List values are given comma separated.

# Example

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    logging.Fatal().Err(err).Msg("load configuration")
	}
	logging.Init(cfg.Logging)
*/
package config
