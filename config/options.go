package config

import "time"

var (
	EntryPageRequestTimeout      = 10 * time.Second
	ScriptRequestTimeout         = 10 * time.Second
	SearchRequestTimeout         = 5 * time.Second
	ResolveRequestTimeout        = 5 * time.Second
	StreamExchangeRequestTimeout = 5 * time.Second
)
