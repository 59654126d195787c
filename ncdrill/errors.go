package ncdrill

import "errors"

// Error taxonomy for the NC-Drill parser and emitter, per spec §7.
var (
	ErrUnknownCommand = errors.New("ncdrill: unknown command")
	ErrBadCoordinate  = errors.New("ncdrill: malformed coordinate payload")
	ErrBadMode        = errors.New("ncdrill: operation issued in the wrong drill/rout mode")
)
