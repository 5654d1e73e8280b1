package domain

import "time"

// ConnectorMode records which variant the registry installed for a source.
type ConnectorMode string

const (
	ModeReal      ConnectorMode = "real"
	ModeSimulated ConnectorMode = "simulated"
)

// ConnectorStatus is a point-in-time snapshot of one connector's state.
// The live state is owned by the connector itself.
type ConnectorStatus struct {
	Source       Source
	Mode         ConnectorMode
	Connected    bool
	LastError    string
	Requests     uint64
	Budget       int
	LimitedUntil *time.Time
}
