package dto

import "time"

type PushOutput struct {
	MachineID string
	Location  string
	Hours     int
	Machines  int
	Attempts  int
	// Stale is set when the document already holds a newer snapshot of
	// this machine.
	Stale bool
}

type MachineImport struct {
	MachineID string
	Hostname  string
	Hours     int
	UpdatedAt time.Time
}

type PullOutput struct {
	Location    string
	RemoteFound bool
	Imported    []MachineImport
}

type MachineStatus struct {
	MachineID string
	Hostname  string
	UpdatedAt time.Time
	Hours     int
	Local     bool
}

type StatusOutput struct {
	Location       string
	LocalMachineID string
	RemoteFound    bool
	Machines       []MachineStatus
}
