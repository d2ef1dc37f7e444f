package dto

import "time"

type CollectorInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Enabled bool   `json:"enabled"`
	Binary  string `json:"binary"`
}

type DoctorResult struct {
	Name            string `json:"name"`
	BinaryReachable bool   `json:"binary_reachable"`
	ChecksumValid   bool   `json:"checksum_valid"`
	LifecycleOK     bool   `json:"lifecycle_ok"`
	Source          string `json:"source,omitempty"`
	Error           string `json:"error,omitempty"`
}

type RunResult struct {
	Name      string    `json:"name"`
	Since     time.Time `json:"since"`
	LastSeen  time.Time `json:"last_seen"`
	Collected int       `json:"collected"`
	Imported  int       `json:"imported"`
	Error     string    `json:"error,omitempty"`
}
