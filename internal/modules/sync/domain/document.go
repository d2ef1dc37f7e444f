package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

const (
	DocumentVersion = 1
	DefaultName     = "quotawin-sync.json"
)

var (
	ErrDocumentNotFound = errors.New("sync document not found")
	ErrVersionConflict  = errors.New("sync document changed concurrently")
	ErrInvalidDocument  = errors.New("invalid sync document")
)

// Document is the shared snapshot. Each machine owns exactly one key and
// only ever rewrites its own entry.
type Document struct {
	Version  int                        `json:"version"`
	Machines map[string]MachineSnapshot `json:"machines"`
}

type MachineSnapshot struct {
	MachineID string      `json:"machine_id"`
	Hostname  string      `json:"hostname"`
	UpdatedAt time.Time   `json:"updated_at"`
	Hours     []HourEntry `json:"hours"`
}

type HourEntry struct {
	HourStart time.Time `json:"hour_start"`
	UsagePct  float64   `json:"usage_pct"`
	Samples   int       `json:"samples"`
}

func NewDocument() Document {
	return Document{Version: DocumentVersion, Machines: map[string]MachineSnapshot{}}
}

func (d Document) Validate() error {
	if d.Version != DocumentVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidDocument, d.Version)
	}
	for key, snapshot := range d.Machines {
		if key == "" || snapshot.MachineID != key {
			return fmt.Errorf("%w: machine key %q holds snapshot for %q", ErrInvalidDocument, key, snapshot.MachineID)
		}
	}
	return nil
}

// WithMachine returns a copy of d whose entry for snapshot.MachineID is
// replaced. Other entries are shared, not copied.
func (d Document) WithMachine(snapshot MachineSnapshot) Document {
	out := Document{Version: DocumentVersion, Machines: make(map[string]MachineSnapshot, len(d.Machines)+1)}
	for key, value := range d.Machines {
		out.Machines[key] = value
	}
	if snapshot.Hours == nil {
		snapshot.Hours = []HourEntry{}
	}
	out.Machines[snapshot.MachineID] = snapshot
	return out
}

// Merge combines two documents key by key. The entry with the later
// UpdatedAt wins; on a tie a's entry is kept.
func Merge(a, b Document) Document {
	out := Document{Version: DocumentVersion, Machines: make(map[string]MachineSnapshot, len(a.Machines)+len(b.Machines))}
	for key, value := range a.Machines {
		out.Machines[key] = value
	}
	for key, theirs := range b.Machines {
		ours, ok := out.Machines[key]
		if !ok || theirs.UpdatedAt.After(ours.UpdatedAt) {
			out.Machines[key] = theirs
		}
	}
	return out
}

// MachineIDs lists the document's machines in sorted order.
func (d Document) MachineIDs() []string {
	ids := make([]string, 0, len(d.Machines))
	for id := range d.Machines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Encode writes d with every machine's hours in chronological order, so
// equal documents encode to equal bytes. d itself is left untouched.
func Encode(d Document) ([]byte, error) {
	machines := make(map[string]MachineSnapshot, len(d.Machines))
	for key, snapshot := range d.Machines {
		hours := make([]HourEntry, len(snapshot.Hours))
		copy(hours, snapshot.Hours)
		sort.SliceStable(hours, func(i, j int) bool { return hours[i].HourStart.Before(hours[j].HourStart) })
		snapshot.Hours = hours
		machines[key] = snapshot
	}
	raw, err := json.MarshalIndent(Document{Version: d.Version, Machines: machines}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sync document: %w", err)
	}
	return append(raw, '\n'), nil
}

func Decode(raw []byte) (Document, error) {
	doc := Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Machines == nil {
		doc.Machines = map[string]MachineSnapshot{}
	}
	if err := doc.Validate(); err != nil {
		return Document{}, err
	}
	return doc, nil
}
