package hfsm

import (
	json "github.com/goccy/go-json"
)

// RegionSnapshot captures one exclusive region of the active-path store
type RegionSnapshot struct {
	Region     string `json:"region"`
	Active     string `json:"active,omitempty"`
	Remembered string `json:"remembered,omitempty"`
	Scheduled  bool   `json:"scheduled,omitempty"`
}

// Snapshot is a point-in-time view of a machine's active configuration
type Snapshot struct {
	Machine  string           `json:"machine"`
	Name     string           `json:"name"`
	Started  bool             `json:"started"`
	Ticks    uint64           `json:"ticks"`
	Active   []string         `json:"active"`
	Regions  []RegionSnapshot `json:"regions"`
	Counters Counters         `json:"counters"`
}

// Snapshot copies the active-path store into a serializable value
func (m *Machine[C, E]) Snapshot() Snapshot {
	s := Snapshot{
		Machine:  m.id.String(),
		Name:     m.name,
		Started:  m.started,
		Ticks:    m.ticks,
		Active:   m.ActiveStates(),
		Regions:  make([]RegionSnapshot, 0, len(m.def.composites)),
		Counters: m.def.Counters(),
	}
	for r, id := range m.def.composites {
		s.Regions = append(s.Regions, RegionSnapshot{
			Region:     m.def.Tag(id),
			Active:     m.def.Tag(m.store.activeChild(id)),
			Remembered: m.def.Tag(m.store.lastActive(id)),
			Scheduled:  m.store.scheduled[r],
		})
	}
	return s
}

// MarshalJSON encodes the machine's snapshot
func (m *Machine[C, E]) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Snapshot())
}

// ParseSnapshot decodes a snapshot produced by MarshalJSON
func ParseSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	err := json.Unmarshal(data, &s)
	return s, err
}
