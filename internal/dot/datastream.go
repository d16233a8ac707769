package dot

import (
	"sync"

	"github.com/five82/jvlbi/internal/headers"
)

// VDIFFrame is the minimal subset of a decoded VDIF frame's fields needed to
// resolve its datastream tag.
type VDIFFrame struct {
	SenderIP      string
	SenderPort    int
	StationID     int
	ThreadID      int
	Format        headers.Format
}

// Filter matches a VDIF frame by (sender IP, sender port, station id,
// thread id or thread range). A zero-value SenderIP, SenderPort or StationID
// matches any value in that position. The thread bounds always apply:
// ThreadIDMax == ThreadIDMin restricts to a single thread (so zero-value
// bounds match thread 0 only), ThreadIDMax > ThreadIDMin matches an
// inclusive range.
type Filter struct {
	SenderIP     string // "" matches any
	SenderPort   int    // 0 matches any
	StationID    int    // 0 matches any
	ThreadIDMin  int
	ThreadIDMax  int
}

func (f Filter) matches(frame VDIFFrame) bool {
	if f.SenderIP != "" && f.SenderIP != frame.SenderIP {
		return false
	}
	if f.SenderPort != 0 && f.SenderPort != frame.SenderPort {
		return false
	}
	if f.StationID != 0 && f.StationID != frame.StationID {
		return false
	}
	if frame.ThreadID < f.ThreadIDMin || frame.ThreadID > f.ThreadIDMax {
		return false
	}
	return true
}

// entry pairs a datastream's name with its suffix and filter.
type entry struct {
	name   string
	suffix string
	filter Filter
}

// DatastreamMap holds the runtime's (name, filter) datastream definitions
// and resolves frames to tags (§6). It also satisfies
// internal/recwriter.DatastreamSuffixer, using each datastream's own name as
// its naming-suffix.
type DatastreamMap struct {
	mu      sync.RWMutex
	entries []entry
	byTag   map[int]string
}

// NewDatastreamMap creates an empty map.
func NewDatastreamMap() *DatastreamMap {
	return &DatastreamMap{byTag: make(map[int]string)}
}

// Define registers a named datastream matched by filter. The tag returned
// identifies this datastream for the lifetime of the map (its index of
// registration); it is what Resolve and SuffixFor key on.
func (m *DatastreamMap) Define(name string, filter Filter) (tag int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tag = len(m.entries)
	m.entries = append(m.entries, entry{name: name, suffix: name, filter: filter})
	m.byTag[tag] = name
	return tag
}

// Resolve matches frame against every registered filter in registration
// order and returns the first match's tag.
func (m *DatastreamMap) Resolve(frame VDIFFrame) (tag int, ok bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i, e := range m.entries {
		if e.filter.matches(frame) {
			return i, true
		}
	}
	return 0, false
}

// SuffixFor implements internal/recwriter.DatastreamSuffixer.
func (m *DatastreamMap) SuffixFor(tag int) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if tag < 0 || tag >= len(m.entries) {
		return "", false
	}
	return m.entries[tag].suffix, true
}
