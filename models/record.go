package models

import (
	"strconv"

	"github.com/0xrawsec/golang-evtx/evtx"
	"github.com/tidwall/gjson"
)

// SystemTimePath is the canonical field path carrying an event's creation
// timestamp in the decoded EVTX tree.
const SystemTimePath = "Event.System.TimeCreated_attributes.SystemTime"

// EventIDPath is the canonical field path carrying an event's numeric ID.
const EventIDPath = "Event.System.EventID"

// ComputerPath and ChannelPath carry the two other System fields every
// report row names (spec.md §6).
const ComputerPath = "Event.System.Computer"
const ChannelPath = "Event.System.Channel"

// RawRecord is one decoded EVTX record. It is immutable once produced: the
// canonical JSON encoding is computed exactly once so that field-path
// extraction downstream (see PreparedRecord) never re-walks the decoded
// tree.
type RawRecord struct {
	SourcePath string
	Offset     int64

	tree evtx.GoEvtxMap
	json []byte
}

// NewRawRecord wraps a decoded record tree, caching its canonical JSON form.
func NewRawRecord(sourcePath string, offset int64, tree evtx.GoEvtxMap) *RawRecord {
	return &RawRecord{
		SourcePath: sourcePath,
		Offset:     offset,
		tree:       tree,
		json:       evtx.ToJSON(&tree),
	}
}

// JSON returns the cached canonical JSON encoding of the record. Callers
// must not mutate the returned slice.
func (r *RawRecord) JSON() []byte {
	return r.json
}

// Get extracts the scalar (or stringified non-scalar) value at a dotted
// field path. Missing paths return ("", false).
func (r *RawRecord) Get(path string) (string, bool) {
	res := gjson.GetBytes(r.json, path)
	if !res.Exists() {
		return "", false
	}
	return res.String(), true
}

// EventID returns the canonical decimal-string form of the record's
// EventID, coercing both the scalar and structured representations EVTX
// uses identically, per spec.md's note on EventID string vs number.
func (r *RawRecord) EventID() (string, bool) {
	if res := gjson.GetBytes(r.json, EventIDPath); res.Exists() && res.Type != gjson.JSON && res.String() != "" {
		return res.String(), true
	}
	// Some channels nest EventID under a Qualifiers-bearing object rather
	// than a bare scalar; golang-evtx's helper already normalizes this.
	id := (&r.tree).EventID()
	if id == 0 {
		return "", false
	}
	return strconv.FormatInt(id, 10), true
}

// SystemTime returns the record's ISO-8601 creation timestamp string, if
// present.
func (r *RawRecord) SystemTime() (string, bool) {
	return r.Get(SystemTimePath)
}
