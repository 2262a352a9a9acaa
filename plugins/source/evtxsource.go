// Package source implements the Record Source (spec.md §4.B): it opens
// one EVTX file via the external golang-evtx decoding library and
// exposes a pull iterator over decoded records, surfacing per-record
// parse failures without aborting the file.
package source

import (
	"fmt"

	"github.com/0xrawsec/golang-evtx/evtx"
	"github.com/huntops/evtxscan/internal"
	"github.com/huntops/evtxscan/models"
)

// bufferDepth bounds how far the decode goroutine can run ahead of the
// consumer, keeping memory bounded independent of file size.
const bufferDepth = 256

// RecordStream is a pull iterator over one file's decoded records.
type RecordStream struct {
	path       string
	events     chan *evtx.GoEvtxMap
	errs       chan error
	index      int64
	eventsOpen bool
	errsOpen   bool
}

// Open opens path with golang-evtx's OpenDirty and starts pulling records
// from its FastEvents channel in the background. It sets no decoder
// options and does not reshape the decoded tree: records keep the
// library's own layout, and no `_attributes`-suffixed keys are added
// here. A file-open
// failure returns a single IO error and an empty stream rather than
// failing later, mid-iteration.
func Open(path string) (*RecordStream, error) {
	ef, err := evtx.OpenDirty(path)
	if err != nil {
		return &RecordStream{path: path}, internal.NewError(internal.KindIO, err)
	}

	rs := &RecordStream{
		path:       path,
		events:     make(chan *evtx.GoEvtxMap, bufferDepth),
		errs:       make(chan error, bufferDepth),
		eventsOpen: true,
		errsOpen:   true,
	}
	go rs.pump(ef)
	return rs, nil
}

func (rs *RecordStream) pump(ef *evtx.EvtxFile) {
	defer close(rs.events)
	defer close(rs.errs)
	defer func() {
		if r := recover(); r != nil {
			rs.errs <- fmt.Errorf("recovered while decoding %s: %v", rs.path, r)
		}
	}()

	for e := range ef.FastEvents() {
		if e == nil {
			rs.errs <- fmt.Errorf("malformed record in %s", rs.path)
			continue
		}
		rs.events <- e
	}
}

// Next returns the next decoded record, a non-fatal per-record decode
// error, or (nil, nil, false) at end of stream. Errors do not stop
// iteration — the caller logs and continues, per spec.md §7.
func (rs *RecordStream) Next() (*models.RawRecord, error, bool) {
	for rs.eventsOpen || rs.errsOpen {
		events, errs := rs.events, rs.errs
		if !rs.eventsOpen {
			events = nil
		}
		if !rs.errsOpen {
			errs = nil
		}

		select {
		case e, ok := <-events:
			if !ok {
				rs.eventsOpen = false
				continue
			}
			rec := models.NewRawRecord(rs.path, rs.index, *e)
			rs.index++
			return rec, nil, true
		case err, ok := <-errs:
			if !ok {
				rs.errsOpen = false
				continue
			}
			return nil, internal.NewError(internal.KindDecode, err), true
		}
	}
	return nil, nil, false
}
