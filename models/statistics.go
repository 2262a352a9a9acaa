package models

// LogonMapping names which EventIDs count as a successful vs a failed
// logon in the per-user tally. Defaults to the corrected pairing
// ({4624, 4625}), not the 4634 "logoff counted as failure" behavior the
// original tool shipped (spec.md §9 open question).
type LogonMapping struct {
	Success string
	Failure string
}

// DefaultLogonMapping is the corrected success/failure EventID pairing.
func DefaultLogonMapping() LogonMapping {
	return LogonMapping{Success: "4624", Failure: "4625"}
}

// UserLogonTally is a per-user count of failed and succeeded logon
// events, stored in that order to match spec.md's [failed, succeeded]
// shape.
type UserLogonTally struct {
	Failed    uint64
	Succeeded uint64
}

// Statistics is one file's worth of accumulated counters: total accepted
// records, timestamp bounds, an EventID histogram, and a per-user logon
// tally. Built fresh for every file and either printed or merged at file
// end.
type Statistics struct {
	FilePath string
	Mapping  LogonMapping

	Total      uint64
	FirstTS    string
	LastTS     string
	ByEventID  map[string]uint64
	ByUser     map[string]*UserLogonTally
}

// NewStatistics returns an empty accumulator for one file using the given
// logon success/failure mapping.
func NewStatistics(filePath string, mapping LogonMapping) *Statistics {
	return &Statistics{
		FilePath:  filePath,
		Mapping:   mapping,
		ByEventID: make(map[string]uint64),
		ByUser:    make(map[string]*UserLogonTally),
	}
}

// Ingest folds a batch of already-filtered, prepared records into the
// accumulator. Invariants (spec.md §3): Total grows by exactly
// len(batch); FirstTS/LastTS track lexicographic (== chronological, for
// well-formed timestamps) min/max of the System.TimeCreated SystemTime
// field; ByEventID sums to Total only when every record carries an
// EventID, which is not guaranteed — records without one are counted in
// Total but not in ByEventID.
func (s *Statistics) Ingest(batch []*PreparedRecord) {
	for _, rec := range batch {
		s.Total++

		if ts, ok := rec.Field(SystemTimePath); ok && ts != "" {
			if s.FirstTS == "" || ts < s.FirstTS {
				s.FirstTS = ts
			}
			if s.LastTS == "" || ts > s.LastTS {
				s.LastTS = ts
			}
		}

		eventID, hasID := rec.Field(EventIDPath)
		if !hasID || eventID == "" {
			continue
		}
		s.ByEventID[eventID]++

		user, hasUser := rec.Field("Event.EventData.TargetUserName")
		if !hasUser || user == "" {
			continue
		}
		switch eventID {
		case s.Mapping.Success:
			s.userTally(user).Succeeded++
		case s.Mapping.Failure:
			s.userTally(user).Failed++
		}
	}
}

func (s *Statistics) userTally(user string) *UserLogonTally {
	t, ok := s.ByUser[user]
	if !ok {
		t = &UserLogonTally{}
		s.ByUser[user] = t
	}
	return t
}
