package model

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/slotwatch/pkg/domain/types"
)

// SlotTimeLayout is the fixed timestamp format of the intra slot listing
// (platform-local time with a fixed UTC+1 offset).
const SlotTimeLayout = "2006-01-02T15:04:05.000-07:00"

// Slot is one evaluation opening reported by the intra. Fields beyond the
// identifier and start timestamp are kept verbatim in Raw for logging.
type Slot struct {
	ID    types.SlotID
	Start string
	Raw   map[string]any
}

// UnmarshalJSON keeps the full payload while pulling out the identifier and
// start timestamp. The intra reports numeric identifiers; they are normalized
// to their decimal string form.
func (s *Slot) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Raw = raw

	switch id := raw["id"].(type) {
	case float64:
		s.ID = types.SlotID(strconv.FormatInt(int64(id), 10))
	case string:
		s.ID = types.SlotID(id)
	}
	if start, ok := raw["start"].(string); ok {
		s.Start = start
	}

	return nil
}

// StartTime parses the slot's start timestamp
func (s *Slot) StartTime() (time.Time, error) {
	t, err := time.Parse(SlotTimeLayout, s.Start)
	if err != nil {
		return time.Time{}, goerr.Wrap(err, "failed to parse slot start time",
			goerr.V("id", s.ID), goerr.V("start", s.Start))
	}
	return t, nil
}

// SlotNotice is the content of one slot notification, formatted by the
// notification channel implementation.
type SlotNotice struct {
	Project string
	At      time.Time
}

// DateLabel renders the weekday and date part of the notification
func (n SlotNotice) DateLabel() string {
	return n.At.Format("Monday 02/01")
}

// TimeLabel renders the time-of-day part of the notification
func (n SlotNotice) TimeLabel() string {
	return n.At.Format("15:04")
}
