package week

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Segment is the portion of the season a week belongs to. The numeric
// values match the upstream scoreboard API's seasontype parameter.
type Segment int

const (
	SegmentPreseason  Segment = 1
	SegmentRegular    Segment = 2
	SegmentPostseason Segment = 3
)

func (s Segment) String() string {
	switch s {
	case SegmentPreseason:
		return "preseason"
	case SegmentRegular:
		return "regular"
	case SegmentPostseason:
		return "postseason"
	default:
		return fmt.Sprintf("segment(%d)", int(s))
	}
}

func (s Segment) Valid() bool {
	return s == SegmentPreseason || s == SegmentRegular || s == SegmentPostseason
}

// ParseSegment accepts the numeric form and the common names.
func ParseSegment(value string) (Segment, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "pre", "preseason":
		return SegmentPreseason, nil
	case "2", "reg", "regular":
		return SegmentRegular, nil
	case "3", "post", "postseason":
		return SegmentPostseason, nil
	}
	if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		segment := Segment(n)
		if segment.Valid() {
			return segment, nil
		}
	}
	return 0, fmt.Errorf("unknown season segment %q", value)
}

// Week is one round of games. (SeasonID, Number, Segment) is the natural key.
type Week struct {
	ID             int64
	SeasonID       int64
	Number         int
	Segment        Segment
	FirstKickoffAt time.Time
}

func (w Week) Validate() error {
	if w.Number < 1 {
		return fmt.Errorf("week number must be positive, got %d", w.Number)
	}
	if !w.Segment.Valid() {
		return fmt.Errorf("invalid season segment %d", int(w.Segment))
	}
	return nil
}

// Locked reports whether picks for this week are immutable for ordinary
// users: the first kickoff has been reached.
func (w Week) Locked(now time.Time) bool {
	return !now.Before(w.FirstKickoffAt)
}
