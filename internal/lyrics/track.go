// Package lyrics converts time-coded subtitle tracks into synchronized lyric
// tracks (LRC format).
package lyrics

import (
	"fmt"
	"time"
)

// Cue is one subtitle entry. Cues within a track are time-ordered and
// non-overlapping.
type Cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// SubtitleTrack is an ordered sequence of cues.
type SubtitleTrack []Cue

// Line is one lyric line with a single timestamp.
type Line struct {
	At   time.Duration
	Text string
}

// LyricTrack is an ordered sequence of lyric lines.
type LyricTrack []Line

// Timestamp renders the LRC tag for the line: [MM:SS.cc] with total minutes
// (an hour-long track keeps counting past 59).
func (l Line) Timestamp() string {
	totalCS := l.At / (10 * time.Millisecond)
	cs := totalCS % 100
	totalSec := totalCS / 100
	sec := totalSec % 60
	min := totalSec / 60
	return fmt.Sprintf("[%02d:%02d.%02d]", min, sec, cs)
}
