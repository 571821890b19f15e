package lyrics

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// 00:01:23,456 --> 00:01:25,789 (yt-dlp sometimes emits '.' separators)
	srtTimeLine = regexp.MustCompile(`(\d+):(\d+):(\d+)[,.](\d+)\s*-->\s*(\d+):(\d+):(\d+)[,.](\d+)`)
	htmlTag     = regexp.MustCompile(`<[^>]+>`)
	blockSplit  = regexp.MustCompile(`\n\s*\n`)
)

// ParseSRT parses SRT subtitle content into a time-ordered SubtitleTrack.
// Malformed blocks are skipped rather than failing the whole track.
func ParseSRT(content string) (SubtitleTrack, error) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	blocks := blockSplit.Split(strings.TrimSpace(content), -1)

	var track SubtitleTrack
	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}

		// The timestamp line is usually second (after the index), but some
		// emitters omit the index.
		timeIdx := -1
		for i := 0; i < len(lines) && i < 2; i++ {
			if srtTimeLine.MatchString(lines[i]) {
				timeIdx = i
				break
			}
		}
		if timeIdx == -1 || timeIdx+1 > len(lines) {
			continue
		}

		m := srtTimeLine.FindStringSubmatch(lines[timeIdx])
		start := srtTime(m[1], m[2], m[3], m[4])
		end := srtTime(m[5], m[6], m[7], m[8])

		text := strings.Join(lines[timeIdx+1:], " ")
		text = strings.TrimSpace(htmlTag.ReplaceAllString(text, ""))

		track = append(track, Cue{Start: start, End: end, Text: text})
	}

	if len(track) == 0 {
		return nil, fmt.Errorf("no subtitle cues parsed")
	}

	sort.SliceStable(track, func(i, j int) bool { return track[i].Start < track[j].Start })
	return track, nil
}

// ParseSRTFile reads and parses an .srt file.
func ParseSRTFile(path string) (SubtitleTrack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSRT(string(data))
}

func srtTime(h, m, s, ms string) time.Duration {
	hi, _ := strconv.Atoi(h)
	mi, _ := strconv.Atoi(m)
	si, _ := strconv.Atoi(s)
	msi, _ := strconv.Atoi(ms)
	return time.Duration(hi)*time.Hour +
		time.Duration(mi)*time.Minute +
		time.Duration(si)*time.Second +
		time.Duration(msi)*time.Millisecond
}
