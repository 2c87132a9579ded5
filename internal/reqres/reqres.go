// Package reqres provides the minimal producers the CLI layer needs to
// turn raw filesystem entries into organize.Reqres values. Actual reqres
// (WARC-like HTTP request/response record) parsing and serialization are
// out of scope for this repository; these producers
// derive only the template fields the output format can
// reference (`year`, `month`, `day`, `hour`, `minute`, `second`, `stime`)
// from a file's stat record, so the organize engine can run end to end
// against an existing archive without a real reqres parser.
package reqres

import (
	"path/filepath"
	"strconv"
	"time"

	"github.com/aidanholm/hoardy-web/internal/organize"
	"github.com/aidanholm/hoardy-web/internal/walk"
)

// FromEntry builds a minimal organize.Reqres from a walked file: `stime`
// is the file's modification time in Unix seconds, and the calendar
// fields are derived from that same timestamp (UTC, so output paths don't
// depend on the host's local timezone).
func FromEntry(entry walk.Entry) organize.Reqres {
	mtime := entry.Stat.ModTime.UTC()

	return &organize.StaticReqres{
		StimeValue:  mtime.Unix(),
		Source:      entry.AbsPath,
		FieldValues: calendarFields(mtime, entry.RelPath),
	}
}

func calendarFields(t time.Time, relPath string) map[string]string {
	return map[string]string{
		"year":   strconv.Itoa(t.Year()),
		"month":  pad2(int(t.Month())),
		"day":    pad2(t.Day()),
		"hour":   pad2(t.Hour()),
		"minute": pad2(t.Minute()),
		"second": pad2(t.Second()),
		"stime":  strconv.FormatInt(t.Unix(), 10),
		"name":   filepath.Base(relPath),
		"ext":    trimLeadingDot(filepath.Ext(relPath)),
	}
}

func pad2(n int) string {
	s := strconv.Itoa(n)
	if len(s) < 2 {
		return "0" + s
	}

	return s
}

func trimLeadingDot(ext string) string {
	if len(ext) > 0 && ext[0] == '.' {
		return ext[1:]
	}

	return ext
}
