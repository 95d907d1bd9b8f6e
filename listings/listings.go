// The listings package holds the programme data model shared by all site
// grabbers and the normalization helpers that turn raw scraped fields into
// interchange-ready records.

package listings

import (
	"fmt"
	"strings"
	"time"

	"github.com/sgrall/telegrab/xmltv"
)

// Channel is one selectable channel of a site. ID is the site's own
// identifier, XMLTVID the derived interchange identifier.
type Channel struct {
	ID      string
	Name    string
	Icon    string
	XMLTVID string
}

// XMLTVID derives the interchange id by substituting the %id% placeholder
// of the site template. A template without placeholder is treated as a
// domain suffix.
func XMLTVID(id, template string) string {
	if strings.Contains(template, "%id%") {
		return strings.ReplaceAll(template, "%id%", id)
	}
	return id + "." + template
}

// City is one entry of a site's city or bundle directory, for sites whose
// schedule depends on a configured location.
type City struct {
	Code string
	Name string
}

// Credits is the programme crew in upstream order.
type Credits struct {
	Directors  []string
	Actors     []string
	Writers    []string
	Presenters []string
}

// Programme is one normalized broadcast record.
type Programme struct {
	Channel     string // XMLTV channel id
	Start       time.Time
	Stop        time.Time // zero when unknown
	Title       string
	SubTitle    string
	Description string
	Category    string
	Credits     Credits
	Rating      string
	Subtitles   bool
	Rerun       bool
}

// XMLTV converts the programme to its interchange representation, tagging
// all text with the site language.
func (p Programme) XMLTV(lang string) xmltv.Programme {
	x := xmltv.Programme{
		Channel:   p.Channel,
		Start:     p.Start,
		Stop:      p.Stop,
		Titles:    []xmltv.LangString{{Text: p.Title, Lang: lang}},
		Rating:    p.Rating,
		Subtitles: p.Subtitles,
		PrevShown: p.Rerun,
		Credits: xmltv.Credits{
			Directors:  p.Credits.Directors,
			Actors:     p.Credits.Actors,
			Writers:    p.Credits.Writers,
			Presenters: p.Credits.Presenters,
		},
	}
	if p.SubTitle != "" {
		x.SubTitles = []xmltv.LangString{{Text: p.SubTitle, Lang: lang}}
	}
	if p.Description != "" {
		x.Descs = []xmltv.LangString{{Text: p.Description, Lang: lang}}
	}
	if p.Category != "" {
		x.Categories = []xmltv.LangString{{Text: p.Category, Lang: lang}}
	}
	return x
}

// CheckStop drops a stop time that precedes the start. The upstream data is
// inconsistent in that case and guessing a correction is worse than leaving
// the stop open. Returns true when the stop was dropped.
func (p *Programme) CheckStop() bool {
	if p.Stop.IsZero() || !p.Stop.Before(p.Start) {
		return false
	}
	p.Stop = time.Time{}
	return true
}

// Clock is a bare time of day as found on schedule pages.
type Clock struct {
	Hour, Minute int
}

// ParseClock parses "HH:MM" (also accepting "H:MM" and "HHhMM"). A block
// whose candidate start does not parse is not a show.
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	sep := ":"
	if strings.ContainsRune(s, 'h') {
		sep = "h"
	}
	var c Clock
	parts := strings.SplitN(s, sep, 2)
	if len(parts) != 2 {
		return c, fmt.Errorf("%q is not a time of day", s)
	}
	if _, err := fmt.Sscanf(parts[0]+" "+parts[1], "%d %d", &c.Hour, &c.Minute); err != nil {
		return c, fmt.Errorf("%q is not a time of day", s)
	}
	if c.Hour < 0 || c.Hour > 23 || c.Minute < 0 || c.Minute > 59 {
		return c, fmt.Errorf("%q is out of range", s)
	}
	return c, nil
}

// On combines the clock with a calendar day in the site's location.
func (c Clock) On(day time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, loc)
}

// StopAfter resolves a bare end-of-show clock against a known start. An end
// numerically earlier than the start means the show crosses midnight, so the
// stop rolls over to the next day. Never an error at this layer.
func (c Clock) StopAfter(start time.Time) time.Time {
	stop := c.On(start, start.Location())
	if stop.Before(start) {
		stop = stop.AddDate(0, 0, 1)
	}
	return stop
}

// SplitTitle separates a human-readable title that concatenates title and
// subtitle without a reliable separator. machineLen is the length of the
// site's machine-readable short title, used as the cut point. Separator
// punctuation and spaces between the two parts are trimmed. When no machine
// title is available (machineLen <= 0) or the cut is out of range, the whole
// string is the title and the subtitle is empty.
func SplitTitle(human string, machineLen int) (title, subtitle string) {
	runes := []rune(human)
	if machineLen <= 0 || machineLen >= len(runes) {
		return strings.TrimSpace(human), ""
	}
	title = strings.TrimSpace(string(runes[:machineLen]))
	subtitle = strings.TrimLeft(string(runes[machineLen:]), ":-–. \t")
	return title, strings.TrimSpace(subtitle)
}

// InferStops fills missing stop times from the start of the following
// programme on the same channel. The slice must be in schedule order, as
// extracted. The final programme of a channel keeps its stop open; the next
// day's schedule is not consulted.
func InferStops(progs []Programme) {
	for i := range progs {
		if !progs[i].Stop.IsZero() {
			continue
		}
		if i+1 < len(progs) && progs[i+1].Channel == progs[i].Channel {
			progs[i].Stop = progs[i+1].Start
		}
	}
}
