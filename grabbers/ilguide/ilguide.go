// The ilguide grabber scrapes the Israeli listings site. Pages are served
// in windows-1255 with Hebrew text embedded in visual order, so every
// extracted string goes through charset decoding and a visual-to-logical
// reorder. Schedule urls address days by weekday index, not calendar date.

package ilguide

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/sgrall/telegrab/grabbers"
	"github.com/sgrall/telegrab/listings"
	"github.com/sgrall/telegrab/parsers/htmlmatch"
	"github.com/sgrall/telegrab/textconv"
)

const (
	siteURL     = "http://www.tvil.example.co.il"
	channelsURL = siteURL + "/channels.asp"
	listingsURL = siteURL + "/listings.asp?station=%s&day=%d"
	charset     = "windows-1255"
	// the site publishes the running week only
	maxDays = 6
)

// genre icon index -> controlled vocabulary. Unknown indexes are dropped,
// never defaulted.
var genres = map[int]string{
	1: "news",
	2: "movie",
	3: "sports",
	4: "children",
	5: "music",
	6: "documentary",
	7: "entertainment",
}

func init() {
	grabbers.Register("ilguide", func(env *grabbers.Env) grabbers.Grabber {
		return &IlGuide{env: env}
	})
}

type IlGuide struct {
	env *grabbers.Env
}

func (g *IlGuide) Name() string             { return "ilguide" }
func (g *IlGuide) Language() string         { return "he" }
func (g *IlGuide) Location() *time.Location { return time.FixedZone("IST", 2*3600) }
func (g *IlGuide) MaxDays() int             { return maxDays }
func (g *IlGuide) IDTemplate() string       { return "%id%.tvil.example.co.il" }

// Channels reads the station selector off the channels page. Entries whose
// value is not a positive number are selector placeholders, not channels.
func (g *IlGuide) Channels(ctx context.Context) ([]listings.Channel, error) {
	doc, err := g.fetch(ctx, channelsURL)
	if err != nil {
		return nil, err
	}
	sel := htmlmatch.Find(doc, htmlmatch.Matcher{Tag: "select", Attrs: map[string]string{"name": "station"}})
	if sel == nil {
		return nil, fmt.Errorf("no station selector on %s", channelsURL)
	}
	var out []listings.Channel
	for _, opt := range htmlmatch.FindAll(sel, htmlmatch.Matcher{Tag: "option"}) {
		id := htmlmatch.Attr(opt, "value")
		if !validID(id) {
			continue
		}
		out = append(out, listings.Channel{
			ID:   id,
			Name: textconv.VisualToLogical(htmlmatch.InnerText(opt)),
		})
	}
	return out, nil
}

// validID rejects the placeholder entries of the selector: empty, not a
// number, or the "choose a station" zero sentinel.
func validID(id string) bool {
	n, err := strconv.Atoi(id)
	return err == nil && n > 0
}

// Grab fetches one weekday page and extracts its schedule rows.
func (g *IlGuide) Grab(ctx context.Context, ch listings.Channel, day time.Time) ([]listings.Programme, error) {
	doc, err := g.fetch(ctx, fmt.Sprintf(listingsURL, ch.ID, weekdayIndex(day)))
	if err != nil {
		return nil, err
	}
	return g.extract(doc, day), nil
}

// weekdayIndex maps a date to the site's 1..7 day slot. The Israeli week
// starts on Sunday, so Sunday is 1 and Saturday, the week boundary, wraps
// to 7.
func weekdayIndex(day time.Time) int {
	return int(day.Weekday()) + 1
}

var (
	rowMatcher   = htmlmatch.Matcher{Tag: "tr", Attrs: map[string]string{"class": "prog_row"}}
	timeMatcher  = htmlmatch.Matcher{Tag: "td", Attrs: map[string]string{"class": "prog_time"}}
	titleMatcher = htmlmatch.Matcher{Tag: "td", Attrs: map[string]string{"class": "prog_name"}}
	iconMatcher  = htmlmatch.Matcher{Tag: "img"}
)

// extract walks the schedule rows. A row without a parseable HH:MM start
// is decoration, not a show, and is skipped without a word. Extraction
// order is document order and defines emission order.
func (g *IlGuide) extract(doc *html.Node, day time.Time) []listings.Programme {
	var out []listings.Programme
	for _, row := range htmlmatch.FindAll(doc, rowMatcher) {
		timeCell := htmlmatch.Find(row, timeMatcher)
		titleCell := htmlmatch.Find(row, titleMatcher)
		if timeCell == nil || titleCell == nil {
			continue
		}
		clock, err := listings.ParseClock(htmlmatch.InnerText(timeCell))
		if err != nil {
			continue
		}
		p := listings.Programme{
			Start: clock.On(day, g.Location()),
			Title: textconv.VisualToLogical(htmlmatch.InnerText(titleCell)),
		}
		if icon := htmlmatch.Find(row, iconMatcher); icon != nil {
			if cat, ok := genres[genreIndex(htmlmatch.Attr(icon, "src"))]; ok {
				p.Category = cat
			}
		}
		out = append(out, p)
	}
	return out
}

// genreIndex pulls the numeric index out of a genre icon path like
// "/i/g4.gif". Anything else yields 0, which no genre maps to.
func genreIndex(src string) int {
	base := src
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if !strings.HasPrefix(base, "g") {
		return 0
	}
	base = strings.TrimPrefix(base, "g")
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	n, err := strconv.Atoi(base)
	if err != nil {
		return 0
	}
	return n
}

// fetch retrieves a page and decodes it from the site charset before
// parsing, so the tree holds UTF-8 throughout.
func (g *IlGuide) fetch(ctx context.Context, u string) (*html.Node, error) {
	b, err := g.env.Client.GetBytes(ctx, u)
	if err != nil {
		return nil, err
	}
	s, err := textconv.DecodeString(charset, b)
	if err != nil {
		return nil, err
	}
	return htmlmatch.ParseString(s)
}
