// The bluewin grabber scrapes the Swiss portal, which ships its schedule
// embedded in the page as a Javascript object literal rather than as
// markup. The portal has a German, a French and an Italian edition; the
// source config directive picks one, and the emitted language follows it.

package bluewin

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/sgrall/telegrab/grabbers"
	"github.com/sgrall/telegrab/listings"
	"github.com/sgrall/telegrab/parsers/jscript"
	"github.com/sgrall/telegrab/textconv"
)

const (
	charset        = "iso-8859-1"
	maxDays        = 14
	defaultEdition = "de"
)

type edition struct {
	base string
	lang string
}

var editions = map[string]edition{
	"de": {"http://epg.blu.example.ch/de", "de"},
	"fr": {"http://epg.blu.example.ch/fr", "fr"},
	"it": {"http://epg.blu.example.ch/it", "it"},
}

var genres = map[int]string{
	1: "news",
	2: "movie",
	3: "sports",
	4: "children",
	5: "music",
	6: "documentary",
	7: "entertainment",
}

// epgData is assigned once per page; the literal after it is the payload.
var dataAnchor = regexp.MustCompile(`var\s+epgData\s*=`)

func init() {
	grabbers.Register("bluewin", func(env *grabbers.Env) grabbers.Grabber {
		g := &Bluewin{env: env, edition: editions[defaultEdition]}
		if env.Conf != nil && env.Conf.Source != "" {
			if ed, ok := editions[env.Conf.Source]; ok {
				g.edition = ed
			} else {
				env.Log.Warn().Printf("[bluewin] unknown edition %q, using %s", env.Conf.Source, defaultEdition)
			}
		}
		return g
	})
}

type Bluewin struct {
	env     *grabbers.Env
	edition edition
}

func (g *Bluewin) Name() string             { return "bluewin" }
func (g *Bluewin) Language() string         { return g.edition.lang }
func (g *Bluewin) Location() *time.Location { return time.FixedZone("CET", 1*3600) }
func (g *Bluewin) MaxDays() int             { return maxDays }
func (g *Bluewin) IDTemplate() string       { return "%id%.bluewin.example.ch" }

// Channels reads the channel array off the directory page's data object.
func (g *Bluewin) Channels(ctx context.Context) ([]listings.Channel, error) {
	data, err := g.fetch(ctx, g.edition.base+"/channels.html")
	if err != nil {
		return nil, err
	}
	var out []listings.Channel
	for _, v := range data.Field("channels").Items() {
		o := v.Object()
		id := o.Field("id").String()
		if id == "" {
			continue
		}
		out = append(out, listings.Channel{
			ID:   id,
			Name: o.Field("name").String(),
			Icon: o.Field("logo").String(),
		})
	}
	return out, nil
}

// Grab reads one day page. Shows carry a start clock and sometimes an end
// clock; an end numerically before the start crosses midnight.
func (g *Bluewin) Grab(ctx context.Context, ch listings.Channel, day time.Time) ([]listings.Programme, error) {
	u := fmt.Sprintf("%s/epg/%s/%s.html", g.edition.base, ch.ID, day.Format("2006-01-02"))
	data, err := g.fetch(ctx, u)
	if err != nil {
		return nil, err
	}
	var out []listings.Programme
	for _, v := range data.Field("shows").Items() {
		o := v.Object()
		clock, err := listings.ParseClock(o.Field("time").String())
		if err != nil {
			continue
		}
		p := listings.Programme{
			Start:    clock.On(day, g.Location()),
			Title:    o.Field("title").String(),
			SubTitle: o.Field("subtitle").String(),
			Rerun:    o.Field("rerun").Bool(),
		}
		if end := o.Field("endTime").String(); end != "" {
			if c, err := listings.ParseClock(end); err == nil {
				p.Stop = c.StopAfter(p.Start)
			}
		}
		if cat, ok := genres[o.Field("genre").Int()]; ok {
			p.Category = cat
		}
		out = append(out, p)
	}
	return out, nil
}

// fetch retrieves a page, decodes it and parses the embedded data object.
func (g *Bluewin) fetch(ctx context.Context, u string) (*jscript.Structure, error) {
	b, err := g.env.Client.GetBytes(ctx, u)
	if err != nil {
		return nil, err
	}
	s, err := textconv.DecodeString(charset, b)
	if err != nil {
		return nil, err
	}
	obj := jscript.ObjectAtAnchor([]byte(s), dataAnchor)
	if obj == nil {
		return nil, fmt.Errorf("no schedule data object on %s", u)
	}
	return jscript.Parse(obj)
}
