// The meopt grabber reads the Portuguese MEO programme guide, the one
// site of the suite that serves structured XML instead of HTML pages.
// Events carry full local timestamps, so stop times come from the feed
// itself rather than from inference.

package meopt

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/sgrall/telegrab/grabbers"
	"github.com/sgrall/telegrab/listings"
)

const (
	siteURL     = "https://epg.tvmeo.example.pt"
	channelsURL = siteURL + "/channels.xml"
	dayURL      = siteURL + "/schedule/%s/%s.xml" // channel sigla, yyyy-mm-dd
	timeLayout  = "2006-01-02 15:04"
	maxDays     = 7
)

func init() {
	grabbers.Register("meopt", func(env *grabbers.Env) grabbers.Grabber {
		return &MeoPT{env: env}
	})
}

type MeoPT struct {
	env *grabbers.Env
}

func (g *MeoPT) Name() string             { return "meopt" }
func (g *MeoPT) Language() string         { return "pt" }
func (g *MeoPT) Location() *time.Location { return time.FixedZone("WET", 0) }
func (g *MeoPT) MaxDays() int             { return maxDays }
func (g *MeoPT) IDTemplate() string       { return "%id%.tv.meo.pt" }

type channelFeed struct {
	Channels []struct {
		Sigla string `xml:"sigla"`
		Name  string `xml:"name"`
		Logo  string `xml:"logo"`
	} `xml:"channel"`
}

type scheduleFeed struct {
	Events []struct {
		Start string `xml:"start"`
		End   string `xml:"end"`
		Title string `xml:"title"`
		Desc  string `xml:"description"`
		Genre string `xml:"genre"`
	} `xml:"event"`
}

// Channels reads the channel feed. The sigla is the channel id; entries
// without one are separators in the feed, not channels.
func (g *MeoPT) Channels(ctx context.Context) ([]listings.Channel, error) {
	var feed channelFeed
	if err := g.fetch(ctx, channelsURL, &feed); err != nil {
		return nil, err
	}
	var out []listings.Channel
	for _, c := range feed.Channels {
		id := strings.TrimSpace(c.Sigla)
		if id == "" {
			continue
		}
		out = append(out, listings.Channel{ID: id, Name: strings.TrimSpace(c.Name), Icon: c.Logo})
	}
	return out, nil
}

// Grab reads one day feed. An event without a parseable start is not a
// show; an unparseable end only costs the stop time.
func (g *MeoPT) Grab(ctx context.Context, ch listings.Channel, day time.Time) ([]listings.Programme, error) {
	u := fmt.Sprintf(dayURL, ch.ID, day.Format("2006-01-02"))
	var feed scheduleFeed
	if err := g.fetch(ctx, u, &feed); err != nil {
		return nil, err
	}
	var out []listings.Programme
	for _, ev := range feed.Events {
		start, err := time.ParseInLocation(timeLayout, strings.TrimSpace(ev.Start), g.Location())
		if err != nil {
			continue
		}
		p := listings.Programme{
			Start:       start,
			Title:       strings.TrimSpace(ev.Title),
			Description: strings.TrimSpace(ev.Desc),
			Category:    strings.TrimSpace(ev.Genre),
		}
		if stop, err := time.ParseInLocation(timeLayout, strings.TrimSpace(ev.End), g.Location()); err == nil {
			p.Stop = stop
		}
		out = append(out, p)
	}
	return out, nil
}

func (g *MeoPT) fetch(ctx context.Context, u string, v interface{}) error {
	b, err := g.env.Client.GetBytes(ctx, u)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("can't read feed %s: %w", u, err)
	}
	return nil
}
