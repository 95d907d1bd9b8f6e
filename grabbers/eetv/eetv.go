// The eetv grabber scrapes the Estonian listings site, which publishes the
// same schedule on two mirrors. Pages are windows-1257. Titles come as one
// concatenated string; the title attribute of the name element carries the
// machine-readable short title whose length is the only reliable cut point
// between title and episode subtitle.

package eetv

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
	charset = "windows-1257"
	maxDays = 7
	// source directive values and their hosts; ee1 is the default
	defaultSource = "ee1"
)

var mirrors = map[string]string{
	"ee1": "http://kava.example.ee",
	"ee2": "http://tele.mirror.example.ee",
}

var genres = map[string]string{
	"1": "uudised",
	"2": "film",
	"3": "sport",
	"4": "lastesaade",
	"5": "muusika",
	"6": "dokumentaal",
}

func init() {
	grabbers.Register("eetv", func(env *grabbers.Env) grabbers.Grabber {
		g := &EeTV{env: env, base: mirrors[defaultSource]}
		if env.Conf != nil && env.Conf.Source != "" {
			if base, ok := mirrors[env.Conf.Source]; ok {
				g.base = base
			} else {
				env.Log.Warn().Printf("[eetv] unknown source %q, using %s", env.Conf.Source, defaultSource)
			}
		}
		return g
	})
}

type EeTV struct {
	env  *grabbers.Env
	base string
}

func (g *EeTV) Name() string             { return "eetv" }
func (g *EeTV) Language() string         { return "et" }
func (g *EeTV) Location() *time.Location { return time.FixedZone("EET", 2*3600) }
func (g *EeTV) MaxDays() int             { return maxDays }
func (g *EeTV) IDTemplate() string       { return "%id%.kava.example.ee" }

var (
	chanListMatcher = htmlmatch.Matcher{Tag: "div", Attrs: map[string]string{"id": "kanalid"}}
	chanLinkMatcher = htmlmatch.Matcher{Tag: "a"}
	blockMatcher    = htmlmatch.Matcher{Tag: "div", Attrs: map[string]string{"class": "saade"}}
	clockMatcher    = htmlmatch.Matcher{Tag: "span", Attrs: map[string]string{"class": "kell"}}
	nameMatcher     = htmlmatch.Matcher{Tag: "span", Attrs: map[string]string{"class": "nimi"}}
)

// Channels enumerates the channel links of the directory block.
func (g *EeTV) Channels(ctx context.Context) ([]listings.Channel, error) {
	doc, err := g.fetch(ctx, g.base+"/kanalid.php")
	if err != nil {
		return nil, err
	}
	list := htmlmatch.Find(doc, chanListMatcher)
	if list == nil {
		return nil, fmt.Errorf("no channel list block on the directory page")
	}
	var out []listings.Channel
	for _, a := range htmlmatch.FindAll(list, chanLinkMatcher) {
		id := channelID(htmlmatch.Attr(a, "href"))
		if id == "" {
			continue
		}
		out = append(out, listings.Channel{ID: id, Name: htmlmatch.InnerText(a)})
	}
	return out, nil
}

// channelID pulls the kanal parameter off a directory link and validates
// it: non-numeric or zero ids are navigation links, not channels.
func channelID(href string) string {
	_, id, ok := strings.Cut(href, "kanal=")
	if !ok {
		return ""
	}
	id, _, _ = strings.Cut(id, "&")
	if n, err := strconv.Atoi(id); err != nil || n <= 0 {
		return ""
	}
	return id
}

// Grab fetches one day page and extracts the show blocks.
func (g *EeTV) Grab(ctx context.Context, ch listings.Channel, day time.Time) ([]listings.Programme, error) {
	u := fmt.Sprintf("%s/kava.php?kanal=%s&p=%s", g.base, ch.ID, day.Format("20060102"))
	doc, err := g.fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	var out []listings.Programme
	for _, block := range htmlmatch.FindAll(doc, blockMatcher) {
		clockNode := htmlmatch.Find(block, clockMatcher)
		nameNode := htmlmatch.Find(block, nameMatcher)
		if clockNode == nil || nameNode == nil {
			continue
		}
		clock, err := listings.ParseClock(htmlmatch.InnerText(clockNode))
		if err != nil {
			continue
		}
		machine := htmlmatch.Attr(nameNode, "title")
		title, sub := listings.SplitTitle(htmlmatch.InnerText(nameNode), len([]rune(machine)))
		p := listings.Programme{
			Start:    clock.On(day, g.Location()),
			Title:    title,
			SubTitle: sub,
		}
		if cat, ok := genres[htmlmatch.Attr(block, "data-zanr")]; ok {
			p.Category = cat
		}
		out = append(out, p)
	}
	return out, nil
}

func (g *EeTV) fetch(ctx context.Context, u string) (*html.Node, error) {
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
