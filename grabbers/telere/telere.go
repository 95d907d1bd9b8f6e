// The telere grabber scrapes the Reunion Island listings site. The
// channel directory and the day grids are plain UTF-8 pages. In slow mode
// each show's detail page is fetched too, bringing description, cast,
// rating and the rerun flag; detail pages shared by reruns are fetched
// once per run.

package telere

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"

	"github.com/sgrall/telegrab/grabbers"
	"github.com/sgrall/telegrab/listings"
	"github.com/sgrall/telegrab/net/http"
	"github.com/sgrall/telegrab/parsers/htmlparser"
)

const (
	siteURL  = "https://www.telere.example.re"
	gridURL  = siteURL + "/grille/%s/%s" // channel id, yyyy-mm-dd
	chansURL = siteURL + "/grille"
	maxDays  = 10
)

func init() {
	grabbers.Register("telere", func(env *grabbers.Env) grabbers.Grabber {
		return &TeleRe{
			env: env,
			factory: htmlparser.NewFactory(
				htmlparser.SetUserAgent(http.UserAgent),
				htmlparser.SetCookieJar(env.Client.Jar),
				htmlparser.SetTransport(env.Client.Transport),
			),
			seen: map[string]detail{},
		}
	})
}

type detail struct {
	description string
	credits     listings.Credits
	rating      string
	rerun       bool
}

type TeleRe struct {
	env     *grabbers.Env
	factory *htmlparser.Factory
	seen    map[string]detail // detail url -> fields, reruns share pages
}

func (g *TeleRe) Name() string             { return "telere" }
func (g *TeleRe) Language() string         { return "fr" }
func (g *TeleRe) Location() *time.Location { return time.FixedZone("RET", 4*3600) }
func (g *TeleRe) MaxDays() int             { return maxDays }
func (g *TeleRe) IDTemplate() string       { return "%id%.telere.example.re" }

// Channels scrapes the channel selector of the grid page.
func (g *TeleRe) Channels(ctx context.Context) ([]listings.Channel, error) {
	var out []listings.Channel
	c := g.factory.New()
	c.OnHTML("select#chaines option", func(e *colly.HTMLElement) {
		id := e.Attr("value")
		if id == "" || id == "-1" {
			return
		}
		out = append(out, listings.Channel{
			ID:   id,
			Name: strings.TrimSpace(e.Text),
			Icon: e.Attr("data-logo"),
		})
	})
	if err := c.Visit(chansURL); err != nil {
		return nil, fmt.Errorf("can't fetch channel directory: %w", err)
	}
	return out, nil
}

// Grab extracts one day grid. The repeating unit is div.programme; rows
// without a parseable start clock are fillers.
func (g *TeleRe) Grab(ctx context.Context, ch listings.Channel, day time.Time) ([]listings.Programme, error) {
	u := fmt.Sprintf(gridURL, ch.ID, day.Format("2006-01-02"))
	b, err := g.env.Client.GetBytes(ctx, u)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("can't parse %s: %w", u, err)
	}

	var out []listings.Programme
	doc.Find("div.programme").Each(func(_ int, s *goquery.Selection) {
		clock, err := listings.ParseClock(s.Find("span.heure").Text())
		if err != nil {
			return
		}
		p := listings.Programme{
			Start:    clock.On(day, g.Location()),
			Title:    strings.TrimSpace(s.Find("span.titre").Text()),
			Category: strings.TrimSpace(s.Find("span.genre").Text()),
		}
		if g.env.Slow {
			if href, ok := s.Find("a.fiche").Attr("href"); ok {
				d := g.detail(ctx, http.Rel(u, href))
				p.Description = d.description
				p.Credits = d.credits
				p.Rating = d.rating
				p.Rerun = d.rerun
			}
		}
		out = append(out, p)
	})
	return out, nil
}

// detail fetches a show's detail page, once per distinct url and run. A
// failed detail fetch costs the extra fields only, never the show.
func (g *TeleRe) detail(ctx context.Context, u string) detail {
	if d, ok := g.seen[u]; ok {
		return d
	}
	var d detail
	b, err := g.env.Client.GetBytes(ctx, u)
	if err != nil {
		g.env.Log.Warn().Printf("[%s] no detail page at %s: %v", g.Name(), u, err)
		g.seen[u] = d
		return d
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		g.env.Log.Warn().Printf("[%s] unreadable detail page at %s: %v", g.Name(), u, err)
		g.seen[u] = d
		return d
	}

	d.description = strings.TrimSpace(doc.Find("div.resume").Text())
	d.rating = strings.TrimSpace(doc.Find("span.csa").Text())
	d.rerun = doc.Find("span.rediff").Length() > 0
	doc.Find("div.casting p").Each(func(_ int, s *goquery.Selection) {
		label := strings.TrimSpace(s.Find("strong").Text())
		names := splitNames(strings.TrimPrefix(strings.TrimSpace(s.Text()), label))
		switch {
		case strings.HasPrefix(label, "Réalis"):
			d.credits.Directors = append(d.credits.Directors, names...)
		case strings.HasPrefix(label, "Avec"):
			d.credits.Actors = append(d.credits.Actors, names...)
		case strings.HasPrefix(label, "Présent"):
			d.credits.Presenters = append(d.credits.Presenters, names...)
		case strings.HasPrefix(label, "Scénar"):
			d.credits.Writers = append(d.credits.Writers, names...)
		}
	})
	g.seen[u] = d
	return d
}

func splitNames(s string) []string {
	s = strings.TrimLeft(strings.TrimSpace(s), ": ")
	if s == "" {
		return nil
	}
	var out []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
