// The netbr grabber scrapes the Brazilian cable operator's guide. The
// line-up differs per city, so the configure step scrapes the city
// directory and records the chosen code as the city config directive.
// Pages are iso-8859-1. Detail pages carry the synopsis, the parental
// rating and the rerun flag; they are a slow-mode feature.

package netbr

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"

	"github.com/sgrall/telegrab/grabbers"
	"github.com/sgrall/telegrab/listings"
	"github.com/sgrall/telegrab/net/http"
	"github.com/sgrall/telegrab/parsers/htmlparser"
	"github.com/sgrall/telegrab/textconv"
)

const (
	siteURL   = "http://nettv.example.com.br"
	citiesURL = siteURL + "/cidades"
	chansURL  = siteURL + "/programacao/%s"             // city code
	gridURL   = siteURL + "/programacao/%s/canal/%s/%s" // city, channel, dd-mm-yyyy
	charset   = "iso-8859-1"
	maxDays   = 7

	defaultCity = "011" // Sao Paulo, the operator's largest line-up
)

func init() {
	grabbers.Register("netbr", func(env *grabbers.Env) grabbers.Grabber {
		g := &NetBR{
			env: env,
			factory: htmlparser.NewFactory(
				htmlparser.SetUserAgent(http.UserAgent),
				htmlparser.SetCookieJar(env.Client.Jar),
				htmlparser.SetTransport(env.Client.Transport),
				htmlparser.SetDetectCharset(),
			),
			city: defaultCity,
			seen: map[string]detail{},
		}
		if env.Conf != nil && env.Conf.City != "" {
			g.city = env.Conf.City
		} else {
			env.Log.Warn().Printf("[netbr] no city configured, using %s", defaultCity)
		}
		return g
	})
}

type detail struct {
	description string
	rating      string
	rerun       bool
}

type NetBR struct {
	env     *grabbers.Env
	factory *htmlparser.Factory
	city    string
	seen    map[string]detail // detail url -> fields, reruns share pages
}

func (g *NetBR) Name() string             { return "netbr" }
func (g *NetBR) Language() string         { return "pt" }
func (g *NetBR) Location() *time.Location { return time.FixedZone("BRT", -3*3600) }
func (g *NetBR) MaxDays() int             { return maxDays }
func (g *NetBR) IDTemplate() string       { return "%id%.nettv.example.com.br" }

// Cities scrapes the city selector of the directory page.
func (g *NetBR) Cities(ctx context.Context) ([]listings.City, error) {
	var out []listings.City
	c := g.factory.New()
	c.OnHTML("select#cidade option", func(e *colly.HTMLElement) {
		code := e.Attr("value")
		if code == "" || code == "0" {
			return
		}
		out = append(out, listings.City{Code: code, Name: strings.TrimSpace(e.Text)})
	})
	if err := c.Visit(citiesURL); err != nil {
		return nil, fmt.Errorf("can't fetch city directory: %w", err)
	}
	return out, nil
}

// Channels scrapes the configured city's line-up. Links without a numeric
// canal parameter are navigation, not channels.
func (g *NetBR) Channels(ctx context.Context) ([]listings.Channel, error) {
	var out []listings.Channel
	c := g.factory.New()
	c.OnHTML("div#canais a", func(e *colly.HTMLElement) {
		id := channelID(e.Attr("href"))
		if id == "" {
			return
		}
		out = append(out, listings.Channel{ID: id, Name: strings.TrimSpace(e.Text)})
	})
	if err := c.Visit(fmt.Sprintf(chansURL, g.city)); err != nil {
		return nil, fmt.Errorf("can't fetch line-up for city %s: %w", g.city, err)
	}
	return out, nil
}

func channelID(href string) string {
	_, id, ok := strings.Cut(href, "canal=")
	if !ok {
		return ""
	}
	id, _, _ = strings.Cut(id, "&")
	if n, err := strconv.Atoi(id); err != nil || n <= 0 {
		return ""
	}
	return id
}

// Grab extracts one day grid. The repeating unit is tr.programa; rows
// without a parseable start clock are section headers.
func (g *NetBR) Grab(ctx context.Context, ch listings.Channel, day time.Time) ([]listings.Programme, error) {
	u := fmt.Sprintf(gridURL, g.city, ch.ID, day.Format("02-01-2006"))
	doc, err := g.fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	var out []listings.Programme
	doc.Find("tr.programa").Each(func(_ int, s *goquery.Selection) {
		clock, err := listings.ParseClock(s.Find("td.hora").Text())
		if err != nil {
			return
		}
		p := listings.Programme{
			Start:    clock.On(day, g.Location()),
			Title:    strings.TrimSpace(s.Find("td.titulo").Text()),
			Category: strings.TrimSpace(s.Find("td.genero").Text()),
		}
		if g.env.Slow {
			if href, ok := s.Find("td.titulo a").Attr("href"); ok {
				d := g.detail(ctx, http.Rel(u, href))
				p.Description = d.description
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
func (g *NetBR) detail(ctx context.Context, u string) detail {
	if d, ok := g.seen[u]; ok {
		return d
	}
	var d detail
	doc, err := g.fetch(ctx, u)
	if err != nil {
		g.env.Log.Warn().Printf("[%s] no detail page at %s: %v", g.Name(), u, err)
		g.seen[u] = d
		return d
	}
	d.description = strings.TrimSpace(doc.Find("div.sinopse").Text())
	d.rating = strings.TrimSpace(doc.Find("span.classificacao").Text())
	d.rerun = doc.Find("span.reprise").Length() > 0
	g.seen[u] = d
	return d
}

func (g *NetBR) fetch(ctx context.Context, u string) (*goquery.Document, error) {
	b, err := g.env.Client.GetBytes(ctx, u)
	if err != nil {
		return nil, err
	}
	s, err := textconv.DecodeString(charset, b)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader([]byte(s)))
	if err != nil {
		return nil, fmt.Errorf("can't parse %s: %w", u, err)
	}
	return doc, nil
}
