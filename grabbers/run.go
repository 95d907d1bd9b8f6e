package grabbers

import (
	"context"
	"fmt"
	"time"

	"github.com/sgrall/telegrab/listings"
	"github.com/sgrall/telegrab/workers"
	"github.com/sgrall/telegrab/xmltv"
)

// Emitter is the consumed slice of the interchange writer.
type Emitter interface {
	WriteChannel(xmltv.Channel) error
	WriteProgramme(xmltv.Programme) error
}

// RunOptions tune one grab run.
type RunOptions struct {
	Window   listings.Window
	Fetchers int                   // concurrent day fetches, 1 = sequential
	Progress func(done, total int) // optional, called after each (channel, day)
}

// Report summarizes a run for exit-code decisions.
type Report struct {
	Channels   int
	Programmes int
}

type dayResult struct {
	progs []listings.Programme
	err   error
}

// Run executes the grab: enabled channels from the configuration, the
// requested day window, fetch, normalize, emit. A failed channel or day is
// warned about and skipped; only producing nothing at all is reported to
// the caller through the Report.
func Run(ctx context.Context, env *Env, g Grabber, w Emitter, opts RunOptions) (Report, error) {
	var rep Report

	window := opts.Window
	if window.Clamp(g.MaxDays()) {
		env.Log.Warn().Printf("[%s] requested window exceeds the site's %d day lookahead, grabbing offset=%d days=%d",
			g.Name(), g.MaxDays(), window.Offset, window.Days)
	}

	channels := selectChannels(ctx, env, g)
	if len(channels) == 0 {
		return rep, fmt.Errorf("no usable channel, run --configure")
	}
	rep.Channels = len(channels)

	for _, ch := range channels {
		if err := w.WriteChannel(xmltv.Channel{
			ID:           ch.XMLTVID,
			DisplayNames: []xmltv.LangString{{Text: ch.Name, Lang: g.Language()}},
			Icon:         ch.Icon,
		}); err != nil {
			return rep, err
		}
	}

	today := time.Now().In(g.Location())
	first := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, g.Location()).
		AddDate(0, 0, window.Offset)

	pool := workers.New(opts.Fetchers)
	defer pool.Stop()

	done := 0
	total := len(channels) * window.Days
	for _, ch := range channels {
		ch := ch
		results := make([]dayResult, window.Days)
		workers.Ordered(pool, window.Days, g.Name()+"/"+ch.ID, func(i int) {
			day := first.AddDate(0, 0, i)
			progs, err := g.Grab(ctx, ch, day)
			results[i] = dayResult{progs: progs, err: err}
		})

		var channelProgs []listings.Programme
		for i := range results {
			day := first.AddDate(0, 0, i)
			if err := results[i].err; err != nil {
				env.Log.Warn().Printf("[%s] no data for channel %s on %s: %v",
					g.Name(), ch.ID, day.Format("2006-01-02"), err)
			} else if len(results[i].progs) == 0 {
				env.Log.Warn().Printf("[%s] page for channel %s on %s matched zero shows, the site layout may have changed; re-running --configure may help",
					g.Name(), ch.ID, day.Format("2006-01-02"))
			} else {
				dayProgs := normalizeDay(env, g, ch, results[i].progs)
				channelProgs = append(channelProgs, dayProgs...)
			}
			done++
			if opts.Progress != nil {
				opts.Progress(done, total)
			}
		}

		channelProgs = dedupe(channelProgs) // repeats across day pages
		for _, p := range channelProgs {
			if err := w.WriteProgramme(p.XMLTV(g.Language())); err != nil {
				return rep, err
			}
			rep.Programmes++
		}

		if ctx.Err() != nil {
			return rep, ctx.Err()
		}
	}
	return rep, nil
}

// selectChannels resolves the enabled configuration entries against the
// site directory. Stale entries are skipped with a warning. When the
// directory itself can't be fetched the configured entries are used as-is:
// a directory outage must not kill a grab that may still work.
func selectChannels(ctx context.Context, env *Env, g Grabber) []listings.Channel {
	directory := map[string]listings.Channel{}
	if chans, err := g.Channels(ctx); err != nil {
		env.Log.Warn().Printf("[%s] can't fetch channel directory, configured channels used unverified: %v", g.Name(), err)
		directory = nil
	} else {
		for _, c := range chans {
			directory[c.ID] = c
		}
	}

	var out []listings.Channel
	for _, e := range env.Conf.Enabled() {
		ch := listings.Channel{ID: e.ID, Name: e.Name}
		if directory != nil {
			d, ok := directory[e.ID]
			if !ok {
				env.Log.Warn().Printf("[%s] configured channel %s (%s) is gone from the site, skipped", g.Name(), e.ID, e.Name)
				continue
			}
			ch.Icon = d.Icon
			if ch.Name == "" {
				ch.Name = d.Name
			}
		}
		ch.XMLTVID = XMLTVID(env, g, e.ID)
		out = append(out, ch)
	}
	return out
}

// normalizeDay applies the cross-cutting normalization to one extracted
// day: dedupe, stop inference in extraction order, then the
// stop-before-start guard (drop, never correct). Dedupe must come first:
// a repeated block would otherwise donate its own start as the survivor's
// stop and emit a zero-length programme.
func normalizeDay(env *Env, g Grabber, ch listings.Channel, progs []listings.Programme) []listings.Programme {
	for i := range progs {
		if progs[i].Channel == "" {
			progs[i].Channel = ch.XMLTVID
		}
	}
	progs = dedupe(progs)
	listings.InferStops(progs)
	for i := range progs {
		if progs[i].CheckStop() {
			env.Log.Warn().Printf("[%s] show %q on %s stops before it starts, stop time dropped",
				g.Name(), progs[i].Title, ch.ID)
		}
	}
	return progs
}

// dedupe removes exact repeats of (start, title) on the same channel,
// keeping the first occurrence. Sites repeat blocks across page sections.
func dedupe(progs []listings.Programme) []listings.Programme {
	seen := map[string]bool{}
	out := progs[:0]
	for _, p := range progs {
		key := p.Channel + "\x00" + p.Start.Format(time.RFC3339) + "\x00" + p.Title
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
