package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/vbauerster/mpb/v4"
	"github.com/vbauerster/mpb/v4/decor"

	"github.com/sgrall/telegrab/grabbers"
	"github.com/sgrall/telegrab/listings"
	"github.com/sgrall/telegrab/xmltv"
)

// grab runs one listings grab and writes the XMLTV document. The exit
// code is non-zero when the run produced nothing at all; partial data is
// a success with warnings already on the diagnostic stream.
func grab(ctx context.Context, env *grabbers.Env, g grabbers.Grabber, opts *Options) int {
	out := io.WriteCloser(os.Stdout)
	if opts.Output != "-" {
		fd, err := os.Create(opts.Output)
		if err != nil {
			env.Log.Error().Printf("can't create output: %v", err)
			return 1
		}
		out = fd
	}
	defer out.Close()

	w, err := xmltv.New(out, xmltv.Header{
		GeneratorName: "telegrab/" + version,
		GeneratorURL:  "https://github.com/sgrall/telegrab",
		SourceName:    g.Name(),
		Date:          time.Now(),
	})
	if err != nil {
		env.Log.Error().Printf("%v", err)
		return 1
	}

	days := opts.Days
	if days <= 0 {
		days = g.MaxDays()
	}
	runOpts := grabbers.RunOptions{
		Window:   listings.Window{Offset: opts.Offset, Days: days},
		Fetchers: opts.Fetchers,
	}

	var pc *mpb.Progress
	var bar *mpb.Bar
	if !opts.Quiet {
		pc = mpb.NewWithContext(ctx, mpb.WithWidth(64))
		runOpts.Progress = func(done, total int) {
			if bar == nil {
				bar = pc.AddBar(int64(total),
					mpb.PrependDecorators(decor.Name(g.Name())),
					mpb.AppendDecorators(decor.CountersNoUnit("%d / %d")),
				)
			}
			bar.Increment()
		}
	}

	rep, runErr := grabbers.Run(ctx, env, g, w, runOpts)
	if pc != nil {
		if bar != nil {
			bar.SetTotal(bar.Current(), true)
		}
		pc.Wait()
	}
	if err := w.Close(); err != nil {
		env.Log.Error().Printf("%v", err)
		return 1
	}
	if runErr != nil {
		env.Log.Error().Printf("grab failed: %v", runErr)
		return 1
	}
	if rep.Programmes == 0 {
		env.Log.Error().Printf("grab produced no programme at all")
		return 1
	}
	env.Log.Info().Printf("wrote %d programmes on %d channels", rep.Programmes, rep.Channels)
	return 0
}
