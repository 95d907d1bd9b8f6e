// telegrab grabs TV listings from one of the supported sites and writes
// them as XMLTV. The site is picked with --site, channels are selected
// once with --configure, then plain runs produce the listings for the
// requested day window.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/jessevdk/go-flags"

	_ "github.com/sgrall/telegrab/grabbers/bluewin"
	_ "github.com/sgrall/telegrab/grabbers/eetv"
	_ "github.com/sgrall/telegrab/grabbers/ilguide"
	_ "github.com/sgrall/telegrab/grabbers/meopt"
	_ "github.com/sgrall/telegrab/grabbers/netbr"
	_ "github.com/sgrall/telegrab/grabbers/telere"

	"github.com/sgrall/telegrab/config"
	"github.com/sgrall/telegrab/grabbers"
	"github.com/sgrall/telegrab/mylog"
	"github.com/sgrall/telegrab/net/http"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type Options struct {
	Site         string `long:"site" short:"s" description:"Site to grab, see --list-sites"`
	ListSites    bool   `long:"list-sites" description:"List the supported sites and exit"`
	Configure    bool   `long:"configure" description:"Select channels interactively and write the configuration file"`
	ConfigFile   string `long:"config-file" default:"telegrab.conf" description:"Configuration file path"`
	Output       string `long:"output" short:"o" default:"-" description:"Output file, - for stdout"`
	Days         int    `long:"days" default:"0" description:"Number of days to grab, 0 for the site maximum"`
	Offset       int    `long:"offset" default:"0" description:"Start that many days after today"`
	Quiet        bool   `long:"quiet" short:"q" description:"No progress display"`
	ListChannels bool   `long:"list-channels" description:"List the site's channels and exit"`
	Slow         bool   `long:"slow" description:"Fetch per-show detail pages (slower, richer fields)"`
	Delay        int    `long:"delay" default:"0" description:"Seconds to pause between requests"`
	Fetchers     int    `long:"fetchers" default:"1" description:"Concurrent day fetches"`
	Source       string `long:"source" description:"Site data source (mirror or edition), overrides the configured one"`
	City         string `long:"city" description:"City or bundle code, overrides the configured one"`
	IDFormat     string `long:"id-format" description:"XMLTV id template with %id% placeholder, overrides the site default"`
	LogFile      string `long:"log-file" description:"Also write diagnostics to this file"`
	LogLevel     string `long:"log-level" default:"WARN" choice:"FATAL" choice:"ERROR" choice:"WARN" choice:"INFO" choice:"DEBUG" description:"Console log level"`
	Force        bool   `long:"force-overwrite" description:"Let --configure replace an existing configuration file"`
}

func main() {
	opts := &Options{}
	parser := flags.NewParser(opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	// trap Ctrl+C and cancel the context, mid-grab interruption must
	// still close the output document
	ctx, cancel := context.WithCancel(context.Background())
	breakChannel := make(chan os.Signal, 1)
	signal.Notify(breakChannel, os.Interrupt)
	defer func() {
		signal.Stop(breakChannel)
		cancel()
	}()
	go func() {
		select {
		case <-breakChannel:
			cancel()
		case <-ctx.Done():
		}
	}()

	os.Exit(run(ctx, opts))
}

func run(ctx context.Context, opts *Options) int {
	logger, err := newLogger(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	if opts.ListSites {
		for _, n := range grabbers.Names() {
			fmt.Println(n)
		}
		return 0
	}
	if opts.Site == "" {
		logger.Error().Printf("no site selected, pick one of %v with --site", grabbers.Names())
		return 2
	}

	env := &grabbers.Env{
		Log:    logger,
		Client: http.NewClient(http.SetDelay(time.Duration(opts.Delay) * time.Second)),
		Slow:   opts.Slow,
	}

	switch {
	case opts.Configure:
		env.Conf = overriddenConf(nil, opts)
		newSite := func() (grabbers.Grabber, error) { return grabbers.New(opts.Site, env) }
		if _, err := newSite(); err != nil {
			logger.Error().Printf("%v", err)
			return 2
		}
		if err := configure(ctx, env, newSite, opts, os.Stdin, os.Stdout); err != nil {
			logger.Error().Printf("configure failed: %v", err)
			return 1
		}
		return 0

	case opts.ListChannels:
		env.Conf = overriddenConf(nil, opts)
		g, err := grabbers.New(opts.Site, env)
		if err != nil {
			logger.Error().Printf("%v", err)
			return 2
		}
		chans, err := g.Channels(ctx)
		if err != nil || len(chans) == 0 {
			logger.Error().Printf("can't list channels for %s: %v", opts.Site, err)
			return 1
		}
		for _, c := range chans {
			fmt.Printf("%s\t%s\n", c.ID, c.Name)
		}
		return 0

	default:
		conf, err := config.Load(opts.ConfigFile, logger)
		if err != nil {
			logger.Error().Printf("%v", err)
			return 1
		}
		env.Conf = overriddenConf(conf, opts)
		g, err := grabbers.New(opts.Site, env)
		if err != nil {
			logger.Error().Printf("%v", err)
			return 2
		}
		return grab(ctx, env, g, opts)
	}
}

// overriddenConf applies the CLI site options on top of the loaded
// configuration; flags win over file directives.
func overriddenConf(conf *config.File, opts *Options) *config.File {
	if conf == nil {
		conf = &config.File{}
	}
	if opts.Source != "" {
		conf.Source = opts.Source
	}
	if opts.City != "" {
		conf.City = opts.City
	}
	if opts.IDFormat != "" {
		conf.IDFormat = opts.IDFormat
	}
	return conf
}

func newLogger(opts *Options) (*mylog.MyLog, error) {
	var fileLogger mylog.Logger
	if opts.LogFile != "" {
		fd, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("can't open log file: %w", err)
		}
		fileLogger = log.New(fd, "", log.LstdFlags)
	}
	return mylog.NewLog(opts.LogLevel, nil, fileLogger)
}
