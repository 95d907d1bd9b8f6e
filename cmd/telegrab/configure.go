package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sgrall/telegrab/config"
	"github.com/sgrall/telegrab/grabbers"
)

// configure builds a fresh configuration file interactively: pick a city
// when the site needs one, then offer every channel of the directory. An
// unreachable directory is fatal here, unlike during a grab, because there
// is nothing to configure from. The adapter is built through newSite so it
// can be rebuilt once the city is known: the line-up offered below must be
// the chosen city's, not the default one.
func configure(ctx context.Context, env *grabbers.Env, newSite func() (grabbers.Grabber, error), opts *Options, in io.Reader, out io.Writer) error {
	g, err := newSite()
	if err != nil {
		return err
	}
	rd := bufio.NewReader(in)
	f := &config.File{
		Source:    env.Conf.Source,
		IDFormat:  env.Conf.IDFormat,
		City:      env.Conf.City,
		Overrides: map[string]string{},
	}

	if lister, ok := g.(grabbers.CityLister); ok && f.City == "" {
		cities, err := lister.Cities(ctx)
		if err != nil {
			return fmt.Errorf("can't fetch the city list: %w", err)
		}
		fmt.Fprintln(out, "Available cities:")
		for _, c := range cities {
			fmt.Fprintf(out, "  %s\t%s\n", c.Code, c.Name)
		}
		fmt.Fprint(out, "City code: ")
		code, err := readLine(rd)
		if err != nil {
			return err
		}
		found := false
		for _, c := range cities {
			if c.Code == code {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown city code %q", code)
		}
		f.City = code
		env.Conf.City = code
		if g, err = newSite(); err != nil {
			return err
		}
	}

	chans, err := g.Channels(ctx)
	if err != nil {
		return fmt.Errorf("can't fetch the channel directory: %w", err)
	}
	if len(chans) == 0 {
		return fmt.Errorf("the channel directory is empty, nothing to configure")
	}

	for _, c := range chans {
		fmt.Fprintf(out, "add channel %s (%s)? [y/N] ", c.Name, c.ID)
		answer, err := readLine(rd)
		if err != nil {
			return err
		}
		yes := strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
		f.Entries = append(f.Entries, config.Entry{ID: c.ID, Name: c.Name, Enabled: yes})
	}

	if err := config.Save(opts.ConfigFile, f, opts.Force); err != nil {
		return err
	}
	fmt.Fprintf(out, "configuration written to %s\n", opts.ConfigFile)
	return nil
}

func readLine(rd *bufio.Reader) (string, error) {
	line, err := rd.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("input ended: %w", err)
	}
	return strings.TrimSpace(line), nil
}
