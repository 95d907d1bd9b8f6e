package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgrall/telegrab/config"
	"github.com/sgrall/telegrab/grabbers"
	"github.com/sgrall/telegrab/listings"
	"github.com/sgrall/telegrab/mylog"
)

type stubSite struct {
	channels []listings.Channel
}

func (s *stubSite) Name() string             { return "stub" }
func (s *stubSite) Language() string         { return "en" }
func (s *stubSite) Location() *time.Location { return time.UTC }
func (s *stubSite) MaxDays() int             { return 7 }
func (s *stubSite) IDTemplate() string       { return "%id%.stub.example" }
func (s *stubSite) Channels(ctx context.Context) ([]listings.Channel, error) {
	return s.channels, nil
}
func (s *stubSite) Grab(ctx context.Context, ch listings.Channel, day time.Time) ([]listings.Programme, error) {
	return nil, nil
}

// cityStubSite additionally needs a configured city, like the Brazilian site.
type cityStubSite struct {
	stubSite
	cities []listings.City
}

func (s *cityStubSite) Cities(ctx context.Context) ([]listings.City, error) {
	return s.cities, nil
}

func testEnv(t *testing.T) *grabbers.Env {
	t.Helper()
	log, err := mylog.NewLog("ERROR", nil, nil)
	require.NoError(t, err)
	return &grabbers.Env{Log: log, Conf: &config.File{}}
}

func TestConfigureWritesSelection(t *testing.T) {
	// the line-up differs per city, like on the Brazilian site
	lineups := map[string][]listings.Channel{
		"":    {{ID: "1", Name: "Default"}},
		"021": {{ID: "21", Name: "First"}, {ID: "48", Name: "Second"}},
	}
	env := testEnv(t)
	newSite := func() (grabbers.Grabber, error) {
		return &cityStubSite{
			stubSite: stubSite{channels: lineups[env.Conf.City]},
			cities:   []listings.City{{Code: "011", Name: "Metropolis"}, {Code: "021", Name: "Smallville"}},
		}, nil
	}
	opts := &Options{ConfigFile: filepath.Join(t.TempDir(), "telegrab.conf")}

	// city 021, take the first channel, skip the second
	in := strings.NewReader("021\ny\n\n")
	var out bytes.Buffer
	require.NoError(t, configure(context.Background(), env, newSite, opts, in, &out))
	assert.Contains(t, out.String(), "Smallville")

	f, err := config.Load(opts.ConfigFile, env.Log)
	require.NoError(t, err)
	assert.Equal(t, "021", f.City)
	require.Len(t, f.Entries, 2, "the channels offered must be the chosen city's line-up")
	assert.True(t, f.Entries[0].Enabled)
	assert.Equal(t, "21", f.Entries[0].ID)
	assert.False(t, f.Entries[1].Enabled, "anything but yes keeps the channel disabled")
}

func TestConfigureRefusesUnknownCity(t *testing.T) {
	newSite := func() (grabbers.Grabber, error) {
		return &cityStubSite{cities: []listings.City{{Code: "011", Name: "Metropolis"}}}, nil
	}
	env := testEnv(t)
	opts := &Options{ConfigFile: filepath.Join(t.TempDir(), "telegrab.conf")}
	err := configure(context.Background(), env, newSite, opts, strings.NewReader("999\n"), &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown city")
}

func TestConfigureProtectsExistingFile(t *testing.T) {
	newSite := func() (grabbers.Grabber, error) {
		return &stubSite{channels: []listings.Channel{{ID: "21", Name: "First"}}}, nil
	}
	env := testEnv(t)
	path := filepath.Join(t.TempDir(), "telegrab.conf")
	require.NoError(t, config.Save(path, &config.File{Entries: []config.Entry{{ID: "x", Name: "old", Enabled: true}}}, false))

	opts := &Options{ConfigFile: path}
	err := configure(context.Background(), env, newSite, opts, strings.NewReader("y\n"), &bytes.Buffer{})
	require.ErrorIs(t, err, config.ErrExists)

	opts.Force = true
	require.NoError(t, configure(context.Background(), env, newSite, opts, strings.NewReader("y\n"), &bytes.Buffer{}))
}

func TestOverriddenConf(t *testing.T) {
	conf := &config.File{Source: "file", City: "file"}
	got := overriddenConf(conf, &Options{Source: "flag", IDFormat: "%id%.x"})
	assert.Equal(t, "flag", got.Source, "flags win over file directives")
	assert.Equal(t, "file", got.City)
	assert.Equal(t, "%id%.x", got.IDFormat)
}
