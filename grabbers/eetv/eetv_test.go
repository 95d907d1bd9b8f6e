package eetv

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgrall/telegrab/config"
	"github.com/sgrall/telegrab/grabbers"
	"github.com/sgrall/telegrab/listings"
	"github.com/sgrall/telegrab/mylog"
	"github.com/sgrall/telegrab/net/http"
	"github.com/sgrall/telegrab/net/http/httptest"
)

func testEnv(t *testing.T, conf *config.File, urlMap map[string]string) *grabbers.Env {
	t.Helper()
	log, err := mylog.NewLog("ERROR", nil, nil)
	require.NoError(t, err)
	return &grabbers.Env{
		Log:    log,
		Conf:   conf,
		Client: http.NewClient(http.SetTransport(httptest.New(httptest.WithMap(urlMap)))),
	}
}

func TestChannels(t *testing.T) {
	env := testEnv(t, nil, map[string]string{
		mirrors["ee1"] + "/kanalid.php": filepath.Join("testdata", "kanalid.html"),
	})
	g, err := grabbers.New("eetv", env)
	require.NoError(t, err)

	chans, err := g.Channels(context.Background())
	require.NoError(t, err)
	require.Len(t, chans, 2, "zero-id and non-channel links are discarded")
	assert.Equal(t, "3", chans[0].ID)
	assert.Equal(t, "ETV", chans[0].Name)
	assert.Equal(t, "8", chans[1].ID)
}

func TestSourceDirectiveSelectsMirror(t *testing.T) {
	env := testEnv(t, &config.File{Source: "ee2"}, map[string]string{
		mirrors["ee2"] + "/kanalid.php": filepath.Join("testdata", "kanalid.html"),
	})
	g, err := grabbers.New("eetv", env)
	require.NoError(t, err)
	chans, err := g.Channels(context.Background())
	require.NoError(t, err)
	assert.Len(t, chans, 2)
}

func TestGrabSplitsTitles(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.FixedZone("EET", 2*3600))
	env := testEnv(t, nil, map[string]string{
		mirrors["ee1"] + "/kava.php?kanal=3&p=20240101": filepath.Join("testdata", "kava3.html"),
	})
	g, err := grabbers.New("eetv", env)
	require.NoError(t, err)

	progs, err := g.Grab(context.Background(), listings.Channel{ID: "3"}, day)
	require.NoError(t, err)
	require.Len(t, progs, 2, "the block without a clock is not a show")

	assert.Equal(t, "Uudised", progs[0].Title, "machine title length is the cut point")
	assert.Equal(t, "õhtune saade", progs[0].SubTitle)
	assert.Equal(t, "uudised", progs[0].Category)
	assert.Equal(t, time.Date(2024, 1, 1, 19, 0, 0, 0, time.FixedZone("EET", 2*3600)).Unix(),
		progs[0].Start.Unix())

	assert.Equal(t, "Ööfilm", progs[1].Title, "windows-1257 must decode")
	assert.Empty(t, progs[1].SubTitle, "no machine title, whole string stays the title")
	assert.Empty(t, progs[1].Category, "unknown genre code is dropped")
}
