package meopt

import (
	"context"
	"fmt"
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

func testEnv(t *testing.T, urlMap map[string]string) *grabbers.Env {
	t.Helper()
	log, err := mylog.NewLog("ERROR", nil, nil)
	require.NoError(t, err)
	return &grabbers.Env{
		Log:    log,
		Client: http.NewClient(http.SetTransport(httptest.New(httptest.WithMap(urlMap)))),
	}
}

func TestChannels(t *testing.T) {
	env := testEnv(t, map[string]string{
		channelsURL: filepath.Join("testdata", "channels.xml"),
	})
	g, err := grabbers.New("meopt", env)
	require.NoError(t, err)

	chans, err := g.Channels(context.Background())
	require.NoError(t, err)
	require.Len(t, chans, 2, "the sigla-less separator entry is not a channel")
	assert.Equal(t, "RTP1", chans[0].ID)
	assert.Equal(t, "RTP 1", chans[0].Name)
	assert.Equal(t, "https://epg.tvmeo.example.pt/logos/rtp1.png", chans[0].Icon)
	assert.Equal(t, "SICN", chans[1].ID)
	assert.Equal(t, "SIC Notícias", chans[1].Name)
}

func TestGrabDay(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.FixedZone("WET", 0))
	env := testEnv(t, map[string]string{
		fmt.Sprintf(dayURL, "RTP1", "2024-01-01"): filepath.Join("testdata", "rtp1_2024-01-01.xml"),
	})
	g, err := grabbers.New("meopt", env)
	require.NoError(t, err)

	progs, err := g.Grab(context.Background(), listings.Channel{ID: "RTP1"}, day)
	require.NoError(t, err)
	require.Len(t, progs, 2, "the event without a parseable start is not a show")

	assert.Equal(t, "Bom Dia Portugal", progs[0].Title)
	assert.Equal(t, "A atualidade nacional e internacional.", progs[0].Description)
	assert.Equal(t, "informação", progs[0].Category)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, g.Location()).Unix(), progs[0].Start.Unix())
	assert.Equal(t, time.Date(2024, 1, 1, 11, 0, 0, 0, g.Location()).Unix(), progs[0].Stop.Unix())

	assert.Equal(t, "Sessão da Noite", progs[1].Title)
	assert.True(t, progs[1].Stop.IsZero(), "an empty end field leaves the stop open")
}

func TestIDTemplateAndOverrides(t *testing.T) {
	env := testEnv(t, nil)
	g, err := grabbers.New("meopt", env)
	require.NoError(t, err)
	assert.Equal(t, "RTP1.tv.meo.pt", grabbers.XMLTVID(env, g, "RTP1"))

	env.Conf = &config.File{
		IDFormat:  "%id%.meo.example.org",
		Overrides: map[string]string{"SICN": "sicnoticias"},
	}
	assert.Equal(t, "RTP1.meo.example.org", grabbers.XMLTVID(env, g, "RTP1"))
	assert.Equal(t, "sicnoticias.meo.example.org", grabbers.XMLTVID(env, g, "SICN"))
}
