package netbr

import (
	"context"
	"fmt"
	nethttp "net/http"
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
	"github.com/sgrall/telegrab/parsers/htmlparser"
)

type countingTransport struct {
	inner nethttp.RoundTripper
	calls map[string]int
}

func (t *countingTransport) RoundTrip(r *nethttp.Request) (*nethttp.Response, error) {
	t.calls[r.URL.String()]++
	return t.inner.RoundTrip(r)
}

func testGrabber(t *testing.T, conf *config.File, slow bool, urlMap map[string]string) (*NetBR, *countingTransport) {
	t.Helper()
	log, err := mylog.NewLog("ERROR", nil, nil)
	require.NoError(t, err)
	tr := &countingTransport{
		inner: httptest.New(httptest.WithMap(urlMap)),
		calls: map[string]int{},
	}
	env := &grabbers.Env{
		Log:    log,
		Conf:   conf,
		Client: http.NewClient(http.SetTransport(tr)),
		Slow:   slow,
	}
	g := &NetBR{
		env: env,
		factory: htmlparser.NewFactory(
			htmlparser.SetTransport(tr),
			htmlparser.SetDetectCharset(),
		),
		city: defaultCity,
		seen: map[string]detail{},
	}
	if conf != nil && conf.City != "" {
		g.city = conf.City
	}
	return g, tr
}

func TestCities(t *testing.T) {
	g, _ := testGrabber(t, nil, false, map[string]string{
		citiesURL: filepath.Join("testdata", "cidades.html"),
	})
	cities, err := g.Cities(context.Background())
	require.NoError(t, err)

	require.Len(t, cities, 2, "the zero placeholder is not a city")
	assert.Equal(t, "011", cities[0].Code)
	assert.Equal(t, "São Paulo", cities[0].Name, "iso-8859-1 must decode")
	assert.Equal(t, "021", cities[1].Code)
}

func TestChannels(t *testing.T) {
	g, _ := testGrabber(t, &config.File{City: "011"}, false, map[string]string{
		fmt.Sprintf(chansURL, "011"): filepath.Join("testdata", "lineup011.html"),
	})
	chans, err := g.Channels(context.Background())
	require.NoError(t, err)

	require.Len(t, chans, 2, "canal=0 and plain navigation links are discarded")
	assert.Equal(t, "21", chans[0].ID)
	assert.Equal(t, "Globo", chans[0].Name)
	assert.Equal(t, "48", chans[1].ID)
}

func day() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.FixedZone("BRT", -3*3600))
}

func gridFixtures() map[string]string {
	grid := fmt.Sprintf(gridURL, "011", "21", "01-01-2024")
	return map[string]string{
		grid: filepath.Join("testdata", "grid21.html"),
		siteURL + "/programacao/011/canal/21/detalhe/bomdia.html": filepath.Join("testdata", "detalhe_bomdia.html"),
		siteURL + "/programacao/011/canal/21/detalhe/coruja.html": filepath.Join("testdata", "detalhe_coruja.html"),
	}
}

func TestGrabFastMode(t *testing.T) {
	g, tr := testGrabber(t, &config.File{City: "011"}, false, gridFixtures())
	progs, err := g.Grab(context.Background(), listings.Channel{ID: "21"}, day())
	require.NoError(t, err)

	require.Len(t, progs, 2, "the section header row has no clock and is skipped")
	assert.Equal(t, "Bom Dia Brasil", progs[0].Title)
	assert.Equal(t, "jornalismo", progs[0].Category)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, g.Location()).Unix(), progs[0].Start.Unix())
	assert.Equal(t, "Sessão Coruja", progs[1].Title)
	assert.Empty(t, progs[0].Description, "detail pages are a slow-mode feature")
	assert.Zero(t, tr.calls[siteURL+"/programacao/011/canal/21/detalhe/bomdia.html"])
}

func TestGrabSlowMode(t *testing.T) {
	g, tr := testGrabber(t, &config.File{City: "011"}, true, gridFixtures())
	progs, err := g.Grab(context.Background(), listings.Channel{ID: "21"}, day())
	require.NoError(t, err)
	require.Len(t, progs, 2)

	assert.Equal(t, "As primeiras notícias do dia.", progs[0].Description)
	assert.Equal(t, "Livre", progs[0].Rating)
	assert.False(t, progs[0].Rerun)

	assert.Equal(t, "Clássicos do cinema na madrugada.", progs[1].Description)
	assert.Equal(t, "14 anos", progs[1].Rating)
	assert.True(t, progs[1].Rerun)

	assert.Equal(t, 1, tr.calls[siteURL+"/programacao/011/canal/21/detalhe/coruja.html"])
}

func TestGrabFailedDetailKeepsShow(t *testing.T) {
	m := gridFixtures()
	delete(m, siteURL+"/programacao/011/canal/21/detalhe/coruja.html")
	g, _ := testGrabber(t, &config.File{City: "011"}, true, m)
	progs, err := g.Grab(context.Background(), listings.Channel{ID: "21"}, day())
	require.NoError(t, err)
	require.Len(t, progs, 2)
	assert.Empty(t, progs[1].Description)
}
