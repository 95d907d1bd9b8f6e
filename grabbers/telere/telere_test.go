package telere

import (
	"context"
	"fmt"
	nethttp "net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func testGrabber(t *testing.T, slow bool, urlMap map[string]string) (*TeleRe, *countingTransport) {
	t.Helper()
	log, err := mylog.NewLog("ERROR", nil, nil)
	require.NoError(t, err)
	tr := &countingTransport{
		inner: httptest.New(httptest.WithMap(urlMap)),
		calls: map[string]int{},
	}
	env := &grabbers.Env{
		Log:    log,
		Client: http.NewClient(http.SetTransport(tr)),
		Slow:   slow,
	}
	g := &TeleRe{
		env:     env,
		factory: htmlparser.NewFactory(htmlparser.SetTransport(tr)),
		seen:    map[string]detail{},
	}
	return g, tr
}

func TestChannels(t *testing.T) {
	g, _ := testGrabber(t, false, map[string]string{
		chansURL: filepath.Join("testdata", "grille.html"),
	})
	chans, err := g.Channels(context.Background())
	require.NoError(t, err)

	require.Len(t, chans, 2, "the -1 placeholder entry is not a channel")
	assert.Equal(t, "3", chans[0].ID)
	assert.Equal(t, "Antenne Réunion", chans[0].Name)
	assert.Equal(t, "https://www.telere.example.re/logos/3.png", chans[0].Icon)
	assert.Equal(t, "9", chans[1].ID)
	assert.Empty(t, chans[1].Icon)
}

func day() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.FixedZone("RET", 4*3600))
}

func gridFixtures() map[string]string {
	return map[string]string{
		fmt.Sprintf(gridURL, "3", "2024-01-01"):  filepath.Join("testdata", "grid3.html"),
		siteURL + "/grille/3/fiche/journal.html": filepath.Join("testdata", "fiche_journal.html"),
	}
}

func TestGrabFastMode(t *testing.T) {
	g, tr := testGrabber(t, false, gridFixtures())
	progs, err := g.Grab(context.Background(), listings.Channel{ID: "3"}, day())
	require.NoError(t, err)

	require.Len(t, progs, 2, "the all-night filler has no clock and is skipped")
	assert.Equal(t, "Le Journal", progs[0].Title)
	assert.Equal(t, "Information", progs[0].Category)
	assert.Equal(t, time.Date(2024, 1, 1, 20, 5, 0, 0, g.Location()), progs[0].Start.In(g.Location()))
	assert.Empty(t, progs[0].Description, "detail pages are a slow-mode feature")
	assert.Zero(t, tr.calls[siteURL+"/grille/3/fiche/journal.html"])
}

func TestGrabSlowModeFetchesDetailOnce(t *testing.T) {
	g, tr := testGrabber(t, true, gridFixtures())
	progs, err := g.Grab(context.Background(), listings.Channel{ID: "3"}, day())
	require.NoError(t, err)
	require.Len(t, progs, 2)

	for _, p := range progs {
		assert.Equal(t, "L'actualité de la Réunion et de l'océan Indien.", p.Description)
		assert.Equal(t, []string{"Jean Dupont"}, p.Credits.Presenters)
		assert.Equal(t, []string{"Marie Payet"}, p.Credits.Directors)
		assert.Equal(t, "Tous publics", p.Rating)
		assert.True(t, p.Rerun)
	}
	assert.Equal(t, 1, tr.calls[siteURL+"/grille/3/fiche/journal.html"],
		"both showings share one detail page, fetched once per run")
}

func TestGrabFailedDetailKeepsShow(t *testing.T) {
	m := gridFixtures()
	delete(m, siteURL+"/grille/3/fiche/journal.html")
	g, _ := testGrabber(t, true, m)
	progs, err := g.Grab(context.Background(), listings.Channel{ID: "3"}, day())
	require.NoError(t, err)
	require.Len(t, progs, 2)
	assert.Empty(t, progs[0].Description)
}
