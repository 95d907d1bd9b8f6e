// The grabbers package holds the site adapter interface, the adapter
// registry and the run loop shared by every grabber. A site adapter knows
// how to list the site's channels, fetch one day of one channel and
// extract programme records from it; everything downstream (window
// clamping, stop inference, validation, ordering, serialization) is
// common.

package grabbers

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sgrall/telegrab/config"
	"github.com/sgrall/telegrab/listings"
	"github.com/sgrall/telegrab/mylog"
	"github.com/sgrall/telegrab/net/http"
)

// Env is the run context built once at startup from CLI and configuration
// and threaded through every call. There is no package-level state.
type Env struct {
	Log    *mylog.MyLog
	Client *http.Client
	Conf   *config.File
	Slow   bool // fetch per-show detail pages
}

// Grabber is the capability set each site implements.
type Grabber interface {
	// Name is the registry key, e.g. "ilguide".
	Name() string
	// Language tags all emitted text.
	Language() string
	// Location is the site's fixed UTC offset. The sites each cover one
	// region with one standard offset; no timezone database is consulted.
	Location() *time.Location
	// MaxDays is the site's maximum lookahead.
	MaxDays() int
	// IDTemplate derives XMLTV ids from site channel ids, %id% placeholder.
	IDTemplate() string
	// Channels fetches the site's channel directory.
	Channels(ctx context.Context) ([]listings.Channel, error)
	// Grab fetches and extracts one (channel, day). A transport failure is
	// an error; the caller warns and continues with the next unit. The
	// returned order is the extraction order and is preserved.
	Grab(ctx context.Context, ch listings.Channel, day time.Time) ([]listings.Programme, error)
}

// CityLister is the optional capability of sites whose schedule depends
// on a configured city or bundle; the configure step offers the list and
// records the choice as the city directive.
type CityLister interface {
	Cities(ctx context.Context) ([]listings.City, error)
}

// Factory builds a fresh adapter for one run.
type Factory func(env *Env) Grabber

var registry = map[string]Factory{}

// Register is called by each adapter's init.
func Register(name string, f Factory) {
	registry[name] = f
}

// Names lists the registered sites, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New builds the named adapter.
func New(name string, env *Env) (Grabber, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown site %q, have %v", name, Names())
	}
	return f(env), nil
}

// XMLTVID applies the configured id template and the explicit overrides to
// a site channel id.
func XMLTVID(env *Env, g Grabber, id string) string {
	if env.Conf != nil {
		if to, ok := env.Conf.Overrides[id]; ok {
			id = to
		}
	}
	template := g.IDTemplate()
	if env.Conf != nil && env.Conf.IDFormat != "" {
		template = env.Conf.IDFormat
	}
	return listings.XMLTVID(id, template)
}
