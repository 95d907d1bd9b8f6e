// The htmlparser package wraps the colly dependency so that collectors
// share the grabber's cookie jar, user agent and transport. Adapters that
// scrape with CSS selectors get their collectors from a Factory built once
// at startup.

package htmlparser

import (
	"net/http"
	"net/http/cookiejar"

	"github.com/gocolly/colly"
	"github.com/gocolly/colly/debug"
)

type Factory struct {
	jar           *cookiejar.Jar
	roundTripper  http.RoundTripper
	userAgent     string
	debugger      debug.Debugger
	detectCharset bool
}

func SetCookieJar(jar *cookiejar.Jar) func(f *Factory) {
	return func(f *Factory) {
		f.jar = jar
	}
}

func SetUserAgent(userAgent string) func(f *Factory) {
	return func(f *Factory) {
		f.userAgent = userAgent
	}
}

func SetTransport(rt http.RoundTripper) func(f *Factory) {
	return func(f *Factory) {
		f.roundTripper = rt
	}
}

func SetDebugger(d debug.Debugger) func(f *Factory) {
	return func(f *Factory) {
		f.debugger = d
	}
}

// SetDetectCharset turns on response charset sniffing, for sites still
// serving legacy 8-bit encodings without a charset in the content type.
func SetDetectCharset() func(f *Factory) {
	return func(f *Factory) {
		f.detectCharset = true
	}
}

func NewFactory(conf ...func(f *Factory)) *Factory {
	f := &Factory{}
	for _, fn := range conf {
		fn(f)
	}
	return f
}

// New creates a collector carrying the factory's settings.
func (f *Factory) New() *colly.Collector {
	c := colly.NewCollector()
	if f.debugger != nil {
		c.SetDebugger(f.debugger)
	}
	if len(f.userAgent) > 0 {
		c.UserAgent = f.userAgent
	}
	if f.jar != nil {
		c.SetCookieJar(f.jar)
	}
	if f.roundTripper != nil {
		c.WithTransport(f.roundTripper)
	}
	c.DetectCharset = f.detectCharset
	return c
}
