// The httptest package provides a RoundTripper serving local fixture files
// in place of live site pages. Tests install it as the client transport and
// map request urls to files under testdata.

package httptest

import (
	"fmt"
	"net/http"
	"os"
	"strings"
)

type HTTPTest struct {
	// URLToFile maps a request url to the fixture path. The default strips
	// a "file:" prefix and uses the remainder as-is.
	URLToFile func(u string) string
}

func New(conf ...func(ht *HTTPTest)) *HTTPTest {
	ht := &HTTPTest{
		URLToFile: func(u string) string {
			return strings.TrimPrefix(u, "file:")
		},
	}
	for _, fn := range conf {
		fn(ht)
	}
	return ht
}

// WithMap installs a fixed url -> file table; unmapped urls fail the
// request like a dead site would.
func WithMap(m map[string]string) func(ht *HTTPTest) {
	return func(ht *HTTPTest) {
		ht.URLToFile = func(u string) string {
			return m[u]
		}
	}
}

func (ht *HTTPTest) RoundTrip(r *http.Request) (*http.Response, error) {
	u := ""
	if r != nil && r.URL != nil {
		u = r.URL.String()
	}
	path := ht.URLToFile(u)
	if path == "" {
		return nil, fmt.Errorf("httptest: no fixture for %q", u)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("httptest: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("httptest: %w", err)
	}

	header := make(http.Header)
	header.Add("Content-Type", "text/html")
	return &http.Response{
		Status:        "200 OK",
		StatusCode:    200,
		Proto:         "HTTP/1.0",
		ProtoMajor:    1,
		ProtoMinor:    0,
		Body:          f,
		ContentLength: fi.Size(),
		Close:         true,
		Request:       r,
		Header:        header,
	}, nil
}
