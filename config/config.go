// The config package reads and writes the line-oriented channel selection
// file shared by all grabbers. One channel per line, a leading # disables
// it, site directives use distinct line prefixes:
//
//	source ee1
//	id-format %id%.tv.meo.pt
//	city 011
//	map 2=games
//	channel 13 Channel 2     # inline comments allowed
//	#channel 22 Disabled One
//
// Lines matching no recognized grammar are reported and skipped; the file
// still loads as long as at least one channel remains enabled.

package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sgrall/telegrab/mylog"
)

// ErrNoConfig is returned when the file is absent. The caller should tell
// the user to run the configure step.
var ErrNoConfig = errors.New("no configuration file")

// ErrExists is returned by Save when the destination exists and no
// overwrite was requested, protecting hand-edited files.
var ErrExists = errors.New("configuration file already exists")

// Entry is one channel line.
type Entry struct {
	ID      string
	Name    string
	Enabled bool
}

// File is a parsed configuration.
type File struct {
	Entries   []Entry
	Source    string            // selected data source (mirror / site edition)
	IDFormat  string            // XMLTV id template, %id% placeholder
	City      string            // city/bundle code
	Overrides map[string]string // explicit id -> id overrides
}

// Enabled returns the enabled channel lines, in file order.
func (f *File) Enabled() []Entry {
	var out []Entry
	for _, e := range f.Entries {
		if e.Enabled {
			out = append(out, e)
		}
	}
	return out
}

// Load parses the file at path. Directive lines are handled before channel
// lines are matched. A file yielding zero enabled channels is an error.
func Load(path string, log *mylog.MyLog) (*File, error) {
	fd, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s, run --configure first", ErrNoConfig, path)
		}
		return nil, fmt.Errorf("can't open configuration: %w", err)
	}
	defer fd.Close()

	f := &File{Overrides: map[string]string{}}
	sc := bufio.NewScanner(fd)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := f.parseLine(line); err != nil {
			log.Warn().Printf("%s:%d: %v, line skipped", path, lineNo, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("can't read configuration: %w", err)
	}
	if len(f.Enabled()) == 0 {
		return nil, fmt.Errorf("no channel enabled in %s, run --configure", path)
	}
	return f, nil
}

func (f *File) parseLine(line string) error {
	enabled := true
	if strings.HasPrefix(line, "#") {
		rest := strings.TrimSpace(line[1:])
		if !strings.HasPrefix(rest, "channel") {
			return nil // plain comment
		}
		enabled = false
		line = rest
	}

	key, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch key {
	case "source":
		f.Source = rest
	case "id-format":
		f.IDFormat = rest
	case "city":
		f.City = rest
	case "map":
		from, to, ok := strings.Cut(rest, "=")
		if !ok || from == "" || to == "" {
			return fmt.Errorf("bad map directive %q", rest)
		}
		f.Overrides[strings.TrimSpace(from)] = strings.TrimSpace(to)
	case "channel":
		id, name, _ := strings.Cut(rest, " ")
		if id == "" {
			return fmt.Errorf("channel line without id")
		}
		// display name runs to the first inline comment marker
		if i := strings.Index(name, "#"); i >= 0 {
			name = name[:i]
		}
		f.Entries = append(f.Entries, Entry{
			ID:      id,
			Name:    strings.TrimSpace(name),
			Enabled: enabled,
		})
	default:
		return fmt.Errorf("unrecognized line %q", line)
	}
	return nil
}

// Save writes the configuration. An existing destination is only replaced
// when overwrite is set.
func Save(path string, f *File, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}
	fd, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("can't write configuration: %w", err)
	}
	defer fd.Close()

	w := bufio.NewWriter(fd)
	if f.Source != "" {
		fmt.Fprintf(w, "source %s\n", f.Source)
	}
	if f.IDFormat != "" {
		fmt.Fprintf(w, "id-format %s\n", f.IDFormat)
	}
	if f.City != "" {
		fmt.Fprintf(w, "city %s\n", f.City)
	}
	keys := make([]string, 0, len(f.Overrides))
	for k := range f.Overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "map %s=%s\n", k, f.Overrides[k])
	}
	for _, e := range f.Entries {
		if e.Enabled {
			fmt.Fprintf(w, "channel %s %s\n", e.ID, e.Name)
		} else {
			fmt.Fprintf(w, "#channel %s %s\n", e.ID, e.Name)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("can't write configuration: %w", err)
	}
	return nil
}
