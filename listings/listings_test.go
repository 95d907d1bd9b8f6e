package listings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{"10:00", Clock{10, 0}, false},
		{"23:30", Clock{23, 30}, false},
		{"9:05", Clock{9, 5}, false},
		{"20h45", Clock{20, 45}, false},
		{" 10:00 ", Clock{10, 0}, false},
		{"24:00", Clock{}, true},
		{"10:60", Clock{}, true},
		{"Toute la journée", Clock{}, true},
		{"", Clock{}, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestStopAfterCrossesMidnight(t *testing.T) {
	loc := time.FixedZone("RET", 4*3600)
	start := Clock{23, 30}.On(time.Date(2024, 1, 1, 0, 0, 0, 0, loc), loc)
	stop := Clock{0, 45}.StopAfter(start)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 45, 0, 0, loc), stop)

	// same-day end stays on the same day
	stop = Clock{23, 55}.StopAfter(start)
	assert.Equal(t, time.Date(2024, 1, 1, 23, 55, 0, 0, loc), stop)
}

func TestSplitTitle(t *testing.T) {
	title, sub := SplitTitle("News: Evening Edition", len("News"))
	assert.Equal(t, "News", title)
	assert.Equal(t, "Evening Edition", sub)

	title, sub = SplitTitle("News: Evening Edition", 0)
	assert.Equal(t, "News: Evening Edition", title)
	assert.Empty(t, sub)

	// machine title longer than the human one: no split
	title, sub = SplitTitle("News", 40)
	assert.Equal(t, "News", title)
	assert.Empty(t, sub)
}

func TestWindowClamp(t *testing.T) {
	w := Window{Offset: 5, Days: 10}
	assert.True(t, w.Clamp(7))
	assert.Equal(t, Window{Offset: 5, Days: 2}, w)

	w = Window{Offset: 10, Days: 5}
	assert.True(t, w.Clamp(7))
	assert.Equal(t, Window{Offset: 0, Days: 7}, w)

	w = Window{Offset: 1, Days: 3}
	assert.False(t, w.Clamp(7))
	assert.Equal(t, Window{Offset: 1, Days: 3}, w)
}

func TestCheckStopDropsInconsistentStop(t *testing.T) {
	loc := time.FixedZone("IST", 2*3600)
	p := Programme{
		Start: time.Date(2024, 1, 1, 12, 0, 0, 0, loc),
		Stop:  time.Date(2024, 1, 1, 11, 0, 0, 0, loc),
	}
	assert.True(t, p.CheckStop())
	assert.True(t, p.Stop.IsZero())

	p.Stop = p.Start.Add(time.Hour)
	assert.False(t, p.CheckStop())
	assert.False(t, p.Stop.IsZero())
}

func TestInferStops(t *testing.T) {
	loc := time.FixedZone("IST", 2*3600)
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, loc)
	progs := []Programme{
		{Channel: "a", Start: Clock{10, 0}.On(day, loc)},
		{Channel: "a", Start: Clock{23, 30}.On(day, loc)},
		{Channel: "b", Start: Clock{8, 0}.On(day, loc)},
	}
	InferStops(progs)
	assert.Equal(t, progs[1].Start, progs[0].Stop)
	// last on its channel: stop left open, next channel not consulted
	assert.True(t, progs[1].Stop.IsZero())
	assert.True(t, progs[2].Stop.IsZero())
}

func TestXMLTVID(t *testing.T) {
	assert.Equal(t, "13.tv.meo.pt", XMLTVID("13", "%id%.tv.meo.pt"))
	assert.Equal(t, "13.example.test", XMLTVID("13", "example.test"))
}
