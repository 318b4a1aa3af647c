// Package clockface draws the time and date read from a real-time clock on a
// pixel display, as two lines of text.
//
// Face owns the rendered strings. Update may be called from the loop that
// polls the clock while Draw or Lines are called from a display loop; both
// sides take the face's lock, so a reader never sees a half-written line.
package clockface

import (
	"image/color"
	"sync"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"github.com/ajanata/rtc-drivers"
	"github.com/ajanata/rtc-drivers/ds1339"
)

var (
	white = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	black = color.RGBA{A: 0xFF}
)

type Config struct {
	// Font defaults to proggy.TinySZ8pt7b.
	Font *tinyfont.Font

	// Foreground and Background default to white on black.
	Foreground color.RGBA
	Background color.RGBA

	// X and Y place the baseline of the time line. The date line follows
	// one font line below. Zero Y defaults to one line from the top.
	X, Y int16
}

type Face struct {
	display drivers.Displayer
	font    *tinyfont.Font
	fg, bg  color.RGBA
	x, y    int16

	mu         sync.Mutex
	time, date string
	// what is currently on the display, erased before the next draw
	drawnTime, drawnDate string
}

// New creates a face on the given display.
func New(display drivers.Displayer, c Config) *Face {
	if c.Font == nil {
		c.Font = &proggy.TinySZ8pt7b
	}
	if c.Foreground == (color.RGBA{}) {
		c.Foreground = white
	}
	if c.Background == (color.RGBA{}) {
		c.Background = black
	}
	if c.Y == 0 {
		c.Y = int16(c.Font.YAdvance)
	}
	return &Face{
		display: display,
		font:    c.Font,
		fg:      c.Foreground,
		bg:      c.Background,
		x:       c.X,
		y:       c.Y,
	}
}

// Update replaces the lines to draw.
func (f *Face) Update(t ds1339.TimeRecord, d ds1339.DateRecord) {
	ts, ds := t.String(), d.String()
	f.mu.Lock()
	f.time, f.date = ts, ds
	f.mu.Unlock()
}

// Lines returns the time and date lines last passed to Update.
func (f *Face) Lines() (time, date string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.time, f.date
}

// Draw erases the previously drawn lines, draws the current ones and
// flushes the display.
func (f *Face) Draw() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	line := int16(f.font.YAdvance)
	if f.drawnTime != f.time {
		tinyfont.WriteLine(f.display, f.font, f.x, f.y, f.drawnTime, f.bg)
		tinyfont.WriteLine(f.display, f.font, f.x, f.y, f.time, f.fg)
		f.drawnTime = f.time
	}
	if f.drawnDate != f.date {
		tinyfont.WriteLine(f.display, f.font, f.x, f.y+line, f.drawnDate, f.bg)
		tinyfont.WriteLine(f.display, f.font, f.x, f.y+line, f.date, f.fg)
		f.drawnDate = f.date
	}
	return f.display.Display()
}

// Refresh reads the clock, updates the face and draws it.
func (f *Face) Refresh(clock *ds1339.Device) error {
	t, err := clock.RefreshTime()
	if err != nil {
		return err
	}
	d, err := clock.RefreshDate()
	if err != nil {
		return err
	}
	f.Update(t, d)
	return f.Draw()
}
