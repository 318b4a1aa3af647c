package clockface

import (
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

// NewTerminal returns a scrolling text terminal on display, using the same
// font as the clock face. Board programs use it as their console output.
func NewTerminal(display tinyterm.Displayer) *tinyterm.Terminal {
	terminal := tinyterm.NewTerminal(display)
	terminal.Configure(&tinyterm.Config{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: 10,
		FontOffset: 6,
	})
	return terminal
}
