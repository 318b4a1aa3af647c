// Package console implements a line-oriented command interpreter for a
// real-time clock, for use over a UART or an interactive terminal.
//
// Commands:
//
//	time                  print the time as HH:MM:SS
//	date                  print the date as DD/MM/YY
//	now                   print both
//	set hhmmssDDMMYY      write a setpoint
//	read <field>          print the raw BCD byte of a field
//	write <field> <byte>  write a raw BCD byte, e.g. write year 0x14
//	help                  list commands
//
// Arguments are split like a shell would, so quoted arguments may contain
// spaces.
package console

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"github.com/ajanata/rtc-drivers/ds1339"
)

// ErrUnknownCommand is returned by Exec for a command it does not know.
var ErrUnknownCommand = errors.New("unknown command")

// Clock is the part of the DS1339 driver the console drives.
type Clock interface {
	RefreshTime() (ds1339.TimeRecord, error)
	RefreshDate() (ds1339.DateRecord, error)
	ApplySetpoint(s string) error
	ReadField(r ds1339.Register) (byte, error)
	WriteField(r ds1339.Register, raw byte) error
}

type command struct {
	usage string
	nargs int
	run   func(c *Console, args []string) error
}

var commands map[string]command

func init() {
	// help lists this table, so it cannot be a static initializer
	commands = map[string]command{
		"time":  {"time", 0, (*Console).time},
		"date":  {"date", 0, (*Console).date},
		"now":   {"now", 0, (*Console).now},
		"set":   {"set hhmmssDDMMYY", 1, (*Console).set},
		"read":  {"read <field>", 1, (*Console).read},
		"write": {"write <field> <byte>", 2, (*Console).write},
		"help":  {"help", 0, (*Console).help},
	}
}

type Console struct {
	clock Clock
	out   io.Writer

	// partial line read by Run
	line     []byte
	overflow bool
}

// New returns a console that writes its replies to out.
func New(clock Clock, out io.Writer) *Console {
	return &Console{clock: clock, out: out}
}

// Exec runs a single command line. Blank lines and lines starting with '#'
// are ignored.
func (c *Console) Exec(line string) error {
	words, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return nil
	}
	cmd, ok := commands[strings.ToLower(words[0])]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownCommand, words[0])
	}
	if len(words)-1 != cmd.nargs {
		return fmt.Errorf("usage: %s", cmd.usage)
	}
	return cmd.run(c, words[1:])
}

// maxLine bounds a buffered command line. Longer lines are discarded.
const maxLine = 128

// Run executes commands read from r, one per line, until r returns an error.
// A read of zero bytes with no error, as a UART with an empty receive buffer
// gives, is retried, and a partial line is kept across calls so that a later
// Run can complete it. At io.EOF a pending partial line is executed and Run
// returns nil. Command errors are reported on the output and do not stop the
// loop.
func (c *Console) Run(r io.Reader) error {
	var buf [16]byte
	for {
		n, err := r.Read(buf[:])
		for _, b := range buf[:n] {
			c.feed(b)
		}
		switch {
		case err == io.EOF:
			if len(c.line) > 0 || c.overflow {
				c.flush()
			}
			return nil
		case err != nil:
			return err
		case n == 0:
			runtime.Gosched()
		}
	}
}

func (c *Console) feed(b byte) {
	switch b {
	case '\n':
		c.flush()
	case '\r':
	default:
		if len(c.line) >= maxLine {
			c.overflow = true
			return
		}
		c.line = append(c.line, b)
	}
}

func (c *Console) flush() {
	line, overflow := string(c.line), c.overflow
	c.line, c.overflow = c.line[:0], false
	if overflow {
		fmt.Fprintf(c.out, "error: line longer than %d bytes\n", maxLine)
		return
	}
	if err := c.Exec(line); err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
	}
}

func (c *Console) time(args []string) error {
	t, err := c.clock.RefreshTime()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, t)
	return nil
}

func (c *Console) date(args []string) error {
	d, err := c.clock.RefreshDate()
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, d)
	return nil
}

func (c *Console) now(args []string) error {
	t, err := c.clock.RefreshTime()
	if err != nil {
		return err
	}
	d, err := c.clock.RefreshDate()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%v %v\n", t, d)
	return nil
}

func (c *Console) set(args []string) error {
	if err := c.clock.ApplySetpoint(args[0]); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "ok")
	return nil
}

func (c *Console) read(args []string) error {
	r, err := parseField(args[0])
	if err != nil {
		return err
	}
	v, err := c.clock.ReadField(r)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%v = 0x%02X\n", r, v)
	return nil
}

func (c *Console) write(args []string) error {
	r, err := parseField(args[0])
	if err != nil {
		return err
	}
	v, err := strconv.ParseUint(args[1], 0, 8)
	if err != nil {
		return fmt.Errorf("invalid byte %q", args[1])
	}
	if err := c.clock.WriteField(r, byte(v)); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "ok")
	return nil
}

func (c *Console) help(args []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintln(c.out, commands[name].usage)
	}
	return nil
}

// fields lists the registers the console may touch. The weekday and alarm
// registers are not among them.
var fields = []ds1339.Register{
	ds1339.Seconds,
	ds1339.Minutes,
	ds1339.Hours,
	ds1339.Date,
	ds1339.Month,
	ds1339.Year,
}

func parseField(name string) (ds1339.Register, error) {
	r, ok := ds1339.ParseRegister(strings.ToLower(name))
	if ok {
		for _, f := range fields {
			if f == r {
				return r, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown field %q", name)
}
