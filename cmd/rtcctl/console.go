package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/ajanata/rtc-drivers/console"
	"github.com/ajanata/rtc-drivers/ds1339"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Run an interactive clock console",
	Args:  cobra.NoArgs,
	RunE: withClock(func(cmd *cobra.Command, _ []string, dev *ds1339.Device) error {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "rtc> ",
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			return fmt.Errorf("failed to create readline: %w", err)
		}
		defer rl.Close()

		con := console.New(dev, rl.Stdout())
		for {
			line, err := rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			switch strings.TrimSpace(line) {
			case "exit", "quit":
				return nil
			}
			if err := con.Exec(line); err != nil {
				fmt.Fprintf(rl.Stderr(), "error: %v\n", err)
			}
		}
	}),
}
