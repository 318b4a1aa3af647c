package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ajanata/rtc-drivers/ds1339"
	"github.com/ajanata/rtc-drivers/hosti2c"
	"github.com/ajanata/rtc-drivers/twi"
	"github.com/ajanata/rtc-drivers/twi/twitest"
)

// openClock returns the clock on the configured bus and a function that
// releases the bus.
func openClock() (*ds1339.Device, func() error, error) {
	decode, err := ds1339.ParseDecodeMode(viper.GetString("decode"))
	if err != nil {
		return nil, nil, err
	}

	var dev *ds1339.Device
	release := func() error { return nil }
	bus := viper.GetString("bus")
	if bus == "sim" {
		tw := twi.New(twitest.New())
		err := tw.Configure(twi.Config{
			Timeout:      time.Second,
			CheckAck:     true,
			SettleDelay:  time.Millisecond,
			ReleaseDelay: time.Microsecond,
			ReadDelay:    time.Microsecond,
		})
		if err != nil {
			return nil, nil, err
		}
		dev = ds1339.New(tw)
		if err := dev.ApplySetpoint(ds1339.DefaultSetpoint); err != nil {
			return nil, nil, err
		}
	} else {
		host := hosti2c.Open(bus)
		dev = ds1339.NewI2C(host)
		release = host.Close
	}
	dev.Configure(ds1339.Config{
		Decode:         decode,
		StrictSetpoint: viper.GetBool("strict"),
	})
	logger.Debug("clock opened", "bus", bus, "decode", decode)
	return dev, release, nil
}

// withClock runs f with the configured clock.
func withClock(f func(cmd *cobra.Command, args []string, dev *ds1339.Device) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		dev, release, err := openClock()
		if err != nil {
			return err
		}
		defer release()
		return f(cmd, args, dev)
	}
}

var timeCmd = &cobra.Command{
	Use:   "time",
	Short: "Print the time of day as HH:MM:SS",
	Args:  cobra.NoArgs,
	RunE: withClock(func(cmd *cobra.Command, _ []string, dev *ds1339.Device) error {
		t, err := dev.RefreshTime()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), t)
		return nil
	}),
}

var dateCmd = &cobra.Command{
	Use:   "date",
	Short: "Print the date as DD/MM/YY",
	Args:  cobra.NoArgs,
	RunE: withClock(func(cmd *cobra.Command, _ []string, dev *ds1339.Device) error {
		d, err := dev.RefreshDate()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), d)
		return nil
	}),
}

var setCmd = &cobra.Command{
	Use:   "set hhmmssDDMMYY",
	Short: "Write a setpoint to the clock",
	Args:  cobra.ExactArgs(1),
	RunE: withClock(func(cmd *cobra.Command, args []string, dev *ds1339.Device) error {
		if err := dev.ApplySetpoint(args[0]); err != nil {
			return err
		}
		logger.Info("clock set", "setpoint", args[0])
		return nil
	}),
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Set the clock to the host's time in UTC",
	Args:  cobra.NoArgs,
	RunE: withClock(func(cmd *cobra.Command, _ []string, dev *ds1339.Device) error {
		sp, err := ds1339.SetpointFromTime(time.Now().UTC())
		if err != nil {
			return err
		}
		if err := dev.Apply(sp); err != nil {
			return err
		}
		logger.Info("clock synced", "setpoint", sp.String())
		return nil
	}),
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the time and date until interrupted",
	Args:  cobra.NoArgs,
	RunE: withClock(func(cmd *cobra.Command, _ []string, dev *ds1339.Device) error {
		interval, err := cmd.Flags().GetDuration("interval")
		if err != nil {
			return err
		}
		if interval <= 0 {
			return fmt.Errorf("invalid interval %v: must be positive", interval)
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return watch(ctx, cmd, dev, interval)
	}),
}

func init() {
	watchCmd.Flags().Duration("interval", time.Second, "time between reads")
}

func watch(ctx context.Context, cmd *cobra.Command, dev *ds1339.Device, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		t, err := dev.RefreshTime()
		if err != nil {
			return err
		}
		d, err := dev.RefreshDate()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%v %v\n", t, d)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
