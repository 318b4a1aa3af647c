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
	"github.com/ajanata/rtc-drivers/remote"
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Relay the clock to an MQTT broker",
	Long: `Subscribes to <prefix>/set for setpoints and publishes the clock's state
every interval, as text on <prefix>/time and <prefix>/date or as CBOR on
<prefix>/state.`,
	Args: cobra.NoArgs,
	RunE: withClock(runBridge),
}

func init() {
	f := bridgeCmd.Flags()
	f.String("broker", "tcp://localhost:1883", "broker address")
	f.String("prefix", remote.DefaultPrefix, "topic prefix")
	f.String("format", "text", "state format: text or cbor")
	f.Duration("interval", 10*time.Second, "time between state publications")
	f.String("client", "paho", "MQTT client: paho or natiu")
	f.String("client-id", "", "MQTT client identifier (default random)")
	for _, name := range []string{"broker", "prefix", "format", "interval", "client", "client-id"} {
		cobra.CheckErr(viper.BindPFlag("mqtt."+name, f.Lookup(name)))
	}
}

func runBridge(cmd *cobra.Command, _ []string, dev *ds1339.Device) error {
	format, err := remote.ParseFormat(viper.GetString("mqtt.format"))
	if err != nil {
		return err
	}
	interval := viper.GetDuration("mqtt.interval")
	if interval <= 0 {
		return fmt.Errorf("%w: %v", remote.ErrInvalidInterval, interval)
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cc := remote.ClientConfig{
		Broker:   viper.GetString("mqtt.broker"),
		ClientID: viper.GetString("mqtt.client-id"),
	}
	var (
		pub   remote.Publisher
		serve func(context.Context) error
	)
	kind := viper.GetString("mqtt.client")
	switch kind {
	case "paho":
		p, err := remote.DialPaho(cc)
		if err != nil {
			return err
		}
		defer p.Close()
		pub = p
	case "natiu":
		n, err := remote.DialNatiu(ctx, cc)
		if err != nil {
			return err
		}
		defer n.Close()
		pub, serve = n, n.Serve
	default:
		return fmt.Errorf("unknown MQTT client %q", kind)
	}

	b := remote.New(dev, pub, remote.Config{
		Prefix: viper.GetString("mqtt.prefix"),
		Format: format,
		Logger: logger,
	})
	if err := b.Start(); err != nil {
		return err
	}
	if serve != nil {
		go func() {
			if err := serve(ctx); err != nil {
				logger.Error("connection lost", "err", err)
				stop()
			}
		}()
	}
	logger.Info("bridge running", "broker", cc.Broker, "client", kind, "format", format)
	return b.Run(ctx, interval)
}
