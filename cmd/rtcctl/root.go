package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	logger  = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "rtcctl",
	Short: "Read and set a DS1339 real-time clock",
	Long: `Reads and sets a DS1339 real-time clock on an I2C bus.

The bus is a Linux i2c-dev node such as /dev/i2c-1, or "sim" for a simulated
clock that starts at 21:50:00 15/05/14.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits with status 1 on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rtcctl.yaml)")
	pf.String("bus", "/dev/i2c-1", `I2C device node, or "sim"`)
	pf.String("decode", "legacy", "tens digit decoding: legacy or register")
	pf.Bool("strict", false, "reject setpoints that are not twelve in-range digits")
	pf.BoolP("verbose", "v", false, "log debug messages")
	for _, name := range []string{"bus", "decode", "strict", "verbose"} {
		cobra.CheckErr(viper.BindPFlag(name, pf.Lookup(name)))
	}

	rootCmd.AddCommand(timeCmd, dateCmd, setCmd, syncCmd, watchCmd, consoleCmd, bridgeCmd, configCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rtcctl")
	}

	viper.SetEnvPrefix("rtcctl")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := viper.ReadInConfig(); err == nil {
		logger.Debug("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		cobra.CheckErr(fmt.Errorf("cannot read config: %w", err))
	}
}
