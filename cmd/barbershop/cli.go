package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"barbershop"
)

const (
	configFlagName          = "config"
	serviceMinFlagName      = "service-min"
	serviceMaxFlagName      = "service-max"
	arrivalDelayFlagName    = "arrival-delay"
	seedFlagName            = "seed"
	logLevelFlagName        = "log-level"
	logJSONFlagName         = "log-json"
	checkInvariantsFlagName = "check-invariants"
	summaryFlagName         = "summary"
)

// flagKeys maps CLI flags onto config keys.
var flagKeys = map[string]string{
	serviceMinFlagName:      "service_min",
	serviceMaxFlagName:      "service_max",
	arrivalDelayFlagName:    "arrival_delay",
	seedFlagName:            "seed",
	checkInvariantsFlagName: "check_invariants",
	logLevelFlagName:        "log_level",
	logJSONFlagName:         "log_json",
	summaryFlagName:         "summary",
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	initConfig(v)

	rootCmd := &cobra.Command{
		Use:   "barbershop <chairs> <customers>",
		Short: "Simulate the sleeping barber: one barber, N chairs, M customers",
		Args:  chairsAndCustomers,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, args)
			if err != nil {
				return err
			}
			// Everything past this point is a runtime failure, not a usage one.
			cmd.SilenceUsage = true
			return run(v, cfg, stdout)
		},
	}
	// Usage and help belong on the error stream; stdout carries the shop log.
	rootCmd.SetOut(stderr)
	rootCmd.SetErr(stderr)

	pf := rootCmd.PersistentFlags()
	pf.String(configFlagName, "", "path to a TOML config file")
	addConfigFlags(pf)
	bindFlags(v, pf)

	configCmd := &cobra.Command{
		Use:   "config [chairs] [customers]",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(v, args)
			if err != nil {
				return err
			}
			return writeConfig(stdout, cfg)
		},
	}
	rootCmd.AddCommand(configCmd)
	return rootCmd
}

func addConfigFlags(fs *pflag.FlagSet) {
	def := barbershop.DefaultConfig()
	fs.Duration(serviceMinFlagName, def.ServiceMin, "shortest haircut")
	fs.Duration(serviceMaxFlagName, def.ServiceMax, "longest haircut")
	fs.Duration(arrivalDelayFlagName, def.ArrivalDelay, "longest random delay before a customer walks in")
	fs.Uint64(seedFlagName, 0, "random seed, 0 picks one from the clock")
	fs.String(logLevelFlagName, "info", "log level: debug, info, warn, error")
	fs.Bool(logJSONFlagName, false, "emit JSON log lines instead of console output")
	fs.Bool(checkInvariantsFlagName, false, "assert queue invariants on every mutation")
	fs.Bool(summaryFlagName, true, "print a summary table when the shop closes")
}

// bindFlags panics if a flag in flagKeys was never registered on fs.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	for flagName, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flagName)); err != nil {
			panic(fmt.Sprintf("binding flag %q: %v", flagName, err))
		}
	}
	if err := v.BindPFlag(configFlagName, fs.Lookup(configFlagName)); err != nil {
		panic(fmt.Sprintf("binding flag %q: %v", configFlagName, err))
	}
}

// initConfig sets defaults and environment lookup for v.
func initConfig(v *viper.Viper) {
	def := barbershop.DefaultConfig()
	v.SetDefault("service_min", def.ServiceMin)
	v.SetDefault("service_max", def.ServiceMax)
	v.SetDefault("arrival_delay", def.ArrivalDelay)
	v.SetDefault("log_level", "info")
	v.SetDefault("summary", true)

	v.SetConfigName("barbershop")
	v.AddConfigPath(".")
	v.SetEnvPrefix("BARBERSHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

func chairsAndCustomers(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected <chairs> <customers>, got %d argument(s)", len(args))
	}
	_, err := parseArgs(args)
	return err
}

type positional struct {
	chairs, customers int
}

func parseArgs(args []string) (positional, error) {
	var p positional
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return p, fmt.Errorf("chairs must be a positive integer, got %q", args[0])
		}
		p.chairs = n
	}
	if len(args) > 1 {
		m, err := strconv.Atoi(args[1])
		if err != nil || m < 0 {
			return p, fmt.Errorf("customers must be a non-negative integer, got %q", args[1])
		}
		p.customers = m
	}
	return p, nil
}

func readConfigFile(v *viper.Viper) error {
	if path := v.GetString(configFlagName); path != "" {
		v.SetConfigFile(path)
	}
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return fmt.Errorf("failed to read config file: %w", err)
}

// resolveConfig merges file, env, flags and positional args without
// validating the result.
func resolveConfig(v *viper.Viper, args []string) (barbershop.Config, error) {
	var cfg barbershop.Config
	if err := readConfigFile(v); err != nil {
		return cfg, err
	}
	p, err := parseArgs(args)
	if err != nil {
		return cfg, err
	}
	if len(args) > 0 {
		v.Set("chairs", p.chairs)
	}
	if len(args) > 1 {
		v.Set("customers", p.customers)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

func loadConfig(v *viper.Viper, args []string) (barbershop.Config, error) {
	cfg, err := resolveConfig(v, args)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func run(v *viper.Viper, cfg barbershop.Config, stdout io.Writer) error {
	logger, err := newLogger(stdout, v.GetString("log_level"), v.GetBool("log_json"))
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	start := time.Now()
	report, err := barbershop.Run(cfg,
		barbershop.WithLogger(logger),
		barbershop.WithRegisterer(reg),
	)
	if err != nil {
		return err
	}
	if v.GetBool("summary") {
		return writeSummary(stdout, report, reg, time.Since(start))
	}
	return nil
}

// writeConfig prints cfg as TOML with durations in their string form.
func writeConfig(w io.Writer, cfg barbershop.Config) error {
	out := map[string]any{
		"chairs":           cfg.Chairs,
		"customers":        cfg.Customers,
		"service_min":      cfg.ServiceMin.String(),
		"service_max":      cfg.ServiceMax.String(),
		"arrival_delay":    cfg.ArrivalDelay.String(),
		"seed":             cfg.Seed,
		"check_invariants": cfg.CheckInvariants,
	}
	bs, err := toml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	_, err = w.Write(bs)
	return err
}
