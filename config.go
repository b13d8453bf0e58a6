package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/funny-falcon/runlen/runlen"
)

type Config struct {
	Data     string        `yaml:"data"`
	Port     string        `yaml:"port"`
	OnlyLoad bool          `yaml:"onlyload"`
	Weight   uint32        `yaml:"weight"`
	Policy   string        `yaml:"policy"`
	Dump     string        `yaml:"dump"`
	Debug    bool          `yaml:"debug"`
	Trim     time.Duration `yaml:"trim"`
}

func DefaultConfig() *Config {
	return &Config{
		Data:   "/tmp/data/data.zip",
		Port:   "80",
		Weight: runlen.DefaultWeight,
		Policy: runlen.Sentinel.String(),
		Trim:   time.Second / 2,
	}
}

// LoadConfig reads a YAML config over the defaults. A missing file is not
// an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) Counter() (runlen.Counter, error) {
	policy, err := runlen.ParsePolicy(c.Policy)
	if err != nil {
		return runlen.Counter{}, err
	}
	if c.Weight == 0 {
		return runlen.Counter{}, errors.New("weight must be positive")
	}
	return runlen.Counter{Weight: c.Weight, Policy: policy}, nil
}

// parseConfig parses command line flags. Flags given explicitly win over
// values from the -config file.
func parseConfig(args []string) (*Config, error) {
	def := DefaultConfig()
	fl := flag.NewFlagSet("runlen", flag.ContinueOnError)
	configPath := fl.String("config", "", "yaml config file")
	datazip := fl.String("data", def.Data, "data file")
	port := fl.String("port", def.Port, "port to listen")
	onlyload := fl.Bool("onlyload", false, "only load")
	weight := def.Weight
	fl.Func("weight", "count added per occurrence (default 3)", func(s string) error {
		n, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return err
		}
		weight = uint32(n)
		return nil
	})
	policy := fl.String("policy", def.Policy, "run policy: sentinel or runs")
	dump := fl.String("dump", "", "write counts of loaded sequences to file")
	debug := fl.Bool("debug", false, "debug logging")
	trim := fl.Duration("trim", def.Trim, "idle time before scratch buffers are unmapped")
	if err := fl.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return nil, err
	}
	fl.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.Data = *datazip
		case "port":
			cfg.Port = *port
		case "onlyload":
			cfg.OnlyLoad = *onlyload
		case "weight":
			cfg.Weight = weight
		case "policy":
			cfg.Policy = *policy
		case "dump":
			cfg.Dump = *dump
		case "debug":
			cfg.Debug = *debug
		case "trim":
			cfg.Trim = *trim
		}
	})
	if _, err := cfg.Counter(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
