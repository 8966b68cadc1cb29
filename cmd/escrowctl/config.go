package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// config is the escrowctl configuration file structure.
type config struct {
	RPC struct {
		Endpoint       string        `yaml:"endpoint"`
		DialTimeout    time.Duration `yaml:"dial_timeout"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"rpc"`

	Wallet struct {
		Path     string `yaml:"path"`
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
	} `yaml:"wallet"`

	Deploy struct {
		Contracts   string `yaml:"contracts"`
		ValidBlocks uint32 `yaml:"valid_blocks"`
	} `yaml:"deploy"`

	Logger struct {
		Level string `yaml:"level"`
	} `yaml:"logger"`
}

const (
	defaultTimeout      = 15 * time.Second
	defaultContractsDir = "contracts"
	defaultLogLevel     = "info"
)

var errMissingEndpoint = errors.New("missing Neo RPC endpoint")

func defaultConfig() config {
	var cfg config

	cfg.RPC.DialTimeout = defaultTimeout
	cfg.RPC.RequestTimeout = defaultTimeout
	cfg.Deploy.Contracts = defaultContractsDir
	cfg.Logger.Level = defaultLogLevel

	return cfg
}

// loadConfig reads configuration from the YAML file. Missing values are
// filled with defaults, empty path means defaults only.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("decode config file %s: %w", path, err)
	}

	return cfg, nil
}

// applyFlags overrides configuration values with the global command line
// flags and their environment variables.
func applyFlags(c *cli.Context, cfg *config) {
	for _, o := range []struct {
		flag string
		dst  *string
	}{
		{flag: rpcFlag.Name, dst: &cfg.RPC.Endpoint},
		{flag: walletFlag.Name, dst: &cfg.Wallet.Path},
		{flag: addressFlag.Name, dst: &cfg.Wallet.Address},
		{flag: passwordFlag.Name, dst: &cfg.Wallet.Password},
		{flag: contractsFlag.Name, dst: &cfg.Deploy.Contracts},
		{flag: logLevelFlag.Name, dst: &cfg.Logger.Level},
	} {
		if v := c.GlobalString(o.flag); v != "" {
			*o.dst = v
		}
	}
}

func (cfg config) validate() error {
	if cfg.RPC.Endpoint == "" {
		return errMissingEndpoint
	}
	if cfg.RPC.DialTimeout <= 0 || cfg.RPC.RequestTimeout <= 0 {
		return errors.New("RPC timeouts must be positive")
	}

	_, err := parseLevel(cfg.Logger.Level)
	return err
}

func parseLevel(s string) (zapcore.Level, error) {
	var lvl zapcore.Level

	err := lvl.UnmarshalText([]byte(s))
	if err != nil {
		return lvl, fmt.Errorf("invalid logger level %q: %w", s, err)
	}

	return lvl, nil
}

// newLogger returns console logger writing messages of the given level and
// above to stderr.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(lvl)
	c.Encoding = "console"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	c.Sampling = nil

	return c.Build()
}
