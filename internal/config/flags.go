package config

import (
	"github.com/spf13/pflag"
)

// parses the server command line. zero values mean "keep the environment value"
func ParseServerFlags(args []string) (Flags, error) {
	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)

	var flags Flags
	fs.StringVarP(&flags.Port, "port", "p", "", "api listen port (overrides PORT)")
	fs.StringVarP(&flags.BrokerPort, "broker-port", "b", "", "websocket broker listen port (overrides BROKER_PORT)")
	fs.IntVar(&flags.BlockSize, "block-size", 0, "messages per archived conversation (overrides MESSAGE_BLOCK_SIZE)")
	fs.StringVar(&flags.EnvFile, "env-file", "", "dotenv file to load before reading the environment")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	return flags, nil
}

// applies non-zero flag values on top of cfg
func (f Flags) Apply(cfg *Config) error {
	if f.Port != "" {
		cfg.Port = f.Port
	}

	if f.BrokerPort != "" {
		cfg.BrokerPort = f.BrokerPort
	}

	if f.BlockSize != 0 {
		cfg.MessageBlockSize = f.BlockSize
	}

	return cfg.Validate()
}
