package depot

import (
	"github.com/BurntSushi/toml"
	jlconfig "github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// DefaultBlockSize is the slots-per-block count for pools created without an
// explicit size.
const DefaultBlockSize = 30

// Config holds global configuration for pool sizing and logging.
var Config config = config{
	defaultBlockSize: DefaultBlockSize,
	blockSizes:       make(map[string]int),
	logger:           zerolog.Nop(),
}

type config struct {
	defaultBlockSize int
	blockSizes       map[string]int
	logger           zerolog.Logger
}

// SetDefaultBlockSize configures the block size used when no per-type
// override exists. Non-positive values are ignored.
func (c *config) SetDefaultBlockSize(n int) {
	if n > 0 {
		c.defaultBlockSize = n
	}
}

func (c *config) DefaultBlockSize() int {
	return c.defaultBlockSize
}

// SetBlockSize overrides the block size for one type name.
func (c *config) SetBlockSize(typeName string, n int) {
	if typeName != "" && n > 0 {
		c.blockSizes[typeName] = n
	}
}

// BlockSizeFor resolves the block size for a type name: per-type override if
// present, else the default.
func (c *config) BlockSizeFor(typeName string) int {
	if n, ok := c.blockSizes[typeName]; ok {
		return n
	}
	return c.defaultBlockSize
}

// SetLogger configures the logger handed to registries created afterwards.
func (c *config) SetLogger(logger zerolog.Logger) {
	c.logger = logger
}

func (c *config) Logger() zerolog.Logger {
	return c.logger
}

type envConfig struct {
	DefaultBlockSize int    `config:"DEPOT_DEFAULT_BLOCK_SIZE"`
	LogLevel         string `config:"DEPOT_LOG_LEVEL"`
}

// LoadFromEnv applies DEPOT_* environment variables. Unset variables leave
// the current values untouched.
func (c *config) LoadFromEnv() error {
	var ec envConfig
	if err := jlconfig.FromEnv().To(&ec); err != nil {
		return eris.Wrap(err, "loading config from environment")
	}
	c.SetDefaultBlockSize(ec.DefaultBlockSize)
	if ec.LogLevel != "" {
		level, err := zerolog.ParseLevel(ec.LogLevel)
		if err != nil {
			return eris.Wrapf(err, "parsing DEPOT_LOG_LEVEL %q", ec.LogLevel)
		}
		c.logger = c.logger.Level(level)
	}
	return nil
}

type fileConfig struct {
	DefaultBlockSize int            `toml:"default_block_size"`
	LogLevel         string         `toml:"log_level"`
	BlockSizes       map[string]int `toml:"block_sizes"`
}

// LoadFile applies a TOML config file:
//
//	default_block_size = 16
//	log_level = "debug"
//
//	[block_sizes]
//	"game.Particle" = 512
func (c *config) LoadFile(path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return eris.Wrapf(err, "loading config file %s", path)
	}
	return c.apply(fc)
}

func (c *config) apply(fc fileConfig) error {
	c.SetDefaultBlockSize(fc.DefaultBlockSize)
	for name, n := range fc.BlockSizes {
		c.SetBlockSize(name, n)
	}
	if fc.LogLevel != "" {
		level, err := zerolog.ParseLevel(fc.LogLevel)
		if err != nil {
			return eris.Wrapf(err, "parsing log_level %q", fc.LogLevel)
		}
		c.logger = c.logger.Level(level)
	}
	return nil
}
