package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// EnvPrefix namespaces every environment variable, e.g. TXENGINE_RPC_TIMEOUT.
const EnvPrefix = "TXENGINE"

type RPC struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // requests per second, 0 disables limiting
	Burst     int           `mapstructure:"burst"`
	UserAgent string        `mapstructure:"user_agent"`
	Proxy     string        `mapstructure:"proxy"`
}

type Confirm struct {
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type EVM struct {
	EstimateTimeout time.Duration `mapstructure:"estimate_timeout"`
	TxType          string        `mapstructure:"tx_type"` // "legacy" or "eip1559"
	Speedup         int64         `mapstructure:"speedup"`
}

type Sui struct {
	GasBudget uint64 `mapstructure:"gas_budget"` // mist
	CoinLimit int    `mapstructure:"coin_limit"`
}

type LoggerConfig struct {
	Level              string `mapstructure:"level"`
	PrettyPrintConsole bool   `mapstructure:"pretty"`
	Caller             bool   `mapstructure:"caller"`
	File               string `mapstructure:"file"`
	FileMaxSizeMB      int    `mapstructure:"file_max_size_mb"`
	FileMaxAgeDays     int    `mapstructure:"file_max_age_days"`
}

type Chains struct {
	File string `mapstructure:"file"`
}

// Signer names the key source of commands that sign. Keystore wins over Key.
type Signer struct {
	Key        string `mapstructure:"key"`
	Keystore   string `mapstructure:"keystore"`
	Password   string `mapstructure:"password"`
	Passphrase string `mapstructure:"passphrase"` // BIP-39 passphrase
	LightKDF   bool   `mapstructure:"light_kdf"`  // cheaper scrypt for new keystores
}

type Metrics struct {
	File string `mapstructure:"file"` // Prometheus textfile written when a command exits
}

type Service struct {
	RPC     RPC          `mapstructure:"rpc"`
	Confirm Confirm      `mapstructure:"confirm"`
	EVM     EVM          `mapstructure:"evm"`
	Sui     Sui          `mapstructure:"sui"`
	Logger  LoggerConfig `mapstructure:"logger"`
	Chains  Chains       `mapstructure:"chains"`
	Signer  Signer       `mapstructure:"signer"`
	Metrics Metrics      `mapstructure:"metrics"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rpc.timeout", 30*time.Second)
	v.SetDefault("rpc.rate_limit", 0)
	v.SetDefault("rpc.burst", 1)
	v.SetDefault("rpc.user_agent", "txengine/1.0")
	v.SetDefault("rpc.proxy", "")

	v.SetDefault("confirm.interval", 3*time.Second)
	v.SetDefault("confirm.timeout", 120*time.Second)

	v.SetDefault("evm.estimate_timeout", 30*time.Second)
	v.SetDefault("evm.tx_type", "eip1559")
	v.SetDefault("evm.speedup", 0)

	v.SetDefault("sui.gas_budget", 10_000_000)
	v.SetDefault("sui.coin_limit", 10)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.pretty", false)
	v.SetDefault("logger.caller", false)
	v.SetDefault("logger.file", "")
	v.SetDefault("logger.file_max_size_mb", 100)
	v.SetDefault("logger.file_max_age_days", 7)

	v.SetDefault("chains.file", "chains.toml")

	v.SetDefault("signer.key", "")
	v.SetDefault("signer.keystore", "")
	v.SetDefault("signer.password", "")
	v.SetDefault("signer.passphrase", "")
	v.SetDefault("signer.light_kdf", false)

	v.SetDefault("metrics.file", "")
}

// Load reads .env (if present), then configFile (optional, yaml or toml) and finally TXENGINE_* env vars.
func Load(configFile string) (Service, error) {
	if err := gotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return Service{}, errors.Wrap(err, "failed to load .env")
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Service{}, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}

	var cfg Service
	if err := v.Unmarshal(&cfg); err != nil {
		return Service{}, errors.Wrap(err, "failed to decode config")
	}

	return cfg, nil
}

// DefaultServiceConfigFromEnv returns the service configuration from defaults and the environment.
// It exits the process when the environment holds an undecodable value.
func DefaultServiceConfigFromEnv() Service {
	cfg, err := Load("")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load service config")
	}

	return cfg
}
