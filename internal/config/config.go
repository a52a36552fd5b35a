package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/syscoin/sysasset/internal/core/application"
	"github.com/syscoin/sysasset/internal/core/ports"
	alertsmanager "github.com/syscoin/sysasset/internal/infrastructure/alertsmanager"
	"github.com/syscoin/sysasset/internal/infrastructure/db"
	"github.com/syscoin/sysasset/internal/infrastructure/feemanager"
	"github.com/syscoin/sysasset/internal/infrastructure/ledger/syscoind"
	blockscheduler "github.com/syscoin/sysasset/internal/infrastructure/scheduler/block"
	assetlib "github.com/syscoin/sysasset/pkg/asset-lib"
	"github.com/urfave/cli/v2"
)

const configFileName = "sysasset"

var supportedDbs = supportedType{
	"badger":   {},
	"sqlite":   {},
	"postgres": {},
	"redis":    {},
}

type Config struct {
	Datadir  string
	LogLevel int
	Network  string

	RpcHost     string
	RpcUser     string
	RpcPassword string
	RpcWallet   string
	RpcTLSCert  string

	DbType              string
	DbDir               string
	DbUrl               string
	RedisUrl            string
	RedisTxNumOfRetries int

	MaxInputs        int
	MinConfirmations int64
	DefaultFeeRate   int64
	// PollInterval is the number of seconds between two chain tip polls.
	PollInterval int64

	AlertManagerURL string
	ExplorerURL     string

	repo      ports.RepoManager
	ledger    *syscoind.Ledger
	fees      ports.FeeManager
	scheduler ports.SchedulerService
	alerts    ports.Alerts
	svc       application.Service
	network   *chaincfg.Params
}

func (c *Config) String() string {
	clone := *c
	if clone.RpcPassword != "" {
		clone.RpcPassword = "••••••"
	}
	json, err := json.MarshalIndent(clone, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(json)
}

var (
	defaultDatadir             = btcutil.AppDataDir("sysasset", false)
	defaultLogLevel            = 4
	defaultNetwork             = "mainnet"
	defaultRpcHost             = "localhost:8370"
	defaultDbType              = "badger"
	defaultRedisTxNumOfRetries = 10
	defaultMinConfirmations    = 0
	defaultPollInterval        = 10 // seconds
)

// env returns a list of strings prefixed with `SYSASSET_`.
// This is used as a syntax sugar for defining env vars.
func env(values ...string) []string {
	envs := make([]string, len(values))

	for i, value := range values {
		envs[i] = fmt.Sprintf("SYSASSET_%s", value)
	}

	return envs
}

var (
	Datadir = &cli.StringFlag{
		Usage: "Directory to store data",
		Name:  "datadir", EnvVars: env("DATADIR"),
		Value: defaultDatadir,
	}

	LogLevel = &cli.IntFlag{
		Usage: "Logging level (0-6, where 6 is trace)",
		Name:  "log-level", EnvVars: env("LOG_LEVEL"),
		Value: defaultLogLevel,
	}

	Network = &cli.StringFlag{
		Usage: "Syscoin network (mainnet, testnet, regtest)",
		Name:  "network", EnvVars: env("NETWORK"),
		Value: defaultNetwork,
	}

	RpcHost = &cli.StringFlag{
		Usage: "Syscoin node json-rpc address in the form host:port",
		Name:  "rpc-host", EnvVars: env("RPC_HOST"),
		Value: defaultRpcHost,
	}

	RpcUser = &cli.StringFlag{
		Usage: "Syscoin node json-rpc user",
		Name:  "rpc-user", EnvVars: env("RPC_USER"),
	}

	RpcPassword = &cli.StringFlag{
		Usage: "Syscoin node json-rpc password",
		Name:  "rpc-password", EnvVars: env("RPC_PASSWORD"),
	}

	RpcWallet = &cli.StringFlag{
		Usage: "Name of the node wallet to use, if the node has more than one loaded",
		Name:  "rpc-wallet", EnvVars: env("RPC_WALLET"),
	}

	RpcTLSCert = &cli.StringFlag{
		Usage: "Path to the node tls certificate, TLS is disabled if unset",
		Name:  "rpc-tls-cert", EnvVars: env("RPC_TLS_CERT"),
	}

	DbType = &cli.StringFlag{
		Usage: "Journal database type (badger, sqlite, postgres, redis)",
		Name:  "db-type", EnvVars: env("DB_TYPE"),
		Value: defaultDbType,
	}

	DbUrl = &cli.StringFlag{
		Usage: "Postgres connection url if SYSASSET_DB_TYPE is set to postgres",
		Name:  "pg-db-url", EnvVars: env("PG_DB_URL"),
	}

	RedisUrl = &cli.StringFlag{
		Usage: "Redis db connection url if SYSASSET_DB_TYPE is set to redis",
		Name:  "redis-url", EnvVars: env("REDIS_URL"),
	}

	RedisTxNumOfRetries = &cli.IntFlag{
		Usage: "Maximum number of retries for Redis write operations in case of conflicts",
		Name:  "redis-num-of-retries", EnvVars: env("REDIS_NUM_OF_RETRIES"),
		Value: defaultRedisTxNumOfRetries,
	}

	MaxInputs = &cli.IntFlag{
		Usage: "Maximum number of inputs a built transaction can spend",
		Name:  "max-inputs", EnvVars: env("MAX_INPUTS"),
		Value: assetlib.DefaultMaxInputs,
	}

	MinConfirmations = &cli.Int64Flag{
		Usage: "Minimum number of confirmations of the utxos to select",
		Name:  "min-conf", EnvVars: env("MIN_CONF"),
		Value: int64(defaultMinConfirmations),
	}

	DefaultFeeRate = &cli.Int64Flag{
		Usage: "Fee rate in sat/kB used when the node can't estimate one",
		Name:  "default-fee-rate", EnvVars: env("DEFAULT_FEE_RATE"),
		Value: assetlib.DefaultFeeRate,
	}

	PollInterval = &cli.Int64Flag{
		Usage: "Interval in seconds between two polls of the chain tip",
		Name:  "poll-interval", EnvVars: env("POLL_INTERVAL"),
		Value: int64(defaultPollInterval),
	}

	AlertManagerURL = &cli.StringFlag{
		Usage: "Alert manager URL, alerts are disabled if unset",
		Name:  "alert-manager-url", EnvVars: env("ALERT_MANAGER_URL"),
	}

	ExplorerURL = &cli.StringFlag{
		Usage: "Block explorer URL used to link txs in alerts",
		Name:  "explorer-url", EnvVars: env("EXPLORER_URL"),
	}
)

var Flags = []cli.Flag{
	Datadir,
	LogLevel,
	Network,
	RpcHost,
	RpcUser,
	RpcPassword,
	RpcWallet,
	RpcTLSCert,
	DbType,
	DbUrl,
	RedisUrl,
	RedisTxNumOfRetries,
	MaxInputs,
	MinConfirmations,
	DefaultFeeRate,
	PollInterval,
	AlertManagerURL,
	ExplorerURL,
}

func LoadConfig(c *cli.Context) (*Config, error) {
	if err := initDatadir(c); err != nil {
		return nil, fmt.Errorf("failed to create datadir: %s", err)
	}
	if err := loadConfigFile(c); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(c.String(Datadir.Name), "db")

	var dbUrl string
	if c.String(DbType.Name) == "postgres" {
		dbUrl = c.String(DbUrl.Name)
		if dbUrl == "" {
			return nil, fmt.Errorf("db type set to 'postgres' but db url is missing")
		}
	}

	var redisUrl string
	if c.String(DbType.Name) == "redis" {
		redisUrl = c.String(RedisUrl.Name)
		if redisUrl == "" {
			return nil, fmt.Errorf("db type set to 'redis' but redis url is missing")
		}
	}

	return &Config{
		Datadir:             c.String(Datadir.Name),
		LogLevel:            c.Int(LogLevel.Name),
		Network:             c.String(Network.Name),
		RpcHost:             c.String(RpcHost.Name),
		RpcUser:             c.String(RpcUser.Name),
		RpcPassword:         c.String(RpcPassword.Name),
		RpcWallet:           c.String(RpcWallet.Name),
		RpcTLSCert:          c.String(RpcTLSCert.Name),
		DbType:              c.String(DbType.Name),
		DbDir:               dbPath,
		DbUrl:               dbUrl,
		RedisUrl:            redisUrl,
		RedisTxNumOfRetries: c.Int(RedisTxNumOfRetries.Name),
		MaxInputs:           c.Int(MaxInputs.Name),
		MinConfirmations:    c.Int64(MinConfirmations.Name),
		DefaultFeeRate:      c.Int64(DefaultFeeRate.Name),
		PollInterval:        c.Int64(PollInterval.Name),
		AlertManagerURL:     c.String(AlertManagerURL.Name),
		ExplorerURL:         c.String(ExplorerURL.Name),
	}, nil
}

// loadConfigFile fills the flags that are set neither on the command line nor
// in the environment with the values of <datadir>/sysasset.yaml, if any.
func loadConfigFile(c *cli.Context) error {
	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(c.String(Datadir.Name))

	if err := v.ReadInConfig(); err != nil {
		if errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %s", err)
	}

	for _, f := range Flags {
		name := f.Names()[0]
		if name == Datadir.Name || c.IsSet(name) || !v.IsSet(name) {
			continue
		}
		if err := c.Set(name, v.GetString(name)); err != nil {
			return fmt.Errorf("invalid %s in config file: %s", name, err)
		}
	}
	return nil
}

func initDatadir(c *cli.Context) error {
	datadir := c.String(Datadir.Name)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0o755)
	}
	return nil
}

func (c *Config) Validate() error {
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	network, err := assetlib.NetworkParams(c.Network)
	if err != nil {
		return err
	}
	if c.RpcHost == "" {
		return fmt.Errorf("missing rpc host")
	}
	if c.MaxInputs <= 0 {
		return fmt.Errorf("max inputs must be positive")
	}
	if c.MinConfirmations < 0 {
		return fmt.Errorf("min confirmations must not be negative")
	}
	if c.DefaultFeeRate < assetlib.DefaultFeeRate {
		return fmt.Errorf(
			"default fee rate must be at least %d sat/kB", assetlib.DefaultFeeRate,
		)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	c.network = network

	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.ledgerService(); err != nil {
		return err
	}
	if err := c.feeManager(); err != nil {
		return err
	}
	if err := c.schedulerService(); err != nil {
		return err
	}
	if err := c.alertsService(); err != nil {
		return err
	}
	return nil
}

func (c *Config) AppService() (application.Service, error) {
	if c.svc == nil {
		if err := c.appService(); err != nil {
			return nil, err
		}
	}
	return c.svc, nil
}

func (c *Config) SchedulerService() ports.SchedulerService {
	return c.scheduler
}

func (c *Config) NetworkParams() *chaincfg.Params {
	return c.network
}

// Close releases the journal db and the node connection.
func (c *Config) Close() {
	if c.scheduler != nil {
		c.scheduler.Stop()
	}
	if c.svc != nil {
		c.svc.Close()
	}
	if c.repo != nil {
		c.repo.Close()
	}
	if c.ledger != nil {
		c.ledger.Close()
	}
}

func (c *Config) repoManager() error {
	var dbConfig []interface{}
	logger := log.New()

	switch c.DbType {
	case "badger":
		dbConfig = []interface{}{c.DbDir, logger}
	case "sqlite":
		dbConfig = []interface{}{c.DbDir}
	case "postgres":
		dbConfig = []interface{}{c.DbUrl, true}
	case "redis":
		dbConfig = []interface{}{c.RedisUrl, c.RedisTxNumOfRetries}
	default:
		return fmt.Errorf("unknown db type")
	}

	svc, err := db.NewService(db.ServiceConfig{
		DbType:   c.DbType,
		DbConfig: dbConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) ledgerService() error {
	ledger, err := syscoind.NewLedger(syscoind.Config{
		Host:        c.RpcHost,
		User:        c.RpcUser,
		Password:    c.RpcPassword,
		Wallet:      c.RpcWallet,
		TLSCertPath: c.RpcTLSCert,
	})
	if err != nil {
		return err
	}

	c.ledger = ledger
	return nil
}

func (c *Config) feeManager() error {
	c.fees = feemanager.NewNodeFeeManager(c.ledger, c.DefaultFeeRate)
	return nil
}

func (c *Config) schedulerService() error {
	svc, err := blockscheduler.NewScheduler(
		c.ledger,
		blockscheduler.WithTickerInterval(time.Duration(c.PollInterval)*time.Second),
	)
	if err != nil {
		return err
	}

	c.scheduler = svc
	return nil
}

func (c *Config) alertsService() error {
	if c.AlertManagerURL == "" {
		return nil
	}

	c.alerts = alertsmanager.NewService(c.AlertManagerURL, c.ExplorerURL)
	return nil
}

func (c *Config) appService() error {
	svc, err := application.NewService(
		c.ledger, c.fees, c.repo, c.scheduler, c.alerts,
		c.MaxInputs, c.MinConfirmations,
	)
	if err != nil {
		return err
	}

	c.svc = svc
	return nil
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
