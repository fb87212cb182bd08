package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Bedrock-Technology/uniBTC/internal/core/application"
	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
	"github.com/Bedrock-Technology/uniBTC/internal/core/ports"
	alertsmanager "github.com/Bedrock-Technology/uniBTC/internal/infrastructure/alertsmanager"
	"github.com/Bedrock-Technology/uniBTC/internal/infrastructure/db"
	inmemorylivestore "github.com/Bedrock-Technology/uniBTC/internal/infrastructure/live-store/inmemory"
	redislivestore "github.com/Bedrock-Technology/uniBTC/internal/infrastructure/live-store/redis"
	timescheduler "github.com/Bedrock-Technology/uniBTC/internal/infrastructure/scheduler/gocron"
	inmemoryvault "github.com/Bedrock-Technology/uniBTC/internal/infrastructure/vault/inmemory"
	restvault "github.com/Bedrock-Technology/uniBTC/internal/infrastructure/vault/rest"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	supportedEventDbs = supportedType{
		"badger":   {},
		"postgres": {},
	}
	supportedDbs = supportedType{
		"badger":   {},
		"sqlite":   {},
		"postgres": {},
	}
	supportedLiveStores = supportedType{
		"inmemory": {},
		"redis":    {},
	}
	supportedVaults = supportedType{
		"rest":     {},
		"inmemory": {},
	}
)

type Config struct {
	Datadir  string
	Port     uint32
	LogLevel int

	DbType      string
	EventDbType string
	DbDir       string
	DbUrl       string
	EventDbDir  string
	EventDbUrl  string

	LiveStoreType string
	RedisUrl      string

	VaultType       string
	VaultUrl        string
	WrappedTokenUrl string
	RouterAccount   string

	RedeemFeeRate        uint64
	RedeemDelay          int64
	RedeemPrincipalDelay int64
	PrincipalDelayMinGap int64
	MinRedeemAmount      uint64

	WatchInterval            int64
	LargeRedemptionThreshold uint64
	AlertManagerURL          string

	OperatorAccounts []string
	TreasuryAccounts []string

	repo      ports.RepoManager
	svc       application.Service
	adminSvc  application.AdminService
	watcher   *application.Watcher
	vault     ports.VaultService
	wrapped   ports.WrappedTokenService
	scheduler ports.SchedulerService
	liveStore ports.LiveStore
	alerts    ports.Alerts
}

func (c *Config) String() string {
	buf, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(buf)
}

var (
	defaultDatadir       = appDataDir("unibtcd")
	DefaultPort          = 7080
	defaultLogLevel      = 4
	defaultDbType        = "postgres"
	defaultEventDbType   = "postgres"
	defaultLiveStoreType = "redis"
	defaultVaultType     = "rest"

	defaultRedeemDelay          = 86400  // 24 hours
	defaultRedeemPrincipalDelay = 172800 // 48 hours
	defaultWatchInterval        = 60     // seconds
)

// env returns a list of strings prefixed with `UNIBTC_`.
// This is used as a syntax sugar for defining env vars.
func env(values ...string) []string {
	envs := make([]string, len(values))

	for i, value := range values {
		envs[i] = fmt.Sprintf("UNIBTC_%s", value)
	}

	return envs
}

var (
	Datadir = &cli.StringFlag{
		Usage: "Directory to store data",
		Name:  "datadir", EnvVars: env("DATADIR"),
		Value: defaultDatadir,
	}

	Port = &cli.UintFlag{
		Usage: "Port to listen on",
		Name:  "port", EnvVars: env("PORT"),
		Value: uint(DefaultPort),
	}

	LogLevel = &cli.IntFlag{
		Usage: "Logging level (0-6, where 6 is trace)",
		Name:  "log-level", EnvVars: env("LOG_LEVEL"),
		Value: defaultLogLevel,
	}

	DbType = &cli.StringFlag{
		Usage: "Database type (postgres, sqlite, badger)",
		Name:  "db-type", EnvVars: env("DB_TYPE"),
		Value: defaultDbType,
	}

	DbUrl = &cli.StringFlag{
		Usage: "Postgres connection url if UNIBTC_DB_TYPE is set to postgres",
		Name:  "pg-db-url", EnvVars: env("PG_DB_URL"),
	}

	EventDbType = &cli.StringFlag{
		Usage: "Event database type (postgres, badger)",
		Name:  "event-db-type", EnvVars: env("EVENT_DB_TYPE"),
		Value: defaultEventDbType,
	}

	EventDbUrl = &cli.StringFlag{
		Usage: "Postgres connection url if UNIBTC_EVENT_DB_TYPE is set to postgres",
		Name:  "pg-event-db-url", EnvVars: env("PG_EVENT_DB_URL"),
	}

	LiveStoreType = &cli.StringFlag{
		Usage: "Cache service type (redis, inmemory)",
		Name:  "live-store-type", EnvVars: env("LIVE_STORE_TYPE"),
		Value: defaultLiveStoreType,
	}

	RedisUrl = &cli.StringFlag{
		Usage: "Redis db connection url if UNIBTC_LIVE_STORE_TYPE is set to redis",
		Name:  "redis-url", EnvVars: env("REDIS_URL"),
	}

	VaultType = &cli.StringFlag{
		Usage: "Vault backend type (rest, inmemory)",
		Name:  "vault-type", EnvVars: env("VAULT_TYPE"),
		Value: defaultVaultType,
	}

	VaultUrl = &cli.StringFlag{
		Usage: "Vault sidecar base url if UNIBTC_VAULT_TYPE is set to rest",
		Name:  "vault-url", EnvVars: env("VAULT_URL"),
	}

	WrappedTokenUrl = &cli.StringFlag{
		Usage:       "Wrapped token sidecar base url if UNIBTC_VAULT_TYPE is set to rest",
		Name:        "wrapped-token-url", EnvVars: env("WRAPPED_TOKEN_URL"),
		DefaultText: "value of `UNIBTC_VAULT_URL`",
	}

	RouterAccount = &cli.StringFlag{
		Usage: "The router's own account on the wrapped-token ledger",
		Name:  "router-account", EnvVars: env("ROUTER_ACCOUNT"),
	}

	RedeemFeeRate = &cli.Uint64Flag{
		Usage: "Redeem fee rate in basis points over 10000",
		Name:  "redeem-fee-rate", EnvVars: env("REDEEM_FEE_RATE"),
		Value: domain.DefaultRedeemFeeRate,
	}

	RedeemDelay = &cli.Int64Flag{
		Usage: "Delay in seconds before a redeem can claim the underlying asset",
		Name:  "redeem-delay", EnvVars: env("REDEEM_DELAY"),
		Value: int64(defaultRedeemDelay),
		DefaultText: fmt.Sprintf("%d (~%0.f hours)", defaultRedeemDelay,
			(time.Duration(defaultRedeemDelay) * time.Second).Hours()),
	}

	RedeemPrincipalDelay = &cli.Int64Flag{
		Usage: "Delay in seconds before a redeem can reclaim the wrapped principal",
		Name:  "redeem-principal-delay", EnvVars: env("REDEEM_PRINCIPAL_DELAY"),
		Value: int64(defaultRedeemPrincipalDelay),
		DefaultText: fmt.Sprintf("%d (~%0.f hours)", defaultRedeemPrincipalDelay,
			(time.Duration(defaultRedeemPrincipalDelay) * time.Second).Hours()),
	}

	PrincipalDelayMinGap = &cli.Int64Flag{
		Usage: "Minimum required gap in seconds between the two redeem delays",
		Name:  "principal-delay-min-gap", EnvVars: env("PRINCIPAL_DELAY_MIN_GAP"),
		Value: 0,
	}

	MinRedeemAmount = &cli.Uint64Flag{
		Usage: "Minimum redeem amount in wrapped units",
		Name:  "min-redeem-amount", EnvVars: env("MIN_REDEEM_AMOUNT"),
		Value: 0,
	}

	WatchInterval = &cli.Int64Flag{
		Usage: "Interval in seconds between redeem watcher sweeps, 0 disables",
		Name:  "watch-interval", EnvVars: env("WATCH_INTERVAL"),
		Value: int64(defaultWatchInterval),
	}

	LargeRedemptionThreshold = &cli.Uint64Flag{
		Usage: "Wrapped amount above which a redemption triggers an alert, 0 disables",
		Name:  "large-redemption-threshold", EnvVars: env("LARGE_REDEMPTION_THRESHOLD"),
		Value: 0,
	}

	AlertManagerURL = &cli.StringFlag{
		Usage: "AlertManager endpoint to publish alerts to",
		Name:  "alert-manager-url", EnvVars: env("ALERT_MANAGER_URL"),
	}

	OperatorAccounts = &cli.StringSliceFlag{
		Usage: "Accounts granted the operator role (comma-separated)",
		Name:  "operator-accounts", EnvVars: env("OPERATOR_ACCOUNTS"),
	}

	TreasuryAccounts = &cli.StringSliceFlag{
		Usage: "Accounts granted the treasury role (comma-separated)",
		Name:  "treasury-accounts", EnvVars: env("TREASURY_ACCOUNTS"),
	}
)

var Flags = []cli.Flag{
	Datadir,
	Port,
	LogLevel,
	DbType,
	DbUrl,
	EventDbType,
	EventDbUrl,
	LiveStoreType,
	RedisUrl,
	VaultType,
	VaultUrl,
	WrappedTokenUrl,
	RouterAccount,
	RedeemFeeRate,
	RedeemDelay,
	RedeemPrincipalDelay,
	PrincipalDelayMinGap,
	MinRedeemAmount,
	WatchInterval,
	LargeRedemptionThreshold,
	AlertManagerURL,
	OperatorAccounts,
	TreasuryAccounts,
}

func LoadConfig(c *cli.Context) (*Config, error) {
	if err := initDatadir(c); err != nil {
		return nil, fmt.Errorf("failed to create datadir: %s", err)
	}

	dbPath := filepath.Join(c.String(Datadir.Name), "db")

	var eventDbUrl string
	if c.String(EventDbType.Name) == "postgres" {
		eventDbUrl = c.String(EventDbUrl.Name)
		if eventDbUrl == "" {
			return nil, fmt.Errorf("event db type set to 'postgres' but event db url is missing")
		}
	}

	var dbUrl string
	if c.String(DbType.Name) == "postgres" {
		dbUrl = c.String(DbUrl.Name)
		if dbUrl == "" {
			return nil, fmt.Errorf("db type set to 'postgres' but db url is missing")
		}
	}

	var redisUrl string
	if c.String(LiveStoreType.Name) == "redis" {
		redisUrl = c.String(RedisUrl.Name)
		if redisUrl == "" {
			return nil, fmt.Errorf("live store type set to 'redis' but redis url is missing")
		}
	}

	wrappedTokenUrl := c.String(WrappedTokenUrl.Name)
	if wrappedTokenUrl == "" {
		wrappedTokenUrl = c.String(VaultUrl.Name)
	}

	return &Config{
		Datadir:                  c.String(Datadir.Name),
		Port:                     uint32(c.Uint(Port.Name)),
		LogLevel:                 c.Int(LogLevel.Name),
		DbType:                   c.String(DbType.Name),
		EventDbType:              c.String(EventDbType.Name),
		DbDir:                    dbPath,
		DbUrl:                    dbUrl,
		EventDbDir:               dbPath,
		EventDbUrl:               eventDbUrl,
		LiveStoreType:            c.String(LiveStoreType.Name),
		RedisUrl:                 redisUrl,
		VaultType:                c.String(VaultType.Name),
		VaultUrl:                 c.String(VaultUrl.Name),
		WrappedTokenUrl:          wrappedTokenUrl,
		RouterAccount:            c.String(RouterAccount.Name),
		RedeemFeeRate:            c.Uint64(RedeemFeeRate.Name),
		RedeemDelay:              c.Int64(RedeemDelay.Name),
		RedeemPrincipalDelay:     c.Int64(RedeemPrincipalDelay.Name),
		PrincipalDelayMinGap:     c.Int64(PrincipalDelayMinGap.Name),
		MinRedeemAmount:          c.Uint64(MinRedeemAmount.Name),
		WatchInterval:            c.Int64(WatchInterval.Name),
		LargeRedemptionThreshold: c.Uint64(LargeRedemptionThreshold.Name),
		AlertManagerURL:          c.String(AlertManagerURL.Name),
		OperatorAccounts:         c.StringSlice(OperatorAccounts.Name),
		TreasuryAccounts:         c.StringSlice(TreasuryAccounts.Name),
	}, nil
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

func appDataDir(appName string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "."+appName)
	}
	return filepath.Join(home, "."+appName)
}

func (c *Config) Validate() error {
	if !supportedEventDbs.supports(c.EventDbType) {
		return fmt.Errorf(
			"event db type not supported, please select one of: %s", supportedEventDbs,
		)
	}
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if !supportedLiveStores.supports(c.LiveStoreType) {
		return fmt.Errorf(
			"live store type not supported, please select one of: %s", supportedLiveStores,
		)
	}
	if !supportedVaults.supports(c.VaultType) {
		return fmt.Errorf(
			"vault type not supported, please select one of: %s", supportedVaults,
		)
	}
	if c.RouterAccount == "" {
		return fmt.Errorf("missing router account")
	}

	settings := domain.NewSettings(
		c.RedeemFeeRate, c.RedeemDelay, c.RedeemPrincipalDelay,
		c.PrincipalDelayMinGap, c.MinRedeemAmount,
	)
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.vaultService(); err != nil {
		return err
	}
	if err := c.liveStoreService(); err != nil {
		return err
	}
	if err := c.schedulerService(); err != nil {
		return err
	}
	c.alertsService()
	if err := c.appService(); err != nil {
		return err
	}
	c.adminService()
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

func (c *Config) AdminService() application.AdminService {
	return c.adminSvc
}

// Watcher returns the background sweep service, nil when disabled.
func (c *Config) Watcher() *application.Watcher {
	if c.watcher == nil && c.WatchInterval > 0 {
		c.watcher = application.NewWatcher(
			c.repo, c.vault, c.alerts, c.scheduler,
			time.Duration(c.WatchInterval)*time.Second,
		)
	}
	return c.watcher
}

func (c *Config) RepoManager() ports.RepoManager {
	return c.repo
}

// Roles maps every configured account onto the roles it holds.
func (c *Config) Roles() map[string][]string {
	roles := make(map[string][]string)
	for _, account := range c.OperatorAccounts {
		roles[account] = append(roles[account], application.RoleOperator)
	}
	for _, account := range c.TreasuryAccounts {
		roles[account] = append(roles[account], application.RoleTreasury)
	}
	return roles
}

func (c *Config) repoManager() error {
	var eventStoreConfig []interface{}
	var dataStoreConfig []interface{}
	logger := log.New()

	switch c.EventDbType {
	case "badger":
		eventStoreConfig = []interface{}{c.EventDbDir, logger}
	case "postgres":
		eventStoreConfig = []interface{}{c.EventDbUrl, true}
	default:
		return fmt.Errorf("unknown event db type")
	}

	switch c.DbType {
	case "badger":
		dataStoreConfig = []interface{}{c.DbDir, logger}
	case "sqlite":
		dataStoreConfig = []interface{}{c.DbDir}
	case "postgres":
		dataStoreConfig = []interface{}{c.DbUrl, true}
	default:
		return fmt.Errorf("unknown db type")
	}

	svc, err := db.NewService(db.ServiceConfig{
		EventStoreType:   c.EventDbType,
		DataStoreType:    c.DbType,
		EventStoreConfig: eventStoreConfig,
		DataStoreConfig:  dataStoreConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) vaultService() error {
	switch c.VaultType {
	case "rest":
		if c.VaultUrl == "" {
			return fmt.Errorf("vault type set to 'rest' but vault url is missing")
		}
		c.vault = restvault.NewVaultService(c.VaultUrl)
		c.wrapped = restvault.NewWrappedTokenService(c.WrappedTokenUrl)
	case "inmemory":
		// development only, state is lost on restart
		c.vault = inmemoryvault.NewVaultService()
		c.wrapped = inmemoryvault.NewWrappedTokenService(c.RouterAccount)
	default:
		return fmt.Errorf("unknown vault type")
	}
	return nil
}

func (c *Config) liveStoreService() error {
	switch c.LiveStoreType {
	case "inmemory":
		c.liveStore = inmemorylivestore.NewLiveStore()
	case "redis":
		redisOpts, err := redis.ParseURL(c.RedisUrl)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(redisOpts)
		c.liveStore = redislivestore.NewLiveStore(rdb)
	default:
		return fmt.Errorf("unknown liveStore type")
	}
	return nil
}

func (c *Config) schedulerService() error {
	c.scheduler = timescheduler.NewScheduler()
	return nil
}

func (c *Config) alertsService() {
	if c.AlertManagerURL == "" {
		return
	}
	c.alerts = alertsmanager.NewService(c.AlertManagerURL)
}

func (c *Config) appService() error {
	settings := domain.NewSettings(
		c.RedeemFeeRate, c.RedeemDelay, c.RedeemPrincipalDelay,
		c.PrincipalDelayMinGap, c.MinRedeemAmount,
	)
	svc, err := application.NewService(
		c.repo, c.vault, c.wrapped, c.liveStore, c.alerts,
		c.RouterAccount, settings, c.LargeRedemptionThreshold,
	)
	if err != nil {
		return err
	}

	c.svc = svc
	return nil
}

func (c *Config) adminService() {
	c.adminSvc = application.NewAdminService(c.repo, c.vault, c.wrapped, c.liveStore)
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
