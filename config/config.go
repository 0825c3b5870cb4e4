package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"campus/internal/domain/entity"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath              = "."
	defaultHost              = "127.0.0.1"
	defaultPort              = 8080
	defaultStorageDriver     = StorageDriverSQLite
	defaultSQLitePath        = "campus.db"
	defaultMinUsernameLength = 3
	defaultMinPasswordLength = 6
	defaultBcryptCost        = 10
)

// Storage drivers accepted in storage.driver.
const (
	StorageDriverMemory   = "memory"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"
	StorageDriverBlob     = "blob"
	StorageDriverRedis    = "redis"
)

// Password hashing schemes accepted in auth.passwordHashing.
const (
	PasswordHashingPlain  = "plain"
	PasswordHashingBcrypt = "bcrypt"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP HTTPConfig `json:"http" yaml:"http"`

	Storage StorageConfig `json:"storage" yaml:"storage"`

	// Postgres is only read when storage.driver is "postgres"
	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	// Redis is only read when storage.driver is "redis"
	Redis *RedisConfig `json:"redis" yaml:"redis"`

	Auth AuthConfig `json:"auth" yaml:"auth"`

	// Rewards overrides the built-in reward catalog when non-empty
	Rewards []entity.Reward `json:"rewards" yaml:"rewards"`

	Writer WriterConfig `json:"writer" yaml:"writer"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// HTTPConfig configures the local API used by the presentation layer
type HTTPConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Host    string `json:"host" yaml:"host"`
	Port    int    `json:"port" yaml:"port"`

	// RateLimit is the sustained requests per second allowed per client; 0 disables limiting
	RateLimit float64 `json:"rateLimit" yaml:"rateLimit"`
	RateBurst int     `json:"rateBurst" yaml:"rateBurst"`

	// AllowStorageClear exposes DELETE /storage
	AllowStorageClear bool `json:"allowStorageClear" yaml:"allowStorageClear"`

	Timeouts struct {
		ReadTimeout  time.Duration `json:"readTimeout" yaml:"readTimeout"`
		WriteTimeout time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
		IdleTimeout  time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
	} `json:"timeouts" yaml:"timeouts"`
}

// StorageConfig selects and configures the durable key/value driver
type StorageConfig struct {
	Driver string `json:"driver" yaml:"driver"`

	// SQLitePath is the database file for the sqlite driver (":memory:" for an ephemeral store)
	SQLitePath string `json:"sqlitePath" yaml:"sqlitePath"`

	// BucketURL is a gocloud.dev blob URL for the blob driver, e.g. file:///var/lib/campus or mem://
	BucketURL string `json:"bucketUrl" yaml:"bucketUrl"`

	// KeyPrefix namespaces keys for the blob and redis drivers
	KeyPrefix string `json:"keyPrefix" yaml:"keyPrefix"`
}

// RedisConfig configures the redis driver
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// AuthConfig defines signup rules and how passwords are stored
type AuthConfig struct {
	MinUsernameLength int    `json:"minUsernameLength" yaml:"minUsernameLength"`
	MinPasswordLength int    `json:"minPasswordLength" yaml:"minPasswordLength"`
	PasswordHashing   string `json:"passwordHashing" yaml:"passwordHashing"`
	BcryptCost        int    `json:"bcryptCost" yaml:"bcryptCost"`
}

// WriterConfig tunes the background snapshot writer
type WriterConfig struct {
	// DrainTimeout bounds how long shutdown waits for pending writes
	DrainTimeout time.Duration `json:"drainTimeout" yaml:"drainTimeout"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	configFile, err := findConfigFile(currEnv, configPath...)
	if err != nil {
		return nil, err
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Environment variables override YAML, e.g. STORAGE_SQLITEPATH -> storage.sqlitePath
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			return canonicalizeEnvKey(k, existingConfigMap), v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func findConfigFile(currEnv string, configPath ...string) (string, error) {
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", errors.Errorf("config file %s.yaml not found in any search path", currEnv)
}

func New() (*Config, error) {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env failed")
	}

	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()

	if cfg.Postgres != nil {
		cfg.Postgres.Replicas = buildReplicasFromEnv()
	}

	return cfg, cfg.Validate()
}

// ApplyDefaults fills zero values with the built-in defaults.
func (cfg *Config) ApplyDefaults() {
	if strings.TrimSpace(cfg.HTTP.Host) == "" {
		cfg.HTTP.Host = defaultHost
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = defaultPort
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = defaultStorageDriver
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = defaultSQLitePath
	}
	if cfg.Auth.MinUsernameLength == 0 {
		cfg.Auth.MinUsernameLength = defaultMinUsernameLength
	}
	if cfg.Auth.MinPasswordLength == 0 {
		cfg.Auth.MinPasswordLength = defaultMinPasswordLength
	}
	if cfg.Auth.PasswordHashing == "" {
		cfg.Auth.PasswordHashing = PasswordHashingPlain
	}
	if cfg.Auth.BcryptCost == 0 {
		cfg.Auth.BcryptCost = defaultBcryptCost
	}
	if len(cfg.Rewards) == 0 {
		cfg.Rewards = entity.DefaultRewards()
	}
}

// Validate rejects settings the process cannot start with.
func (cfg *Config) Validate() error {
	switch cfg.Storage.Driver {
	case StorageDriverMemory, StorageDriverSQLite:
	case StorageDriverPostgres:
		if cfg.Postgres == nil {
			return errors.New("postgres section is required for the postgres storage driver")
		}
	case StorageDriverBlob:
		if cfg.Storage.BucketURL == "" {
			return errors.New("storage.bucketUrl is required for the blob storage driver")
		}
	case StorageDriverRedis:
		if cfg.Redis == nil || cfg.Redis.Addr == "" {
			return errors.New("redis.addr is required for the redis storage driver")
		}
	default:
		return errors.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}

	switch cfg.Auth.PasswordHashing {
	case PasswordHashingPlain, PasswordHashingBcrypt:
	default:
		return errors.Errorf("unknown password hashing scheme: %s", cfg.Auth.PasswordHashing)
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			normalized.WriteRune(unicode.ToLower(r))
		}
	}

	return normalized.String()
}

// buildReplicasFromEnv reads POSTGRES_REPLICAS_{index}_{HOST,PORT,USERNAME,PASSWORD}.
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
