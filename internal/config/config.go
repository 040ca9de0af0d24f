// config реализует конфигурацию Cowele: загрузка из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"math"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config: корневая конфигурация процесса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env         string            `yaml:"env" env:"ENV" env-default:"local"`
	HTTP        HTTPConfig        `yaml:"http"`
	GRPC        GRPCConfig        `yaml:"grpc"`
	Store       StoreConfig       `yaml:"store"`
	Objects     ObjectsConfig     `yaml:"objects"`
	Local       LocalConfig       `yaml:"local"`
	City        CityConfig        `yaml:"city"`
	Branding    BrandingConfig    `yaml:"branding"`
	Defaults    DefaultsConfig    `yaml:"defaults"`
	Admins      []AdminConfig     `yaml:"admins"`
	Geolocation GeolocationConfig `yaml:"geolocation"`
	Map         MapConfig         `yaml:"map"`
	Timeouts    TimeoutConfig     `yaml:"timeouts"`
}

// HTTPConfig: HTTP-поверхность для презентационного слоя (API, health, metrics).
type HTTPConfig struct {
	Host        string   `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port        string   `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	CORSOrigins []string `yaml:"cors_origins" env:"HTTP_CORS_ORIGINS" env-separator:"," env-default:"http://localhost:5173"`
}

// GRPCConfig: gRPC health-сервер.
type GRPCConfig struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50090"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// Addr возвращает адрес в формате host:port.
func (g GRPCConfig) Addr() string {
	return net.JoinHostPort(g.Host, g.Port)
}

// Драйверы удалённого хранилища таблиц.
const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"
)

// StoreConfig: удалённое хранилище таблиц bathrooms/reviews/profiles.
type StoreConfig struct {
	Driver string `yaml:"driver" env:"STORE_DRIVER" env-default:"postgres"`
	URL    string `yaml:"url" env:"DATABASE_URL"`
}

// Драйверы объектного хранилища.
const (
	ObjectsMinio      = "minio"
	ObjectsCloudinary = "cloudinary"
	ObjectsMemory     = "memory"
)

// ObjectsConfig: объектное хранилище фотографий и аватаров.
type ObjectsConfig struct {
	Driver        string `yaml:"driver" env:"OBJECTS_DRIVER" env-default:"minio"`
	Bucket        string `yaml:"bucket" env:"OBJECTS_BUCKET" env-default:"bathrooms"`
	Endpoint      string `yaml:"endpoint" env:"S3_ENDPOINT"`
	AccessKey     string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey     string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	PublicBaseURL string `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL"`
	CloudinaryURL string `yaml:"cloudinary_url" env:"CLOUDINARY_URL"`
}

// Драйверы долговременного локального хранилища сессии.
const (
	LocalFile  = "file"
	LocalRedis = "redis"
)

// LocalConfig: долговременное хранилище клиента (ключ cowele_session).
type LocalConfig struct {
	Driver        string `yaml:"driver" env:"LOCAL_DRIVER" env-default:"file"`
	Dir           string `yaml:"dir" env:"LOCAL_DIR" env-default:".cowele"`
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
}

// CityConfig: центр города, используемый как координата по умолчанию.
type CityConfig struct {
	Lat float64 `yaml:"lat" env:"CITY_LAT" env-default:"22.1522"`
	Lng float64 `yaml:"lng" env:"CITY_LNG" env-default:"-100.9740"`
}

// BrandingConfig: название и изображения бренда.
type BrandingConfig struct {
	Name   string `yaml:"name" env:"BRAND_NAME" env-default:"Cowele"`
	Logo   string `yaml:"logo" env:"BRAND_LOGO" env-default:"https://tritex.com.mx/cowelelogo.png"`
	Icon   string `yaml:"icon" env:"BRAND_ICON" env-default:"https://tritex.com.mx/coweleicono.png"`
	Splash string `yaml:"splash" env:"BRAND_SPLASH" env-default:"https://tritex.com.mx/cowelesplash.png"`
}

// DefaultsConfig: изображения по умолчанию.
type DefaultsConfig struct {
	Photo  string `yaml:"photo" env:"DEFAULT_PHOTO" env-default:"https://images.unsplash.com/photo-1584622650111-993a426fbf0a?auto=format&fit=crop&q=80&w=800"`
	Avatar string `yaml:"avatar" env:"DEFAULT_AVATAR" env-default:"https://images.unsplash.com/photo-1535713875002-d1d0cf377fde?auto=format&fit=crop&q=80&w=200"`
}

// AdminConfig: запись реестра администраторов.
// PasswordHash (bcrypt) имеет приоритет над Password.
type AdminConfig struct {
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password_hash"`
	DisplayName  string `yaml:"display_name"`
}

// GeolocationConfig: источник позиции устройства.
// Если Fixed=false, позиция ожидается от презентационного слоя (POST /device/location).
type GeolocationConfig struct {
	Fixed   bool          `yaml:"fixed" env:"GEO_FIXED" env-default:"false"`
	Lat     float64       `yaml:"lat" env:"GEO_LAT"`
	Lng     float64       `yaml:"lng" env:"GEO_LNG"`
	Timeout time.Duration `yaml:"timeout" env:"GEO_TIMEOUT" env-default:"30s"`
}

// MapConfig: тайминги контроллера карты.
type MapConfig struct {
	FitDelay           time.Duration `yaml:"fit_delay" env:"MAP_FIT_DELAY" env-default:"600ms"`
	InvalidateInterval time.Duration `yaml:"invalidate_interval" env:"MAP_INVALIDATE_INTERVAL" env-default:"2s"`
	PickerSettle       time.Duration `yaml:"picker_settle" env:"MAP_PICKER_SETTLE" env-default:"200ms"`
}

// TimeoutConfig: дедлайны обработки запроса по группам маршрутов.
// Service: действия ядра и gRPC-пробы; Upload: multipart-загрузки фото и аватаров.
type TimeoutConfig struct {
	Service time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"10s"`
	Upload  time.Duration `yaml:"upload" env:"UPLOAD_TIMEOUT" env-default:"60s"`
}

// DefaultAdmins: реестр администраторов, если конфиг его не задаёт.
func DefaultAdmins() []AdminConfig {
	return []AdminConfig{
		{Username: "harold_anguiano", Password: "123_admin", DisplayName: "Harold Anguiano"},
		{Username: "daniel_herrera", Password: "123_admin", DisplayName: "Daniel Herrera"},
	}
}

// MustLoad: обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла накладываем ENV-переменные поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	if path == "" {
		if _, err := os.Stat("local.yaml"); err == nil {
			path = "local.yaml"
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %q stat failed: %w", path, err)
		}

		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults дополняет значения, которые нельзя выразить через env-default.
func (c *Config) applyDefaults() {
	if len(c.Admins) == 0 {
		c.Admins = DefaultAdmins()
	}

	for i := range c.Admins {
		c.Admins[i].Username = strings.ToLower(strings.TrimSpace(c.Admins[i].Username))
		if c.Admins[i].DisplayName == "" {
			c.Admins[i].DisplayName = c.Admins[i].Username
		}
	}
}

// validate: базовая валидация значений.
func (c *Config) validate() error {
	switch c.Store.Driver {
	case StorePostgres, StoreMongo:
		if c.Store.URL == "" {
			return fmt.Errorf("store.url is required for driver %q", c.Store.Driver)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("store.driver must be one of postgres|mongo|memory, got %q", c.Store.Driver)
	}

	if c.Objects.Bucket == "" {
		return fmt.Errorf("objects.bucket is required")
	}

	switch c.Objects.Driver {
	case ObjectsMinio:
		if c.Objects.Endpoint == "" {
			return fmt.Errorf("objects.endpoint is required for minio")
		}
	case ObjectsCloudinary:
		if c.Objects.CloudinaryURL == "" {
			return fmt.Errorf("objects.cloudinary_url is required for cloudinary")
		}
	case ObjectsMemory:
	default:
		return fmt.Errorf("objects.driver must be one of minio|cloudinary|memory, got %q", c.Objects.Driver)
	}

	switch c.Local.Driver {
	case LocalFile:
		if c.Local.Dir == "" {
			return fmt.Errorf("local.dir is required for file driver")
		}
	case LocalRedis:
		if c.Local.RedisAddr == "" {
			return fmt.Errorf("local.redis_addr is required for redis driver")
		}
	default:
		return fmt.Errorf("local.driver must be one of file|redis, got %q", c.Local.Driver)
	}

	if !validCoord(c.City.Lat, 90) || !validCoord(c.City.Lng, 180) {
		return fmt.Errorf("city center is out of range")
	}

	if c.Geolocation.Fixed && (!validCoord(c.Geolocation.Lat, 90) || !validCoord(c.Geolocation.Lng, 180)) {
		return fmt.Errorf("geolocation position is out of range")
	}

	seen := make(map[string]struct{}, len(c.Admins))
	for _, a := range c.Admins {
		if a.Username == "" {
			return fmt.Errorf("admins: username is required")
		}

		if a.Password == "" && a.PasswordHash == "" {
			return fmt.Errorf("admins: %q needs password or password_hash", a.Username)
		}

		if _, dup := seen[a.Username]; dup {
			return fmt.Errorf("admins: duplicate username %q", a.Username)
		}
		seen[a.Username] = struct{}{}
	}

	if c.Map.FitDelay < 0 || c.Map.InvalidateInterval <= 0 || c.Map.PickerSettle < 0 {
		return fmt.Errorf("map timings must be positive")
	}

	if c.Timeouts.Service <= 0 {
		return fmt.Errorf("timeouts.service must be > 0")
	}

	if c.Timeouts.Upload < c.Timeouts.Service {
		return fmt.Errorf("timeouts.upload must be >= timeouts.service")
	}

	return nil
}

func validCoord(v, limit float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && math.Abs(v) <= limit
}
