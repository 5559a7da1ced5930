package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Backend  BackendConfig
	Session  SessionConfig
	Exam     ExamConfig
}

// ServerConfig содержит настройки HTTP сервера экзаменов
type ServerConfig struct {
	Port           string
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MigrationsPath string   `mapstructure:"migrations_path"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт).
	Addrs []string `mapstructure:"addrs"`

	// Addr: адрес для режима 'single', если Addrs пустой.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: только для режима "sentinel"
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// BackendConfig — куда терминальный клиент ходит за вопросами
type BackendConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
	UserID     uint   `mapstructure:"user_id"`
}

// Timeout возвращает таймаут HTTP-запроса к бэкенду
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSec) * time.Second
}

// SessionConfig содержит настройки контроллера сессии на стороне клиента
type SessionConfig struct {
	// Используется, если бэкенд не вернул длительность попытки
	DurationMinutes       int  `mapstructure:"duration_minutes"`
	FlushPendingOnTimeout bool `mapstructure:"flush_pending_on_timeout"`
	NumericMaxLength      int  `mapstructure:"numeric_max_length"`
	SubmitTimeoutSec      int  `mapstructure:"submit_timeout_sec"`
}

// ExamConfig содержит правила выдачи вопросов на сервере
type ExamConfig struct {
	MockDurationMinutes     int `mapstructure:"mock_duration_minutes"`
	PracticeDurationMinutes int `mapstructure:"practice_duration_minutes"`
	QuestionLimit           int `mapstructure:"question_limit"`
	// Сколько хранить в Redis список выданных вопросов попытки
	ServedTTLHours int `mapstructure:"served_ttl_hours"`
	// Лимит отправок ответа на пользователя за окно
	SubmitRateLimit     int `mapstructure:"submit_rate_limit"`
	SubmitRateWindowSec int `mapstructure:"submit_rate_window_sec"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PostgresURL формирует URL подключения, его понимает golang-migrate
func (d *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.read_timeout", 10)
	vip.SetDefault("server.write_timeout", 30)
	vip.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})
	vip.SetDefault("server.migrations_path", "migrations")

	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")

	vip.SetDefault("redis.mode", "single")

	vip.SetDefault("backend.base_url", "http://localhost:8080")
	vip.SetDefault("backend.timeout_sec", 10)
	vip.SetDefault("backend.user_id", 1)

	vip.SetDefault("session.duration_minutes", 180)
	vip.SetDefault("session.flush_pending_on_timeout", false)
	vip.SetDefault("session.numeric_max_length", 8)
	vip.SetDefault("session.submit_timeout_sec", 10)

	vip.SetDefault("exam.mock_duration_minutes", 180)
	vip.SetDefault("exam.practice_duration_minutes", 60)
	vip.SetDefault("exam.question_limit", 30)
	vip.SetDefault("exam.served_ttl_hours", 24)
	vip.SetDefault("exam.submit_rate_limit", 60)
	vip.SetDefault("exam.submit_rate_window_sec", 60)
}

// loadDotEnv подхватывает .env (или файл из ENV_FILE) при локальном запуске.
// Уже заданные переменные окружения не перезаписываются.
func loadDotEnv() {
	if os.Getenv("GIN_MODE") == "release" {
		return
	}
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[Config] Предупреждение: не удалось прочитать %s: %v", path, err)
		}
		return
	}
	log.Printf("[Config] Переменные окружения загружены из %s", path)
}

// Load загружает конфигурацию из файла и переменных окружения
func Load(configPath string) (*Config, error) {
	loadDotEnv()

	vip := viper.New() // Новый экземпляр, без глобального состояния

	setDefaults(vip)

	// Переменные окружения привязываем явно
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.migrations_path", "MIGRATIONS_PATH")

	vip.BindEnv("backend.base_url", "BACKEND_BASE_URL")
	vip.BindEnv("backend.timeout_sec", "BACKEND_TIMEOUT_SEC")
	vip.BindEnv("backend.user_id", "BACKEND_USER_ID")

	vip.BindEnv("session.duration_minutes", "SESSION_DURATION_MINUTES")
	vip.BindEnv("session.flush_pending_on_timeout", "SESSION_FLUSH_PENDING_ON_TIMEOUT")

	vip.BindEnv("exam.question_limit", "EXAM_QUESTION_LIMIT")
	vip.BindEnv("exam.submit_rate_limit", "EXAM_SUBMIT_RATE_LIMIT")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Файла может не быть: тогда работают env и значения по умолчанию
		if err := vip.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || os.IsNotExist(err) {
				log.Printf("[Config] Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("[Config] Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Mode: %s", cfg.Redis.Mode)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("Backend URL: %s", cfg.Backend.BaseURL)
		log.Printf("Session Flush On Timeout: %t", cfg.Session.FlushPendingOnTimeout)
		log.Printf("-----------------------------------------")
	}

	return &cfg, nil
}

// ValidateDatabase проверяет параметры подключения к PostgreSQL
func (c *Config) ValidateDatabase() error {
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if os.Getenv("GIN_MODE") == "release" && c.Database.Password == "" {
		return fmt.Errorf("database password is required in release mode (check DATABASE_PASSWORD env var)")
	}
	return nil
}

// ValidateServer проверяет параметры, без которых не стартует сервер экзаменов
func (c *Config) ValidateServer() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if len(c.Redis.Addrs) == 0 && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required (check REDIS_ADDR or REDIS_ADDRS env vars)")
	}
	if c.Exam.QuestionLimit <= 0 {
		return fmt.Errorf("exam.question_limit must be positive, got %d", c.Exam.QuestionLimit)
	}
	return nil
}

// ValidateClient проверяет параметры терминального клиента
func (c *Config) ValidateClient() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base url is required (check BACKEND_BASE_URL env var)")
	}
	if c.Backend.UserID == 0 {
		return fmt.Errorf("backend user id is required (check BACKEND_USER_ID env var)")
	}
	if c.Session.NumericMaxLength <= 0 {
		return fmt.Errorf("session.numeric_max_length must be positive, got %d", c.Session.NumericMaxLength)
	}
	return nil
}
