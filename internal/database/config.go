package database

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds database connection settings.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	MaxOpenConns   int
	MaxIdleConns   int
	MigrationsPath string
}

// NewConfig reads database settings from the environment, loading .env
// first when present.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, we'll use defaults or environment variables
		fmt.Println("Warning: .env file not found")
	}

	return &Config{
		Host:           getEnv("DB_HOST", "localhost"),
		Port:           getEnv("DB_PORT", "5432"),
		User:           getEnv("DB_USER", "centavo"),
		Password:       getEnv("DB_PASSWORD", "centavo"),
		DBName:         getEnv("DB_NAME", "centavo"),
		SSLMode:        getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:   getEnvInt("DB_MAX_OPEN_CONNS", 50),
		MaxIdleConns:   getEnvInt("DB_MAX_IDLE_CONNS", 10),
		MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "file://migrations"),
	}, nil
}

// DSN returns the keyword/value PostgreSQL connection string used by GORM.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL returns the postgres:// form of the connection string used by
// golang-migrate.
func (c *Config) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
