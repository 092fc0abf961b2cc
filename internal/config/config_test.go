package config

import (
	"os"
	"testing"
	"time"
)

func setEnvVars(vars map[string]string) {
	for k, v := range vars {
		os.Setenv(k, v)
	}
}

func clearEnvVars(vars []string) {
	for _, k := range vars {
		os.Unsetenv(k)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	envVars := []string{
		"HOST", "PORT", "READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT", "ENVIRONMENT",
		"DB_DRIVER", "DB_PATH", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE",
		"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME",
		"REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "REDIS_POOL_SIZE",
		"REDIS_MIN_IDLE_CONNS", "REDIS_MAX_RETRIES", "REDIS_DIAL_TIMEOUT", "REDIS_READ_TIMEOUT", "REDIS_WRITE_TIMEOUT",
		"REMINDER_POLL_INTERVAL",
		"JWT_SECRET", "JWT_ISSUER", "ACCESS_TOKEN_TTL", "REFRESH_TOKEN_TTL", "BCRYPT_COST",
		"MAX_LOGIN_ATTEMPTS", "LOCKOUT_DURATION", "PENDING_LOGIN_TTL", "TOTP_ISSUER",
		"RATE_LIMIT_ENABLED", "RATE_LIMIT_RPM", "RATE_LIMIT_BURST", "RATE_LIMIT_CLEANUP",
	}
	clearEnvVars(envVars)

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error with default config, got: %v", err)
	}

	if config.Server.Host != "localhost" {
		t.Errorf("Expected default host 'localhost', got %s", config.Server.Host)
	}

	if config.Server.Port != "8080" {
		t.Errorf("Expected default port '8080', got %s", config.Server.Port)
	}

	if config.Server.Environment != "development" {
		t.Errorf("Expected default environment 'development', got %s", config.Server.Environment)
	}

	if config.Database.Driver != "sqlite" {
		t.Errorf("Expected default DB driver 'sqlite', got %s", config.Database.Driver)
	}

	if config.Database.Path != "tasknest.db" {
		t.Errorf("Expected default DB path 'tasknest.db', got %s", config.Database.Path)
	}

	if config.Database.Name != "tasknest" {
		t.Errorf("Expected default DB name 'tasknest', got %s", config.Database.Name)
	}

	if config.Redis.Host != "localhost" {
		t.Errorf("Expected default Redis host 'localhost', got %s", config.Redis.Host)
	}

	if config.Scheduler.PollInterval != 30*time.Second {
		t.Errorf("Expected default poll interval 30s, got %v", config.Scheduler.PollInterval)
	}

	if config.Auth.MaxLoginAttempts != 5 {
		t.Errorf("Expected default max login attempts 5, got %d", config.Auth.MaxLoginAttempts)
	}

	if config.Auth.LockoutDuration != 15*time.Minute {
		t.Errorf("Expected default lockout duration 15m, got %v", config.Auth.LockoutDuration)
	}

	if config.Auth.BCryptCost != 10 {
		t.Errorf("Expected default bcrypt cost 10, got %d", config.Auth.BCryptCost)
	}

	if config.Auth.TOTPIssuer != "TaskNest" {
		t.Errorf("Expected default TOTP issuer 'TaskNest', got %s", config.Auth.TOTPIssuer)
	}

	if !config.RateLimit.Enabled {
		t.Error("Expected rate limiting to be enabled by default")
	}
}

func TestLoadConfig_CustomEnvironment(t *testing.T) {
	envVars := map[string]string{
		"HOST":                   "0.0.0.0",
		"PORT":                   "9000",
		"DB_DRIVER":              "postgres",
		"DB_HOST":                "db.example.com",
		"DB_PASSWORD":            "secure_password",
		"REDIS_HOST":             "redis.example.com",
		"REDIS_DB":               "1",
		"REMINDER_POLL_INTERVAL": "10s",
		"JWT_SECRET":             "super-secret-key",
		"MAX_LOGIN_ATTEMPTS":     "3",
		"LOCKOUT_DURATION":       "30m",
		"RATE_LIMIT_ENABLED":     "false",
		"ACCESS_TOKEN_TTL":       "30m",
	}

	setEnvVars(envVars)
	defer func() {
		var keys []string
		for k := range envVars {
			keys = append(keys, k)
		}
		clearEnvVars(keys)
	}()

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("Expected no error with custom config, got: %v", err)
	}

	if config.Server.Host != "0.0.0.0" {
		t.Errorf("Expected host '0.0.0.0', got %s", config.Server.Host)
	}

	if config.Database.Driver != "postgres" {
		t.Errorf("Expected DB driver 'postgres', got %s", config.Database.Driver)
	}

	if config.Redis.DB != 1 {
		t.Errorf("Expected Redis DB 1, got %d", config.Redis.DB)
	}

	if config.Scheduler.PollInterval != 10*time.Second {
		t.Errorf("Expected poll interval 10s, got %v", config.Scheduler.PollInterval)
	}

	if config.Auth.MaxLoginAttempts != 3 {
		t.Errorf("Expected max login attempts 3, got %d", config.Auth.MaxLoginAttempts)
	}

	if config.Auth.LockoutDuration != 30*time.Minute {
		t.Errorf("Expected lockout duration 30m, got %v", config.Auth.LockoutDuration)
	}

	if config.Auth.AccessTokenTTL != 30*time.Minute {
		t.Errorf("Expected access token TTL 30m, got %v", config.Auth.AccessTokenTTL)
	}

	if config.RateLimit.Enabled {
		t.Error("Expected rate limiting to be disabled")
	}
}

func TestLoadConfig_ProductionValidation(t *testing.T) {
	envVars := map[string]string{
		"ENVIRONMENT": "production",
		"DB_DRIVER":   "postgres",
		"JWT_SECRET":  "secure-jwt-secret",
	}

	setEnvVars(envVars)
	defer func() {
		var keys []string
		for k := range envVars {
			keys = append(keys, k)
		}
		clearEnvVars(keys)
	}()

	_, err := LoadConfig()
	if err == nil {
		t.Error("Expected error for missing database password in production")
	}
}

func TestLoadConfig_ProductionJWTValidation(t *testing.T) {
	envVars := map[string]string{
		"ENVIRONMENT": "production",
		"DB_PASSWORD": "secure-db-password",
	}

	setEnvVars(envVars)
	defer func() {
		var keys []string
		for k := range envVars {
			keys = append(keys, k)
		}
		clearEnvVars(keys)
	}()

	_, err := LoadConfig()
	if err == nil {
		t.Error("Expected error for default JWT secret in production")
	}
}

func TestConfig_Helpers(t *testing.T) {
	config := &Config{
		Server:   ServerConfig{Host: "localhost", Port: "8080", Environment: "production"},
		Database: DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "tasknest", SSLMode: "disable"},
		Redis:    RedisConfig{Host: "cache", Port: "6379"},
	}

	if config.GetServerAddr() != "localhost:8080" {
		t.Errorf("Unexpected server addr: %s", config.GetServerAddr())
	}

	if config.GetRedisAddr() != "cache:6379" {
		t.Errorf("Unexpected redis addr: %s", config.GetRedisAddr())
	}

	expected := "host=db port=5432 user=u password=p dbname=tasknest sslmode=disable"
	if config.GetDatabaseDSN() != expected {
		t.Errorf("Unexpected DSN: %s", config.GetDatabaseDSN())
	}

	if !config.IsProduction() {
		t.Error("Expected IsProduction to be true")
	}
}
