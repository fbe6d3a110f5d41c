package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int
	RateTTLSecs  int

	// Rates are decimal fractions except CollateralPercent, which is a
	// percentage of principal (required = principal * pct / 100).
	InterestRate      decimal.Decimal
	CommissionRate    decimal.Decimal
	CollateralPercent decimal.Decimal
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getdec(k, d string) decimal.Decimal {
	raw := getenv(k, d)
	v, err := decimal.NewFromString(raw)
	if err != nil {
		logrus.Warnf("config: bad decimal %s=%q, using default %s", k, raw, d)
		v, _ = decimal.NewFromString(d)
	}
	return v
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("config: no .env file, relying on environment")
	}

	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "microcredit"),
		MySQLUser: getenv("MYSQL_USER", "microcredit"),
		MySQLPass: getenv("MYSQL_PASS", "microcredit"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		IdempTTLSecs: 300,
		RateTTLSecs:  600,

		InterestRate:      getdec("RATE_INTEREST", "0.15"),
		CommissionRate:    getdec("RATE_COMMISSION", "0.02"),
		CollateralPercent: getdec("RATE_COLLATERAL_PCT", "10"),
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RedisDB = n
		}
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.IdempTTLSecs = n
		}
	}
	if v := os.Getenv("RATE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateTTLSecs = n
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.InterestRate.IsNegative() || c.CommissionRate.IsNegative() || c.CollateralPercent.IsNegative() {
		return errors.New("rates must not be negative")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATE/DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
