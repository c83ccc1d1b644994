package config

import (
	"os"
	"strconv"
)

// DBConfig 数据库配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// MQConfig 消息队列配置
type MQConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port string `yaml:"port"`
}

// MailboxConfig configures the inbound Gmail mailbox the poller reads.
// ServiceAddress is the recipient address a message must carry to be
// considered relevant.
type MailboxConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	TokenFile       string `yaml:"token_file"`
	ServiceAddress  string `yaml:"service_address"`
}

// IntakeConfig configures the inbound poll loop. BatchSize is the recall
// window: messages older than the most recent BatchSize are never retried.
type IntakeConfig struct {
	BatchSize       int `yaml:"batch_size"`
	IntervalSeconds int `yaml:"interval_seconds"`
}

// OverrideDBFromEnv 从环境变量覆盖数据库配置
func OverrideDBFromEnv(cfg *DBConfig) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}
}

// OverrideMQFromEnv 从环境变量覆盖MQ配置
func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
}

// OverrideRedisFromEnv 从环境变量覆盖Redis配置
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
}

// OverrideJWTFromEnv 从环境变量覆盖JWT配置
func OverrideJWTFromEnv(cfg *JWTConfig) {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.Secret = secret
	}
}

// OverrideServerFromEnv 从环境变量覆盖服务器配置
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
}

// OverrideMailboxFromEnv 从环境变量覆盖邮箱配置
func OverrideMailboxFromEnv(cfg *MailboxConfig) {
	if f := os.Getenv("MAILBOX_CREDENTIALS_FILE"); f != "" {
		cfg.CredentialsFile = f
	}
	if f := os.Getenv("MAILBOX_TOKEN_FILE"); f != "" {
		cfg.TokenFile = f
	}
	if addr := os.Getenv("MAILBOX_SERVICE_ADDRESS"); addr != "" {
		cfg.ServiceAddress = addr
	}
}

// OverrideIntakeFromEnv 从环境变量覆盖 intake 配置
func OverrideIntakeFromEnv(cfg *IntakeConfig) {
	if size := os.Getenv("INTAKE_BATCH_SIZE"); size != "" {
		if n, err := strconv.Atoi(size); err == nil && n > 0 {
			cfg.BatchSize = n
		}
	}
	if iv := os.Getenv("INTAKE_INTERVAL_SECONDS"); iv != "" {
		if n, err := strconv.Atoi(iv); err == nil && n > 0 {
			cfg.IntervalSeconds = n
		}
	}
}
