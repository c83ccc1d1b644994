package config

import (
	"log"

	"gopkg.in/yaml.v3"

	"neighborly/pkg/config"
)

type Config struct {
	DB      config.DBConfig      `yaml:"db"`
	MQ      config.MQConfig      `yaml:"mq"`
	Redis   config.RedisConfig   `yaml:"redis"`
	JWT     config.JWTConfig     `yaml:"jwt"`
	Server  config.ServerConfig  `yaml:"server"`
	Mailbox config.MailboxConfig `yaml:"mailbox"`
	Intake  config.IntakeConfig  `yaml:"intake"`
}

func Load() *Config {
	// 使用统一配置中心
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")

	cfgMap, err := config.LoadConfig(env, configDir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 转换为 Config 结构
	var cfg Config
	cfgData, err := yaml.Marshal(cfgMap)
	if err != nil {
		log.Fatalf("failed to marshal config: %v", err)
	}
	if err := yaml.Unmarshal(cfgData, &cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	// 环境变量覆盖（优先级最高）
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideMailboxFromEnv(&cfg.Mailbox)
	config.OverrideIntakeFromEnv(&cfg.Intake)

	if cfg.Intake.BatchSize <= 0 {
		cfg.Intake.BatchSize = 5
	}
	if cfg.Intake.IntervalSeconds <= 0 {
		cfg.Intake.IntervalSeconds = 60
	}

	return &cfg
}
