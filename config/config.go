package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host         string `yaml:"host" json:"host"`
	Port         int    `yaml:"port" json:"port"`
	Secret       string `yaml:"secret" json:"secret"`
	JwtExpireMin int    `yaml:"jwt_expire_min" json:"jwt_expire_min"`
}

type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type RedisConfig struct {
	Addr   string `yaml:"addr" json:"addr"`
	Passwd string `yaml:"passwd" json:"passwd"`
	DB     int    `yaml:"db" json:"db"`
}

type PaymentConfig struct {
	GatewayURL string `yaml:"gateway_url" json:"gateway_url"`
	ApiKey     string `yaml:"api_key" json:"api_key"`
	Mock       bool   `yaml:"mock" json:"mock"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig     `yaml:"system" json:"system"`
	Web      WebConfig     `yaml:"web" json:"web"`
	Database DBConfig      `yaml:"database" json:"database"`
	Redis    RedisConfig   `yaml:"redis" json:"redis"`
	Payment  PaymentConfig `yaml:"payment" json:"payment"`
	Logger   LogConfig     `yaml:"logger" json:"logger"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "NexChakra",
		Location: "Asia/Kolkata",
		Workdir:  "/var/nexchakra",
		Debug:    true,
	},
	Web: WebConfig{
		Host:         "0.0.0.0",
		Port:         1816,
		Secret:       "nexchakra-dev-secret",
		JwtExpireMin: 60,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "nexchakra",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Redis: RedisConfig{
		Addr: "127.0.0.1:6379",
	},
	Payment: PaymentConfig{
		Mock: true,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: false,
		Filename:   "/var/nexchakra/nexchakra.log",
	},
}

func setEnvValue(name string, f func(v string)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v)
	}
}

func setEnvBoolValue(name string, f func(v bool)) {
	if v, ok := os.LookupEnv(name); ok {
		b, err := strconv.ParseBool(v)
		if err == nil {
			f(b)
		}
	}
}

func setEnvIntValue(name string, f func(v int)) {
	if v, ok := os.LookupEnv(name); ok {
		i, err := strconv.Atoi(v)
		if err == nil {
			f(i)
		}
	}
}

// LoadConfig reads the YAML configuration file, falling back to defaults,
// then applies NEXCHAKRA_* environment overrides.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	setEnvValue("NEXCHAKRA_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvBoolValue("NEXCHAKRA_SYSTEM_DEBUG", func(v bool) { cfg.System.Debug = v })
	setEnvValue("NEXCHAKRA_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvIntValue("NEXCHAKRA_WEB_PORT", func(v int) { cfg.Web.Port = v })
	setEnvValue("NEXCHAKRA_WEB_SECRET", func(v string) { cfg.Web.Secret = v })
	setEnvValue("NEXCHAKRA_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvIntValue("NEXCHAKRA_DB_PORT", func(v int) { cfg.Database.Port = v })
	setEnvValue("NEXCHAKRA_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("NEXCHAKRA_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("NEXCHAKRA_DB_PWD", func(v string) { cfg.Database.Passwd = v })
	setEnvValue("NEXCHAKRA_REDIS_ADDR", func(v string) { cfg.Redis.Addr = v })
	setEnvValue("NEXCHAKRA_REDIS_PWD", func(v string) { cfg.Redis.Passwd = v })
	setEnvValue("NEXCHAKRA_PAYMENT_GATEWAY_URL", func(v string) { cfg.Payment.GatewayURL = v })
	setEnvValue("NEXCHAKRA_PAYMENT_API_KEY", func(v string) { cfg.Payment.ApiKey = v })
	setEnvBoolValue("NEXCHAKRA_PAYMENT_MOCK", func(v bool) { cfg.Payment.Mock = v })

	return cfg
}
