package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"8000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"120"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
		MaxUploadSize   int64  `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"` // 32 MiB
	} `envPrefix:"SERVER_"`
	Upstream struct {
		Timeout int `env:"TIMEOUT" envDefault:"0"` // 0 表示不设置超时
	} `envPrefix:"UPSTREAM_"`
	Pic struct {
		APIURL    string `env:"API_URL" envDefault:"https://pic.in.th/api/1/upload"`
		APIKey    string `env:"API_KEY"`
		AlbumID   string `env:"ALBUM_ID"`
		SaveLocal bool   `env:"SAVE_LOCAL" envDefault:"false"`
		LocalDir  string `env:"LOCAL_DIR" envDefault:"uploads"`
	} `envPrefix:"PIC_"`
	Maileroo struct {
		APIURL string `env:"API_URL" envDefault:"https://smtp.maileroo.com/api/v2/emails"`
		APIKey string `env:"API_KEY"`
	} `envPrefix:"MAILEROO_"`
	Mail struct {
		FromAddress string `env:"FROM_ADDRESS"`
		FromName    string `env:"FROM_NAME" envDefault:"My-Web"`
		Footer      bool   `env:"FOOTER" envDefault:"false"`
	} `envPrefix:"MAIL_"`
}

// 邮件相关的环境变量不在启动时强制要求，缺失时由 handler 在请求时报告，
// 这样只用上传功能的部署也能正常启动
const (
	EnvMailerooAPIKey  = "MAILEROO_API_KEY"
	EnvMailFromAddress = "MAIL_FROM_ADDRESS"
)

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}

// MissingMailEnv 返回第一个缺失的邮件环境变量名，全部存在时返回空字符串
func (c *Config) MissingMailEnv() string {
	switch {
	case c.Maileroo.APIKey == "":
		return EnvMailerooAPIKey
	case c.Mail.FromAddress == "":
		return EnvMailFromAddress
	default:
		return ""
	}
}
