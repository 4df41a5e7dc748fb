package config

import (
	"fmt"

	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/moderation"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/mq"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/mysql"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/redis"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/relayer"
	"github.com/linlin946883-stack/qingyusuchuan-sub000/pkg/wechatpay"
	"github.com/spf13/viper"
)

type Config struct {
	API        API               `mapstructure:"api"`
	Database   mysql.Config      `mapstructure:"database"`
	Redis      redis.Config      `mapstructure:"redis"`
	RabbitMQ   mq.Config         `mapstructure:"rabbitmq"`
	WechatPay  wechatpay.Config  `mapstructure:"wechatpay"`
	Moderation moderation.Config `mapstructure:"moderation"`
	Relayer    relayer.Config    `mapstructure:"relayer"`
	Pricing    Pricing           `mapstructure:"pricing"`
	TokenStore TokenStore        `mapstructure:"token_store"`
}

type API struct {
	Port        string `mapstructure:"port"`
	MetricsPort string `mapstructure:"metrics_port"`
}

type Pricing struct {
	SMSUnit   float64 `mapstructure:"sms_unit"`
	CallUnit  float64 `mapstructure:"call_unit"`
	HumanUnit float64 `mapstructure:"human_unit"`
}

// TokenStore selects the submission-token backend. "redis" relies on native
// key expiry; "mysql" uses a dedicated table plus the periodic sweep.
type TokenStore struct {
	Backend string `mapstructure:"backend"`
}

func Load() (cfg *Config, err error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath("./config")

	viper.SetDefault("pricing.sms_unit", 1.0)
	viper.SetDefault("pricing.call_unit", 2.0)
	viper.SetDefault("pricing.human_unit", 5.0)
	viper.SetDefault("token_store.backend", "redis")

	err = viper.ReadInConfig()
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	err = viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
