package wechatpay

import "time"

type Config struct {
	Enable          bool          `mapstructure:"enable"`
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	AppID           string        `mapstructure:"app_id"`
	MchID           string        `mapstructure:"mch_id"`
	SerialNo        string        `mapstructure:"serial_no"`
	PrivateKeyPEM   string        `mapstructure:"private_key_pem"`
	PlatformCertPEM string        `mapstructure:"platform_cert_pem"`
	APIv3Key        string        `mapstructure:"apiv3_key"`
	NotifyURL       string        `mapstructure:"notify_url"`
}
