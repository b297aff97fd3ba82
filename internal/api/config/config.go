package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")

	// .env 仅用于本地开发，不存在时忽略
	_ = godotenv.Load(".env")

	viper.SetEnvPrefix("RENDEZVOUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file not found: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg

	return nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("translator.provider", TranslatorLLM)
	viper.SetDefault("translator.timeout", 10)
	viper.SetDefault("llm.concurrency", 4)
	viper.SetDefault("im.attachment_placeholder", DefaultAttachmentPlaceholder)
	viper.SetDefault("im.max_attachments", 9)
	viper.SetDefault("im.max_text_length", DefaultMaxTextLength)
	viper.SetDefault("im.max_upload_size", 50<<20)
	viper.SetDefault("im.ws_send_buffer", 256)
	viper.SetDefault("im.ws_event_rate", 20)
	viper.SetDefault("im.ws_event_burst", 40)
	viper.SetDefault("im.default_page_size", 20)
	viper.SetDefault("im.max_page_size", 100)
	viper.SetDefault("im.orphan_sweep_spec", "0 */10 * * * *")
	viper.SetDefault("im.fanout", FanoutLocal)
}

const (
	DefaultAttachmentPlaceholder = "[attachment]"
	// DefaultMaxTextLength 按字符计，4 字节 UTF-8 下仍能放进 TEXT 列
	DefaultMaxTextLength = 4000

	FanoutLocal = "local"
	FanoutRedis = "redis"

	TranslatorLLM    = "llm"
	TranslatorRemote = "remote"
)

// Default 返回仅包含默认值的配置，用于测试或未调用 LoadConfig 的场景
func Default() *Config {
	return &Config{
		IM: IMConfig{
			AttachmentPlaceholder: DefaultAttachmentPlaceholder,
			MaxAttachments:        9,
			MaxTextLength:         DefaultMaxTextLength,
			MaxUploadSize:         50 << 20,
			WsSendBuffer:          256,
			WsEventRate:           20,
			WsEventBurst:          40,
			DefaultPageSize:       20,
			MaxPageSize:           100,
			Fanout:                FanoutLocal,
		},
	}
}
