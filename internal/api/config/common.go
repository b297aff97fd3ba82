package config

// Config 配置主体
type Config struct {
	Server                  ServerConfig            `mapstructure:"server"`
	DB                      DBConfig                `mapstructure:"database"`
	Redis                   RedisConfig             `mapstructure:"redis"`
	Mongo                   MongoConfig             `mapstructure:"mongo"`
	MinIO                   MinIOConfig             `mapstructure:"minio"`
	Logstash                LogstashConfig          `mapstructure:"logstash"`
	LLM                     LLMConfig               `mapstructure:"llm"`
	Translator              TranslatorConfig        `mapstructure:"translator"`
	JWT                     JWTConfig               `mapstructure:"jwt"`
	IM                      IMConfig                `mapstructure:"im"`
	Kafka                   KafkaConfig             `mapstructure:"kafka"`
	KafkaUserDetailConsumer KafkaUserDetailConsumer `mapstructure:"kafka_user_detail_consumer"`
	KafkaUserBlockConsumer  KafkaUserBlockConsumer  `mapstructure:"kafka_user_block_consumer"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MongoConfig struct {
	URL      string `mapstructure:"url"`
	Database string `mapstructure:"database"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	InternalEndpoint string `mapstructure:"internal_endpoint"`
	ExternalEndpoint string `mapstructure:"external_endpoint"`
	AccessKey        string `mapstructure:"access_key"`
	SecretKey        string `mapstructure:"secret_key"`
	MainBucket       string `mapstructure:"main_bucket"`
	InternalUseSSL   bool   `mapstructure:"internal_use_ssl"`
	UsePublicLink    bool   `mapstructure:"use_public_link"`
}

type LogstashConfig struct {
	Address string `mapstructure:"address"`
	Index   string `mapstructure:"index"`
	Token   string `mapstructure:"token"`
}

type LLMConfig struct {
	URL         string `mapstructure:"url"`
	TextModel   string `mapstructure:"text_model"`
	ApiKey      string `mapstructure:"api_key"`
	PromptPath  string `mapstructure:"prompt_path"`
	Concurrency int64  `mapstructure:"concurrency"`
}

// TranslatorConfig 翻译引擎配置，Provider 为 llm 或 remote
type TranslatorConfig struct {
	Provider string `mapstructure:"provider"`
	URL      string `mapstructure:"url"`
	ApiKey   string `mapstructure:"api_key"`
	Timeout  int    `mapstructure:"timeout"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// IMConfig 即时通讯相关配置
type IMConfig struct {
	AttachmentPlaceholder string  `mapstructure:"attachment_placeholder"`
	MaxAttachments        int     `mapstructure:"max_attachments"`
	MaxTextLength         int     `mapstructure:"max_text_length"`
	MaxUploadSize         int64   `mapstructure:"max_upload_size"`
	WsSendBuffer          int     `mapstructure:"ws_send_buffer"`
	WsEventRate           float64 `mapstructure:"ws_event_rate"`
	WsEventBurst          int     `mapstructure:"ws_event_burst"`
	DefaultPageSize       int     `mapstructure:"default_page_size"`
	MaxPageSize           int     `mapstructure:"max_page_size"`
	OrphanSweepSpec       string  `mapstructure:"orphan_sweep_spec"`
	Fanout                string  `mapstructure:"fanout"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

type KafkaUserDetailConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type KafkaUserBlockConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}
