package settings

type Config struct {
	Server    Server    `mapstructure:"server"`
	Logger    Logger    `mapstructure:"logger"`
	Queue     Queue     `mapstructure:"queue"`
	Transport Transport `mapstructure:"transport"`
	Redis     Redis     `mapstructure:"redis"`
	Kafka     Kafka     `mapstructure:"kafka"`
}

// Server is the configuration for the stats server
type Server struct {
	Mode string `mapstructure:"mode" validate:"omitempty,oneof=debug release test"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port" validate:"gte=0,lte=65535"`
}

// Logger is the configuration for the logger
type Logger struct {
	LogLevel    string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
	FileLogName string `mapstructure:"file_log_name"`
	MaxBackups  int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAge      int    `mapstructure:"max_age" validate:"gte=0"`
	MaxSize     int    `mapstructure:"max_size" validate:"gte=0"`
	Compress    bool   `mapstructure:"compress"`
}

// Queue is the configuration for the dispatcher queue
type Queue struct {
	Capacity int `mapstructure:"capacity" validate:"gte=0"`
	Workers  int `mapstructure:"workers" validate:"gte=0"`
}

// Transport selects the transports used when a URI carries no scheme
type Transport struct {
	Default []string `mapstructure:"default" validate:"dive,oneof=inprocess kafka redis"`
}

// Redis is the configuration for Redis
type Redis struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	Password        string `mapstructure:"password"`
	Database        int    `mapstructure:"database" validate:"gte=0"`
	PoolSize        int    `mapstructure:"pool_size"`
	MinIdleConns    int    `mapstructure:"min_idle_conns"`
	PoolTimeout     int    `mapstructure:"pool_timeout"`  // Seconds
	DialTimeout     int    `mapstructure:"dial_timeout"`  // Seconds
	ReadTimeout     int    `mapstructure:"read_timeout"`  // Seconds
	WriteTimeout    int    `mapstructure:"write_timeout"` // Seconds
	MaxRetries      int    `mapstructure:"max_retries"`
	MaxRetryBackoff int    `mapstructure:"max_retry_backoff"` // Milliseconds
	MinRetryBackoff int    `mapstructure:"min_retry_backoff"` // Milliseconds
}

// Kafka is the configuration for Kafka
type Kafka struct {
	Brokers         []string `mapstructure:"brokers"`
	ClientID        string   `mapstructure:"client_id"`
	Group           string   `mapstructure:"group"`
	FlushFrequency  int      `mapstructure:"flush_frequency"`   // Milliseconds
	FlushBytes      int      `mapstructure:"flush_bytes"`       // Bytes
	MaxMessageBytes int      `mapstructure:"max_message_bytes"` // Bytes
	Timeout         int      `mapstructure:"timeout"`           // Seconds
	MaxRetries      int      `mapstructure:"max_retries"`       // Number of retries
	RetryBackoff    int      `mapstructure:"retry_backoff"`     // Milliseconds
	OffsetOldest    bool     `mapstructure:"offset_oldest"`
}
