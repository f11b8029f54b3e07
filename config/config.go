package config

import (
	"go_redis_proxy/lib/logger"

	"github.com/spf13/viper"
)

// 代理的配置   viper负责读配置文件和环境变量，flag的绑定在cmd里完成

type ServerProperties struct {
	Bind        string   `mapstructure:"bind"`
	Port        int      `mapstructure:"port"`
	Peers       []string `mapstructure:"peers"`        // 上游redis节点地址列表
	StatPrefix  string   `mapstructure:"stat-prefix"`  // 统计名前缀，如 redis.
	MetricsPort int      `mapstructure:"metrics-port"` // 0表示不开/metrics
}

var Properties *ServerProperties

func init() {
	Properties = &ServerProperties{
		Bind: "0.0.0.0",
		Port: 6380,
	}
}

// SetupConfig 读取配置文件并合并进Properties
func SetupConfig(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("proxy")
		viper.AddConfigPath(".")
	}
	viper.SetEnvPrefix("redis_proxy")
	viper.AutomaticEnv()
	viper.SetDefault("bind", "0.0.0.0")
	viper.SetDefault("port", 6380)
	viper.SetDefault("stat-prefix", "redis.")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.Warn("no config file found, using defaults")
		} else {
			logger.Error("read config failed:", err)
		}
	}

	properties := &ServerProperties{}
	if err := viper.Unmarshal(properties); err != nil {
		logger.Error("parse config failed:", err)
		return
	}
	Properties = properties
}
