package generaterecommendations

import "time"

type Config struct {
	Timeout          time.Duration
	AlgorithmVersion string
	PublishEvents    bool
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:          60 * time.Second,
		AlgorithmVersion: "v1.0",
	}
}
