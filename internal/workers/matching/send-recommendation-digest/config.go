package sendrecommendationdigest

import "time"

const maxDigestLimit = 100

type Config struct {
	Timeout       time.Duration
	DefaultLimit  int
	SubjectPrefix string
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		DefaultLimit:  10,
		SubjectPrefix: "Recommended creators",
	}
}
