package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Server captures process-level configuration. All keys are prefixed with
// PULSE_ (e.g. PULSE_ADDR, PULSE_DATABASE_URL).
type Server struct {
	Addr        string        `envconfig:"ADDR" default:":8080"`
	MetricsAddr string        `envconfig:"METRICS_ADDR" default:":9090"`
	DatabaseURL string        `envconfig:"DATABASE_URL"`
	SeedDemo    bool          `envconfig:"SEED_DEMO" default:"true"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
	ReqTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

// InMemory reports whether the process should run on in-memory stores. An
// empty database URL selects the in-memory backend, which is the demo default.
func (s Server) InMemory() bool {
	return s.DatabaseURL == ""
}

// FromEnv builds a Server config from environment variables so main stays
// lean. A .env file is loaded first when present; real environment variables
// win over file entries.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	var cfg Server
	if err := envconfig.Process("pulse", &cfg); err != nil {
		return Server{}, fmt.Errorf("process env config: %w", err)
	}
	return cfg, nil
}
