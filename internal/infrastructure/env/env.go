package env

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"browser-pages/internal/application/port/output"

	"github.com/joho/godotenv"
)

var _ output.ConfigPort = (*EnvService)(nil)

// EnvService reads configuration from the process environment after
// loading .env and then .env.$APP_ENV on top of it.
type EnvService struct {
	Loaded []string
}

func NewEnvService() *EnvService {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "dev"
	}
	return Load(".env", fmt.Sprintf(".env.%s", appEnv))
}

// Load reads the given dotenv files in order, later files overriding
// earlier ones. Missing files are skipped.
func Load(files ...string) *EnvService {
	s := &EnvService{}
	for i, file := range files {
		var err error
		if i == 0 {
			err = godotenv.Load(file)
		} else {
			err = godotenv.Overload(file)
		}
		if err != nil {
			continue
		}
		s.Loaded = append(s.Loaded, file)
	}
	return s
}

func (e *EnvService) Get(key string) string {
	return os.Getenv(key)
}

func (e *EnvService) MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("ENV %s is missing", key)
	}
	return val
}

func (e *EnvService) GetWithDefault(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func (e *EnvService) GetBool(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *EnvService) GetInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *EnvService) GetDuration(key string, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}
