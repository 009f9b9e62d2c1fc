package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

type Config struct {
	Host               string        `env:"HOST,default=localhost"`
	Port               int           `env:"PORT,default=8080"`
	LogLevel           string        `env:"LOG_LEVEL,default=INFO"`
	MaxSessionsPerUser int           `env:"MAX_SESSIONS_PER_USER,default=2"`
	CommandBufferSize  int           `env:"COMMAND_BUFFER_SIZE,default=1024"`
	SessionBufferSize  int           `env:"SESSION_BUFFER_SIZE,default=64"`
	HistoryLimit       int           `env:"HISTORY_LIMIT,default=100"`
	RestartInterval    time.Duration `env:"RESTART_INTERVAL,default=1s"`
	WriteTimeout       time.Duration `env:"WRITE_TIMEOUT,default=5s"`
	MetricInterval     time.Duration `env:"METRIC_INTERVAL,default=5s"`
	BadgerFilepath     string        `env:"BADGER_FILEPATH,required=true"`
	AuthSecret         string        `env:"AUTH_SECRET,required=true"`
	AuthTokenDuration  time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	SeedUsers          string        `env:"SEED_USERS"`
	CensoredWords      string        `env:"CENSORED_WORDS"`
	CensorCharacter    string        `env:"CENSOR_CHARACTER,default=*"`
}

// LoadConfig reads an optional .env file then the environment.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	if config.MaxSessionsPerUser < 1 {
		return Config{}, fmt.Errorf("MAX_SESSIONS_PER_USER must be positive, got %d", config.MaxSessionsPerUser)
	}
	return config, nil
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CENSOR_CHARACTER must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

// ParseSeedUsers reads "user:password,user:password".
func ParseSeedUsers(str string) (map[string]string, error) {
	users := make(map[string]string)
	for _, pair := range splitList(str) {
		username, password, found := strings.Cut(pair, ":")
		if !found || username == "" || password == "" {
			return nil, fmt.Errorf("SEED_USERS entry %q is not user:password", pair)
		}
		users[username] = password
	}
	return users, nil
}

// ParseWords reads a comma separated list, blanks are ignored.
func ParseWords(str string) []string {
	return splitList(str)
}

func splitList(str string) []string {
	return lo.FilterMap(strings.Split(str, ","), func(item string, _ int) (string, bool) {
		item = strings.TrimSpace(item)
		return item, item != ""
	})
}
