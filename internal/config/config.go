package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-formflow/pkg/attachments"
	"github.com/goliatone/go-formflow/pkg/notify"
	"github.com/goliatone/go-formflow/pkg/portal"
)

// Prefix is prepended to every environment key.
const Prefix = "FORMFLOW_"

// Config holds the runtime settings of the portal.
type Config struct {
	Addr               string        `env:"ADDR" validate:"required,hostname_port"`
	LogLevel           string        `env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	ToastDuration      time.Duration `env:"TOAST_DURATION" validate:"gt=0"`
	SessionTTL         time.Duration `env:"SESSION_TTL" validate:"gte=1m"`
	FixedDelay         time.Duration `env:"FIXED_DELAY" validate:"gte=0"`
	RandomDelayMin     time.Duration `env:"RANDOM_DELAY_MIN" validate:"gte=0"`
	RandomDelayMax     time.Duration `env:"RANDOM_DELAY_MAX" validate:"gtefield=RandomDelayMin"`
	MaxAttachments     int           `env:"MAX_ATTACHMENTS" validate:"min=1,max=20"`
	MaxAttachmentBytes int64         `env:"MAX_ATTACHMENT_BYTES" validate:"min=1"`
	ShutdownGrace      time.Duration `env:"SHUTDOWN_GRACE" validate:"gte=0"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	timing := portal.DefaultTiming()
	return Config{
		Addr:               ":8383",
		LogLevel:           "info",
		ToastDuration:      notify.DefaultDuration,
		SessionTTL:         30 * time.Minute,
		FixedDelay:         timing.Fixed,
		RandomDelayMin:     timing.RandomMin,
		RandomDelayMax:     timing.RandomMax,
		MaxAttachments:     attachments.DefaultMaxFiles,
		MaxAttachmentBytes: attachments.DefaultMaxBytes,
		ShutdownGrace:      5 * time.Second,
	}
}

// Load reads envFile when it exists, then the process environment.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from defaults overridden by lookup, then
// validates it.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	value := reflect.ValueOf(&cfg).Elem()
	kind := value.Type()
	for i := 0; i < kind.NumField(); i++ {
		field := kind.Field(i)
		key := Prefix + field.Tag.Get("env")
		raw, ok := lookup(key)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		if err := assign(value.Field(i), strings.TrimSpace(raw)); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", key, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func assign(target reflect.Value, raw string) error {
	switch target.Interface().(type) {
	case time.Duration:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		target.SetInt(int64(d))
	case string:
		target.SetString(raw)
	case int, int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		target.SetInt(n)
	default:
		return fmt.Errorf("unsupported type %s", target.Type())
	}
	return nil
}

var (
	validatorInstance *validator.Validate
	validatorOnce     sync.Once
)

func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInstance = validator.New()
		validatorInstance.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := fld.Tag.Get("env"); name != "" {
				return Prefix + name
			}
			return fld.Name
		})
	})
	return validatorInstance
}

// Validate checks every field against its constraints. Call it again after
// applying flag overrides.
func (c Config) Validate() error {
	err := getValidator().Struct(c)
	if err == nil {
		return nil
	}
	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		return fmt.Errorf("config: %w", err)
	}
	problems := make([]string, 0, len(failures))
	for _, failure := range failures {
		problem := failure.Field() + " fails " + failure.Tag()
		if failure.Param() != "" {
			problem += "=" + failure.Param()
		}
		problems = append(problems, problem)
	}
	return fmt.Errorf("config: invalid settings: %s", strings.Join(problems, "; "))
}

// Timing converts the delay settings into catalog timing.
func (c Config) Timing() portal.Timing {
	return portal.Timing{
		Fixed:     c.FixedDelay,
		RandomMin: c.RandomDelayMin,
		RandomMax: c.RandomDelayMax,
	}
}

// Limits converts the attachment settings into catalog limits.
func (c Config) Limits() portal.Limits {
	return portal.Limits{MaxFiles: c.MaxAttachments, MaxBytes: c.MaxAttachmentBytes}
}

// Logger builds a production zap logger at the configured level.
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("config: log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("config: build logger: %w", err)
	}
	return logger, nil
}
