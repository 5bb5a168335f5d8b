// Package config loads server settings from flags, the environment and an
// optional .env file.
package config

import (
	"io/fs"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"todoistmcp/internal/backend/todoist"
)

const (
	// AppName is the application name used in logs.
	AppName = "todoist-mcp"

	// DefaultLogFile is the log file written in the working directory.
	DefaultLogFile = "todoist-mcp-server.log"

	// DefaultPort is the HTTP transport port.
	DefaultPort = 3002

	// DefaultMCPPath is the streamable HTTP endpoint path.
	DefaultMCPPath = "/mcp"

	// DefaultEnvFile is the env file read at startup when present.
	DefaultEnvFile = ".env"

	// TransportStdio serves a single session over stdin and stdout.
	TransportStdio = "stdio"

	// TransportHTTP serves streamable HTTP sessions.
	TransportHTTP = "http"
)

// Configuration keys.
const (
	KeyToken     = "token"
	KeyTransport = "transport"
	KeyHTTP      = "http"
	KeyHost      = "host"
	KeyPort      = "port"
	KeyMCPPath   = "mcp-path"
	KeyLogFile   = "log-file"
	KeyDebug     = "debug"
	KeyAPIURL    = "api-url"
	KeyTimeout   = "timeout"
	KeyEnvFile   = "env-file"
)

// ErrUsage marks configuration errors caused by bad flag or env values.
var ErrUsage = errors.New("invalid usage")

// envNames maps keys to the environment variables that set them.
var envNames = map[string]string{
	KeyToken:     "TODOIST_API_TOKEN",
	KeyTransport: "TODOIST_MCP_TRANSPORT",
	KeyHost:      "TODOIST_MCP_HOST",
	KeyPort:      "PORT",
	KeyMCPPath:   "TODOIST_MCP_PATH",
	KeyLogFile:   "TODOIST_MCP_LOG_FILE",
	KeyDebug:     "TODOIST_MCP_DEBUG",
	KeyAPIURL:    "TODOIST_API_URL",
	KeyTimeout:   "TODOIST_MCP_TIMEOUT",
	KeyEnvFile:   "TODOIST_MCP_ENV_FILE",
}

// Config holds the resolved settings.
type Config struct {
	// Token authenticates against the provider. Empty leaves the client
	// uninitialized.
	Token string

	// Transport is TransportStdio or TransportHTTP.
	Transport string

	Host    string
	Port    int
	MCPPath string

	// LogFile is the log destination. "-" selects stderr.
	LogFile string

	// Debug lowers the log level to debug.
	Debug bool

	// APIURL is the provider base URL.
	APIURL string

	// Timeout bounds every provider call.
	Timeout time.Duration

	// EnvFile is the env file that was consulted.
	EnvFile string
}

// RegisterFlags declares the server flags on flags and binds them, with
// their environment variables, to v.
func RegisterFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	flags.StringP(KeyToken, "t", "", "Todoist API token")
	flags.String(KeyTransport, TransportStdio, "transport: stdio or http")
	flags.Bool(KeyHTTP, false, "shorthand for --transport http")
	flags.String(KeyHost, "", "HTTP listen host (empty for all interfaces)")
	flags.Int(KeyPort, DefaultPort, "HTTP listen port")
	flags.String(KeyMCPPath, DefaultMCPPath, "HTTP path of the streamable MCP endpoint")
	flags.String(KeyLogFile, DefaultLogFile, "log file path, - for stderr")
	flags.Bool(KeyDebug, false, "enable debug logging")
	flags.String(KeyAPIURL, todoist.DefaultBaseURL, "Todoist API base URL")
	flags.Duration(KeyTimeout, todoist.APITimeout, "timeout for each Todoist API call")
	flags.String(KeyEnvFile, DefaultEnvFile, "env file providing defaults")

	for _, key := range []string{KeyToken, KeyTransport, KeyHTTP, KeyHost, KeyPort, KeyMCPPath, KeyLogFile, KeyDebug, KeyAPIURL, KeyTimeout, KeyEnvFile} {
		flag := flags.Lookup(key)
		if flag == nil {
			return errors.Newf("flag for key %s not found", key)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.Wrapf(err, "bind flag %s", key)
		}
		if env, ok := envNames[key]; ok {
			if err := v.BindEnv(key, env); err != nil {
				return errors.Wrapf(err, "bind env %s", env)
			}
		}
	}
	return nil
}

// Load resolves the configuration. Values from the env file sit below
// flags and real environment variables. A missing env file is ignored.
func Load(v *viper.Viper) (Config, error) {
	envFile := strings.TrimSpace(v.GetString(KeyEnvFile))
	if envFile != "" {
		if err := applyEnvFile(v, envFile); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		Token:     strings.TrimSpace(v.GetString(KeyToken)),
		Transport: strings.ToLower(strings.TrimSpace(v.GetString(KeyTransport))),
		Host:      strings.TrimSpace(v.GetString(KeyHost)),
		Port:      v.GetInt(KeyPort),
		MCPPath:   strings.TrimSpace(v.GetString(KeyMCPPath)),
		LogFile:   strings.TrimSpace(v.GetString(KeyLogFile)),
		Debug:     v.GetBool(KeyDebug),
		APIURL:    strings.TrimSpace(v.GetString(KeyAPIURL)),
		Timeout:   v.GetDuration(KeyTimeout),
		EnvFile:   envFile,
	}
	if v.GetBool(KeyHTTP) {
		cfg.Transport = TransportHTTP
	}
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	if cfg.MCPPath == "" {
		cfg.MCPPath = DefaultMCPPath
	}
	if cfg.APIURL == "" {
		cfg.APIURL = todoist.DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = todoist.APITimeout
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that flags cannot constrain.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return errors.Mark(errors.Newf("unknown transport %q (want stdio or http)", c.Transport), ErrUsage)
	}
	if c.Transport == TransportHTTP && (c.Port <= 0 || c.Port > 65535) {
		return errors.Mark(errors.Newf("invalid port %d", c.Port), ErrUsage)
	}
	return nil
}

// HasToken reports whether a provider token is configured.
func (c Config) HasToken() bool {
	return c.Token != ""
}

func applyEnvFile(v *viper.Viper, path string) error {
	env, err := gotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, "read env file %s", path)
	}
	for key, name := range envNames {
		if key == KeyEnvFile {
			continue
		}
		if value, ok := env[name]; ok {
			v.SetDefault(key, value)
		}
	}
	return nil
}
