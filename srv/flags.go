package srv

import (
	"io"
	"time"

	"github.com/gabibotos/go-handoff/srv/schema"
	flag "github.com/spf13/pflag"
)

// Config is everything a Registry is built from.
type Config struct {
	// Environment is the deployment environment name, e.g. "production".
	Environment string
	Listeners   []schema.ListenerSpec
	Files       []schema.FileSpec
	// Secrets, when set, is used instead of reading Files.
	Secrets *schema.SecretBundle

	Defaults       schema.Defaults
	MaxHeaderSize  int
	CleanupTimeout time.Duration
	// DrainTimeout bounds a drain; zero waits for every connection.
	DrainTimeout time.Duration
	ExitPolicy   ExitPolicy
}

// Flags holds the raw command line before it is turned into a Config.
type Flags struct {
	Environment    string
	FDs            []string
	Files          []string
	Defaults       schema.Defaults
	MaxHeaderSize  ByteSize
	CleanupTimeout time.Duration
	DrainTimeout   time.Duration
	ExitPolicy     string
}

func NewFlags() *Flags {
	return &Flags{
		MaxHeaderSize: *NewByteSize(1000000),
		ExitPolicy:    "all",
	}
}

// RegisterFlags to the specified pflag set
func (f *Flags) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&f.Environment, "env", f.Environment, "the environment name, overridden by APP_ENV or GO_ENV")
	fs.StringArrayVar(&f.FDs, "fd", nil, "an inherited listening socket as name,plain|secure,descriptor; can be repeated")
	fs.StringArrayVar(&f.Files, "file", nil, "an inherited secret as key|cert,descriptor; can be repeated")
	fs.DurationVar(&f.CleanupTimeout, "cleanup-timeout", 10*time.Second, "idle time after which kept-alive connections are closed")
	fs.DurationVar(&f.DrainTimeout, "drain-timeout", 0, "give up draining after this long and exit with an error; 0 waits forever")
	fs.StringVar(&f.ExitPolicy, "exit-policy", f.ExitPolicy, "exit when 'all' started listeners are closed or on the 'first' closed listener")
	fs.Var(&f.MaxHeaderSize, "max-header-size", "controls the maximum number of bytes the server will read parsing the request header's keys and values, including the request line. It does not limit the size of the request body")

	f.Defaults.RegisterFlags(fs, "")
}

// Config validates the parsed flags.
func (f *Flags) Config() (Config, error) {
	cfg := Config{
		Environment:    stringEnvOverride(f.Environment, "", EnvironmentKeys...),
		Defaults:       f.Defaults,
		MaxHeaderSize:  f.MaxHeaderSize.Get(),
		CleanupTimeout: f.CleanupTimeout,
		DrainTimeout:   f.DrainTimeout,
	}

	var err error
	if cfg.Defaults.ListenLimit, err = intEnvOverride(f.Defaults.ListenLimit, 0, "LISTEN_LIMIT"); err != nil {
		return Config{}, err
	}
	if cfg.ExitPolicy, err = ParseExitPolicy(f.ExitPolicy); err != nil {
		return Config{}, err
	}

	for _, token := range f.FDs {
		spec, err := schema.ParseListenerSpec(token)
		if err != nil {
			return Config{}, err
		}
		cfg.Listeners = append(cfg.Listeners, spec)
	}
	for _, token := range f.Files {
		file, err := schema.ParseFileSpec(token)
		if err != nil {
			return Config{}, err
		}
		cfg.Files = append(cfg.Files, file)
	}
	return cfg, nil
}

// ParseArgs reads --env, --fd, --file and the tuning flags from args, skipping
// flags it does not know.
func ParseArgs(args []string) (Config, error) {
	fs := flag.NewFlagSet("handoff", flag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)

	f := NewFlags()
	f.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, &schema.ConfigError{Reason: err.Error()}
	}
	return f.Config()
}
