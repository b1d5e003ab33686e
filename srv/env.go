package srv

import (
	"os"
	"strconv"

	"github.com/gabibotos/go-handoff/srv/schema"
)

// EnvironmentKeys are consulted, in order, before the --env flag.
var EnvironmentKeys = []string{"APP_ENV", "GO_ENV"}

func stringEnvOverride(orig string, def string, keys ...string) string {
	for _, k := range keys {
		if os.Getenv(k) != "" {
			return os.Getenv(k)
		}
	}
	if def != "" && orig == "" {
		return def
	}
	return orig
}

func intEnvOverride(orig int, def int, keys ...string) (int, error) {
	for _, k := range keys {
		if os.Getenv(k) != "" {
			v, err := strconv.Atoi(os.Getenv(k))
			if err != nil {
				return orig, &schema.ConfigError{Token: os.Getenv(k), Reason: k + " is not a valid number"}
			}
			return v, nil
		}
	}
	if def != 0 && orig == 0 {
		return def, nil
	}
	return orig, nil
}

// ExportEnvironment publishes env under the first of EnvironmentKeys unless
// the process already carries one.
func ExportEnvironment(env string) error {
	if env == "" || len(EnvironmentKeys) == 0 {
		return nil
	}
	for _, k := range EnvironmentKeys {
		if os.Getenv(k) != "" {
			return nil
		}
	}
	return os.Setenv(EnvironmentKeys[0], env)
}
