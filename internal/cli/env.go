package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/envsyncd/envsync/internal/dotenv"
)

// resolveVaultTarget resolves the vault flag value. A plain value is
// returned as-is; the form `env:VAR_NAME` is looked up in the loaded
// dotenv file first and the process environment second, so a project can
// pin its vault in the same file it synchronizes.
func resolveVaultTarget(target string, envFile *dotenv.Document) (string, error) {
	name, ok := strings.CutPrefix(target, "env:")
	if !ok {
		return target, nil
	}
	if name == "" {
		return "", fmt.Errorf("vault target %q: missing variable name", target)
	}

	if envFile != nil {
		if value, ok := envFile.Lookup(name); ok {
			return value, nil
		}
	}
	if value, ok := os.LookupEnv(name); ok {
		return value, nil
	}
	return "", fmt.Errorf("'%s' not found in environment", name)
}
