package vault

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Dotenv variable names use underscores; vault secret names use hyphens
// (many stores reject underscores in secret names). The mapping is applied
// at the store boundary so everything above it works in local names.

// RemoteName converts a local variable name to its vault secret name.
// Names are NFC-normalized so that visually identical names map to the
// same secret regardless of how the source file encoded them.
func RemoteName(local string) string {
	return strings.ReplaceAll(norm.NFC.String(local), "_", "-")
}

// LocalName converts a vault secret name back to its local variable name.
func LocalName(remote string) string {
	return strings.ReplaceAll(norm.NFC.String(remote), "-", "_")
}
