package manager

import (
	"strings"

	errs "github.com/mcgeq/mcg/pkg/errors"
)

// SplitArgs separates package identifiers from passthrough options. Tokens are
// packages until the first token beginning with "-"; that token and every
// token after it are passthrough, even ones that do not look like flags.
func SplitArgs(tokens []string) (packages []string, opts Options) {
	for i, tok := range tokens {
		if strings.HasPrefix(tok, "-") {
			opts.Args = append([]string(nil), tokens[i:]...)
			return packages, opts
		}
		packages = append(packages, tok)
	}
	return packages, opts
}

// ValidatePackageName rejects identifiers no tool would accept: empty or
// blank names, and names starting with "." other than relative paths.
func ValidatePackageName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errs.InvalidPackageName(name, "")
	}
	if strings.HasPrefix(name, ".") && len(name) > 1 && !strings.HasPrefix(name, "./") && !strings.HasPrefix(name, "../") {
		return errs.InvalidPackageName(name, "cannot start with '.'")
	}
	return nil
}

// ValidatePackages validates every identifier and returns the first failure.
func ValidatePackages(packages []string) error {
	for _, p := range packages {
		if err := ValidatePackageName(p); err != nil {
			return err
		}
	}
	return nil
}

// HasVersionSpecifier reports whether an identifier pins a version
// (lodash@4, serde@^1, requests~=2).
func HasVersionSpecifier(name string) bool {
	// Scoped npm packages start with "@"; only a later "@" pins a version.
	return strings.Contains(strings.TrimPrefix(name, "@"), "@") ||
		strings.ContainsAny(name, "^~=<>")
}
