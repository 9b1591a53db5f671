package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// consumeFlags applies the flags that lead args, using the definitions cobra
// holds for cmd and its parents, and returns the remaining arguments.
// Commands that forward arguments to a package manager disable cobra's
// parsing, so "mcg -n add lodash -D" reaches them as [-n lodash -D].
// Consumption stops at the first token that is not a known flag; a "--"
// token is dropped and ends it.
func consumeFlags(cmd *cobra.Command, args []string) ([]string, error) {
	for i := 0; i < len(args); i++ {
		tok := args[i]
		if tok == "--" {
			return args[i+1:], nil
		}
		if tok == "-" || !strings.HasPrefix(tok, "-") {
			return args[i:], nil
		}

		long := strings.HasPrefix(tok, "--")
		name, value, hasValue := strings.Cut(strings.TrimLeft(tok, "-"), "=")

		var flags []*pflag.Flag
		switch {
		case long:
			if f := lookupFlag(cmd, name, false); f != nil {
				flags = append(flags, f)
			}
		case len(name) == 1:
			if f := lookupFlag(cmd, name, true); f != nil {
				flags = append(flags, f)
			}
		case !hasValue:
			// Grouped booleans ("-ny"); one unknown letter makes the whole
			// token passthrough.
			for _, r := range name {
				f := lookupFlag(cmd, string(r), true)
				if f == nil || !isBoolFlag(f) {
					flags = nil
					break
				}
				flags = append(flags, f)
			}
		}
		if len(flags) == 0 {
			return args[i:], nil
		}

		for _, f := range flags {
			switch {
			case hasValue:
			case isBoolFlag(f):
				value = "true"
			case i+1 < len(args):
				i++
				value = args[i]
			default:
				return nil, fmt.Errorf("flag needs an argument: %s", tok)
			}
			if err := f.Value.Set(value); err != nil {
				return nil, fmt.Errorf("invalid argument %q for %s: %w", value, tok, err)
			}
			f.Changed = true
		}
	}
	return nil, nil
}

// helpRequested reports whether consumeFlags saw -h or --help.
func helpRequested(cmd *cobra.Command) bool {
	f := lookupFlag(cmd, "help", false)
	return f != nil && f.Changed && f.Value.String() == "true"
}

func lookupFlag(cmd *cobra.Command, name string, short bool) *pflag.Flag {
	for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.InheritedFlags()} {
		var f *pflag.Flag
		if short {
			f = fs.ShorthandLookup(name)
		} else {
			f = fs.Lookup(name)
		}
		if f != nil {
			return f
		}
	}
	return nil
}

func isBoolFlag(f *pflag.Flag) bool {
	return f.Value.Type() == "bool"
}

// prepareForwarded parses leading flags for a forwarding command and
// initializes the application. help is true when the command's help was
// shown instead.
func prepareForwarded(cmd *cobra.Command, args []string) (rest []string, help bool, err error) {
	rest, err = consumeFlags(cmd, args)
	if err != nil {
		return nil, false, err
	}
	if helpRequested(cmd) {
		return nil, true, cmd.Help()
	}
	if err := initializeApp(); err != nil {
		return nil, false, err
	}
	return rest, false, nil
}
