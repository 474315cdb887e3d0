package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	booleanFlagTypeName    = "bool"
	booleanAcceptedListing = "true, false, yes, no, on, off, 1, 0"
	errorBooleanFormat     = "invalid boolean value %q for --%s; accepted values: %s"
)

var booleanLiterals = map[string]bool{
	"true": true, "t": true, "1": true, "yes": true, "y": true, "on": true,
	"false": false, "f": false, "0": false, "no": false, "n": false, "off": false,
}

// parseBooleanLiteral accepts the literals in booleanLiterals, case-insensitive.
func parseBooleanLiteral(input string) (bool, bool) {
	parsed, ok := booleanLiterals[strings.ToLower(strings.TrimSpace(input))]
	return parsed, ok
}

// booleanFlagValue is a pflag.Value that accepts yes/no/on/off in addition
// to the literals strconv.ParseBool understands.
type booleanFlagValue struct {
	target *bool
	name   string
}

func (value *booleanFlagValue) Set(input string) error {
	if strings.TrimSpace(input) == "" {
		*value.target = true
		return nil
	}
	parsed, ok := parseBooleanLiteral(input)
	if !ok {
		return fmt.Errorf(errorBooleanFormat, input, value.name, booleanAcceptedListing)
	}
	*value.target = parsed
	return nil
}

func (value *booleanFlagValue) String() string {
	if value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *booleanFlagValue) Type() string {
	return booleanFlagTypeName
}

func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	*target = defaultValue
	flagSet.Var(&booleanFlagValue{target: target, name: name}, name, usage)
	flag := flagSet.Lookup(name)
	flag.DefValue = strconv.FormatBool(defaultValue)
	flag.NoOptDefVal = strconv.FormatBool(true)
}

// normalizeArguments joins "--flag value" into "--flag=value" for boolean
// flags when value is a boolean literal. pflag would otherwise treat the
// literal as a positional path. Arguments after "--" are left alone.
func normalizeArguments(root *cobra.Command, arguments []string) []string {
	booleanFlags := make(map[string]struct{})
	collectBooleanFlagNames(root, booleanFlags)

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == "--" {
			return append(normalized, arguments[index:]...)
		}
		name, isLongFlag := strings.CutPrefix(argument, "--")
		if isLongFlag && !strings.Contains(name, "=") && index+1 < len(arguments) {
			if _, isBoolean := booleanFlags[name]; isBoolean {
				next := arguments[index+1]
				if _, isLiteral := parseBooleanLiteral(next); isLiteral && !strings.HasPrefix(next, "-") {
					normalized = append(normalized, argument+"="+next)
					index++
					continue
				}
			}
		}
		normalized = append(normalized, argument)
	}
	return normalized
}

func collectBooleanFlagNames(command *cobra.Command, names map[string]struct{}) {
	collect := func(flag *pflag.Flag) {
		if flag.Value.Type() == booleanFlagTypeName {
			names[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(collect)
	command.Flags().VisitAll(collect)
	for _, child := range command.Commands() {
		collectBooleanFlagNames(child, names)
	}
}
