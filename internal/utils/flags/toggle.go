package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueCanonicalValue     = "true"
	toggleFalseCanonicalValue    = "false"
	toggleValueSeparator         = "="
	longFlagPrefix               = "--"
	shortFlagPrefix              = "-"
	toggleParseErrorTemplate     = "invalid toggle value %q (expected yes or no)"
	toggleUsageTemplate          = "`%s` %s"
	toggleUsagePlaceholderTrue   = "<YES|no>"
	toggleUsagePlaceholderFalse  = "<yes|NO>"
	toggleUsageBareTemplate      = "`%s`"
	toggleValueTypeName          = "bool"
	argumentTerminatorLiteral    = "--"
	shorthandFlagNameLengthLimit = 1
)

var toggleLiterals = map[string]bool{
	"true": true, "yes": true, "on": true, "1": true, "t": true, "y": true,
	"false": false, "no": false, "off": false, "0": false, "f": false, "n": false,
}

// toggleRegistry remembers which long names and shorthands belong to toggle flags so that
// NormalizeToggleArguments can join "--flag no" into "--flag=no" before pflag sees it.
type toggleRegistry struct {
	mutex      sync.RWMutex
	names      map[string]struct{}
	shorthands map[string]struct{}
}

var registeredToggles = &toggleRegistry{
	names:      map[string]struct{}{},
	shorthands: map[string]struct{}{},
}

func (registry *toggleRegistry) register(name string, shorthand string) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	registry.names[name] = struct{}{}
	if len(shorthand) > 0 {
		registry.shorthands[shorthand] = struct{}{}
	}
}

func (registry *toggleRegistry) contains(flagName string, shorthand bool) bool {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()
	lookup := registry.names
	if shorthand {
		lookup = registry.shorthands
	}
	_, exists := lookup[flagName]
	return exists
}

// AddToggleFlag registers a boolean flag that also accepts yes/no, on/off, and 1/0 values.
// A bare flag means true.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	flagSet.VarP(newToggleValue(defaultValue, target), name, shorthand, usage)
	flag := flagSet.Lookup(name)
	if flag == nil {
		return
	}
	flag.NoOptDefVal = toggleTrueCanonicalValue
	flag.Usage = formatToggleUsage(usage, defaultValue)

	registeredToggles.register(name, shorthand)
}

// ParseToggle interprets a yes/no style literal.
func ParseToggle(rawValue string) (bool, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalizedValue) == 0 {
		return true, nil
	}
	parsedValue, known := toggleLiterals[normalizedValue]
	if !known {
		return false, fmt.Errorf(toggleParseErrorTemplate, rawValue)
	}
	return parsedValue, nil
}

// NormalizeToggleArguments rewrites "--flag no" and "-f no" into their "=" forms for registered
// toggle flags. A following argument that is not a yes/no literal stays positional, so
// "delete -y Warehouse" keeps Warehouse as the operand. Arguments after "--" are untouched.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == argumentTerminatorLiteral {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		hasNext := index+1 < len(arguments)
		if hasNext && isBareToggleFlag(current) && isToggleLiteral(arguments[index+1]) {
			normalized = append(normalized, current+toggleValueSeparator+arguments[index+1])
			index++
			continue
		}
		normalized = append(normalized, current)
	}
	return normalized
}

// isBareToggleFlag reports whether argument names a registered toggle without an inline value.
func isBareToggleFlag(argument string) bool {
	if strings.Contains(argument, toggleValueSeparator) {
		return false
	}
	switch {
	case strings.HasPrefix(argument, longFlagPrefix):
		flagName := strings.TrimPrefix(argument, longFlagPrefix)
		return len(flagName) > 0 && registeredToggles.contains(flagName, false)
	case strings.HasPrefix(argument, shortFlagPrefix):
		shorthand := strings.TrimPrefix(argument, shortFlagPrefix)
		return len(shorthand) == shorthandFlagNameLengthLimit && registeredToggles.contains(shorthand, true)
	default:
		return false
	}
}

func isToggleLiteral(value string) bool {
	_, known := toggleLiterals[strings.ToLower(strings.TrimSpace(value))]
	return known
}

func formatToggleUsage(description string, defaultValue bool) string {
	placeholder := toggleUsagePlaceholderFalse
	if defaultValue {
		placeholder = toggleUsagePlaceholderTrue
	}
	trimmed := strings.TrimSpace(description)
	if len(trimmed) == 0 {
		return fmt.Sprintf(toggleUsageBareTemplate, placeholder)
	}
	return fmt.Sprintf(toggleUsageTemplate, placeholder, trimmed)
}

type toggleValue struct {
	currentValue bool
	target       *bool
}

func newToggleValue(defaultValue bool, target *bool) *toggleValue {
	if target != nil {
		*target = defaultValue
	}
	return &toggleValue{currentValue: defaultValue, target: target}
}

func (value *toggleValue) Set(rawValue string) error {
	parsedValue, parseError := ParseToggle(rawValue)
	if parseError != nil {
		return parseError
	}
	value.currentValue = parsedValue
	if value.target != nil {
		*value.target = parsedValue
	}
	return nil
}

func (value *toggleValue) String() string {
	if value != nil && value.currentValue {
		return toggleTrueCanonicalValue
	}
	return toggleFalseCanonicalValue
}

func (value *toggleValue) Type() string {
	return toggleValueTypeName
}
