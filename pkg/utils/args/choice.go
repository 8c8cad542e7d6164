package args

import (
	"fmt"
	"slices"
	"strings"
)

// Choice is a flag.Value which accepts only one of the given options.
type Choice struct {
	value   string
	options []string
}

// NewChoice creates a Choice with the default value and the allowed options.
//
// The default value should be one of the options.
func NewChoice(defaultValue string, options ...string) *Choice {
	return &Choice{value: defaultValue, options: options}
}

func (c *Choice) String() string {
	if c == nil {
		return ""
	}
	return c.value
}

func (c *Choice) Set(s string) error {
	if !slices.Contains(c.options, s) {
		return fmt.Errorf("%q is not one of %s", s, strings.Join(c.options, ", "))
	}
	c.value = s
	return nil
}

// Value returns the chosen value.
func (c *Choice) Value() string {
	return c.value
}

// Options returns the allowed values.
func (c *Choice) Options() []string {
	return slices.Clone(c.options)
}
