package parser

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05 -0700",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Date is a publication date that accepts the layouts authors commonly use.
type Date struct {
	time.Time
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Date) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("date: expected a scalar at line %d", n.Line)
	}
	v := strings.TrimSpace(n.Value)
	if v == "" || n.Tag == "!!null" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("date: unrecognised value %q", v)
}
