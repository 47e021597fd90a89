package export

import (
	"fmt"
	"strings"
)

// Format selects an output encoding.
type Format string

const (
	JSON   Format = "json"
	YAML   Format = "yaml"
	SQLite Format = "sqlite"
)

// Formats lists the supported formats.
func Formats() []Format { return []Format{JSON, YAML, SQLite} }

// Ext returns the file extension used for the format, including the dot.
func (f Format) Ext() string {
	switch f {
	case YAML:
		return ".yaml"
	case SQLite:
		return ".db"
	}
	return ".json"
}

// Streamable reports whether the format can be written to an io.Writer.
func (f Format) Streamable() bool { return f != SQLite }

// String implements pflag.Value.
func (f *Format) String() string { return string(*f) }

// Type implements pflag.Value.
func (f *Format) Type() string { return "format" }

// Set implements pflag.Value.
func (f *Format) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "yml" {
		s = string(YAML)
	}
	for _, known := range Formats() {
		if string(known) == s {
			*f = known
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want json, yaml or sqlite)", s)
}
