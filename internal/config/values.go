package config

// pflag.Value adapters so the typed enums (Quality, []Format) bind directly
// to cobra flags, mirroring the flag.Var adapter pattern used for enum
// config fields.

import "strings"

// QualityValue adapts a *Quality to the pflag.Value interface.
type QualityValue struct{ P *Quality }

func (q *QualityValue) String() string { return string(*q.P) }
func (q *QualityValue) Type() string   { return "quality" }
func (q *QualityValue) Set(s string) error {
	parsed, err := ParseQuality(s)
	if err != nil {
		return err
	}
	*q.P = parsed
	return nil
}

// FormatsValue adapts a *[]Format to the pflag.Value interface. The flag
// accepts a comma-separated list (e.g. "gif,apng") and replaces the default
// set on first use.
type FormatsValue struct {
	P       *[]Format
	touched bool
}

func (f *FormatsValue) String() string {
	parts := make([]string, len(*f.P))
	for i, v := range *f.P {
		parts[i] = string(v)
	}
	return strings.Join(parts, ",")
}

func (f *FormatsValue) Type() string { return "formats" }

func (f *FormatsValue) Set(s string) error {
	if !f.touched {
		*f.P = nil
		f.touched = true
	}
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		parsed, err := ParseFormat(part)
		if err != nil {
			return err
		}
		*f.P = append(*f.P, parsed)
	}
	return nil
}
