package format

import "fmt"

type Format int8

const (
	HTML Format = iota
	Csv
	Yaml
)

func UnmarshalText(text string) (Format, error) {
	switch text {
	case "html":
		return HTML, nil
	case "csv":
		return Csv, nil
	case "yaml", "yml":
		return Yaml, nil
	default:
		return 0, fmt.Errorf("invalid format: %q", text)
	}
}

func (f Format) String() string {
	switch f {
	case HTML:
		return "html"
	case Csv:
		return "csv"
	case Yaml:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int8(f))
	}
}
