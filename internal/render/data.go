package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/zapponejosh/jaarkalender/internal/calendar"
)

// JSON writes the year view as indented JSON.
type JSON struct{}

func (JSON) Format() Format      { return FormatJSON }
func (JSON) ContentType() string { return "application/json" }

func (JSON) Render(w io.Writer, view *calendar.YearView, _ Options) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// YAML writes the year view as a YAML document.
type YAML struct{}

func (YAML) Format() Format      { return FormatYAML }
func (YAML) ContentType() string { return "application/yaml" }

func (YAML) Render(w io.Writer, view *calendar.YearView, _ Options) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
