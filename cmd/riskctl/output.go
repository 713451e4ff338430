package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// render writes v as json or yaml, or calls human for the default format.
func render(w io.Writer, format string, v any, human func(io.Writer)) error {
	switch format {
	case "json":
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
	case "yaml":
		out, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Fprint(w, string(out))
	case "human", "":
		human(w)
	default:
		return fmt.Errorf("unknown output format %q (want human, json or yaml)", format)
	}
	return nil
}
