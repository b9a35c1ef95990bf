package export

import "fmt"

// Dataset is a titled table. Rows are keyed by header.
type Dataset struct {
	Title    string
	Subtitle string
	Headers  []string
	Rows     []map[string]string
}

// Records returns the rows laid out in header order. Missing cells are empty.
func (d Dataset) Records() [][]string {
	out := make([][]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		record := make([]string, len(d.Headers))
		for i, header := range d.Headers {
			record[i] = row[header]
		}
		out = append(out, record)
	}
	return out
}

func (d Dataset) validate(format string) error {
	if len(d.Headers) == 0 {
		return fmt.Errorf("%s requires at least one header", format)
	}
	seen := make(map[string]struct{}, len(d.Headers))
	for _, h := range d.Headers {
		if _, dup := seen[h]; dup {
			return fmt.Errorf("%s header %q repeated", format, h)
		}
		seen[h] = struct{}{}
	}
	return nil
}
