package batch

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type reportEntry struct {
	Path        string  `yaml:"path"`
	Outcome     string  `yaml:"outcome"`
	Status      string  `yaml:"status"`
	Picked      []int   `yaml:"picked,omitempty"`
	TotalWeight int     `yaml:"total_weight,omitempty"`
	TotalValue  int     `yaml:"total_value,omitempty"`
	TimeTaken   float64 `yaml:"time_taken_seconds"`
}

type report struct {
	Instances  int           `yaml:"instances"`
	Solved     int           `yaml:"solved"`
	NoSolution int           `yaml:"no_solution"`
	ReadErrors int           `yaml:"read_errors"`
	Entries    []reportEntry `yaml:"entries"`
}

func newReport(s *Summary) *report {
	rep := &report{
		Instances:  len(s.Entries),
		Solved:     s.Count(Solved),
		NoSolution: s.Count(NoSolution),
		ReadErrors: s.Count(ReadError),
		Entries:    make([]reportEntry, 0, len(s.Entries)),
	}
	for _, e := range s.Entries {
		re := reportEntry{
			Path:      e.Path,
			Outcome:   e.Outcome,
			Status:    e.Kind.String(),
			TimeTaken: e.Result.Elapsed.Seconds(),
		}
		if e.Kind == Solved {
			re.Status = e.Result.Status.String()
			re.Picked = e.Result.Selected
			re.TotalWeight = e.Result.TotalWeight
			re.TotalValue = e.Result.TotalValue
		}
		rep.Entries = append(rep.Entries, re)
	}
	return rep
}

// WriteYAML encodes s as a YAML document.
func WriteYAML(w io.Writer, s *Summary) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newReport(s)); err != nil {
		return err
	}
	return enc.Close()
}

func WriteYAMLFile(path string, s *Summary) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteYAML(file, s); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
