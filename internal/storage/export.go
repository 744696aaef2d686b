package storage

import (
	"encoding/json"
	"io"
	"math"
)

type ExportData struct {
	Meta   *RunMetadata       `json:"meta"`
	Times  []float64          `json:"times"`
	Probes map[string]Samples `json:"probes"`
}

// Samples is a probe series. NaN and Inf encode as null, which JSON can
// carry and numbers cannot.
type Samples []float64

func (s Samples) MarshalJSON() ([]byte, error) {
	out := make([]*float64, len(s))
	for i := range s {
		if math.IsNaN(s[i]) || math.IsInf(s[i], 0) {
			continue
		}
		out[i] = &s[i]
	}
	return json.Marshal(out)
}

// Export writes a run's metadata and probe series as one JSON document.
func (s *Store) Export(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	probes, err := s.LoadProbes(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Meta:   meta,
		Times:  probes.Times,
		Probes: make(map[string]Samples, len(probes.Names)),
	}
	for i, name := range probes.Names {
		data.Probes[name] = probes.Series(i)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
