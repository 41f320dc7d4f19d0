package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/urdfsim/internal/dynamo"
)

type ExportData struct {
	Document   string             `json:"document"`
	Integrator string             `json:"integrator"`
	Start      float64            `json:"start"`
	End        float64            `json:"end"`
	Samples    int                `json:"samples"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	Metrics    map[string]float64 `json:"metrics"`
}

func ExportJSON(w io.Writer, meta RunMetadata, result *dynamo.Result) error {
	data := ExportData{
		Document:   meta.Document,
		Integrator: meta.Integrator,
		Start:      meta.Start,
		End:        meta.End,
		Samples:    len(result.Times),
		Times:      result.Times,
		States:     make([][]float64, len(result.States)),
		Metrics:    result.Metrics,
	}

	for i, s := range result.States {
		data.States[i] = s
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
