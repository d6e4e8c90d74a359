package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// MarshalJSON encodes NaN cells as null so grids survive the standard
// library encoder, which rejects NaN outright.
func (g Grid) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(`{"x_coords":`)
	writeFloats(&b, g.XCoords)
	b.WriteString(`,"y_coords":`)
	writeFloats(&b, g.YCoords)
	b.WriteString(`,"z_values":[`)
	for i, row := range g.Z {
		if i > 0 {
			b.WriteByte(',')
		}
		writeFloats(&b, row)
	}
	b.WriteString("]}")
	return b.Bytes(), nil
}

func writeFloats(b *bytes.Buffer, vs []float64) {
	b.WriteByte('[')
	for i, v := range vs {
		if i > 0 {
			b.WriteByte(',')
		}
		if math.IsNaN(v) {
			b.WriteString("null")
			continue
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	b.WriteByte(']')
}

// UnmarshalJSON is the inverse of MarshalJSON: null cells come back as NaN.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var raw struct {
		XCoords []float64    `json:"x_coords"`
		YCoords []float64    `json:"y_coords"`
		Z       [][]*float64 `json:"z_values"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	g.XCoords = raw.XCoords
	g.YCoords = raw.YCoords
	g.Z = make([][]float64, len(raw.Z))
	for i, row := range raw.Z {
		out := make([]float64, len(row))
		for j, v := range row {
			if v == nil {
				out[j] = math.NaN()
			} else {
				out[j] = *v
			}
		}
		g.Z[i] = out
	}
	return nil
}
