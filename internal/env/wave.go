package env

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ls4096/sailnavsim-core/pkg/geo"
)

// Wave CSV row layout: lat,lon,significantWaveHeight. Cells cover water
// only; absent cells mean no valid wave data.
type csvWave struct {
	res   float64
	cells map[int64]float64
	log   zerolog.Logger
}

func openCSVWave(path string, log zerolog.Logger) (*csvWave, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	w := &csvWave{res: 0.5, cells: make(map[int64]float64), log: log}

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		lat, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, fmt.Errorf("bad wave record %v: %w", rec, err)
		}
		lon, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad wave record %v: %w", rec, err)
		}
		h, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("bad wave record %v: %w", rec, err)
		}

		w.cells[w.key(lat, lon)] = h
	}

	log.Info().Int("cells", len(w.cells)).Msg("Wave data loaded")
	return w, nil
}

func (w *csvWave) key(lat, lon float64) int64 {
	i := int64(math.Round((lat + 90.0) / w.res))
	j := int64(math.Round((lon + 180.0) / w.res))
	return i<<32 | (j & 0xffffffff)
}

func (w *csvWave) WaveAt(p geo.Pos) (WaveData, bool) {
	h, ok := w.cells[w.key(p.Lat, p.Lon)]
	if !ok {
		return WaveData{}, false
	}
	return WaveData{Height: h}, true
}
