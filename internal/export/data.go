package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/softplot/internal/frames"
)

// FrameSource is the read side of a frame file.
type FrameSource interface {
	Header() frames.Header
	Frame(t int) (frames.Frame, error)
}

type ExportData struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	FrameCount int         `json:"frame_count"`
	Particles  int         `json:"particles"`
	Frames     []FrameData `json:"frames"`
}

type FrameData struct {
	Index int       `json:"index"`
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
}

// WriteJSON dumps the header and every parsed frame as indented JSON.
func WriteJSON(w io.Writer, src FrameSource) error {
	h := src.Header()
	data := ExportData{
		Width:      h.Width,
		Height:     h.Height,
		FrameCount: h.FrameCount,
		Particles:  h.Size(),
		Frames:     make([]FrameData, 0, h.FrameCount),
	}

	for t := 0; t < h.FrameCount; t++ {
		f, err := src.Frame(t)
		if err != nil {
			return err
		}
		data.Frames = append(data.Frames, FrameData{Index: f.Index, X: f.X, Y: f.Y})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteCSV dumps one row per particle per frame: frame,particle,x,y.
func WriteCSV(w io.Writer, src FrameSource) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"frame", "particle", "x", "y"}); err != nil {
		return err
	}

	h := src.Header()
	for t := 0; t < h.FrameCount; t++ {
		f, err := src.Frame(t)
		if err != nil {
			return err
		}
		for i := range f.X {
			row := []string{
				strconv.Itoa(t),
				strconv.Itoa(i),
				strconv.FormatFloat(f.X[i], 'f', 6, 64),
				strconv.FormatFloat(f.Y[i], 'f', 6, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
