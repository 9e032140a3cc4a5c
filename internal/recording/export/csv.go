// Package export writes recordings to disk in the formats selected by file
// extension.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/banshee-data/haptics/internal/recording"
)

var baseColumns = []string{
	"frame", "timestamp", "ticks",
	"position_x", "position_y", "position_z",
	"velocity_x", "velocity_y", "velocity_z",
	"force_x", "force_y", "force_z",
}

const notesColumn = "notes"

// interactionObjects returns the objects that get interaction columns: the
// configured list, or every object seen in the frames when none was given.
func interactionObjects(b *recording.Buffer) []int {
	if !b.Options.InteractionForces {
		return nil
	}
	if len(b.Options.Objects) > 0 {
		return b.Options.Objects
	}
	seen := make(map[int]bool)
	var ids []int
	for _, f := range b.Frames {
		for _, in := range f.Interactions {
			if !seen[in.Object] {
				seen[in.Object] = true
				ids = append(ids, in.Object)
			}
		}
	}
	sort.Ints(ids)
	return ids
}

// Header returns the CSV header row for b.
func Header(b *recording.Buffer) []string {
	h := append([]string(nil), baseColumns...)
	for _, id := range interactionObjects(b) {
		for _, axis := range []string{"x", "y", "z"} {
			h = append(h, fmt.Sprintf("interaction_%d_%s", id, axis))
		}
	}
	return append(h, notesColumn)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes b as CSV, one row per frame.
func WriteCSV(w io.Writer, b *recording.Buffer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(b)); err != nil {
		return err
	}

	objects := interactionObjects(b)
	for i, f := range b.Frames {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatInt(f.Timestamp, 10),
			strconv.FormatUint(uint64(f.Ticks), 10),
		}
		for _, v := range [][3]float64{f.Position, f.Velocity, f.Force} {
			row = append(row, formatFloat(v[0]), formatFloat(v[1]), formatFloat(v[2]))
		}
		for _, id := range objects {
			var force [3]float64
			for _, in := range f.Interactions {
				if in.Object == id {
					force = in.Force
					break
				}
			}
			row = append(row, formatFloat(force[0]), formatFloat(force[1]), formatFloat(force[2]))
		}
		row = append(row, f.Note)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a recording written by WriteCSV. Only frames and the
// interaction options survive the round trip.
func ReadCSV(r io.Reader) (*recording.Buffer, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < len(baseColumns)+1 {
		return nil, fmt.Errorf("header has %d columns, want at least %d", len(header), len(baseColumns)+1)
	}
	for i, name := range baseColumns {
		if header[i] != name {
			return nil, fmt.Errorf("column %d is %q, want %q", i, header[i], name)
		}
	}
	if header[len(header)-1] != notesColumn {
		return nil, fmt.Errorf("last column is %q, want %q", header[len(header)-1], notesColumn)
	}

	extra := header[len(baseColumns) : len(header)-1]
	if len(extra)%3 != 0 {
		return nil, fmt.Errorf("interaction columns not in x,y,z triples")
	}
	b := &recording.Buffer{Options: recording.DefaultOptions()}
	for i := 0; i < len(extra); i += 3 {
		idStr := strings.TrimSuffix(strings.TrimPrefix(extra[i], "interaction_"), "_x")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return nil, fmt.Errorf("bad interaction column %q", extra[i])
		}
		b.Options.InteractionForces = true
		b.Options.Objects = append(b.Options.Objects, id)
	}

	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		f, err := parseRow(rec, b.Options.Objects)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		b.Frames = append(b.Frames, f)
	}
	return b, nil
}

func parseRow(rec []string, objects []int) (recording.Frame, error) {
	var f recording.Frame
	var err error
	if f.Timestamp, err = strconv.ParseInt(rec[1], 10, 64); err != nil {
		return f, err
	}
	ticks, err := strconv.ParseUint(rec[2], 10, 32)
	if err != nil {
		return f, err
	}
	f.Ticks = uint32(ticks)

	col := 3
	next := func() (float64, error) {
		v, err := strconv.ParseFloat(rec[col], 64)
		col++
		return v, err
	}
	triple := func(dst *[3]float64) error {
		for i := range dst {
			v, err := next()
			if err != nil {
				return err
			}
			dst[i] = v
		}
		return nil
	}
	for _, dst := range []*[3]float64{&f.Position, &f.Velocity, &f.Force} {
		if err := triple(dst); err != nil {
			return f, err
		}
	}
	for _, id := range objects {
		in := recording.Interaction{Object: id}
		if err := triple(&in.Force); err != nil {
			return f, err
		}
		f.Interactions = append(f.Interactions, in)
	}
	f.Note = rec[col]
	return f, nil
}
