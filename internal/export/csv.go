package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/san-kum/phaseflow/internal/sim"
)

// TrajectoryPoint is one CSV row. T is the time since the trajectory's
// start.
type TrajectoryPoint struct {
	Trajectory int     `csv:"trajectory"`
	Step       int     `csv:"step"`
	T          float64 `csv:"t"`
	X          float64 `csv:"x"`
	Y          float64 `csv:"y"`
}

// TrajectoryRows flattens trajs into rows; dt is the integration step.
func TrajectoryRows(trajs []*sim.Trajectory, dt float64) []TrajectoryPoint {
	var n int
	for _, tr := range trajs {
		n += len(tr.Points)
	}
	rows := make([]TrajectoryPoint, 0, n)
	for i, tr := range trajs {
		for j, p := range tr.Points {
			rows = append(rows, TrajectoryPoint{Trajectory: i, Step: j, T: float64(j) * dt, X: p.X, Y: p.Y})
		}
	}
	return rows
}

// WriteTrajectoriesCSV writes every trajectory point with a header row.
func WriteTrajectoriesCSV(w io.Writer, trajs []*sim.Trajectory, dt float64) error {
	rows := TrajectoryRows(trajs, dt)
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing trajectories: %w", err)
	}
	return nil
}

// ReadTrajectoriesCSV parses rows written by WriteTrajectoriesCSV.
func ReadTrajectoriesCSV(r io.Reader) ([]TrajectoryPoint, error) {
	var rows []TrajectoryPoint
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("reading trajectories: %w", err)
	}
	return rows, nil
}
