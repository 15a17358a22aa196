package storage

import (
	"errors"
	"testing"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/sim"
)

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	clock := time.Unix(1700000000, 0)
	st.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	trajs := []*sim.Trajectory{
		{Origin: r2.Vec{X: 1}, Points: []r2.Vec{{X: 1}, {X: 0.9, Y: 0.1}}},
		{Origin: r2.Vec{Y: 2}, Points: []r2.Vec{{Y: 2}}},
	}
	meta := RunMetadata{
		Preset:  "vanderpol",
		DX:      "y",
		DY:      "mu*(1 - x^2)*y - x",
		Params:  map[string]float64{"mu": 1.5},
		Dt:      0.01,
		Steps:   2,
		Metrics: map[string]float64{"length": 0.14},
	}
	runID, err := st.Save(meta, trajs)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got.Preset != "vanderpol" || got.Params["mu"] != 1.5 {
		t.Errorf("unexpected metadata %+v", got)
	}
	if got.Trajectories != 2 || got.Origins[1] != [2]float64{0, 2} {
		t.Errorf("origins = %v, trajectories = %d", got.Origins, got.Trajectories)
	}

	pts, err := st.LoadPoints(runID)
	if err != nil {
		t.Fatalf("load points failed: %v", err)
	}
	if len(pts) != 3 {
		t.Fatalf("points = %d, want 3", len(pts))
	}
	if p := pts[1]; p.X != 0.9 || p.Y != 0.1 || p.T != 0.01 {
		t.Errorf("point 1 = %+v", p)
	}

	if _, err := st.Save(RunMetadata{DX: "x", DY: "y"}, nil); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != runID {
		t.Errorf("runs = %+v", runs)
	}
}

func TestStoreMissingRun(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Load err = %v, want ErrRunNotFound", err)
	}
	if _, err := st.LoadPoints("nope"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("LoadPoints err = %v, want ErrRunNotFound", err)
	}
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(t.TempDir() + "/absent").List()
	if err != nil || len(runs) != 0 {
		t.Errorf("List = %v, %v", runs, err)
	}
}
