package track

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewTopologyBoundaries(t *testing.T) {
	topo, err := NewTopology(4)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	if diff := cmp.Diff(want, topo.Boundaries()); diff != "" {
		t.Fatalf("boundaries (-want +got):\n%s", diff)
	}
	if topo.Blocks() != 4 || topo.Signals() != 5 {
		t.Fatalf("blocks=%d signals=%d", topo.Blocks(), topo.Signals())
	}
}

func TestNewTopologyRejectsZeroBlocks(t *testing.T) {
	if _, err := NewTopology(0); err == nil {
		t.Fatal("expected error for 0 blocks")
	}
}

func TestBlockOf(t *testing.T) {
	topo, err := NewTopology(6)
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		pos  float64
		want int
	}{
		{0, 0},
		{0.05, 0},
		{0.3, 1},
		{1.0 / 6, 1},
		{0.5, 3},
		{0.99, 5},
		{1, 5},
		{1.2, 5},
		{-0.1, 0},
	}
	for _, c := range cases {
		if got := topo.BlockOf(c.pos); got != c.want {
			t.Errorf("BlockOf(%v) = %d, want %d", c.pos, got, c.want)
		}
	}
}

// Every position in [0, 1] lands in exactly one block, and that block's
// bounds contain it.
func TestBlockPartition(t *testing.T) {
	for _, n := range []int{1, 2, 3, 6, 7, 10} {
		topo, err := NewTopology(n)
		if err != nil {
			t.Fatal(err)
		}
		for step := 0; step <= 1000; step++ {
			p := float64(step) / 1000
			b := topo.BlockOf(p)
			if b < 0 || b >= n {
				t.Fatalf("n=%d BlockOf(%v) = %d out of range", n, p, b)
			}
			if !topo.Contains(b, p) {
				start, end := topo.BoundsOf(b)
				t.Fatalf("n=%d p=%v block %d [%v, %v] does not contain it", n, p, b, start, end)
			}
			hits := 0
			for i := 0; i < n; i++ {
				if topo.Contains(i, p) {
					hits++
				}
			}
			if hits != 1 {
				t.Fatalf("n=%d p=%v contained by %d blocks", n, p, hits)
			}
		}
		// Boundaries themselves.
		for i := 0; i <= n; i++ {
			p := topo.Boundary(i)
			if !topo.Contains(topo.BlockOf(p), p) {
				t.Fatalf("n=%d boundary %d not contained by its block", n, i)
			}
		}
	}
}

func TestBoundsOfLastBlockEndsAtOne(t *testing.T) {
	topo, err := NewTopology(3)
	if err != nil {
		t.Fatal(err)
	}
	start, end := topo.BoundsOf(2)
	if end != 1 {
		t.Fatalf("last block end = %v, want 1", end)
	}
	if start != topo.Boundary(2) {
		t.Fatalf("last block start = %v, want %v", start, topo.Boundary(2))
	}
	if topo.Contains(3, 1) || topo.Contains(-1, 0) {
		t.Fatal("out of range blocks must contain nothing")
	}
}

func TestHeadwayThreshold(t *testing.T) {
	topo, err := NewTopology(6)
	if err != nil {
		t.Fatal(err)
	}
	if got := topo.HeadwayThreshold(3); got != 0.5 {
		t.Fatalf("HeadwayThreshold(3) = %v, want 0.5", got)
	}
	if got := topo.HeadwayThreshold(9); got != 1 {
		t.Fatalf("HeadwayThreshold(9) = %v, want 1", got)
	}
	if got := topo.HeadwayThreshold(0); got != 0 {
		t.Fatalf("HeadwayThreshold(0) = %v, want 0", got)
	}
}

func TestTrackValidate(t *testing.T) {
	cases := []struct {
		name string
		tr   Track
		ok   bool
	}{
		{"ok", Track{ID: "a", Blocks: 6}, true},
		{"shared", Track{ID: "a", Blocks: 6, Signalling: SignallingShared}, true},
		{"no id", Track{Blocks: 6}, false},
		{"no blocks", Track{ID: "a"}, false},
		{"bad signalling", Track{ID: "a", Blocks: 2, Signalling: "abs"}, false},
	}
	for _, c := range cases {
		err := c.tr.Validate()
		if (err == nil) != c.ok {
			t.Errorf("%s: Validate() = %v", c.name, err)
		}
	}
}

func TestResolveSignalling(t *testing.T) {
	if got := (Track{}).ResolveSignalling(1); got != SignallingSolo {
		t.Errorf("1 train: %q", got)
	}
	if got := (Track{}).ResolveSignalling(2); got != SignallingShared {
		t.Errorf("2 trains: %q", got)
	}
	if got := (Track{Signalling: SignallingShared}).ResolveSignalling(1); got != SignallingShared {
		t.Errorf("explicit: %q", got)
	}
}

func TestBoundsOfOutOfRangePanics(t *testing.T) {
	topo, err := NewTopology(3)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range []int{-1, 3} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("BoundsOf(%d) did not panic", b)
				}
			}()
			topo.BoundsOf(b)
		}()
		if topo.Contains(b, 0.5) {
			t.Errorf("Contains(%d, 0.5) = true", b)
		}
	}
}
