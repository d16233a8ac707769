package worker

import "testing"

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		name string
		p    Progress
		want float64
	}{
		{"by bytes", Progress{BytesComplete: 50, BytesTotal: 200}, 25},
		{"by blocks when no byte total", Progress{BlocksComplete: 3, BlocksTotal: 12}, 25},
		{"zero totals", Progress{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Percent(); got != tt.want {
				t.Errorf("Percent() = %v, want %v", got, tt.want)
			}
		})
	}
}
