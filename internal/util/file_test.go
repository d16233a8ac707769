package util

import "testing"

func TestIsChunkFile(t *testing.T) {
	tests := []struct {
		path     string
		wantScan string
		wantSeq  int
		wantOK   bool
	}{
		{"/mnt/disk1/exp1/exp1.00000000", "exp1", 0, true},
		{"/mnt/disk1/exp1/exp1.00000042", "exp1", 42, true},
		{"exp1.12345678", "exp1", 12345678, true},
		{"exp1.1234567", "", 0, false},  // only 7 digits
		{"exp1.123456789", "", 0, false}, // 9 digits
		{"exp1", "", 0, false},
		{"exp1.txt", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			scan, seq, ok := IsChunkFile(tt.path)
			if ok != tt.wantOK {
				t.Fatalf("IsChunkFile(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if scan != tt.wantScan || seq != tt.wantSeq {
				t.Errorf("IsChunkFile(%q) = (%q, %d), want (%q, %d)", tt.path, scan, seq, tt.wantScan, tt.wantSeq)
			}
		})
	}
}
