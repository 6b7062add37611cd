package main

import (
	"testing"
	"time"

	"github.com/8emezzo/iphone-photo-copier/pkg/models"
)

func TestEtaText(t *testing.T) {
	tests := []struct {
		name string
		snap models.Snapshot
		want string
	}{
		{
			name: "final totals",
			snap: models.Snapshot{ETA: 130 * time.Second},
			want: "2 minutes and 10 seconds",
		},
		{
			name: "enumeration still running",
			snap: models.Snapshot{ETA: 45 * time.Second, Approximate: true},
			want: "45 seconds (approx)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := etaText(tt.snap); got != tt.want {
				t.Errorf("etaText() = %q; want %q", got, tt.want)
			}
		})
	}
}
