package mem

import "testing"

func TestPlacementAccessibility(t *testing.T) {
	tests := []struct {
		p          Placement
		hostAccess bool
		devAccess  bool
	}{
		{Host, true, false},
		{Device, false, true},
		{Managed, true, true},
		{Pinned, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.p.String(), func(t *testing.T) {
			if got := tt.p.HostAccessible(); got != tt.hostAccess {
				t.Errorf("HostAccessible() = %v, want %v", got, tt.hostAccess)
			}
			if got := tt.p.DeviceAccessible(); got != tt.devAccess {
				t.Errorf("DeviceAccessible() = %v, want %v", got, tt.devAccess)
			}
		})
	}
}
