package mem

import "testing"

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		name  string
		shape Shape
		want  int
	}{
		{"scalar", Shape{}, 1},
		{"vector", Shape{5}, 5},
		{"matrix", Shape{2, 3}, 6},
		{"3d", Shape{2, 3, 4}, 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.shape.NumElements(); got != tt.want {
				t.Errorf("NumElements() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{2, 3}).Validate(); err != nil {
		t.Errorf("valid shape rejected: %v", err)
	}
	if err := (Shape{2, 0}).Validate(); err == nil {
		t.Error("zero extent accepted")
	}
	if err := (Shape{-1}).Validate(); err == nil {
		t.Error("negative extent accepted")
	}
}

func TestShapeStrides(t *testing.T) {
	s := Shape{2, 3, 4}

	row := s.rowMajorStrides()
	wantRow := []int{12, 4, 1}
	for i := range wantRow {
		if row[i] != wantRow[i] {
			t.Errorf("rowMajorStrides() = %v, want %v", row, wantRow)
			break
		}
	}

	col := s.colMajorStrides()
	wantCol := []int{1, 2, 6}
	for i := range wantCol {
		if col[i] != wantCol[i] {
			t.Errorf("colMajorStrides() = %v, want %v", col, wantCol)
			break
		}
	}
}

func TestShapeEqualClone(t *testing.T) {
	s := Shape{2, 3}
	c := s.Clone()
	if !s.Equal(c) {
		t.Error("clone not equal to original")
	}
	c[0] = 9
	if s[0] != 2 {
		t.Error("clone aliases original")
	}
	if s.Equal(Shape{2, 3, 1}) {
		t.Error("shapes of different rank compared equal")
	}
}
