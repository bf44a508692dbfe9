package image

import (
	"errors"
	"testing"
)

func TestNewBuf(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr error
	}{
		{"valid", 3, 2, nil},
		{"zero width", 0, 2, ErrInvalidDimensions},
		{"zero height", 3, 0, ErrInvalidDimensions},
		{"negative", -1, 5, ErrInvalidDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := NewBuf(tt.w, tt.h)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewBuf(%d, %d) error = %v, want %v", tt.w, tt.h, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if buf.Width() != tt.w || buf.Height() != tt.h {
				t.Errorf("size = %dx%d, want %dx%d", buf.Width(), buf.Height(), tt.w, tt.h)
			}
			if len(buf.Pix()) != tt.w*tt.h*Channels {
				t.Errorf("len(Pix) = %d, want %d", len(buf.Pix()), tt.w*tt.h*Channels)
			}
		})
	}
}

func TestBuf_SetAt(t *testing.T) {
	buf, _ := NewBuf(4, 4)
	p := [4]float32{0.1, 0.2, 0.3, 0.4}
	buf.Set(2, 3, p)

	if got := buf.At(2, 3); got != p {
		t.Errorf("At(2, 3) = %v, want %v", got, p)
	}
	if got := buf.Row(3)[8:12]; got[0] != 0.1 || got[3] != 0.4 {
		t.Errorf("Row(3) pixel 2 = %v", got)
	}
}

func TestBuf_CloneIsDeep(t *testing.T) {
	buf, _ := NewBuf(2, 2)
	buf.Set(0, 0, [4]float32{1, 1, 1, 1})

	c := buf.Clone()
	c.Set(0, 0, [4]float32{})

	if buf.At(0, 0)[3] != 1 {
		t.Error("mutating clone changed the original")
	}
}

func TestBuf_CopyFromSizeMismatch(t *testing.T) {
	a, _ := NewBuf(2, 2)
	b, _ := NewBuf(3, 2)
	if err := a.CopyFrom(b); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("CopyFrom error = %v, want ErrSizeMismatch", err)
	}
}

func TestBuf_Clamp(t *testing.T) {
	tests := []struct {
		name string
		in   [4]float32
		want [4]float32
	}{
		{"in range", [4]float32{0.2, 0.3, 0.4, 0.5}, [4]float32{0.2, 0.3, 0.4, 0.5}},
		{"negative", [4]float32{-0.5, 0.1, 0.1, 1}, [4]float32{0, 0.1, 0.1, 1}},
		{"over one", [4]float32{1.5, 2, 0.5, 3}, [4]float32{1, 1, 0.5, 1}},
		{"color above alpha", [4]float32{0.9, 0.2, 0.1, 0.5}, [4]float32{0.5, 0.2, 0.1, 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, _ := NewBuf(1, 1)
			buf.Set(0, 0, tt.in)
			buf.Clamp()
			if got := buf.At(0, 0); got != tt.want {
				t.Errorf("Clamp(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
