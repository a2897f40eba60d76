package webgpu

import (
	"encoding/binary"
	"testing"
)

// newTestDevice returns a device or skips the test when no GPU is present.
func newTestDevice(t *testing.T) *Device {
	t.Helper()
	if !IsAvailable() {
		t.Skip("WebGPU not available on this system")
	}
	d, err := New()
	if err != nil {
		t.Skipf("WebGPU initialization failed: %v", err)
	}
	t.Cleanup(d.Release)
	return d
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	d := newTestDevice(t)
	s := d.NewStream()
	defer s.Release()

	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i)
	}

	buf := d.Alloc(uint64(len(data)))
	defer buf.Release()

	if err := s.Upload(buf, 0, data); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	out := make([]byte, len(data))
	if err := s.Download(out, buf, 0); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	for i := range data {
		if out[i] != data[i] {
			t.Fatalf("byte %d: got %d, want %d", i, out[i], data[i])
		}
	}
}

func TestUnalignedUploadDownload(t *testing.T) {
	d := newTestDevice(t)
	s := d.NewStream()
	defer s.Release()

	buf := d.Alloc(16)
	defer buf.Release()

	// Write a single byte at an unaligned offset.
	if err := s.Upload(buf, 5, []byte{0xAB}); err != nil {
		t.Fatalf("unaligned Upload failed: %v", err)
	}

	out := make([]byte, 1)
	if err := s.Download(out, buf, 5); err != nil {
		t.Fatalf("unaligned Download failed: %v", err)
	}
	if out[0] != 0xAB {
		t.Errorf("got %#x, want 0xAB", out[0])
	}
}

func TestCopyBuffer(t *testing.T) {
	d := newTestDevice(t)
	s := d.NewStream()
	defer s.Release()

	src := d.Alloc(32)
	defer src.Release()
	dst := d.Alloc(32)
	defer dst.Release()

	data := make([]byte, 32)
	for i := range data {
		data[i] = byte(255 - i)
	}
	if err := s.Upload(src, 0, data); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if err := s.CopyBuffer(dst, 0, src, 0, 32); err != nil {
		t.Fatalf("CopyBuffer failed: %v", err)
	}
	if err := s.Synchronize(); err != nil {
		t.Fatalf("Synchronize failed: %v", err)
	}

	out := make([]byte, 32)
	if err := s.Download(out, dst, 0); err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	for i := range data {
		if out[i] != data[i] {
			t.Fatalf("byte %d: got %d, want %d", i, out[i], data[i])
		}
	}
}

func TestManagedBufferBytes(t *testing.T) {
	d := newTestDevice(t)

	buf := d.AllocManaged(16)
	defer buf.Release()

	bytes, err := buf.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if len(bytes) != 16 {
		t.Fatalf("len(Bytes()) = %d, want 16", len(bytes))
	}
	bytes[3] = 42

	again, err := buf.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if again[3] != 42 {
		t.Errorf("mapped write not visible: got %d", again[3])
	}
}

func TestTranspose2D(t *testing.T) {
	d := newTestDevice(t)
	s := d.NewStream()
	defer s.Release()

	const rows, cols = 3, 4
	in := make([]byte, rows*cols*4)
	for i := 0; i < rows*cols; i++ {
		binary.LittleEndian.PutUint32(in[i*4:], uint32(i))
	}

	src := d.Alloc(uint64(len(in)))
	defer src.Release()
	dst := d.Alloc(uint64(len(in)))
	defer dst.Release()

	if err := s.Upload(src, 0, in); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if err := s.Transpose2D(dst, src, rows, cols, 4); err != nil {
		t.Fatalf("Transpose2D failed: %v", err)
	}

	out := make([]byte, len(in))
	if err := s.Download(out, dst, 0); err != nil {
		t.Fatalf("Download failed: %v", err)
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			want := uint32(r*cols + c)
			got := binary.LittleEndian.Uint32(out[(c*rows+r)*4:])
			if got != want {
				t.Errorf("element (%d,%d): got %d, want %d", r, c, got, want)
			}
		}
	}
}

func TestMemoryStats(t *testing.T) {
	d := newTestDevice(t)

	before := d.MemoryStats()
	buf := d.Alloc(1024)
	mid := d.MemoryStats()
	if mid.ActiveBuffers != before.ActiveBuffers+1 {
		t.Errorf("ActiveBuffers = %d, want %d", mid.ActiveBuffers, before.ActiveBuffers+1)
	}
	buf.Release()
	after := d.MemoryStats()
	if after.ActiveBuffers != before.ActiveBuffers {
		t.Errorf("ActiveBuffers after release = %d, want %d", after.ActiveBuffers, before.ActiveBuffers)
	}
}
