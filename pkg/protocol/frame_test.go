package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameEncodeDecode(t *testing.T) {
	tests := []struct {
		name  string
		frame *Frame
	}{
		{"empty event", NewFrame(FrameEvent, nil)},
		{"mutations", NewFrame(FrameMutations, []byte{1, 2, 3})},
		{"snapshot", &Frame{Type: FrameMutations, Flags: FlagSnapshot, Payload: []byte{9}}},
		{"large", NewFrame(FrameError, bytes.Repeat([]byte{0xAB}, 70000))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tt.frame.Encode()
			if len(data) != FrameHeaderSize+len(tt.frame.Payload) {
				t.Fatalf("encoded length = %d, want %d", len(data), FrameHeaderSize+len(tt.frame.Payload))
			}
			got, err := DecodeFrame(data)
			if err != nil {
				t.Fatalf("DecodeFrame() error: %v", err)
			}
			if got.Type != tt.frame.Type || got.Flags != tt.frame.Flags || !bytes.Equal(got.Payload, tt.frame.Payload) {
				t.Errorf("DecodeFrame() = %+v, want %+v", got, tt.frame)
			}
		})
	}
}

func TestFrameTruncated(t *testing.T) {
	data := NewFrame(FrameEvent, []byte{1, 2, 3}).Encode()
	if _, err := DecodeFrame(data[:3]); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short header error = %v, want ErrUnexpectedEOF", err)
	}
	if _, err := DecodeFrame(data[:len(data)-1]); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("short payload error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestFrameTooLarge(t *testing.T) {
	header := []byte{byte(FrameMutations), 0, 0xFF, 0xFF, 0xFF, 0xFF}
	if _, err := DecodeFrame(header); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("DecodeFrame() error = %v, want ErrFrameTooLarge", err)
	}
	if _, err := ReadFrame(bytes.NewReader(header)); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("ReadFrame() error = %v, want ErrFrameTooLarge", err)
	}
}

func TestReadWriteFrame(t *testing.T) {
	var buf bytes.Buffer
	frames := []*Frame{
		NewFrame(FrameEvent, []byte("a")),
		NewFrame(FrameMutations, []byte("bc")),
	}
	for _, f := range frames {
		if err := WriteFrame(&buf, f); err != nil {
			t.Fatalf("WriteFrame() error: %v", err)
		}
	}
	for _, want := range frames {
		got, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("ReadFrame() error: %v", err)
		}
		if got.Type != want.Type || string(got.Payload) != string(want.Payload) {
			t.Errorf("ReadFrame() = %v %q, want %v %q", got.Type, got.Payload, want.Type, want.Payload)
		}
	}
	if _, err := ReadFrame(&buf); err != io.EOF {
		t.Errorf("ReadFrame() at end = %v, want io.EOF", err)
	}
}

func TestFrameTypeString(t *testing.T) {
	tests := []struct {
		ft   FrameType
		want string
	}{
		{FrameEvent, "Event"},
		{FrameMutations, "Mutations"},
		{FrameError, "Error"},
		{FrameType(0x7F), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.ft.String(); got != tt.want {
			t.Errorf("FrameType(%d).String() = %q, want %q", tt.ft, got, tt.want)
		}
	}
	if !FrameFlags(FlagSnapshot).Has(FlagSnapshot) || FrameFlags(0).Has(FlagSnapshot) {
		t.Error("Has() mismatch")
	}
}
