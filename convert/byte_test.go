package convert

import "testing"

func TestBytesToInt8(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    int8
		wantErr bool
	}{
		{name: "zero", input: []byte{0x00}, want: 0},
		{name: "max int8", input: []byte{0x7F}, want: 127},
		{name: "minus one", input: []byte{0xFF}, want: -1},
		{name: "too short", input: []byte{}, want: 0, wantErr: true},
		{name: "min int8", input: []byte{0x80}, want: -128},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BytesToInt8(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("BytesToInt8() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("BytesToInt8() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInt8ToByte(t *testing.T) {
	tests := []struct {
		name  string
		input int8
		want  byte
	}{
		{name: "zero", input: 0, want: 0x00},
		{name: "max int8", input: 127, want: 0x7F},
		{name: "minus one", input: -1, want: 0xFF},
		{name: "min int8", input: -128, want: 0x80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Int8ToByte(tt.input)
			if len(got) != 1 {
				t.Fatalf("Int8ToByte() length = %d, want 1", len(got))
			}
			if got[0] != tt.want {
				t.Errorf("Int8ToByte() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBytesToInt32(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    int32
		wantErr bool
	}{
		{name: "one", input: []byte{0x00, 0x00, 0x00, 0x01}, want: 1},
		{name: "max int32", input: []byte{0x7F, 0xFF, 0xFF, 0xFF}, want: 2147483647},
		{name: "minus one", input: []byte{0xFF, 0xFF, 0xFF, 0xFF}, want: -1},
		{name: "too short", input: []byte{0x01, 0x02, 0x03}, want: 0, wantErr: true},
		{name: "min int32", input: []byte{0x80, 0x00, 0x00, 0x00}, want: -2147483648},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BytesToInt32(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("BytesToInt32() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("BytesToInt32() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInt32ToByte(t *testing.T) {
	tests := []struct {
		name  string
		input int32
		want  []byte
	}{
		{name: "zero", input: 0, want: []byte{0x00, 0x00, 0x00, 0x00}},
		{name: "one", input: 1, want: []byte{0x00, 0x00, 0x00, 0x01}},
		{name: "max int32", input: 2147483647, want: []byte{0x7F, 0xFF, 0xFF, 0xFF}},
		{name: "min int32", input: -2147483648, want: []byte{0x80, 0x00, 0x00, 0x00}},
		{name: "minus one", input: -1, want: []byte{0xFF, 0xFF, 0xFF, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Int32ToByte(tt.input)
			if len(got) != 4 {
				t.Fatalf("Int32ToByte() length = %d, want 4", len(got))
			}
			for i := 0; i < 4; i++ {
				if got[i] != tt.want[i] {
					t.Errorf("Int32ToByte() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestInt64ToByte_BytesToInt64_RoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 1700000000000, -1700000000000, 1<<62 - 1, -(1 << 62)}

	for _, v := range values {
		b := Int64ToByte(v)
		if len(b) != 8 {
			t.Fatalf("Int64ToByte(%d) length = %d, want 8", v, len(b))
		}
		got, err := BytesToInt64(b)
		if err != nil {
			t.Fatalf("BytesToInt64() error = %v", err)
		}
		if got != v {
			t.Errorf("round trip mismatch: got %d, want %d", got, v)
		}
	}
}

func TestBytesToInt64_TooShort(t *testing.T) {
	if _, err := BytesToInt64([]byte{0x01, 0x02}); err == nil {
		t.Error("expected error for short input")
	}
}
