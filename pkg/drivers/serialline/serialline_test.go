package serialline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBit(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Bit
		wantErr bool
	}{
		{name: "cts", in: "cts", want: CTS},
		{name: "dsr", in: "dsr", want: DSR},
		{name: "ri", in: "ri", want: RI},
		{name: "dcd", in: "dcd", want: DCD},
		{name: "upper case", in: "CTS", want: CTS},
		{name: "padded", in: " dsr ", want: DSR},
		{name: "unknown", in: "dtr", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBit(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRejectsUnknownBit(t *testing.T) {
	_, err := New("/dev/null", Bit("dtr"), 0)
	assert.Error(t, err)
}

func TestNewMissingPort(t *testing.T) {
	_, err := New("/definitely/not/a/port", CTS, 0)
	assert.Error(t, err)
}
