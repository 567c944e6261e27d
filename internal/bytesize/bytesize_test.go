package bytesize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/nfsclient/internal/bytesize"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want bytesize.ByteSize
	}{
		{"0", 0},
		{"1024", 1024},
		{"64K", 64 * bytesize.KiB},
		{"64k", 64 * bytesize.KiB},
		{"16MiB", 16 * bytesize.MiB},
		{"1G", bytesize.GiB},
		{"2TiB", 2 * bytesize.TiB},
		{" 512 kb ", 512 * bytesize.KiB},
	}
	for _, tc := range cases {
		got, err := bytesize.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "12X", "-5", "1.5.2G"} {
		_, err := bytesize.Parse(in)
		assert.Error(t, err, in)
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "512B", (512 * bytesize.B).String())
	assert.Equal(t, "64.00KiB", (64 * bytesize.KiB).String())
	assert.Equal(t, "1.00GiB", bytesize.GiB.String())
}
