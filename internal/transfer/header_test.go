package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want map[string]string
	}{
		{name: "none", args: nil, want: map[string]string{}},
		{name: "trims value", args: []string{"X-Foo: bar"}, want: map[string]string{"X-Foo": "bar"}},
		{name: "first colon", args: []string{"X-Url: http://a:1"}, want: map[string]string{"X-Url": "http://a:1"}},
		{name: "empty value", args: []string{"X-Empty:"}, want: map[string]string{"X-Empty": ""}},
		{
			name: "repeated",
			args: []string{"Content-Type: text/csv", "X-Object-Meta-Owner:me"},
			want: map[string]string{"Content-Type": "text/csv", "X-Object-Meta-Owner": "me"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHeaders(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHeadersMalformed(t *testing.T) {
	_, err := ParseHeaders([]string{"X-Foo: bar", "badheader"})
	require.ErrorIs(t, err, ErrMalformedHeader)
	assert.Contains(t, err.Error(), "[header_name]:[header_value]")
	assert.Contains(t, err.Error(), "badheader")
}
