package license

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		bound  []string
		device string
		max    int
		want   Decision
	}{
		{name: "first device", bound: nil, device: "a", max: 1, want: Append},
		{name: "room left", bound: []string{"a"}, device: "b", max: 2, want: Append},
		{name: "at ceiling", bound: []string{"a", "b"}, device: "c", max: 2, want: Reject},
		{name: "reconnect at ceiling", bound: []string{"a", "b"}, device: "a", max: 2, want: AlreadyBound},
		{name: "reconnect after ceiling lowered", bound: []string{"a", "b"}, device: "b", max: 1, want: AlreadyBound},
		{name: "zero ceiling", bound: nil, device: "a", max: 0, want: Reject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Decide(tt.bound, tt.device, tt.max))
		})
	}
}
