package sequence

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLicenseKey(t *testing.T) {
	format := regexp.MustCompile(`^[A-HJ-NP-Z2-9]{4}(-[A-HJ-NP-Z2-9]{4}){3}$`)

	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		key, err := LicenseKey()
		require.NoError(t, err)
		require.Regexp(t, format, key)
		require.False(t, seen[key])
		seen[key] = true
	}
}
