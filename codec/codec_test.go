package codec

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelErrorsWrapAndMatch(t *testing.T) {
	wrapped := fmt.Errorf("varint: header byte %d: %w", 3, ErrTruncated)
	require.True(t, errors.Is(wrapped, ErrTruncated))
	require.False(t, errors.Is(wrapped, ErrCorrupt))
}
