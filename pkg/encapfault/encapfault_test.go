package encapfault

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsMatchesSentinelKind(t *testing.T) {
	assert.True(t, As(ErrInvalidLength, KindMalformed))
	assert.False(t, As(ErrInvalidLength, KindLibraryFailure))
}

func TestAsMatchesWrappedFault(t *testing.T) {
	wrapped := fmt.Errorf("decoding burst: %w", ErrCRCMismatch)
	assert.True(t, As(wrapped, KindLibraryFailure))
}

func TestAsFalseForPlainError(t *testing.T) {
	assert.False(t, As(errors.New("not a fault"), KindMalformed))
}

func TestLibraryWrapsStatusCodeAsLibraryFailure(t *testing.T) {
	err := Library(42, "external codec rejected frame")
	assert.True(t, As(err, KindLibraryFailure))
	assert.Equal(t, "external codec rejected frame", err.Error())
}

func TestKindStringCoversEveryValue(t *testing.T) {
	cases := map[Kind]string{
		KindMalformed:          "malformed",
		KindFilterMiss:         "filter-miss",
		KindLibraryFailure:     "library-failure",
		KindContextOverwritten: "context-overwritten",
		KindUnknownEndpoint:    "unknown-endpoint",
		KindConfiguration:      "configuration",
		Kind(255):              "unknown",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}
