package uid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerate(t *testing.T) {
	g := NewUUID()

	a, b := g.Generate(), g.Generate()

	assert.NotEqual(t, a, b)
	id, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestNamed(t *testing.T) {
	a := Named("me@example.com", "boss@example.com", "2026-10-17")

	assert.Equal(t, a, Named("me@example.com", "boss@example.com", "2026-10-17"))
	assert.NotEqual(t, a, Named("me@example.com", "boss@example.com", "2026-10-18"))
	assert.NotEqual(t, Named("ab", "c"), Named("a", "bc"))

	id, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), id.Version())
}
