package exemplar

import (
	"errors"
	"testing"

	"github.com/agenthands/upsampler/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBank(t *testing.T) {
	b := DefaultBank()
	assert.Equal(t, 11, b.Len())

	all := b.All()
	assert.Equal(t, "a man holding a sword", all[0].Rationale)
	assert.Contains(t, all[10].Rationale, "smafml")
}

func TestTakeReturnsStablePrefix(t *testing.T) {
	b := DefaultBank()

	first, err := b.Take(3)
	require.NoError(t, err)
	second, err := b.Take(3)
	require.NoError(t, err)

	assert.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, "a frog playing dominoes", first[1].Rationale)
}

func TestTakeReturnsCopy(t *testing.T) {
	b := DefaultBank()
	got, err := b.Take(1)
	require.NoError(t, err)

	got[0].Caption = "mutated"
	assert.NotEqual(t, "mutated", b.All()[0].Caption)
}

func TestTakeRejectsInvalidFanOut(t *testing.T) {
	b := DefaultBank()
	for _, m := range []int{0, -1, 12} {
		_, err := b.Take(m)
		assert.True(t, errors.Is(err, model.ErrInvalidFanOut), "m=%d", m)
	}
}

func TestNewBankValidation(t *testing.T) {
	_, err := NewBank(nil)
	assert.Error(t, err)

	_, err = NewBank([]model.Exemplar{{Rationale: "only rationale"}})
	assert.Error(t, err)

	b, err := NewBank([]model.Exemplar{{Rationale: "r", Caption: "c"}})
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())
}
