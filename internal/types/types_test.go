package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "2022", Stringify(2022.0))
	assert.Equal(t, "1.5", Stringify(1.5))
	assert.Equal(t, "7", Stringify(7))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "Audi", Stringify("Audi"))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(nil))
	assert.True(t, IsEmpty(""))
	assert.False(t, IsEmpty(" "))
	assert.False(t, IsEmpty(0.0))
}

func TestCleanHeaders(t *testing.T) {
	assert.Equal(t,
		[]string{"Make", "Column_2", "Model", "Make_1", "Make_2"},
		CleanHeaders([]string{" Make ", "", "Model", "Make", "Make"}))

	assert.Equal(t,
		[]string{"Price_1", "Price", "Price_2"},
		CleanHeaders([]string{"Price_1", "Price", "Price"}))
}
