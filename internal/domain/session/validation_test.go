package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("max@example.de"))
	assert.True(t, ValidEmail("a@b.co"))

	assert.False(t, ValidEmail(""))
	assert.False(t, ValidEmail("max"))
	assert.False(t, ValidEmail("max@"))
	assert.False(t, ValidEmail("@example.de"))
	assert.False(t, ValidEmail("max@example"))
	assert.False(t, ValidEmail("max@.de"))
	assert.False(t, ValidEmail("max@example."))
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("030 1234567"))
	assert.True(t, ValidPhone("+49 (0)170 123-4567"))
	assert.True(t, ValidPhone("01701234"))

	assert.False(t, ValidPhone("1234567"))
	assert.False(t, ValidPhone("0170/1234567"))
	assert.False(t, ValidPhone("null eins sieben"))
}

func TestValidPLZ(t *testing.T) {
	assert.True(t, ValidPLZ("10115"))
	assert.True(t, ValidPLZ("01067"))

	assert.False(t, ValidPLZ(""))
	assert.False(t, ValidPLZ("1011"))
	assert.False(t, ValidPLZ("101150"))
	assert.False(t, ValidPLZ("1011a"))
	assert.False(t, ValidPLZ("10 11"))
}
