package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApprox(t *testing.T) {
	assert.Equal(t, 0, Approx(""))
	assert.Equal(t, 1, Approx("abc"))
	assert.Equal(t, 1, Approx("abcd"))
	assert.Equal(t, 2, Approx("abcde"))
	assert.Equal(t, 2, Approx("héllo!"))
}

func TestApproxCounter(t *testing.T) {
	c := NewApproxCounter()
	assert.Equal(t, 0, c.Count(""))
	assert.Equal(t, 3, c.Count("hello world!"))
}
