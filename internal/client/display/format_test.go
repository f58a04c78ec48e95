package display

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovePairs(t *testing.T) {
	assert.Empty(t, MovePairs(nil))
	assert.Equal(t, []string{"1. e2e4 | e7e5", "2. g1f3 | ..."}, MovePairs([]string{"e2e4", "e7e5", "g1f3"}))
}

func TestPrettyPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	PrettyPrintJSON(&buf, map[string]int{"ply": 1})
	assert.Equal(t, "{\n  \"ply\": 1\n}\n", buf.String())
}
