package util_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pwa-iframe/edgeshim/util"
)

func TestTruthy(t *testing.T) {
	tests := map[string]bool{
		"true":  true,
		"TRUE":  true,
		"1":     true,
		"Yes":   true,
		" on ":  true,
		"false": false,
		"0":     false,
		"no":    false,
		"off":   false,
		"foo":   false,
		" ":     false,
		"":      false,
	}

	for input, expected := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, util.Truthy(input))
		})
	}
}
