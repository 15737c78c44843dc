package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"nil", nil, nil},
		{"blank entries dropped", []string{" ", "", "a"}, []string{"a"}},
		{"order kept", []string{" broker-2:9092", "broker-1:9092 ", "broker-2:9092"}, []string{"broker-2:9092", "broker-1:9092"}},
		{"case sensitive", []string{"MDI", "mdi"}, []string{"MDI", "mdi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DedupeAndTrim(tt.input))
		})
	}
}

func TestDedupeAndTrimUpper(t *testing.T) {
	assert.Equal(t, []string{"MDI", "LEI"}, DedupeAndTrimUpper([]string{"mdi", " MDI", "lei", ""}))
	assert.Nil(t, DedupeAndTrimUpper([]string{}))
}
