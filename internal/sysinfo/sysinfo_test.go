package sysinfo

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectAlwaysHasGoVersion(t *testing.T) {
	fields := Collect(t.TempDir())
	assert.Contains(t, fields, Field{Name: "Go Version", Value: runtime.Version()})
	for _, f := range fields {
		assert.NotEmpty(t, f.Value, f.Name)
	}
}

func TestWidth(t *testing.T) {
	assert.Equal(t, 0, Width(nil))
	assert.Equal(t, 9, Width([]Field{{Name: "OS"}, {Name: "CPU Model"}}))
}
