package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadPrefersLinkedVersion(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "1.4.0"
	assert.Equal(t, "1.4.0", Load().Version)
}

func TestLoadAlwaysReportsSomething(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = ""
	assert.NotEmpty(t, Load().Version)
}
