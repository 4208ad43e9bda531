package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	saved := GitCommit
	defer func() { GitCommit = saved }()

	GitCommit = ""
	assert.Equal(t, Version, String())

	GitCommit = "abc123"
	assert.Equal(t, Version+" (abc123)", String())
}
