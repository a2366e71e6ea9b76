package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// "React" and "react" must resolve to the same tag
func TestTagKey(t *testing.T) {

	assert.Equal(t, "react", TagKey("React"))
	assert.Equal(t, TagKey("react"), TagKey("REACT"))
	assert.Equal(t, "next.js", TagKey("  Next.js "))
	assert.Equal(t, "", TagKey("   "))
}
