package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerify(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	hash, err := Hash("123456")
	require.NoError(err)
	assert.NotEqual("123456", hash)

	assert.NoError(Verify(hash, "123456"))
	assert.Error(Verify(hash, "654321"))
}
