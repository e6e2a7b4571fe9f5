package utils_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chlachla/chlachla-backend/internal/utils"
)

func TestGenerateSecureOTP_Range(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := utils.GenerateSecureOTP()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestGenerateSecureID_Prefix(t *testing.T) {
	id := utils.GenerateSecureID("RD")
	assert.True(t, strings.HasPrefix(id, "RD"))

	other := utils.GenerateSecureID("RD")
	assert.NotEqual(t, id, other)
}
