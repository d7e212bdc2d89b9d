package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barricade.gg/backend/internal/constant"
	"barricade.gg/backend/internal/pkg/bcerr"
)

func TestClassifyPlayerID(t *testing.T) {
	cases := []struct {
		id   string
		want constant.PlayerIDType
	}{
		{"76561198012345678", constant.PlayerIDTypeSteam},
		{"3f2504e0-4f89-41d3-9a0c-0305e82c3301", constant.PlayerIDTypeWindows},
	}
	for _, c := range cases {
		got, err := ClassifyPlayerID(c.id)
		require.NoError(t, err, c.id)
		assert.Equal(t, c.want, got, c.id)
	}

	for _, bad := range []string{"", "7656119801234567", "765611980123456789", "3F2504E0-4F89-41D3-9A0C-0305E82C3301", "3f2504e0-4f89-31d3-9a0c-0305e82c3301", "steam:123"} {
		_, err := ClassifyPlayerID(bad)
		assert.ErrorIs(t, err, bcerr.ErrInvalidReq, bad)
	}
}
