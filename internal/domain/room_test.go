package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoom_InviteCode(t *testing.T) {
	req := require.New(t)

	r := Room{ID: "0b1f3c7e-9a2d-4f10-8c55-0123456789ab"}
	req.Equal("0B1F3C7E", r.InviteCode())

	// короткий id не паникует
	req.Equal("ABC", Room{ID: "abc"}.InviteCode())
}

func TestNormalizeInviteCode(t *testing.T) {
	req := require.New(t)

	req.Equal("0b1f3c7e", NormalizeInviteCode("  0B1F3C7E  "))
	// лишние символы за пределами префикса отбрасываются
	req.Equal("0b1f3c7e", NormalizeInviteCode("0B1F3C7E-9A2D"))
	req.Equal("", NormalizeInviteCode("   "))
}
