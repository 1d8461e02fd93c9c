package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	req := require.New(t)
	ts := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	s, err := EncodeCursor(Cursor{CreatedAt: ts, ID: "0b1f3c7e-room"})
	req.NoError(err)

	got, err := DecodeCursor(s)
	req.NoError(err)
	req.NotNil(got)
	req.True(got.CreatedAt.Equal(ts))
	req.Equal("0b1f3c7e-room", got.ID)
}

func TestMsgCursor_RoundTrip(t *testing.T) {
	req := require.New(t)
	ts := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	s, err := EncodeMsgCursor(MsgCursor{CreatedAt: ts, ID: 42})
	req.NoError(err)

	got, err := DecodeMsgCursor(s)
	req.NoError(err)
	req.NotNil(got)
	req.EqualValues(42, got.ID)
}

func TestDecodeCursor_Empty(t *testing.T) {
	req := require.New(t)
	got, err := DecodeCursor("")
	req.NoError(err)
	req.Nil(got)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	req := require.New(t)

	_, err := DecodeCursor("%%%not-base64%%%")
	req.ErrorIs(err, ErrInvalidCursor)

	// валидный base64, но не json
	_, err = DecodeMsgCursor("bm90LWpzb24")
	req.ErrorIs(err, ErrInvalidCursor)
}
