package services

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnlockPayload(t *testing.T) {
	assert.Equal(t, "UNLOCK_BIKE:3:r1", UnlockPayload("3", "r1"))
}

func TestGenerateUnlockCode(t *testing.T) {
	code, err := GenerateUnlockCode("3", "r1")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(code))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds().Dx(), img.Bounds().Dy())

	// 10 px per module; a version v symbol is 17+4v modules plus a
	// 4-module quiet zone on each side.
	size := img.Bounds().Dx()
	require.Zero(t, size%10)
	modules := size / 10
	assert.GreaterOrEqual(t, modules, 29)
	assert.Zero(t, (modules-25)%4)

	// The quiet zone is white.
	r, g, b, _ := img.At(35, 35).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})
	// The finder pattern starts right after it.
	r, g, b, _ = img.At(45, 45).RGBA()
	assert.Equal(t, []uint32{0, 0, 0}, []uint32{r, g, b})

	again, err := GenerateUnlockCode("3", "r1")
	require.NoError(t, err)
	assert.Equal(t, code, again)

	other, err := GenerateUnlockCode("3", "r2")
	require.NoError(t, err)
	assert.NotEqual(t, code, other)
}

func TestUnlockCodeBase64(t *testing.T) {
	encoded, err := UnlockCodeBase64("1", "abc")
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	code, err := GenerateUnlockCode("1", "abc")
	require.NoError(t, err)
	assert.Equal(t, code, decoded)
}
