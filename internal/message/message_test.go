package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDimensions(t *testing.T) {
	msg, err := Decode([]byte(`{"t":"d","d":{"width":1000,"height":600,"resolution":10}}`))
	require.NoError(t, err)
	assert.Equal(t, DimensionsUpdate{DimensionsData{Width: 1000, Height: 600, Resolution: 10}}, msg)
}

func TestDecodeTouchUpdate(t *testing.T) {
	msg, err := Decode([]byte(`{"t":"tu","d":[{"id":1,"x":5.7,"y":5,"rx":11.5,"ry":12,"ra":30,"p":0.5},{"id":2,"x":1,"y":2}]}`))
	require.NoError(t, err)

	update, ok := msg.(TouchUpdate)
	require.True(t, ok)
	require.Len(t, update.Touches, 2)
	assert.Equal(t, Touch{ID: 1, X: 5.7, Y: 5, RadiusX: 11.5, RadiusY: 12, RotationAngle: 30, Pressure: 0.5}, update.Touches[0])
	assert.Equal(t, int32(2), update.Touches[1].ID)
}

func TestDecodeTouchEnd(t *testing.T) {
	msg, err := Decode([]byte(`{"t":"te","d":[3,1]}`))
	require.NoError(t, err)
	assert.Equal(t, TouchEnd{IDs: []int32{3, 1}}, msg)
}

func TestDecodeUndecodable(t *testing.T) {
	for name, input := range map[string]string{
		"not json":         `{"t":`,
		"unknown tag":      `{"t":"zz","d":[]}`,
		"missing payload":  `{"t":"te"}`,
		"null payload":     `{"t":"d","d":null}`,
		"wrong shape":      `{"t":"te","d":{"id":1}}`,
		"fractional id":    `{"t":"te","d":[1.5]}`,
		"string dimension": `{"t":"d","d":{"width":"wide"}}`,
		"array envelope":   `[1,2]`,
	} {
		t.Run(name, func(t *testing.T) {
			msg, err := Decode([]byte(input))
			assert.Nil(t, msg)
			assert.ErrorIs(t, err, ErrUndecodable)
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, msg := range []Message{
		DimensionsUpdate{DimensionsData{Width: 320, Height: 200, Resolution: 4}},
		TouchUpdate{Touches: []Touch{{ID: 7, X: 1.5, Y: 2.25, Pressure: 1}}},
		TouchEnd{IDs: []int32{7}},
	} {
		data, err := Encode(msg)
		require.NoError(t, err)

		decoded, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, msg, decoded)
	}
}

func TestEncodeEmptyPayload(t *testing.T) {
	data, err := Encode(TouchEnd{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"te","d":[]}`, string(data))
}
