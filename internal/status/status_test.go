package status

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeValues(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{InvalidErrorNum, -4},
		{GenericFail, -1},
		{Success, 0},
		{BufferTooSmall, 1},
		{NotInitialized, 3},
		{CantBeInitialized, 7},
		{ObjectNotFound, 11},
		{SamplingTooSmall, 14},
		{InvalidParamsSumNotSix, 16},
		{InvalidParamsSameValue, 18},
		{ExportFailed, 21},
		{NotRecording, 23},
		{NegativeCycles, 25},
		{OvershootTooLow, 26},
		{NoHookExisting, 27},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, int(tc.code), tc.code.Message())
	}
}

func TestEveryCodeHasMessage(t *testing.T) {
	for c := InvalidErrorNum; c <= NoHookExisting; c++ {
		require.True(t, c.Known(), "code %d", int(c))
		assert.NotEmpty(t, c.Message())
	}
	assert.False(t, Code(28).Known())
	assert.False(t, Code(-5).Known())
}

func TestOf(t *testing.T) {
	assert.Equal(t, Success, Of(nil))
	assert.Equal(t, ObjectNotFound, Of(ObjectNotFound))
	assert.Equal(t, NotRecording, Of(fmt.Errorf("stop: %w", NotRecording)))
	assert.Equal(t, GenericFail, Of(fmt.Errorf("disk full")))
}

func TestMessageFor(t *testing.T) {
	msg := Success.Message()

	t.Run("fits", func(t *testing.T) {
		got, c := MessageFor(int(Success), len(msg)+1)
		assert.Equal(t, Success, c)
		assert.Equal(t, msg, got)
	})
	t.Run("no room for terminator", func(t *testing.T) {
		got, c := MessageFor(int(Success), len(msg))
		assert.Equal(t, BufferTooSmall, c)
		assert.Empty(t, got)
	})
	t.Run("unknown code", func(t *testing.T) {
		_, c := MessageFor(100, 1024)
		assert.Equal(t, InvalidErrorNum, c)
	})
}

func TestRing(t *testing.T) {
	var r Ring
	assert.Equal(t, Success, r.Last())

	for i := 0; i < 3*RingSize+3; i++ {
		c := Code(i%27 + 1)
		assert.Equal(t, c, r.Record(c))
		assert.Equal(t, c, r.Last())
	}

	recent := r.Recent()
	require.Len(t, recent, RingSize)
	assert.Equal(t, r.Last(), recent[0])
}
