package firehose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConcatenated_PaddedSegments(t *testing.T) {
	s := EncodeData([]byte("Hello World")) + EncodeData([]byte(Newline))
	assert.Equal(t, "SGVsbG8gV29ybGQ=Cg==", s)

	got, err := DecodeConcatenated(s)
	require.NoError(t, err)
	assert.Equal(t, "Hello World\n", string(got))
}

func TestDecodeConcatenated_UnpaddedFirstSegment(t *testing.T) {
	s := EncodeData([]byte("abc")) + EncodeData([]byte(Newline))
	got, err := DecodeConcatenated(s)
	require.NoError(t, err)
	assert.Equal(t, "abc\n", string(got))

	// without inner padding the whole text is one valid encoding
	single, err := DecodeData(s)
	require.NoError(t, err)
	assert.Equal(t, got, single)
}

func TestDecodeConcatenated_Empty(t *testing.T) {
	got, err := DecodeConcatenated("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeConcatenated_Malformed(t *testing.T) {
	_, err := DecodeConcatenated("!!!not-base64!!!")
	assert.Error(t, err)
}

func TestResultValid(t *testing.T) {
	assert.True(t, ResultOk.Valid())
	assert.True(t, ResultDropped.Valid())
	assert.True(t, ResultProcessingFailed.Valid())
	assert.False(t, Result("Failed").Valid())
	assert.Equal(t, "ProcessingFailed", string(ResultProcessingFailed))
}
