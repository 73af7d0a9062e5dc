package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestPbParser_MarshalUnmarshal_RoundTrip(t *testing.T) {
	parser := &PbParser{}

	original := wrapperspb.String("player123")

	data, err := parser.Marshal(original)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	restored := &wrapperspb.StringValue{}
	require.NoError(t, parser.Unmarshal(data, restored))
	assert.True(t, proto.Equal(original, restored))
}

func TestPbParser_Marshal_RejectsNonProtoMessage(t *testing.T) {
	parser := &PbParser{}

	_, err := parser.Marshal("not a proto message")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeAssert)
}

func TestPbParser_Unmarshal_RejectsNonProtoMessage(t *testing.T) {
	parser := &PbParser{}

	var target string
	err := parser.Unmarshal([]byte{}, &target)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeAssert)
}
