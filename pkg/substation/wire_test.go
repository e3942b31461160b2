package substation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequestLayout(t *testing.T) {
	data, err := NewUpdateRequest(42).MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, RequestSize)
	require.Equal(t, uint32(MsgUpdate), ByteOrder.Uint32(data[0:]))
	require.Equal(t, uint32(42), ByteOrder.Uint32(data[4:]))
	require.Equal(t, uint32(0), ByteOrder.Uint32(data[8:]))

	var req UpdateRequest
	require.NoError(t, req.UnmarshalBinary(data))
	require.Equal(t, UpdateRequest{Type: MsgUpdate, ID: 42}, req)
}

func TestResponseRoundTrip(t *testing.T) {
	resp := &UpdateResponse{Type: MsgUpdate, ID: 7, Average: -3}
	for n := range resp.Values {
		resp.Values[n] = int32(n*n - 100)
	}
	data, err := resp.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, ResponseSize)
	require.Equal(t, uint32(resp.Values[DirectiveIndex]), ByteOrder.Uint32(data[12+DirectiveIndex*4:]))

	var decoded UpdateResponse
	require.NoError(t, decoded.UnmarshalBinary(data))
	require.Equal(t, *resp, decoded)
}

func TestRecordSizeErrors(t *testing.T) {
	var req UpdateRequest
	require.EqualError(t, req.UnmarshalBinary(make([]byte, 11)), "request size 11, expect 12")
	var resp UpdateResponse
	require.EqualError(t, resp.UnmarshalBinary(make([]byte, 128)), "response size 128, expect 132")
	require.EqualError(t, resp.UnmarshalBinary(nil), "response size 0, expect 132")
}

func TestRecordSizes(t *testing.T) {
	require.Equal(t, 12, RequestSize)
	require.Equal(t, 4*(3+ValueCount), ResponseSize)

	resp := &UpdateResponse{Type: MsgUpdate}
	resp.Values[ValueCount-1] = -7
	data, err := resp.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, 4*(3+ValueCount))
	require.Equal(t, uint32(0xfffffff9), ByteOrder.Uint32(data[len(data)-4:]))

	var decoded UpdateResponse
	require.NoError(t, decoded.UnmarshalBinary(data))
	require.Equal(t, int32(-7), decoded.Values[ValueCount-1])
}

func TestDirectiveMapping(t *testing.T) {
	testCases := []struct {
		value     int32
		directive Directive
	}{
		{1, EnterMaintenance},
		{-1, LeaveMaintenance},
		{0, NoDirective},
		{2, NoDirective},
		{-2, NoDirective},
		{1 << 30, NoDirective},
	}
	for _, tc := range testCases {
		t.Run(tc.directive.String(), func(t *testing.T) {
			var resp UpdateResponse
			resp.Values[DirectiveIndex] = tc.value
			require.Equal(t, tc.directive, resp.Directive())
		})
	}

	// neighbouring values are not directives
	var resp UpdateResponse
	resp.Values[DirectiveIndex-1], resp.Values[DirectiveIndex+1] = 1, -1
	require.Equal(t, NoDirective, resp.Directive())
}

func TestMsgTypeNames(t *testing.T) {
	require.Equal(t, "UPDATE", MsgUpdate.String())
	require.Equal(t, "PING", MsgPing.String())
	require.Equal(t, "MSG(9)", MsgType(9).String())
}
