package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	OrderID int64  `json:"order_id"`
	Total   string `json:"total"`
}

func TestUnwrapPayload(t *testing.T) {
	raw := json.RawMessage(MustMarshal(sample{OrderID: 7, Total: "20.00"}))

	got, err := UnwrapPayload[sample](raw)
	require.NoError(t, err)
	assert.Equal(t, sample{OrderID: 7, Total: "20.00"}, got)

	_, err = UnwrapPayload[sample](json.RawMessage(`{"order_id":"x"}`))
	assert.ErrorContains(t, err, "decode payload")
}

func TestMustMarshalPanicsOnUnsupported(t *testing.T) {
	assert.Panics(t, func() { MustMarshal(make(chan int)) })
}
