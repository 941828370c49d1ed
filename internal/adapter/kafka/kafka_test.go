package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IsaacEarlJr/tigerRAD/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 12, 12, 9, 30, 15, 0, time.UTC)
	rec := domain.ConversionRecord{
		Input:       "data/pvol/2024/12/12/KDIX/KDIX20241212_093015_V06",
		Output:      "data/vp/2024/12/12/KDIX/KDIX20241212_093015_V06.h5",
		Station:     "KDIX",
		Outcome:     domain.OutcomeConverted,
		CompletedAt: now,
	}

	msg, err := serializeToMessage(rec)
	require.NoError(t, err)

	assert.Equal(t, []byte("KDIX20241212_093015_V06"), msg.Key)
	assert.Contains(t, string(msg.Value), `"outcome":"converted"`)
	require.Len(t, msg.Headers, 3)
	assert.Equal(t, "station", msg.Headers[0].Key)
	assert.Equal(t, []byte("KDIX"), msg.Headers[0].Value)
	assert.Equal(t, "outcome", msg.Headers[1].Key)
	assert.Equal(t, []byte("converted"), msg.Headers[1].Value)
	assert.Equal(t, "completed_at", msg.Headers[2].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[2].Value)
}

func TestSerializeToMessage_FailureCarriesError(t *testing.T) {
	rec := domain.ConversionRecord{
		Input:   "KDIX20241212_100000_V06",
		Outcome: domain.OutcomeFailed,
		Error:   "convert: no usable scans",
	}

	msg, err := serializeToMessage(rec)
	require.NoError(t, err)
	assert.Contains(t, string(msg.Value), `"error":"convert: no usable scans"`)
}
