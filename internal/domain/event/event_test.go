package event

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsEmptyEventType(t *testing.T) {
	_, err := New("", "contract", uuid.New(), nil)
	assert.ErrorIs(t, err, ErrMissingEventType)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	contractID := uuid.New()
	ev, err := NewContractCreated(contractID, ContractPayload{
		ID:          contractID.String(),
		CompanyName: "acme",
		Service:     "hosting",
		Status:      "active",
	})
	require.NoError(t, err)

	data, err := Marshal(ev)
	require.NoError(t, err)

	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, TypeContractCreated, got.EventType)
	assert.Equal(t, "contract", got.AggregateType)
	assert.Equal(t, contractID, got.AggregateID)
	assert.WithinDuration(t, ev.OccurredAt, got.OccurredAt, 0)

	var payload ContractPayload
	require.NoError(t, json.Unmarshal(got.Payload, &payload))
	assert.Equal(t, "acme", payload.CompanyName)
}

func TestEnvelopeNeverCarriesDispatchID(t *testing.T) {
	ev, err := NewContractUpdated(uuid.New(), ContractPayload{CompanyName: "acme"})
	require.NoError(t, err)
	ev.ID = uuid.New()

	data, err := Marshal(ev)
	require.NoError(t, err)
	assert.NotContains(t, string(data), ev.ID.String())

	// The dispatch id is reassigned from the record, never deserialized.
	got, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, got.ID)
}

func TestUnmarshalRejectsBadEnvelopes(t *testing.T) {
	_, err := Unmarshal([]byte("not json"))
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`{"aggregateType":"contract"}`))
	assert.ErrorIs(t, err, ErrMissingEventType)
}

func TestContractConstructorsSetTypes(t *testing.T) {
	contractID := uuid.New()

	created, err := NewContractCreated(contractID, ContractPayload{})
	require.NoError(t, err)
	updated, err := NewContractUpdated(contractID, ContractPayload{})
	require.NoError(t, err)
	deleted, err := NewContractDeleted(contractID)
	require.NoError(t, err)

	assert.Equal(t, TypeContractCreated, created.EventType)
	assert.Equal(t, TypeContractUpdated, updated.EventType)
	assert.Equal(t, TypeContractDeleted, deleted.EventType)
	for _, ev := range []Event{created, updated, deleted} {
		assert.Equal(t, "contract", ev.AggregateType)
		assert.Equal(t, contractID, ev.AggregateID)
		assert.False(t, ev.OccurredAt.IsZero())
	}
	assert.ElementsMatch(t, Types(), []string{created.EventType, updated.EventType, deleted.EventType})
}
