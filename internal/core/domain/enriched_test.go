package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrichedRecord_MarshalJSON(t *testing.T) {
	formal := "IEC 62196-2 Type 2"
	rec := EnrichedRecord{
		OperatorID: intPtr(10),
		Operator:   &Operator{ID: 10, Title: "Acme"},
		AddressInfo: &EnrichedAddress{
			AddressInfo: AddressInfo{
				CountryID: intPtr(1),
				Fields:    Object{"Title": json.RawMessage(`"Depot"`), "Town": json.RawMessage(`"Berlin"`)},
			},
			Country: &Country{ID: 1, ISOCode: "DE", Title: "Germany"},
		},
		Connections: []EnrichedConnection{{
			Connection: Connection{
				ConnectionTypeID: intPtr(5),
				Fields:           Object{"ID": json.RawMessage(`100`), "Title": json.RawMessage(`"old"`)},
			},
			Type: &ConnectionType{ID: 5, Title: "Type2", FormalName: &formal},
		}},
		Fields: Object{"ID": json.RawMessage(`42`)},
	}

	out, err := json.Marshal(rec)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))

	assert.Equal(t, float64(42), got["ID"])

	operator := got["OperatorID"].(map[string]any)
	assert.Equal(t, "Acme", operator["Title"])
	assert.Equal(t, float64(10), operator["ID"])

	address := got["AddressInfo"].(map[string]any)
	assert.Equal(t, "Germany", address["Title"], "country members override address members")
	assert.Equal(t, "DE", address["ISOCode"])
	assert.Equal(t, "Berlin", address["Town"])
	assert.Equal(t, float64(1), address["CountryID"])

	conns := got["Connections"].([]any)
	require.Len(t, conns, 1)
	conn := conns[0].(map[string]any)
	assert.Equal(t, float64(100), conn["ID"], "type ID must not replace the connection ID")
	assert.Equal(t, "Type2", conn["Title"])
	assert.Equal(t, formal, conn["FormalName"])
	assert.Equal(t, float64(5), conn["ConnectionTypeID"])
}

func TestEnrichedRecord_MarshalJSON_Unresolved(t *testing.T) {
	rec := EnrichedRecord{
		AddressInfo: &EnrichedAddress{AddressInfo: AddressInfo{Fields: Object{"Town": json.RawMessage(`"Paris"`)}}},
		Connections: []EnrichedConnection{{Connection: Connection{Fields: Object{"ID": json.RawMessage(`1`)}}}},
	}

	out, err := json.Marshal(rec)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"OperatorID": null,
		"AddressInfo": {"Town": "Paris", "CountryID": null},
		"Connections": [{"ID": 1, "ConnectionTypeID": null}]
	}`, string(out))
}

func TestEnrichedRecord_MarshalJSON_NoConnections(t *testing.T) {
	out, err := json.Marshal(EnrichedRecord{})
	require.NoError(t, err)

	assert.JSONEq(t, `{"OperatorID": null, "AddressInfo": null, "Connections": []}`, string(out))
}
