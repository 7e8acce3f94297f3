package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/custodia-labs/ocm-extractor/internal/core/domain"
)

func TestMerge_ResolvesAllReferences(t *testing.T) {
	tables := loadTestTables(t)
	rec := decodeRecord(t, "data/DE/1/100.json", recordBerlin)

	merged, err := Merge(rec, tables)

	require.NoError(t, err)
	require.NotNil(t, merged.Operator)
	assert.Equal(t, 7, merged.Operator.ID)
	assert.Equal(t, "Acme", merged.Operator.Title)

	require.NotNil(t, merged.AddressInfo)
	require.NotNil(t, merged.AddressInfo.Country)
	assert.Equal(t, "DE", merged.AddressInfo.Country.ISOCode)

	require.Len(t, merged.Connections, 2)
	for _, c := range merged.Connections {
		require.NotNil(t, c.Type)
		assert.Equal(t, "Type 2 (Socket Only)", c.Type.Title)
	}
	assert.Equal(t, "data/DE/1/100.json", merged.Origin)
}

func TestMerge_SerialisedShape(t *testing.T) {
	tables := loadTestTables(t)
	rec := decodeRecord(t, "data/DE/1/100.json", recordBerlin)

	merged, err := Merge(rec, tables)
	require.NoError(t, err)

	data, err := json.Marshal(merged)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))

	// Untouched members survive.
	assert.Equal(t, float64(100), out["ID"])
	assert.Equal(t, float64(1), out["UsageTypeID"])

	// OperatorID carries the operator object.
	operator, ok := out["OperatorID"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Acme", operator["Title"])
	assert.Equal(t, float64(7), operator["ID"])

	// The country overlays the address; its ID does not replace the address ID.
	address := out["AddressInfo"].(map[string]any)
	assert.Equal(t, "Germany", address["Title"])
	assert.Equal(t, "DE", address["ISOCode"])
	assert.Equal(t, float64(87), address["CountryID"])
	assert.Equal(t, float64(1), address["ID"])
	assert.Equal(t, "Berlin", address["Town"])

	connection := out["Connections"].([]any)[0].(map[string]any)
	assert.Equal(t, "Type 2 (Socket Only)", connection["Title"])
	assert.Equal(t, "IEC 62196-2 Type 2", connection["FormalName"])
	assert.Equal(t, float64(25), connection["ConnectionTypeID"])
	assert.Equal(t, float64(1000), connection["ID"])
	assert.Equal(t, float64(22), connection["PowerKW"])
}

func TestMerge_NullReferencesPassThrough(t *testing.T) {
	tables := loadTestTables(t)
	rec := decodeRecord(t, "data/DE/2/200.json", recordHamburg)

	merged, err := Merge(rec, tables)

	require.NoError(t, err)
	assert.Nil(t, merged.Operator)
	assert.Nil(t, merged.OperatorID)
	require.NotNil(t, merged.AddressInfo)
	assert.Nil(t, merged.AddressInfo.Country)

	data, err := json.Marshal(merged)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Nil(t, out["OperatorID"])
	assert.Equal(t, "Hafen", out["AddressInfo"].(map[string]any)["Title"])
}

func TestMerge_AbsentMembers(t *testing.T) {
	tables := loadTestTables(t)
	rec := decodeRecord(t, "data/DE/9/9.json", `{"ID": 9}`)

	merged, err := Merge(rec, tables)

	require.NoError(t, err)
	assert.Nil(t, merged.AddressInfo)
	assert.Empty(t, merged.Connections)

	data, err := json.Marshal(merged)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ID": 9}`, string(data))
}

func TestMerge_AbsentNestedMembers(t *testing.T) {
	tables := loadTestTables(t)
	rec := decodeRecord(t, "data/DE/9/9.json",
		`{"ID": 9, "OperatorID": null, "AddressInfo": {"Town": "Kiel"}, "Connections": [{"ID": 1}]}`)

	merged, err := Merge(rec, tables)
	require.NoError(t, err)

	data, err := json.Marshal(merged)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"ID": 9,
		"OperatorID": null,
		"AddressInfo": {"Town": "Kiel"},
		"Connections": [{"ID": 1}]
	}`, string(data))
}

func TestMerge_KeepsUndeclaredReferenceMembers(t *testing.T) {
	tables, err := LoadReferenceTables(strings.NewReader(`{
		"ConnectionTypes": [{"ID": 5, "Title": "Type2", "Family": "IEC"}],
		"Countries": [{"ID": 1, "ISOCode": "DE", "Title": "Germany", "Population": 84}],
		"Operators": [{"ID": 10, "Title": "Acme", "Extra": "keep-me"}]
	}`))
	require.NoError(t, err)
	rec := decodeRecord(t, "data/DE/1/1.json",
		`{"ID": 1, "OperatorID": 10, "AddressInfo": {"CountryID": 1}, "Connections": [{"ID": 7, "ConnectionTypeID": 5}]}`)

	merged, err := Merge(rec, tables)
	require.NoError(t, err)

	data, err := json.Marshal(merged)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"ID": 1,
		"OperatorID": {"ID": 10, "Title": "Acme", "Extra": "keep-me"},
		"AddressInfo": {"CountryID": 1, "ISOCode": "DE", "Title": "Germany", "Population": 84},
		"Connections": [{"ID": 7, "ConnectionTypeID": 5, "Title": "Type2", "Family": "IEC"}]
	}`, string(data))
}

func TestMerge_UnresolvedReferences(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
		wantID  int
	}{
		{
			name:    "country",
			doc:     `{"ID": 1, "AddressInfo": {"CountryID": 999}}`,
			wantErr: domain.ErrUnresolvedCountry,
			wantID:  999,
		},
		{
			name:    "operator",
			doc:     `{"ID": 1, "OperatorID": 12345}`,
			wantErr: domain.ErrUnresolvedOperator,
			wantID:  12345,
		},
		{
			name:    "connection type",
			doc:     `{"ID": 1, "Connections": [{"ConnectionTypeID": 25}, {"ConnectionTypeID": 4}]}`,
			wantErr: domain.ErrUnresolvedConnectionType,
			wantID:  4,
		},
		{
			name:    "connection types before country",
			doc:     `{"ID": 1, "AddressInfo": {"CountryID": 999}, "Connections": [{"ConnectionTypeID": 4}]}`,
			wantErr: domain.ErrUnresolvedConnectionType,
			wantID:  4,
		},
		{
			name:    "country before operator",
			doc:     `{"ID": 1, "OperatorID": 12345, "AddressInfo": {"CountryID": 999}}`,
			wantErr: domain.ErrUnresolvedCountry,
			wantID:  999,
		},
	}

	tables := loadTestTables(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := decodeRecord(t, "data/DE/5/5.json", tt.doc)

			_, err := Merge(rec, tables)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			var unresolved *domain.UnresolvedReferenceError
			require.ErrorAs(t, err, &unresolved)
			assert.Equal(t, tt.wantID, unresolved.ID)
			assert.Equal(t, "data/DE/5/5.json", unresolved.Origin)
		})
	}
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	tables := loadTestTables(t)
	rec := decodeRecord(t, "data/DE/1/100.json", recordBerlin)
	before, err := json.Marshal(rec)
	require.NoError(t, err)

	merged, err := Merge(rec, tables)
	require.NoError(t, err)
	merged.Fields["ID"] = json.RawMessage(`-1`)

	after, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func manyRecords(t *testing.T, n int) []domain.RawRecord {
	t.Helper()
	records := make([]domain.RawRecord, n)
	for i := range n {
		doc := fmt.Sprintf(`{"ID": %d, "OperatorID": 7, "AddressInfo": {"CountryID": 87},
			"Connections": [{"ConnectionTypeID": %d}]}`, i, []int{25, 33}[i%2])
		records[i] = decodeRecord(t, fmt.Sprintf("data/DE/%d/%d.json", i/10, i), doc)
	}
	return records
}

func TestMergeEngine_PreservesOrder(t *testing.T) {
	tables := loadTestTables(t)
	records := manyRecords(t, 25)

	dataset, err := NewMergeEngine(1).MergeAll(context.Background(), records, tables)

	require.NoError(t, err)
	require.Len(t, dataset, 25)
	for i, rec := range dataset {
		assert.Equal(t, records[i].Origin, rec.Origin)
	}
}

func TestMergeEngine_ParallelMatchesSequential(t *testing.T) {
	defer goleak.VerifyNone(t)

	tables := loadTestTables(t)
	records := manyRecords(t, 200)
	ctx := context.Background()

	sequential, err := NewMergeEngine(1).MergeAll(ctx, records, tables)
	require.NoError(t, err)
	parallel, err := NewMergeEngine(8).MergeAll(ctx, records, tables)
	require.NoError(t, err)

	seqJSON, err := json.Marshal(sequential)
	require.NoError(t, err)
	parJSON, err := json.Marshal(parallel)
	require.NoError(t, err)

	var seq, par []any
	require.NoError(t, json.Unmarshal(seqJSON, &seq))
	require.NoError(t, json.Unmarshal(parJSON, &par))
	if diff := cmp.Diff(seq, par); diff != "" {
		t.Errorf("parallel merge differs (-sequential +parallel):\n%s", diff)
	}
}

func TestMergeEngine_FirstFailureByIndex(t *testing.T) {
	defer goleak.VerifyNone(t)

	tables := loadTestTables(t)
	records := manyRecords(t, 50)
	records[31] = decodeRecord(t, "data/DE/x/31.json", `{"OperatorID": 404}`)
	records[12] = decodeRecord(t, "data/DE/x/12.json", `{"AddressInfo": {"CountryID": 999}}`)

	for _, workers := range []int{1, 4, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			dataset, err := NewMergeEngine(workers).MergeAll(context.Background(), records, tables)

			assert.Nil(t, dataset)
			assert.ErrorIs(t, err, domain.ErrUnresolvedCountry)
			assert.Contains(t, err.Error(), "data/DE/x/12.json")
		})
	}
}

func TestMergeEngine_Empty(t *testing.T) {
	dataset, err := NewMergeEngine(4).MergeAll(context.Background(), nil, loadTestTables(t))

	require.NoError(t, err)
	assert.Empty(t, dataset)
}

func TestMergeEngine_Cancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		_, err := NewMergeEngine(workers).MergeAll(ctx, manyRecords(t, 10), loadTestTables(t))
		assert.ErrorIs(t, err, context.Canceled)
	}
}
