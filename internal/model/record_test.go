package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestRecordWithKeepsOriginal(t *testing.T) {
	t.Parallel()

	r := NewRecord(Field{Key: "name", Value: "El Dorado"})
	r2 := r.With("stack_size", 8).With("name", "The Doctor")

	require.Equal(t, "El Dorado", r.String("name"))
	require.Equal(t, []string{"name"}, r.Keys())

	require.Equal(t, "The Doctor", r2.String("name"))
	require.Equal(t, []string{"name", "stack_size"}, r2.Keys())
	n, ok := r2.Int("stack_size")
	require.True(t, ok)
	require.Equal(t, 8, n)
}

func TestRecordStrings(t *testing.T) {
	t.Parallel()

	r := NewRecord(
		Field{Key: "one", Value: "a"},
		Field{Key: "many", Value: []string{"a", "b"}},
		Field{Key: "empty", Value: ""},
		Field{Key: "none", Value: nil},
	)
	require.Equal(t, []string{"a"}, r.Strings("one"))
	require.Equal(t, []string{"a", "b"}, r.Strings("many"))
	require.Nil(t, r.Strings("empty"))
	require.Nil(t, r.Strings("none"))
	require.Nil(t, r.Strings("missing"))
}

func TestRecordJSONKeepsFieldOrder(t *testing.T) {
	t.Parallel()

	r := NewRecord(
		Field{Key: "zeta", Value: "<b>"},
		Field{Key: "alpha", Value: 3},
		Field{Key: "mods", Value: []string{"+(10-20) to Strength"}},
		Field{Key: "gone", Value: nil},
	)

	b, err := r.MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `{"zeta":"<b>","alpha":3,"mods":["+(10-20) to Strength"],"gone":null}`, string(b))

	var back Record
	require.NoError(t, json.Unmarshal(b, &back))
	if diff := cmp.Diff(r, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordUnmarshalRejectsUnsupported(t *testing.T) {
	t.Parallel()

	var r Record
	require.Error(t, json.Unmarshal([]byte(`{"x":1.5}`), &r))
	require.Error(t, json.Unmarshal([]byte(`{"x":true}`), &r))
	require.Error(t, json.Unmarshal([]byte(`{"x":[1]}`), &r))
	require.Error(t, json.Unmarshal([]byte(`["x"]`), &r))
}

func TestMerge(t *testing.T) {
	t.Parallel()

	table := RecordSet{
		NewRecord(Field{Key: "name", Value: "A"}, Field{Key: "stack_size", Value: 1}),
		NewRecord(Field{Key: "name", Value: "B"}, Field{Key: "stack_size", Value: 2}),
	}
	drops := RecordSet{
		NewRecord(Field{Key: "name", Value: "B"}, Field{Key: "drop_areas", Value: []string{"Dunes Map"}}, Field{Key: "stack_size", Value: 99}),
		NewRecord(Field{Key: "name", Value: "C"}, Field{Key: "drop_areas", Value: nil}),
		NewRecord(Field{Key: "other", Value: "x"}),
	}

	got := Merge("name", table, drops)
	want := RecordSet{
		NewRecord(Field{Key: "name", Value: "A"}, Field{Key: "stack_size", Value: 1}),
		NewRecord(Field{Key: "name", Value: "B"}, Field{Key: "stack_size", Value: 2}, Field{Key: "drop_areas", Value: []string{"Dunes Map"}}),
		NewRecord(Field{Key: "name", Value: "C"}, Field{Key: "drop_areas", Value: nil}),
		NewRecord(Field{Key: "other", Value: "x"}),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeFillsNilFields(t *testing.T) {
	t.Parallel()

	got := Merge("name",
		RecordSet{NewRecord(Field{Key: "name", Value: "A"}, Field{Key: "drop_text", Value: []string(nil)})},
		RecordSet{NewRecord(Field{Key: "name", Value: "A"}, Field{Key: "drop_text", Value: []string{"Zana"}})},
	)
	require.Len(t, got, 1)
	require.Equal(t, []string{"Zana"}, got[0].Strings("drop_text"))
}

func TestConcatKeepsDuplicates(t *testing.T) {
	t.Parallel()

	a := RecordSet{NewRecord(Field{Key: "name", Value: "A"})}
	got := Concat(a, a)
	require.Len(t, got, 2)
}
