package strlist_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rpggio/crmdesk/internal/domain/strlist"
	"github.com/rpggio/crmdesk/internal/repository"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cases := [][]string{
		nil,
		{},
		{"single"},
		{"b", "a", "b"},
		{`quote "inside"`, `back\slash`, "comma, separated", "[brackets]"},
		{"unicode ✈ 日本", "tab\tnewline\n", "", "   "},
		{"<script>&amp;</script>"},
	}
	for _, in := range cases {
		text, err := strlist.Encode(in)
		require.NoError(t, err)
		require.True(t, json.Valid([]byte(text)), text)
		require.Equal(t, byte('['), text[0])

		out, err := strlist.Decode(text)
		require.NoError(t, err)
		if diff := cmp.Diff(in, out, cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestEncodeInvalidUTF8(t *testing.T) {
	_, err := strlist.Encode([]string{"ok", "caf\xe9"})
	require.ErrorIs(t, err, repository.ErrInvalidInput)

	_, err = strlist.List{"\xff"}.Value()
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestDecodeEmpty(t *testing.T) {
	for _, text := range []string{"", "  ", "null", "[]"} {
		out, err := strlist.Decode(text)
		require.NoError(t, err)
		require.NotNil(t, out)
		require.Empty(t, out)
	}
}

func TestDecodeInvalid(t *testing.T) {
	for _, text := range []string{"a,b", "{}", `["a", 1]`, "[", `"a"`} {
		_, err := strlist.Decode(text)
		require.Error(t, err, text)
	}
}

func TestListScanValue(t *testing.T) {
	in := strlist.List{"seo", "ads"}
	v, err := in.Value()
	require.NoError(t, err)
	require.Equal(t, `["seo","ads"]`, v)

	var out strlist.List
	require.NoError(t, out.Scan([]byte(`["seo","ads"]`)))
	require.Equal(t, in, out)

	require.NoError(t, out.Scan(nil))
	require.Empty(t, out)

	require.Error(t, out.Scan(42))
}

func TestListMarshalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Tags strlist.List `json:"tags"`
	}{})
	require.NoError(t, err)
	require.JSONEq(t, `{"tags":[]}`, string(data))

	var decoded struct {
		Tags strlist.List `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"tags":["x","y"]}`), &decoded))
	require.Equal(t, strlist.List{"x", "y"}, decoded.Tags)
}

func TestClean(t *testing.T) {
	got := strlist.Clean([]string{" a ", "", "b", "a", "  "})
	require.Equal(t, strlist.List{"a", "b"}, got)
	require.NotNil(t, strlist.Clean(nil))
}
