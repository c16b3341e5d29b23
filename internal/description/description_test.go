package description

import (
	"encoding/json"
	"testing"

	"github.com/missionrelease/assetlink/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRaw(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Kind
	}{
		{"missing", "", Empty},
		{"null", "null", Empty},
		{"blank string", `"   "`, Empty},
		{"string", `"- Displays\n  - 1"`, PlainText},
		{"document", `{"type":"doc","version":1,"content":[]}`, Document},
		{"broken document", `{"type":`, Document},
		{"bare text", `- Displays`, PlainText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromRaw(json.RawMessage(tt.raw))
			assert.Equal(t, tt.want, got.Kind)
		})
	}
}

func TestFromRawBrokenDocumentParsesToNothing(t *testing.T) {
	d := FromRaw(json.RawMessage(`{"type": [1,2`))
	assert.Equal(t, Document, d.Kind)
	assert.Nil(t, d.Doc)
	assert.Empty(t, Parse(d))
}

func TestParseDispatch(t *testing.T) {
	text := "- Displays\n  - 11100411\n- PCM Devices\n  - 217646000000000"
	want := []types.Selection{
		{Category: "Displays", Name: "11100411"},
		{Category: "PCM Devices", Name: "217646000000000"},
	}

	raw, err := json.Marshal(text)
	require.NoError(t, err)
	assert.Equal(t, want, Parse(FromRaw(raw)))

	doc := NewDocument()
	doc.Content = TreeNodes("Assets", want)
	assert.Equal(t, want, Parse(FromRaw(doc.JSON())))

	assert.Empty(t, Parse(Description{}))
}
