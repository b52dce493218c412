package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/samplekeeper/internal/client/models"
)

func TestDefault_TableShape(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"requesters", "requests", "metadata", "shipments", "tissues", "dna-aliquots"},
		reg.Kinds())

	d, err := reg.Get("dna-aliquots")
	require.NoError(t, err)
	assert.Equal(t, "DNA Aliquots", d.Title)
	assert.Equal(t, "/dna-aliquots/", d.CollectionPath())
	assert.Equal(t, "/dna-aliquots/12/", d.ItemPath("12"))

	meta, err := reg.Get("metadata")
	require.NoError(t, err)
	lat, ok := meta.Field("decimal_latitude")
	require.True(t, ok)
	assert.Equal(t, Number, lat.Type)
	assert.Equal(t, "0.00000001", lat.Step)

	tissues, err := reg.Get("tissues")
	require.NoError(t, err)
	keys := make([]string, 0, len(tissues.Fields))
	for _, f := range tissues.Fields {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"request", "shipment", "metadata", "tissue_barcode", "is_in_jacq", "tissue_sample_storage_location"}, keys)
}

func TestDefault_SelectReferencesResolve(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	for _, d := range reg.Descriptors() {
		for _, f := range d.Fields {
			if f.Type == Select {
				assert.True(t, reg.Has(f.Options), "%s.%s -> %s", d.Kind, f.Key, f.Options)
			}
		}
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)
	_, err = reg.Get("plasmids")
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "empty table",
			yaml: `entities: []`,
		},
		{
			name: "dangling select",
			yaml: `
entities:
  - kind: tissues
    title: Tissues
    endpoint: /tissues/
    display: "{{.id}}"
    secondary: "{{.id}}"
    fields:
      - {key: request, label: Request, type: select, options: requests}
`,
		},
		{
			name: "unknown field type",
			yaml: `
entities:
  - kind: a
    title: A
    endpoint: /a/
    display: "{{.id}}"
    secondary: "{{.id}}"
    fields:
      - {key: x, label: X, type: colour}
`,
		},
		{
			name: "options on text field",
			yaml: `
entities:
  - kind: a
    title: A
    endpoint: /a/
    display: "{{.id}}"
    secondary: "{{.id}}"
    fields:
      - {key: x, label: X, type: text, options: a}
`,
		},
		{
			name: "step on date field",
			yaml: `
entities:
  - kind: a
    title: A
    endpoint: /a/
    display: "{{.id}}"
    secondary: "{{.id}}"
    fields:
      - {key: x, label: X, type: date, step: "1"}
`,
		},
		{
			name: "bad endpoint",
			yaml: `
entities:
  - kind: a
    title: A
    endpoint: a
    display: "{{.id}}"
    secondary: "{{.id}}"
    fields:
      - {key: x, label: X, type: text}
`,
		},
		{
			name: "duplicate kind",
			yaml: `
entities:
  - {kind: a, title: A, endpoint: /a/, display: "x", secondary: "y", fields: [{key: x, label: X, type: text}]}
  - {kind: a, title: B, endpoint: /b/, display: "x", secondary: "y", fields: [{key: x, label: X, type: text}]}
`,
		},
		{
			name: "duplicate field key",
			yaml: `
entities:
  - {kind: a, title: A, endpoint: /a/, display: "x", secondary: "y", fields: [{key: x, label: X, type: text}, {key: x, label: Y, type: date}]}
`,
		},
		{
			name: "broken template",
			yaml: `
entities:
  - {kind: a, title: A, endpoint: /a/, display: "{{.x", secondary: "y", fields: [{key: x, label: X, type: text}]}
`,
		},
		{
			name: "unknown attribute",
			yaml: `
entities:
  - {kind: a, title: A, endpoint: /a/, display: "x", secondary: "y", colour: red, fields: [{key: x, label: X, type: text}]}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yaml))
			require.ErrorIs(t, err, ErrInvalidDescriptors)
		})
	}
}

func TestLabels(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	requesters, _ := reg.Get("requesters")
	label, err := requesters.DisplayLabel(models.Record{"id": 1, "first_name": "Ada", "last_name": "Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", label)

	requests, _ := reg.Get("requests")
	label, err = requests.DisplayLabel(models.Record{"id": "17"})
	require.NoError(t, err)
	assert.Equal(t, "Request #17", label)

	shipments, _ := reg.Get("shipments")
	label, err = shipments.SecondaryLabel(models.Record{"id": 3})
	require.NoError(t, err)
	assert.Equal(t, "No tracking", label)

	label, err = shipments.SecondaryLabel(models.Record{"id": 3, "tracking_number": nil})
	require.NoError(t, err)
	assert.Equal(t, "No tracking", label)

	label, err = shipments.SecondaryLabel(models.Record{"id": 3, "tracking_number": "1Z999"})
	require.NoError(t, err)
	assert.Equal(t, "1Z999", label)

	_, err = shipments.DisplayLabel(nil)
	require.ErrorIs(t, err, ErrNilRecord)
}

func TestLabels_UndeclaredKeyFails(t *testing.T) {
	reg, err := Load([]byte(`
entities:
  - {kind: a, title: A, endpoint: /a/, display: "{{.nickname}}", secondary: "{{.x}}", fields: [{key: x, label: X, type: text}]}
`))
	require.NoError(t, err)
	d, _ := reg.Get("a")

	_, err = d.DisplayLabel(models.Record{"id": 1, "x": "y"})
	require.Error(t, err)

	label, err := d.DisplayLabel(models.Record{"id": 1, "nickname": "nick"})
	require.NoError(t, err)
	assert.Equal(t, "nick", label)
}

func TestField_Default(t *testing.T) {
	assert.Equal(t, false, Field{Type: Checkbox}.Default())
	assert.Equal(t, "", Field{Type: Number}.Default())
}
