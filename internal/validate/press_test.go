package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validEntry = `{"title":"Kita-Gebühren","url":"https://example.org/a","source":"MAZ","date":"2026-03-01","image":"","excerpt":"Kurz"}`

func TestPress(t *testing.T) {
	n, err := Press([]byte(`[` + validEntry + `,` + validEntry + `]`))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = Press([]byte(`[]`))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPressTrimsFields(t *testing.T) {
	n, err := Press([]byte(`[{"title":" t ","url":" https://e.org/a ","source":"s","date":" 2025-10-14 ","image":"  ","excerpt":""}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = Press([]byte(`[{"title":"t","url":"https://e.org","source":"s","date":"2025-10-14","image":" ftp://e.org/x.jpg ","excerpt":""}]`))
	var entryErr *EntryError
	require.ErrorAs(t, err, &entryErr)
	assert.Equal(t, "image muss leer sein oder mit http:// oder https:// beginnen", entryErr.Reason)
}

func TestPressViolations(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		index   int
		reason  string
	}{
		{
			name:    "missing key",
			payload: `[` + validEntry + `,{"title":"x","url":"https://e.org","source":"s","date":"2026-01-01","image":""}]`,
			index:   2,
			reason:  `Feld "excerpt" fehlt`,
		},
		{
			name:    "empty title",
			payload: `[{"title":" ","url":"https://e.org","source":"s","date":"2026-01-01","image":"","excerpt":""}]`,
			index:   1,
			reason:  "title ist leer",
		},
		{
			name:    "empty source",
			payload: `[{"title":"t","url":"https://e.org","source":"","date":"2026-01-01","image":"","excerpt":""}]`,
			index:   1,
			reason:  "source ist leer",
		},
		{
			name:    "url scheme",
			payload: `[{"title":"t","url":"javascript:alert(1)","source":"s","date":"2026-01-01","image":"","excerpt":""}]`,
			index:   1,
			reason:  "url muss mit http:// oder https:// beginnen",
		},
		{
			name:    "date format",
			payload: `[{"title":"t","url":"https://e.org","source":"s","date":"01.01.2026","image":"","excerpt":""}]`,
			index:   1,
			reason:  "date muss das Format YYYY-MM-DD haben",
		},
		{
			name:    "image scheme",
			payload: `[{"title":"t","url":"https://e.org","source":"s","date":"2026-01-01","image":"ftp://e.org/x.jpg","excerpt":""}]`,
			index:   1,
			reason:  "image muss leer sein oder mit http:// oder https:// beginnen",
		},
		{
			name:    "not an object",
			payload: `[` + validEntry + `,` + validEntry + `,"x"]`,
			index:   3,
			reason:  "kein Objekt",
		},
		{
			name:    "non string field",
			payload: `[{"title":"t","url":"https://e.org","source":"s","date":"2026-01-01","image":null,"excerpt":""}]`,
			index:   1,
			reason:  `Feld "image" ist kein Text`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Press([]byte(tt.payload))
			require.ErrorIs(t, err, ErrInvalid)

			var entryErr *EntryError
			require.ErrorAs(t, err, &entryErr)
			assert.Equal(t, tt.index, entryErr.Index)
			assert.Equal(t, tt.reason, entryErr.Reason)
		})
	}
}

func TestPressRejectsShape(t *testing.T) {
	_, err := Press([]byte(`{"items":[]}`))
	require.ErrorIs(t, err, ErrInvalid)

	_, err = Press([]byte(`[`))
	require.ErrorIs(t, err, ErrInvalid)
}
