package normalize

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/bakkerme/feedboard/internal/core"
)

func TestLocateResolutionOrder(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
		ok      bool
	}{
		{name: "top-level array", payload: `[{"title":"a"},{"title":"b"}]`, want: 2, ok: true},
		{name: "items", payload: `{"items":[{"title":"a"}]}`, want: 1, ok: true},
		{name: "data.items", payload: `{"data":{"items":[{},{},{}]}}`, want: 3, ok: true},
		{name: "alternate key", payload: `{"events":[{}]}`, want: 1, ok: true},
		{name: "items wins over alternate", payload: `{"events":[{},{}],"items":[{}]}`, want: 1, ok: true},
		{name: "items not an array falls through", payload: `{"items":{"x":1},"data":{"items":[{}, {}]}}`, want: 2, ok: true},
		{name: "empty array", payload: `[]`, want: 0, ok: true},
		{name: "no list", payload: `{"title":"x"}`, ok: false},
		{name: "scalar", payload: `42`, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, ok := Locate(gjson.Parse(tt.payload), Strategies("events"))
			assert.Equal(t, tt.ok, ok)
			assert.Len(t, list, tt.want)
		})
	}
}

func TestRecordsErrors(t *testing.T) {
	_, err := Events([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrDecode)

	_, err = Events([]byte(`{"count":0}`))
	assert.ErrorIs(t, err, ErrNoRecordList)
	assert.False(t, errors.Is(err, ErrDecode))

	events, err := Events([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventNormalization(t *testing.T) {
	payload := `{"items":[
		{"title":"  Hauptausschuss ","date":"12.03.2024","time":{"start":"18:00","end":"20:00"},"location":"Rathaus","detail_url":"https://example.org/si0057.asp?x=1"},
		{"title":null,"date":20240312,"time":"18:00","location":["a"]},
		"not an object"
	]}`
	events, err := Events([]byte(payload))
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, core.Event{
		Title:    "Hauptausschuss",
		Date:     "12.03.2024",
		Start:    "18:00",
		End:      "20:00",
		Location: "Rathaus",
		URL:      "https://example.org/si0057.asp?x=1",
	}, events[0])

	// Defective fields coerce instead of failing; time as a string short-circuits.
	assert.Equal(t, core.Event{Date: "20240312"}, events[1])
	assert.Equal(t, core.Event{}, events[2])
}

func TestPressAndNewsNormalization(t *testing.T) {
	press, err := PressItems([]byte(`[{"title":"T","url":"https://a.example/","source":"Zeitung","date":"2024-01-02","image":"","excerpt":" kurz "}, {}]`))
	require.NoError(t, err)
	require.Len(t, press, 2)
	assert.Equal(t, "kurz", press[0].Excerpt)
	assert.Equal(t, "Zeitung", press[0].Source)
	assert.Equal(t, core.PressItem{}, press[1])

	news, err := NewsItems([]byte(`{"data":{"items":[{"title":"Update","text":"Hallo","date":"2024-05-01","image":"https://img.example/x.png"}]}}`))
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, "Hallo", news[0].Text)
	assert.Equal(t, "https://img.example/x.png", news[0].Image)
}

func TestCustomAlternates(t *testing.T) {
	press, err := PressItems([]byte(`{"articles":[{"title":"x"}]}`), "articles")
	require.NoError(t, err)
	assert.Len(t, press, 1)

	_, err = PressItems([]byte(`{"press":[{"title":"x"}]}`), "articles")
	assert.ErrorIs(t, err, ErrNoRecordList)
}

func TestField(t *testing.T) {
	rec := gjson.Parse(`{"a":" x ","n":3.5,"b":true,"o":{"k":"v"},"z":null}`)
	assert.Equal(t, "x", Field(rec, "a"))
	assert.Equal(t, "3.5", Field(rec, "n"))
	assert.Equal(t, "", Field(rec, "b"))
	assert.Equal(t, "", Field(rec, "o"))
	assert.Equal(t, "v", Field(rec, "o.k"))
	assert.Equal(t, "", Field(rec, "z"))
	assert.Equal(t, "", Field(rec, "missing.path"))
	assert.Equal(t, "", Field(gjson.Parse(`"str"`), "a"))
}
