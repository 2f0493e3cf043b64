package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePhotoSetArray(t *testing.T) {
	raw := []byte(`[{"angle":"front","url":"https://cdn/a.jpg"},{"angle":"interior","url":"https://cdn/b.jpg"}]`)

	refs, err := ParsePhotoSet(raw)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, AngleFront, refs[0].Angle)
	assert.Equal(t, AngleInterior, refs[1].Angle)
}

func TestParsePhotoSetObjectKeyedByAngle(t *testing.T) {
	raw := []byte(`{"back":"https://cdn/back.jpg","front":"https://cdn/front.jpg"}`)

	refs, err := ParsePhotoSet(raw)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	// Канонический порядок, а не порядок ключей
	assert.Equal(t, AngleFront, refs[0].Angle)
	assert.Equal(t, AngleBack, refs[1].Angle)
}

func TestParsePhotoSetDoubleEncodedString(t *testing.T) {
	raw := []byte(`"[{\"angle\":\"front\",\"url\":\"https://cdn/a.jpg\"}]"`)

	refs, err := ParsePhotoSet(raw)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "https://cdn/a.jpg", refs[0].URL)
}

func TestParsePhotoSetEmpty(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte(`""`), []byte(`[]`), []byte(`{}`)} {
		refs, err := ParsePhotoSet(raw)
		require.NoError(t, err)
		assert.Empty(t, refs)
	}
}

func TestParsePhotoSetMalformed(t *testing.T) {
	cases := [][]byte{
		[]byte(`42`),
		[]byte(`[{"angle":"roof","url":"https://cdn/a.jpg"}]`),
		[]byte(`[{"angle":"front","url":""}]`),
		[]byte(`"not json at all"`),
	}
	for _, raw := range cases {
		_, err := ParsePhotoSet(raw)
		assert.ErrorIs(t, err, ErrMalformedPhotoSet, "raw=%s", raw)
	}
}

func TestParsePhotoSetDuplicateAngleLastWins(t *testing.T) {
	raw := []byte(`[{"angle":"front","url":"https://cdn/old.jpg"},{"angle":"front","url":"https://cdn/new.jpg"}]`)

	refs, err := ParsePhotoSet(raw)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "https://cdn/new.jpg", refs[0].URL)
}

func TestParsePhotoSetDamageKept(t *testing.T) {
	raw := []byte(`[{"angle":"damage","url":"https://cdn/d1.jpg"},{"angle":"damage","url":"https://cdn/d2.jpg"},{"angle":"front","url":"https://cdn/f.jpg"}]`)

	refs, err := ParsePhotoSet(raw)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, AngleFront, refs[0].Angle)
	assert.Equal(t, "https://cdn/d1.jpg", refs[1].URL)
	assert.Equal(t, "https://cdn/d2.jpg", refs[2].URL)
}

func TestReferenceFor(t *testing.T) {
	refs := []PhotoRef{{Angle: AngleFront, URL: "https://cdn/f.jpg"}}

	ref, ok := ReferenceFor(refs, AngleFront)
	require.True(t, ok)
	assert.Equal(t, "https://cdn/f.jpg", ref.URL)

	// Отсутствие референса — не ошибка
	_, ok = ReferenceFor(refs, AngleBack)
	assert.False(t, ok)
}
