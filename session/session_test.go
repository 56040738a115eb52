package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.pilab.hu/clinic/domain"
)

func TestDecode_KeepsUnknownFields(t *testing.T) {
	in := `{"id":"u-1","fullName":"Pat","role":"PATIENT","email":"p@x.com","phoneNumber":null,"tags":[1,2]}`
	s, err := Decode([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, domain.ID("u-1"), s.ID)
	assert.Equal(t, "p@x.com", s.Attribute("email"))
	assert.Equal(t, "", s.Attribute("phoneNumber"))
	assert.Equal(t, "", s.Attribute("missing"))

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestDecode_Rejects(t *testing.T) {
	for _, in := range []string{
		``,
		`"str"`,
		`{"id":1,"role":"doctor"}`,
		`{"id":null,"role":"ADMIN"}`,
		`{"id":{},"role":"ADMIN"}`,
		`{"id":1,"role":7}`,
	} {
		_, err := Decode([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestSession_UnmarshalJSON(t *testing.T) {
	var s Session
	require.NoError(t, json.Unmarshal([]byte(`{"id":9,"fullName":"Root","role":"ADMIN"}`), &s))
	assert.Equal(t, domain.RoleAdmin, s.Role)
	assert.Nil(t, s.Profile)
	assert.Error(t, json.Unmarshal([]byte(`{"fullName":"Root"}`), &s))
}

func TestSession_KeepsIDEncoding(t *testing.T) {
	for _, in := range []string{
		`{"id":"007","fullName":"Bond","role":"PATIENT"}`,
		`{"id":"42","fullName":"Pat","role":"PATIENT"}`,
		`{"id":42,"fullName":"Pat","role":"PATIENT"}`,
		`{"id":"+5","fullName":"Pat","role":"PATIENT"}`,
	} {
		s, err := Decode([]byte(in))
		require.NoError(t, err, in)

		out, err := json.Marshal(s)
		require.NoError(t, err, in)
		assert.JSONEq(t, in, string(out))

		out, err = json.Marshal(s.Clone())
		require.NoError(t, err, in)
		assert.JSONEq(t, in, string(out))
	}
}

func TestSession_ChangedIDIsReencoded(t *testing.T) {
	s, err := Decode([]byte(`{"id":"42","fullName":"Pat","role":"PATIENT"}`))
	require.NoError(t, err)
	s.ID = "43"

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":43,"fullName":"Pat","role":"PATIENT"}`, string(out))
}
