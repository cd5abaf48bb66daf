package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapitalizeKeys_TopLevelOnly(t *testing.T) {
	raw := []byte(`{"email":"a@b.c","password":"x","address":{"line1":"12 Rue Cler","city":"Paris"}}`)

	out, err := capitalizeKeys(raw)
	require.NoError(t, err)

	var obj map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &obj))

	assert.Contains(t, obj, "Email")
	assert.Contains(t, obj, "Password")
	assert.Contains(t, obj, "Address")
	assert.NotContains(t, obj, "email")

	// nested keys are not transformed
	var nested map[string]string
	require.NoError(t, json.Unmarshal(obj["Address"], &nested))
	assert.Contains(t, nested, "line1")
	assert.Contains(t, nested, "city")
	assert.NotContains(t, nested, "Line1")
}

func TestCapitalizeKeys_AlreadyCapitalized(t *testing.T) {
	out, err := capitalizeKeys([]byte(`{"Email":"a@b.c"}`))
	require.NoError(t, err)

	var obj map[string]string
	require.NoError(t, json.Unmarshal(out, &obj))
	assert.Equal(t, "a@b.c", obj["Email"])
}

func TestCapitalizeKeys_NonObjectPassthrough(t *testing.T) {
	for _, raw := range []string{`[1,2,3]`, `"plain"`, `42`, `null`} {
		out, err := capitalizeKeys([]byte(raw))
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(out))
	}
}

func TestCapitalizeFirst(t *testing.T) {
	assert.Equal(t, "Email", capitalizeFirst("email"))
	assert.Equal(t, "Email", capitalizeFirst("Email"))
	assert.Equal(t, "", capitalizeFirst(""))
	assert.Equal(t, "Is_default", capitalizeFirst("is_default"))
	assert.Equal(t, "123abc", capitalizeFirst("123abc"))
}
