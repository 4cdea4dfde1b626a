package blockfile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const siteConf = `# managed by hand
listen 8080

php_values {
    memory_limit 256M
	max_execution_time   30;   # seconds
    error_reporting E_ALL & ~E_NOTICE
}

server {
    location / {
        try_files $uri /index.php
    }
}
`

func TestParse_RoundTripExact(t *testing.T) {
	inputs := []string{
		siteConf,
		"",
		"\n",
		"no trailing newline {\n  a b",
		"a b\r\nblock {\r\n  c d;\r\n}\r\n",
		"}\nstray close\n{\n",
		"unterminated {\n    key value\n",
	}
	for _, in := range inputs {
		doc := Parse([]byte(in))
		assert.Equal(t, in, string(doc.Bytes()), "round trip of %q", in)
	}
}

func TestParse_Classification(t *testing.T) {
	doc := Parse([]byte(siteConf))

	b := doc.Block("php_values")
	require.NotNil(t, b)
	assert.True(t, b.Closed)

	ds := b.Directives()
	require.Len(t, ds, 3)
	assert.Equal(t, "memory_limit", ds[0].Key)
	assert.Equal(t, "256M", ds[0].Value)

	assert.Equal(t, "\t", ds[1].Indent)
	assert.Equal(t, "   ", ds[1].Sep)
	assert.Equal(t, "30", ds[1].Value)
	assert.Equal(t, ";   # seconds", ds[1].Suffix)

	assert.Equal(t, "E_ALL & ~E_NOTICE", ds[2].Value)

	// Nested blocks are found in file order.
	loc := doc.Block("location")
	require.NotNil(t, loc)
	assert.Len(t, loc.Directives(), 1)
}

func TestDocument_ReadIsBlockOblivious(t *testing.T) {
	doc := Parse([]byte(siteConf))

	v, ok := doc.Read("listen")
	assert.True(t, ok)
	assert.Equal(t, "8080", v)

	v, ok = doc.Read("try_files")
	assert.True(t, ok)
	assert.Equal(t, "$uri /index.php", v)

	_, ok = doc.Read("upload_max_filesize")
	assert.False(t, ok)
}

func TestDocument_FirstBlockWins(t *testing.T) {
	doc := Parse([]byte("php_values {\n  a 1\n}\nphp_values {\n  a 2\n}\n"))
	_, err := doc.Upsert("php_values", "b", "3")
	require.NoError(t, err)
	assert.Equal(t, "php_values {\n  a 1\n  b 3\n}\nphp_values {\n  a 2\n}\n", string(doc.Bytes()))
}

func TestDocument_UpsertUpdatePreservesFormatting(t *testing.T) {
	doc := Parse([]byte(siteConf))

	change, err := doc.Upsert("php_values", "max_execution_time", "120")
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, change.Action)
	assert.Equal(t, "30", change.Old)

	want := strings.Replace(siteConf, "max_execution_time   30;   # seconds", "max_execution_time   120;   # seconds", 1)
	assert.Equal(t, want, string(doc.Bytes()))
}

func TestDocument_UpsertInsertBeforeClose(t *testing.T) {
	doc := Parse([]byte("php_values {\n    memory_limit 256M\n}\ntail x\n"))

	change, err := doc.Upsert("php_values", "upload_max_filesize", "64M")
	require.NoError(t, err)
	assert.Equal(t, ActionInserted, change.Action)
	assert.Equal(t, "php_values {\n    memory_limit 256M\n    upload_max_filesize 64M\n}\ntail x\n", string(doc.Bytes()))
}

func TestDocument_UpsertInsertMirrorsSemicolons(t *testing.T) {
	doc := Parse([]byte("  php_values {\n\tmemory_limit\t256M;\r\n  }\n"))

	_, err := doc.Upsert("php_values", "post_max_size", "64M")
	require.NoError(t, err)
	assert.Equal(t, "  php_values {\n\tmemory_limit\t256M;\r\n\tpost_max_size\t64M;\r\n  }\n", string(doc.Bytes()))
}

func TestDocument_UpsertEmptyBlockIndentsUnderHeader(t *testing.T) {
	doc := Parse([]byte("  php_values {\n  }\n"))

	_, err := doc.Upsert("php_values", "memory_limit", "1G")
	require.NoError(t, err)
	assert.Equal(t, "  php_values {\n      memory_limit 1G\n  }\n", string(doc.Bytes()))
}

func TestDocument_UpsertCreatesBlockAtEOF(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "php_values {\n    memory_limit 1G\n}\n"},
		{"listen 80\n", "listen 80\nphp_values {\n    memory_limit 1G\n}\n"},
		{"listen 80", "listen 80\nphp_values {\n    memory_limit 1G\n}\n"},
	}
	for _, tt := range tests {
		doc := Parse([]byte(tt.in))
		change, err := doc.Upsert("php_values", "memory_limit", "1G")
		require.NoError(t, err)
		assert.Equal(t, ActionCreatedBlock, change.Action)
		assert.Equal(t, tt.want, string(doc.Bytes()))
	}
}

func TestDocument_UpsertIdempotent(t *testing.T) {
	doc := Parse([]byte(siteConf))

	_, err := doc.Upsert("php_values", "memory_limit", "512M")
	require.NoError(t, err)
	once := string(doc.Bytes())

	change, err := doc.Upsert("php_values", "memory_limit", "512M")
	require.NoError(t, err)
	assert.Equal(t, ActionUnchanged, change.Action)
	assert.Equal(t, once, string(doc.Bytes()))
}

func TestDocument_UpsertNonInterference(t *testing.T) {
	doc := Parse([]byte(siteConf))
	before := map[string]string{}
	for _, d := range doc.Directives() {
		if d.Key != "memory_limit" {
			before[d.Key] = d.String()
		}
	}

	_, err := doc.Upsert("php_values", "memory_limit", "2G")
	require.NoError(t, err)
	_, err = doc.Upsert("php_values", "opcache.enable", "1")
	require.NoError(t, err)

	after := Parse(doc.Bytes())
	for _, d := range after.Directives() {
		if want, ok := before[d.Key]; ok {
			assert.Equal(t, want, d.String())
			delete(before, d.Key)
		}
	}
	assert.Empty(t, before, "directives went missing")
}

func TestDocument_UpsertRoundTrip(t *testing.T) {
	values := []string{"1", "256M", "E_ALL & ~E_NOTICE", "/var/tmp", "a b  c", "\"quoted\"",
		"a;b", "a#b", "2;/var/lib/php/sessions", "#fff", "a ;b"}
	for _, v := range values {
		doc := Parse([]byte(siteConf))
		_, err := doc.Upsert("php_values", "some_key", v)
		require.NoError(t, err)

		got, ok := Parse(doc.Bytes()).Read("some_key")
		assert.True(t, ok)
		assert.Equal(t, v, got)
	}
}

func TestDocument_UpsertRejectsUnsafeInput(t *testing.T) {
	doc := Parse([]byte(siteConf))
	bad := []struct{ marker, key, value string }{
		{"php_values", "k", "line\nbreak"},
		{"php_values", "k", "}"},
		{"php_values", "k", "a;"},
		{"php_values", "k", "x # y"},
		{"php_values", "k", ""},
		{"php_values", "k", " padded"},
		{"php_values", "1k", "v"},
		{"php values", "k", "v"},
	}
	for _, b := range bad {
		_, err := doc.Upsert(b.marker, b.key, b.value)
		assert.ErrorIs(t, err, ErrInvalidDirective, "%+v", b)
	}
	assert.Equal(t, siteConf, string(doc.Bytes()))
}

func TestParse_HeaderWithComment(t *testing.T) {
	in := "php_values { # managed\n    memory_limit 256M\n}\n"
	doc := Parse([]byte(in))
	assert.Equal(t, in, string(doc.Bytes()))

	b := doc.Block("php_values")
	require.NotNil(t, b)
	assert.Equal(t, "php_values { # managed", b.Header)
	require.Len(t, b.Directives(), 1)

	change, err := doc.Upsert("php_values", "memory_limit", "512M")
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, change.Action)
	assert.Equal(t, "php_values { # managed\n    memory_limit 512M\n}\n", string(doc.Bytes()))

	got, ok := Parse(doc.Bytes()).Read("memory_limit")
	assert.True(t, ok)
	assert.Equal(t, "512M", got)

	doc = Parse([]byte(in))
	_, err = doc.Upsert("php_values", "upload_max_filesize", "64M")
	require.NoError(t, err)
	assert.Equal(t, "php_values { # managed\n    memory_limit 256M\n    upload_max_filesize 64M\n}\n", string(doc.Bytes()))
}

func TestDocument_RemoveAcrossFile(t *testing.T) {
	doc := Parse([]byte("a 1\nblock {\n  a 2\n  b 3\n  inner {\n    a 4\n  }\n}\n"))

	assert.Equal(t, 3, doc.Remove("a"))
	assert.Equal(t, "block {\n  b 3\n  inner {\n  }\n}\n", string(doc.Bytes()))
	assert.Equal(t, 0, doc.Remove("a"))
}
