package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillgen/quill/internal/catalog"
	"github.com/quillgen/quill/internal/resolve"
)

func testData(config map[string]string) Data {
	return Data{Generator: "auth", Version: "1.0.0", Config: config}
}

func TestRender_Basic(t *testing.T) {
	r := NewRenderer()
	src := []byte("// quill:generated {{ .Generator }}@{{ .Version }}\nlet provider = \"{{ .Config.provider }}\"\n")

	out, err := r.Render("t", src, testData(map[string]string{"provider": "noop"}))
	require.NoError(t, err)
	assert.Equal(t, "// quill:generated auth@1.0.0\nlet provider = \"noop\"\n", string(out))
}

// Identical (template, config) pairs must yield byte-identical output.
func TestRender_Deterministic(t *testing.T) {
	src := []byte("{{ pascalCase .Config.provider }}AuthProvider: {{ .Config.service_name }}")
	config := map[string]string{"provider": "noop", "service_name": "app.session"}

	first, err := NewRenderer().Render("t", src, testData(config))
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := NewRenderer().Render("t", src, testData(config))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRender_ParseErrorIsRenderError(t *testing.T) {
	_, err := NewRenderer().Render("t", []byte("{{ .Config.provider"), testData(nil))

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "t", renderErr.Template)
}

func TestRender_MissingKeyIsRenderError(t *testing.T) {
	_, err := NewRenderer().Render("t", []byte("{{ .Config.nope }}"), testData(map[string]string{}))

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
}

func TestPascalCase(t *testing.T) {
	assert.Equal(t, "Noop", PascalCase("noop"))
	assert.Equal(t, "UserName", PascalCase("user_name"))
	assert.Equal(t, "ApiClient", PascalCase("api-client"))
	assert.Equal(t, "Keychain", PascalCase("keychain"))
	assert.Equal(t, "", PascalCase(""))
}

func TestCamelCase(t *testing.T) {
	assert.Equal(t, "userName", CamelCase("user_name"))
	assert.Equal(t, "noop", CamelCase("Noop"))
	assert.Equal(t, "", CamelCase(""))
}

func TestEscapeSwiftString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{`has "quotes"`, `has \"quotes\"`},
		{`back\slash`, `back\\slash`},
		{"line\nbreak", `line\nbreak`},
		{"tab\there", `tab\there`},
		{"nul\x00byte", `nul\0byte`},
		{"bell\x07", `bell\u{7}`},
		{"para\u2028sep", `para\u{2028}sep`},
		// Interpolation attempt: the backslash is neutralized.
		{`\(evil)`, `\\(evil)`},
	}
	for _, tt := range tests {
		got, err := EscapeSwiftString(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestEscapeSwiftString_InvalidUTF8(t *testing.T) {
	_, err := EscapeSwiftString(string([]byte{0xff, 0xfe}))
	require.Error(t, err)
}

func TestBuildData_EscapesStringOptions(t *testing.T) {
	def := &catalog.Definition{
		ID:      "auth",
		Version: "1.0.0",
		Options: []catalog.Option{
			{Name: "provider", Type: catalog.OptionEnum, Allowed: []string{"noop"}},
			{Name: "service_name", Type: catalog.OptionString},
		},
	}
	cfg := resolve.Config{
		"provider":     "noop",
		"service_name": `evil" // injected`,
	}

	data, err := BuildData(def, cfg)
	require.NoError(t, err)
	assert.Equal(t, "noop", data.Config["provider"])
	assert.Equal(t, `evil\" // injected`, data.Config["service_name"])
}

func TestBuildData_UnescapableValueFails(t *testing.T) {
	def := &catalog.Definition{
		ID:      "auth",
		Version: "1.0.0",
		Options: []catalog.Option{
			{Name: "service_name", Type: catalog.OptionString},
		},
	}
	cfg := resolve.Config{"service_name": string([]byte{0xff})}

	_, err := BuildData(def, cfg)

	var renderErr *RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, "service_name", renderErr.Option)
}
