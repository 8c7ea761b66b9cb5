package web

import (
	"bytes"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type page struct {
	Nombre, Apellido, Email, Usuario string
	Administrador, UsuarioVisible    bool
}

func TestTemplates(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	for _, name := range []string{"main.html", "politicy.html", "login.html", "check.html", "dashboard.html", "customers.html", "workers.html", "profile.html"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "login.html", map[string]any{"error": "<b>x</b>"}))
	assert.Contains(t, buf.String(), "&lt;b&gt;x&lt;/b&gt;")
	assert.Contains(t, buf.String(), `action="/login"`)

	buf.Reset()
	w := &page{Nombre: "Alice", Usuario: "aliceadmin", Administrador: true}
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "profile.html", map[string]any{"worker": w}))
	assert.Contains(t, buf.String(), "Mostrar mi usuario a otros trabajadores")
	assert.Contains(t, buf.String(), `href="/dashboard/workers"`)
}

func TestStatic(t *testing.T) {
	b, err := fs.ReadFile(Static(), "js/app.js")
	require.NoError(t, err)
	assert.Contains(t, string(b), "changePrivacity")
}
