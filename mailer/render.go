package mailer

import (
	"bytes"
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/django/v3"
)

//go:embed templates
var templatesFS embed.FS

const templateExtension = ".html"

// Renderer turns a template name and its context into a message body
type Renderer interface {
	Render(name string, data map[string]any) (string, error)
}

// DjangoRenderer renders django style templates
type DjangoRenderer struct {
	engine *django.Engine
}

// NewDjangoRenderer loads every *.html template found in files
func NewDjangoRenderer(files fs.FS) (*DjangoRenderer, error) {
	engine := django.NewFileSystem(http.FS(files), templateExtension)
	if err := engine.Load(); err != nil {
		return nil, err
	}
	return &DjangoRenderer{engine: engine}, nil
}

// NewDefaultRenderer uses the templates shipped with this package
func NewDefaultRenderer() (*DjangoRenderer, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	return NewDjangoRenderer(sub)
}

func (r *DjangoRenderer) Render(name string, data map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Render(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
