package template

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
)

//go:embed tmpl/*.html
var templates embed.FS

type Data struct {
	PageTitle string
	Email     string
	Error     string
}

func Render(w http.ResponseWriter, r *http.Request, tmpl string, td *Data) error {
	t, err := template.ParseFS(templates,
		"tmpl/"+tmpl,
		"tmpl/base.html",
	)
	if err != nil {
		return err
	}

	buf := &bytes.Buffer{}

	err = t.ExecuteTemplate(buf, "base", td)
	if err != nil {
		return err
	}

	_, err = buf.WriteTo(w)
	return err
}
