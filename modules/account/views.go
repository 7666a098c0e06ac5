package account

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/authflow/handler"
	"github.com/dmitrymomot/authflow/pkg/auth"
)

// AuthPageParams contains data for rendering the combined login and signup
// page.
type AuthPageParams struct {
	Mode   Mode
	Email  string
	Errors handler.ValidationError
}

// TrainingPageParams contains data for rendering the page behind login.
type TrainingPageParams struct {
	User *auth.User
}

// Views renders the account pages. Nil fields fall back to DefaultViews.
type Views struct {
	AuthPage     func(AuthPageParams) templ.Component
	TrainingPage func(TrainingPageParams) templ.Component
	ErrorPage    func(handler.ErrorPageParams) templ.Component
}

// DefaultViews returns plain HTML views without external assets.
func DefaultViews() Views {
	return Views{
		AuthPage:     func(p AuthPageParams) templ.Component { return htmlComponent(authPageTmpl, p) },
		TrainingPage: func(p TrainingPageParams) templ.Component { return htmlComponent(trainingPageTmpl, p) },
		ErrorPage:    func(p handler.ErrorPageParams) templ.Component { return htmlComponent(errorPageTmpl, p) },
	}
}

func (v Views) withDefaults() Views {
	d := DefaultViews()
	if v.AuthPage == nil {
		v.AuthPage = d.AuthPage
	}
	if v.TrainingPage == nil {
		v.TrainingPage = d.TrainingPage
	}
	if v.ErrorPage == nil {
		v.ErrorPage = d.ErrorPage
	}
	return v
}

func htmlComponent(t *template.Template, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return t.Execute(w, data)
	})
}

const layout = `{{define "head"}}<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>{{.}}</title></head>
<body>{{end}}
{{define "foot"}}</body>
</html>
{{end}}`

var authPageTmpl = template.Must(template.Must(template.New("layout").Parse(layout)).New("auth").Parse(`
{{- $login := eq (print .Mode) "login" -}}
{{template "head" (or (and $login "Login") "Create account")}}
<main>
<h1>{{if $login}}Login{{else}}Create a new account{{end}}</h1>
<form id="auth-form" method="post" action="/auth">
<input type="hidden" name="mode" value="{{.Mode}}">
<p>
<label for="email">Email</label>
<input type="email" name="email" id="email" value="{{.Email}}" autocomplete="email">
{{with .Errors}}{{range index . "email"}}<span class="error" data-field="email">{{.}}</span>{{end}}{{end}}
</p>
<p>
<label for="password">Password</label>
<input type="password" name="password" id="password" autocomplete="{{if $login}}current-password{{else}}new-password{{end}}">
{{with .Errors}}{{range index . "password"}}<span class="error" data-field="password">{{.}}</span>{{end}}{{end}}
</p>
<p><button type="submit">{{if $login}}Login{{else}}Create Account{{end}}</button></p>
<p>{{if $login}}<a href="/?mode=signup">Create an account.</a>{{else}}<a href="/?mode=login">Login with existing account.</a>{{end}}</p>
</form>
</main>
{{template "foot"}}`))

var trainingPageTmpl = template.Must(template.Must(template.New("layout").Parse(layout)).New("training").Parse(`
{{- template "head" "Training"}}
<main>
<h1>Welcome back{{with .User}}, {{.Email}}{{end}}</h1>
<form method="post" action="/logout"><button type="submit">Logout</button></form>
<form method="post" action="/logout/all"><button type="submit">Logout everywhere</button></form>
</main>
{{template "foot"}}`))

var errorPageTmpl = template.Must(template.Must(template.New("layout").Parse(layout)).New("error").Parse(`
{{- template "head" "Error"}}
<main>
<h1>{{.StatusCode}}</h1>
<p>{{.Error}}</p>
{{with .RequestID}}<p><small>Request ID: {{.}}</small></p>{{end}}
<p><a href="{{.RetryURL}}">Try again</a></p>
</main>
{{template "foot"}}`))
