// Package fixturesite serves a local copy of the login flow the page
// objects are written against.
package fixturesite

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
)

const (
	Username = "tomsmith"
	Password = "SuperSecretPassword!"

	flashCookie   = "flash"
	sessionCookie = "session"
)

type flash struct {
	Kind    string
	Message string
}

var (
	flashLoggedIn      = flash{"success", "You logged into a secure area!"}
	flashLoggedOut     = flash{"success", "You logged out of the secure area!"}
	flashBadUsername   = flash{"error", "Your username is invalid!"}
	flashBadPassword   = flash{"error", "Your password is invalid!"}
	flashLoginRequired = flash{"error", "You must login to view the secure area!"}
)

var pages = template.Must(template.New("layout").Parse(`{{define "flash"}}{{if .}}<div id="flash" class="flash {{.Kind}}">{{.Message}}<a href="#" class="close">×</a></div>{{end}}{{end}}
{{define "login"}}<!DOCTYPE html>
<html>
<head><title>The Internet</title></head>
<body>
	{{template "flash" .}}
	<h2>Login Page</h2>
	<form id="login" action="/authenticate" method="post">
		<label for="username">Username</label>
		<input type="text" name="username" id="username">
		<label for="password">Password</label>
		<input type="password" name="password" id="password">
		<button class="radius" type="submit">Login</button>
	</form>
</body>
</html>{{end}}
{{define "secure"}}<!DOCTYPE html>
<html>
<head><title>The Internet</title></head>
<body>
	{{template "flash" .}}
	<h2>Secure Area</h2>
	<a class="button secondary radius" href="/logout">Logout</a>
</body>
</html>{{end}}`))

type Config struct {
	// JSONLogs switches httplog to JSON output.
	JSONLogs bool
	// Quiet disables request logging.
	Quiet bool
}

// NewRouter returns the site's handler.
func NewRouter(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if !cfg.Quiet {
		logger := httplog.NewLogger("fixturesite", httplog.Options{
			JSON:    cfg.JSONLogs,
			Concise: true,
		})
		r.Use(httplog.RequestLogger(logger))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	})
	r.Get("/login", loginPage)
	r.Post("/authenticate", authenticate)
	r.Get("/secure", securePage)
	r.Get("/logout", logout)

	return r
}

func loginPage(w http.ResponseWriter, r *http.Request) {
	render(w, "login", popFlash(w, r))
}

func authenticate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch {
	case r.PostForm.Get("username") != Username:
		redirectWithFlash(w, r, "/login", flashBadUsername)
	case r.PostForm.Get("password") != Password:
		redirectWithFlash(w, r, "/login", flashBadPassword)
	default:
		http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: Username, Path: "/", HttpOnly: true})
		redirectWithFlash(w, r, "/secure", flashLoggedIn)
	}
}

func securePage(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err != nil || c.Value != Username {
		redirectWithFlash(w, r, "/login", flashLoginRequired)
		return
	}
	render(w, "secure", popFlash(w, r))
}

func logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Path: "/", MaxAge: -1})
	redirectWithFlash(w, r, "/login", flashLoggedOut)
}

func render(w http.ResponseWriter, name string, f *flash) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, f); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func redirectWithFlash(w http.ResponseWriter, r *http.Request, to string, f flash) {
	http.SetCookie(w, &http.Cookie{
		Name:  flashCookie,
		Value: url.QueryEscape(f.Kind + "|" + f.Message),
		Path:  "/",
	})
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// popFlash reads the pending flash message and clears it.
func popFlash(w http.ResponseWriter, r *http.Request) *flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})

	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return nil
	}
	kind, message, ok := strings.Cut(raw, "|")
	if !ok {
		return nil
	}
	return &flash{Kind: kind, Message: message}
}
