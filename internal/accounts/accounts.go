package accounts

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ghaggin/accounts/internal/config"
	"github.com/ghaggin/accounts/internal/middleware"
	"github.com/ghaggin/accounts/internal/model"
	"github.com/ghaggin/accounts/internal/template"
	"github.com/go-chi/chi/v5"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	LoginURL          = "/login"
	LogoutURL         = "/logout"
	ChangePasswordURL = "/change-password"
)

type Server struct {
	log        *zap.Logger
	sessions   *middleware.SessionManager
	controller *Controller
	server     *http.Server
}

type Params struct {
	fx.In

	Log        *zap.Logger
	Config     *config.Config
	Sessions   *middleware.SessionManager
	Controller *Controller
}

func New(p Params) (*Server, error) {
	s := &Server{
		log:        p.Log,
		sessions:   p.Sessions,
		controller: p.Controller,
	}

	root := chi.NewRouter()
	root.Use(p.Sessions.Wrap)

	// Auth
	root.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.home)
		r.Get(ChangePasswordURL, s.changePasswordForm)
		r.Post(ChangePasswordURL, s.changePassword)
	})

	// No Auth
	root.Group(func(r chi.Router) {
		r.Get(LoginURL, s.loginForm)
		r.Post(LoginURL, s.login)
		r.Get(LogoutURL, s.logout)
	})

	s.server = &http.Server{
		Addr:    fmt.Sprintf("localhost:%d", p.Config.Server.Port),
		Handler: root,
	}

	return s, nil
}

func RegisterHooks(lc fx.Lifecycle, s *Server) {
	lc.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.server.Shutdown,
	})
}

func (s *Server) Start(_ context.Context) error {
	go func() {
		err := s.server.ListenAndServe()
		if err != nil {
			s.log.Error("error running server", zap.Error(err))
		}
	}()
	return nil
}

// Handler exposes the full middleware chain for in-process clients.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Presence of a principal in the session indicates auth. Unauthenticated
// and expired clients get redirected to the login view.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := s.sessions.Principal(r.Context())
		if err != nil {
			http.Redirect(w, r, LoginURL, http.StatusFound)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	principal, err := s.sessions.Principal(r.Context())
	if err != nil {
		http.Redirect(w, r, LoginURL, http.StatusFound)
		return
	}

	s.render(w, r, "home.html", &template.Data{
		PageTitle: "home",
		Email:     principal.Email,
	})
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "login.html", &template.Data{
		PageTitle: "login",
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	email := r.PostForm.Get("email")
	plaintext := r.PostForm.Get("password")

	user, err := s.controller.Authenticate(r.Context(), email, plaintext)
	if err != nil {
		s.log.Info("login rejected", zap.String("email", email))
		s.render(w, r, "login.html", &template.Data{
			PageTitle: "login",
			Error:     "invalid email or password",
		})
		return
	}

	token, expiry, err := s.sessions.LogIn(r.Context(), w, &model.Principal{
		UserID:  user.ID,
		Email:   user.Email,
		LoginAt: s.controller.clock.Now(),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	err = s.controller.RecordSession(r.Context(), token, user.ID, expiry)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.log.Info("login", zap.String("email", user.Email))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	token, err := s.sessions.LogOut(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if token != "" {
		err = s.controller.DropSession(r.Context(), token)
		if err != nil {
			s.log.Warn("failed dropping session record", zap.Error(err))
		}
	}

	http.Redirect(w, r, LoginURL, http.StatusFound)
}

func (s *Server) changePasswordForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "change_password.html", &template.Data{
		PageTitle: "change password",
	})
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	plaintext := r.PostForm.Get("password")
	confirm := r.PostForm.Get("password_confirm")
	if plaintext == "" || plaintext != confirm {
		s.render(w, r, "change_password.html", &template.Data{
			PageTitle: "change password",
			Error:     "passwords do not match",
		})
		return
	}

	principal, err := s.sessions.Principal(r.Context())
	if err != nil {
		http.Redirect(w, r, LoginURL, http.StatusFound)
		return
	}

	err = s.controller.ChangePassword(r.Context(), principal.UserID, plaintext)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, tmpl string, td *template.Data) {
	err := template.Render(w, r, tmpl, td)
	if err != nil {
		s.log.Error("error rendering template", zap.String("template", tmpl), zap.Error(err))
	}
}
