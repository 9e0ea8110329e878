package http

import (
	"net/http"

	"timebudget/internal/services"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "auth.register", err)
		return
	}
	res, err := s.svc.Auth.Register(r.Context(), services.RegisterInput{
		Email: req.Email, Password: req.Password, Name: req.Name,
	})
	if err != nil {
		s.fail(w, r, "auth.register", err)
		return
	}
	Created(toAuth(res)).Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, "auth.login", err)
		return
	}
	res, err := s.svc.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, "auth.login", err)
		return
	}
	OK(toAuth(res)).Write(w)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}
	user, err := s.svc.Auth.Me(r.Context(), userID)
	if err != nil {
		s.fail(w, r, "auth.me", err)
		return
	}
	OK(toUser(user)).Write(w)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.Categories.List(r.Context())
	if err != nil {
		s.fail(w, r, "categories.list", err)
		return
	}
	OK(toCategories(cats)).Write(w)
}
