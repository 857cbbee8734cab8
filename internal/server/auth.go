package server

import (
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskpad/internal/backend/httpapi"
	"taskpad/internal/service"
	"taskpad/internal/validate"
)

const userIDKey = "userID"

func randomSecret() []byte {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("read random secret: %v", err))
	}
	return b
}

func envelope[T any](c *gin.Context, status int, data T, message string) {
	c.JSON(status, httpapi.Response[T]{StatusCode: status, Data: data, Message: message})
}

func fail(c *gin.Context, status int, message string) {
	envelope[any](c, status, nil, message)
}

func (s *Server) handleRegister(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.RegisterRequest(req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not register")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[email]; exists {
		fail(c, http.StatusConflict, "an account with this email already exists")
		return
	}
	s.accounts[email] = account{
		user: service.User{ID: uuid.NewString(), Name: strings.TrimSpace(req.Name), Email: email},
		hash: hash,
	}
	envelope(c, http.StatusOK, service.RegisterResponse{Email: email}, "")
}

func (s *Server) handleLogin(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.LoginRequest(req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[strings.ToLower(strings.TrimSpace(req.Email))]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(req.Password)) != nil {
		fail(c, http.StatusUnauthorized, "invalid email or password")
		return
	}

	token, err := s.issueToken(acct.user)
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not issue token")
		return
	}
	user := acct.user
	envelope(c, http.StatusOK, service.LoginResponse{User: &user, Token: token}, "")
}

func (s *Server) issueToken(u service.User) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   u.ID,
		Issuer:    "taskpad",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Server) parseToken(raw string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// requireToken rejects requests without a valid bearer token and stores
// the caller's user id in the context.
func (s *Server) requireToken(c *gin.Context) {
	raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || raw == "" {
		fail(c, http.StatusUnauthorized, "missing bearer token")
		c.Abort()
		return
	}
	userID, err := s.parseToken(raw)
	if err != nil {
		s.logger.Printf("rejecting token: %v", err)
		fail(c, http.StatusUnauthorized, "invalid token")
		c.Abort()
		return
	}
	c.Set(userIDKey, userID)
	c.Next()
}
