package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/moltblox/tournament-engine/utils"
)

const operatorTokenTTL = 24 * time.Hour

// AuthHandler issues operator tokens. There is a single operator
// credential configured through the environment; no user accounts exist.
type AuthHandler struct {
	jwtSecret    []byte
	operatorHash string
}

func NewAuthHandler(jwtSecret, operatorHash string) *AuthHandler {
	return &AuthHandler{
		jwtSecret:    []byte(jwtSecret),
		operatorHash: operatorHash,
	}
}

// LoginHandler handles POST /auth/login.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Password == "" {
		badRequestResponse(w, r, errors.New("password is required"))
		return
	}

	if !utils.CheckPasswordHash(input.Password, h.operatorHash) {
		unauthorizedResponse(w, r, "invalid credentials")
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  "operator",
		"role": "operator",
		"exp":  now.Add(operatorTokenTTL).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(h.jwtSecret)
	if err != nil {
		serverErrorResponse(w, r, fmt.Errorf("failed to sign token: %w", err))
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"token": tokenString}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
