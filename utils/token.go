package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
)

type JwtCustomClaim struct {
	ID   int    `json:"id"`
	Role string `json:"role"`
	Name string `json:"name"`
	jwt.StandardClaims
}

type JwtRefreshClaim struct {
	ID int `json:"id"`
	jwt.StandardClaims
}

var jwtSecret = []byte(getJwtSecret())
var jwtRefreshSecret = []byte(getJwtRefreshSecret())

func getJwtSecret() string {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		return "NCON2559-Secret"
	}
	return secret
}

func getJwtRefreshSecret() string {
	secret := os.Getenv("API_REFRESH_SECRET")
	if secret == "" {
		return getJwtSecret() + "-refresh"
	}
	return secret
}

func tokenLifespanHours(envKey string, def int) time.Duration {
	hours, err := strconv.Atoi(os.Getenv(envKey))
	if err != nil || hours <= 0 {
		hours = def
	}
	return time.Hour * time.Duration(hours)
}

func JwtGenerate(userID int, role string, name string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		ID:   userID,
		Role: role,
		Name: name,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenLifespanHours("TOKEN_HOUR_LIFESPAN", 1)).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})

	return t.SignedString(jwtSecret)
}

func JwtGenerateRefresh(userID int) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtRefreshClaim{
		ID: userID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenLifespanHours("REFRESH_TOKEN_HOUR_LIFESPAN", 24*7)).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})

	return t.SignedString(jwtRefreshSecret)
}

func JwtValidate(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return jwtSecret, nil
	})
}

func JwtValidateRefresh(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &JwtRefreshClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return jwtRefreshSecret, nil
	})
}
