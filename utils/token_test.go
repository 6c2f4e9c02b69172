package utils_test

import (
	"testing"

	"github.com/ncon2559/construction_backend/utils"
)

func TestJwtRoundTrip(t *testing.T) {
	signed, err := utils.JwtGenerate(42, "EDITOR", "Somchai")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}

	token, err := utils.JwtValidate(signed)
	if err != nil {
		t.Fatalf("JwtValidate: %v", err)
	}
	if !token.Valid {
		t.Fatal("token not valid")
	}
	claim, ok := token.Claims.(*utils.JwtCustomClaim)
	if !ok {
		t.Fatal("unexpected claims type")
	}
	if claim.ID != 42 || claim.Role != "EDITOR" || claim.Name != "Somchai" {
		t.Fatalf("claims = %+v", claim)
	}
}

func TestJwtRefreshTokenIsNotAnAccessToken(t *testing.T) {
	refresh, err := utils.JwtGenerateRefresh(42)
	if err != nil {
		t.Fatalf("JwtGenerateRefresh: %v", err)
	}

	// The refresh token is signed with a different secret; the access-token
	// validator must reject it.
	if token, err := utils.JwtValidate(refresh); err == nil && token.Valid {
		t.Fatal("refresh token accepted as access token")
	}

	token, err := utils.JwtValidateRefresh(refresh)
	if err != nil {
		t.Fatalf("JwtValidateRefresh: %v", err)
	}
	claim, ok := token.Claims.(*utils.JwtRefreshClaim)
	if !ok || claim.ID != 42 {
		t.Fatalf("claims = %+v", token.Claims)
	}
}

func TestHashAndComparePassword(t *testing.T) {
	hash, err := utils.HashPassword("123456")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := utils.ComparePassword(string(hash), "123456"); err != nil {
		t.Fatalf("ComparePassword: %v", err)
	}
	if err := utils.ComparePassword(string(hash), "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	}
}
