package auth_test

import (
	"testing"

	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/usecase"

	"golang.org/x/crypto/bcrypt"
)

func BenchmarkPasswordHashing(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := usecase.HashPassword("SuperSecurePassword123!", bcrypt.DefaultCost); err != nil {
			b.Fatalf("bcrypt error: %v", err)
		}
	}
}

func BenchmarkPasswordCompare(b *testing.B) {
	password := []byte("SuperSecurePassword123!")
	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		b.Fatalf("bcrypt error: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := bcrypt.CompareHashAndPassword(hash, password); err != nil {
			b.Fatalf("bcrypt compare error: %v", err)
		}
	}
}

func BenchmarkValidatePassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = usecase.ValidatePassword("SuperSecurePassword123!")
	}
}

func BenchmarkHighestRole(b *testing.B) {
	roles := []model.Role{model.RoleStudent, model.RoleInstructor}
	for i := 0; i < b.N; i++ {
		_ = model.HighestRole(roles)
	}
}
