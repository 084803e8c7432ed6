package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"cryptvault/api/internal/infrastructure/crypto"
)

const minJWTSecretLen = 32

type finding struct {
	pass    bool
	message string
}

// auditEnvironment checks the deployment secrets without touching the network.
func auditEnvironment(getenv func(string) string) []finding {
	var findings []finding

	// --- Audit Point 1: JWT Secret Strength ---
	jwtSec := getenv("JWT_SECRET")
	if len(jwtSec) < minJWTSecretLen {
		findings = append(findings, finding{false, fmt.Sprintf(
			"JWT_SECRET is too short. Min: %d characters (Current: %d)", minJWTSecretLen, len(jwtSec))})
	} else {
		findings = append(findings, finding{true, "JWT secret length is sufficient."})
	}

	// --- Audit Point 2: Database Credentials ---
	dbURL := getenv("DATABASE_URL")
	switch {
	case dbURL == "":
		findings = append(findings, finding{false, "DATABASE_URL must be set."})
	case strings.Contains(dbURL, "dev_password"):
		findings = append(findings, finding{false, "DATABASE_URL is using default development credentials."})
	case strings.Contains(dbURL, "sslmode=disable"):
		findings = append(findings, finding{false, "DATABASE_URL disables TLS to the database."})
	default:
		findings = append(findings, finding{true, "Database URL does not use default credentials."})
	}

	// --- Audit Point 3: CORS ---
	origins := getenv("CORS_ALLOWED_ORIGINS")
	if origins == "" || strings.Contains(origins, "*") {
		findings = append(findings, finding{false, "CORS_ALLOWED_ORIGINS must list explicit origins."})
	} else {
		findings = append(findings, finding{true, "CORS origins are explicit."})
	}

	return findings
}

func main() {
	fmt.Println("🔍 cryptvault: Running Security Posture Audit...")

	if err := godotenv.Load(); err != nil {
		fmt.Println("⚠️  Warning: No .env file found, checking system env vars...")
	}

	findings := auditEnvironment(os.Getenv)

	crypto.Init()
	engine, err := crypto.NewEngine()
	if err != nil {
		findings = append(findings, finding{false, fmt.Sprintf("cipher engine unavailable: %v", err)})
	} else {
		findings = append(findings, selfTest(engine)...)
	}

	hasErrors := false
	for _, f := range findings {
		if f.pass {
			fmt.Println("✅ PASS:", f.message)
		} else {
			fmt.Println("❌ FAIL:", f.message)
			hasErrors = true
		}
	}

	// Final Verdict
	fmt.Println("--------------------------------------------------")
	if hasErrors {
		fmt.Println("🚨 VERDICT: SECURITY POSTURE FAILED.")
		fmt.Println("Fix the errors above before attempting deployment.")
		os.Exit(1)
	}
	fmt.Println("🚀 VERDICT: SECURITY POSTURE VALIDATED. System is ready for launch.")
}
