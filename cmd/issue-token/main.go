package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/stemsi/tms-backend/internal/config"
	"github.com/stemsi/tms-backend/internal/logger"
	"github.com/stemsi/tms-backend/internal/service"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	var userID, rolesFlag string
	flag.StringVar(&userID, "user", "", "Subject of the token (e.g. an email address)")
	flag.StringVar(&rolesFlag, "roles", "", "Comma separated roles: ADMIN, EMPLOYEE, TUTOR, CORRECTOR")
	flag.DurationVar(&cfg.JWTExpiry, "ttl", cfg.JWTExpiry, "Token lifetime")
	flag.Parse()

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Issue Access Token ===")

	if userID == "" {
		fmt.Print("Enter User: ")
		userID, _ = reader.ReadString('\n')
		userID = strings.TrimSpace(userID)
	}
	if userID == "" {
		fmt.Println("Error: User is required")
		return
	}

	if rolesFlag == "" {
		fmt.Print("Enter Roles (default ADMIN): ")
		rolesFlag, _ = reader.ReadString('\n')
		rolesFlag = strings.TrimSpace(rolesFlag)
	}
	if rolesFlag == "" {
		rolesFlag = string(service.RoleAdmin)
	}

	var roles []service.Role
	for _, raw := range strings.Split(rolesFlag, ",") {
		role, err := service.ParseRole(strings.ToUpper(strings.TrimSpace(raw)))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		roles = append(roles, role)
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	authService := service.NewAuthService(cfg, nil)
	token, err := authService.GenerateToken(userID, roles)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to issue token")
	}

	fmt.Printf("\nToken for '%s' %v, valid for %s:\n%s\n", userID, roles, cfg.JWTExpiry, token)
}
