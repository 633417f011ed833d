// Package main provides operator utilities for the job board.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"jobboard/internal/authz"
	"jobboard/internal/bootstrap"
	"jobboard/internal/cache"
	"jobboard/internal/config"
	"jobboard/internal/models"
	"jobboard/internal/notifications"
	"jobboard/internal/repository"
	"jobboard/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin create-admin <email>            - Create an admin (password from ADMIN_PASSWORD)")
	fmt.Println("  go run ./cmd/admin list-admins                     - List all admins")
	fmt.Println("  go run ./cmd/admin verify-company <id> [true|false] - Set a company's verification")
	fmt.Println("  go run ./cmd/admin tail-notifications              - Print account notifications as they are published")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, rdb, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch command := os.Args[1]; command {
	case "create-admin":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		createAdmin(ctx, cfg, db, os.Args[2])

	case "list-admins":
		listAdmins(ctx, db)

	case "verify-company":
		if len(os.Args) < 3 {
			usage()
			os.Exit(1)
		}
		verified := true
		if len(os.Args) > 3 {
			verified, err = strconv.ParseBool(os.Args[3])
			if err != nil {
				log.Fatalf("Invalid verification flag %q", os.Args[3])
			}
		}
		verifyCompany(ctx, db, rdb, os.Args[2], verified)

	case "tail-notifications":
		tailNotifications(ctx, rdb)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}

func createAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB, email string) {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("ADMIN_PASSWORD must be set")
	}

	accounts := repository.NewAccountRepository(db)
	authService := service.NewAuthService(accounts, nil, nil, nil, nil, cfg.BcryptCost)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	account, err := authService.CreateAdmin(ctx, email, password)
	if err != nil {
		log.Fatalf("Failed to create admin: %v", err)
	}
	fmt.Printf("Created admin %s (ID: %d)\n", account.Email, account.ID)
}

func listAdmins(ctx context.Context, db *gorm.DB) {
	admins, err := repository.NewAccountRepository(db).ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found")
		return
	}

	fmt.Println("Current admins:")
	for _, admin := range admins {
		fmt.Printf("ID: %d | Email: %s | Since: %s\n", admin.ID, admin.Email, admin.CreatedAt.Format(time.DateOnly))
	}
}

func verifyCompany(ctx context.Context, db *gorm.DB, rdb *redis.Client, rawID string, verified bool) {
	id, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil || id == 0 {
		log.Fatalf("Invalid company ID %q", rawID)
	}

	companies := repository.NewCompanyRepository(db, cache.NewStore(rdb))
	companyService := service.NewCompanyService(companies, nil)

	// Operator tooling acts as an admin without an account.
	operator := &authz.Caller{Role: models.RoleAdmin}
	profile, err := companyService.SetVerified(ctx, operator, uint(id), verified)
	if err != nil {
		log.Fatalf("Failed to update company: %v", err)
	}
	fmt.Printf("%s (ID: %d) verified=%t\n", profile.CompanyName, profile.ID, profile.IsVerified)
}

func tailNotifications(ctx context.Context, rdb *redis.Client) {
	if rdb == nil {
		log.Fatal("Redis is unavailable")
	}
	notifier := notifications.NewNotifier(rdb)
	err := notifier.StartAccountSubscriber(ctx, func(channel, payload string) {
		fmt.Printf("%s %s %s\n", time.Now().Format(time.RFC3339), channel, payload)
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}
	fmt.Println("Listening for notifications, Ctrl+C to stop")
	<-ctx.Done()
}
