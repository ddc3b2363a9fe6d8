package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8000"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "full":
		fullCmd(apiURL, args)
	case "populate":
		populateCmd(apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Session Simulator - Development tool for exercising the account API

USAGE:
  simulator <command> [options]

COMMANDS:
  full      Register a user and walk the whole session lifecycle
  populate  Register fake users
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8000)

EXAMPLES:
  # Register, login, refresh, replay the old refresh token, change password, logout
  simulator full

  # Register 20 fake users with password "password123"
  simulator populate --count=20`)
}

func fullCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("full", flag.ExitOnError)
	password := fs.String("password", "password123", "Password for the simulated user")
	fs.Parse(args)

	client := NewAPIClient(apiURL)
	username := fmt.Sprintf("sim_%06d", rand.Intn(1_000_000))

	fmt.Println("=== Session Simulator: Full Flow ===")
	fmt.Println()

	step("Registering "+username, func() error {
		_, err := client.Register(username, "Simulated User", username+"@example.com", *password)
		return err
	})

	step("Rejecting wrong password", func() error {
		_, err := client.Login(username, *password+"-wrong")
		return expectStatus(err, 400)
	})

	var login *LoginResponse
	step("Logging in", func() error {
		var err error
		login, err = client.Login(username, *password)
		return err
	})

	step("Fetching current user", func() error {
		user, err := client.CurrentUser(login.AccessToken)
		if err != nil {
			return err
		}
		if user.Username != username {
			return fmt.Errorf("got user %q", user.Username)
		}
		return nil
	})

	var rotated *Tokens
	step("Refreshing tokens", func() error {
		var err error
		rotated, err = client.Refresh(login.RefreshToken)
		return err
	})

	step("Rejecting replayed refresh token", func() error {
		_, err := client.Refresh(login.RefreshToken)
		return expectStatus(err, 401)
	})

	newPassword := *password + "-new"
	step("Changing password", func() error {
		return client.ChangePassword(rotated.AccessToken, *password, newPassword)
	})

	step("Logging out", func() error {
		return client.Logout(rotated.AccessToken)
	})

	step("Rejecting refresh after logout", func() error {
		_, err := client.Refresh(rotated.RefreshToken)
		return expectStatus(err, 401)
	})

	fmt.Println()
	fmt.Printf("Done. Log in as %s / %s\n", username, newPassword)
}

func populateCmd(apiURL string, args []string) {
	fs := flag.NewFlagSet("populate", flag.ExitOnError)
	count := fs.Int("count", 5, "Number of fake users to create")
	password := fs.String("password", "password123", "Password for every user")
	fs.Parse(args)

	if *count < 1 || *count > 1000 {
		fmt.Println("Error: --count must be between 1 and 1000")
		os.Exit(1)
	}

	client := NewAPIClient(apiURL)
	prefix := fmt.Sprintf("sim%04d", rand.Intn(10_000))

	fmt.Printf("Registering %d users:\n", *count)
	for i := 1; i <= *count; i++ {
		username := fmt.Sprintf("%s_player%d", prefix, i)
		user, err := client.Register(username, fmt.Sprintf("Player %d", i), username+"@example.com", *password)
		if err != nil {
			fmt.Printf("  [%d/%d] FAILED to create user: %v\n", i, *count, err)
			os.Exit(1)
		}
		fmt.Printf("  [%d/%d] %s (%s)\n", i, *count, user.Username, user.ID)
	}
}

func step(name string, fn func() error) {
	fmt.Printf("%s... ", name)
	if err := fn(); err != nil {
		fmt.Printf("FAILED\n  Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")
}

func expectStatus(err error, status int) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("expected status %d, got %v", status, err)
	}
	if apiErr.Status != status {
		return fmt.Errorf("expected status %d, got %d (%s)", status, apiErr.Status, apiErr.Message)
	}
	return nil
}
