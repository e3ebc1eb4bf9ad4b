//go:build mage

package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/joho/godotenv"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const migrationsDir = "./internal/adapters/sqlite/migrations"

var binaries = map[string]string{
	"bin/brq-server": "./cmd/server",
	"bin/brq":        "./cmd/brq",
}

// Dbup runs dbmate to apply db migrations
func Dbup() error {
	if _, err := exec.LookPath("dbmate"); err != nil {
		fmt.Println(">> dbmate not found; install with:")
		fmt.Println("   go install github.com/amacneil/dbmate/v2@latest")
		return err
	}
	env := map[string]string{"DBMATE_MIGRATIONS_DIR": migrationsDir}
	if os.Getenv("DATABASE_URL") == "" {
		db := os.Getenv("DB_PATH")
		if db == "" {
			db = "brq.db"
		}
		env["DATABASE_URL"] = "sqlite:" + db
	}
	fmt.Println(">> dbmate up")
	return sh.RunWith(env, "dbmate", "up")
}

// Build tidies deps, then compiles the server and CLI into ./bin.
func Build() error {
	mg.Deps(Tidy)
	for out, pkg := range binaries {
		fmt.Println(">> Building", out, "...")
		if err := sh.Run("go", "build", "-o", out, pkg); err != nil {
			return err
		}
	}
	return nil
}

// Run builds then executes the server binary.
func Run() error {
	mg.Deps(Build)
	fmt.Println(">> Starting server on :8080 ...")
	return sh.Run("./bin/brq-server")
}

// Dev starts the server via go run.
func Dev() error {
	fmt.Println(">> Dev mode: go run ./cmd/server ...")
	cmd := exec.Command("go", "run", "./cmd/server")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), "PORT=8080")
	return cmd.Run()
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println(">> go mod tidy...")
	return sh.Run("go", "mod", "tidy")
}

// Test runs all unit tests.
func Test() error {
	fmt.Println(">> Running tests...")
	return sh.Run("go", "test", "./...")
}

// Cover runs the tests with a coverage profile in ./bin/cover.out.
func Cover() error {
	if err := os.MkdirAll("bin", 0o755); err != nil {
		return err
	}
	if err := sh.Run("go", "test", "-coverprofile=bin/cover.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func=bin/cover.out")
}

// Lint runs golangci-lint if available.
func Lint() error {
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		fmt.Println(">> golangci-lint not found; skipping.")
		return nil
	}
	return sh.Run("golangci-lint", "run", "./...")
}

// Clean removes build artifacts, generated reports, and the local SQLite DB.
func Clean() error {
	fmt.Println(">> Cleaning...")
	os.RemoveAll("bin")
	os.RemoveAll("reports")
	return sh.Rm("brq.db")
}

// Install installs the server and CLI to $GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	return sh.Run("go", "install", "./cmd/server", "./cmd/brq")
}

func init() {
	err := godotenv.Load()
	if err != nil {
		slog.Warn("error loading .env file", "err", err)
	}
}
