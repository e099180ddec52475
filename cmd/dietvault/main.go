// Command dietvault is the operational companion to the practice database:
// it generates server secrets, provisions user accounts with their
// encryption salts, and exports encrypted backups to S3.
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/encryption"
	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/encryption/providers/envsecret"
	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/internal/backup"
	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/internal/records"
	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/internal/security"
	"github.com/BeCreativeRuben/AccountingSoftwareDietitians/internal/store"
)

const version = "0.3.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "secret":
		err = runSecret(os.Args[2:])
	case "provision":
		err = runProvision(os.Args[2:])
	case "backup":
		err = runBackup(os.Args[2:])
	case "version":
		fmt.Printf("dietvault %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`dietvault - key and backup operations for the practice database

Usage:
  dietvault secret [-bytes n]                       Generate a server encryption secret
  dietvault provision -email e -name n [-clinic c]  Create a user account with a fresh salt
  dietvault backup -user id [-out file]             Export an encrypted snapshot
  dietvault version                                 Show version

Flags common to provision and backup:
  -config file   YAML configuration file (default dietvault.yaml)`)
}

// runSecret prints a freshly generated server secret. It never touches the
// database or the environment; rotating the secret into deployment config
// is a separate, deliberate step.
func runSecret(args []string) error {
	fs := flag.NewFlagSet("secret", flag.ExitOnError)
	numBytes := fs.Int("bytes", 32, "secret length in bytes before hex encoding")
	fs.Parse(args)

	secret, err := security.RandomSecret(*numBytes)
	if err != nil {
		return fmt.Errorf("generating secret: %w", err)
	}
	fmt.Println(hex.EncodeToString(secret))
	return nil
}

func runProvision(args []string) error {
	fs := flag.NewFlagSet("provision", flag.ExitOnError)
	configPath := fs.String("config", "dietvault.yaml", "configuration file")
	email := fs.String("email", "", "account email (required)")
	name := fs.String("name", "", "account holder name (required)")
	clinic := fs.String("clinic", "", "clinic name")
	fs.Parse(args)

	if *email == "" || *name == "" {
		return fmt.Errorf("provision requires -email and -name")
	}

	ctx := context.Background()
	svc, cleanup, err := buildService(ctx, *configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	user, err := svc.ProvisionUser(ctx, *email, *name, *clinic)
	if err != nil {
		return fmt.Errorf("provisioning user: %w", err)
	}
	fmt.Printf("created user %s (%s)\n", user.ID, user.Email)
	return nil
}

func runBackup(args []string) error {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	configPath := fs.String("config", "dietvault.yaml", "configuration file")
	userID := fs.String("user", "", "user id to export (required)")
	out := fs.String("out", "", "write the snapshot to a file instead of S3")
	fs.Parse(args)

	if *userID == "" {
		return fmt.Errorf("backup requires -user")
	}

	ctx := context.Background()
	config, st, resolver, cleanup, err := buildResolver(ctx, *configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	exporter := backup.NewExporter(st, resolver)

	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		if err := exporter.Export(ctx, *userID, f); err != nil {
			return fmt.Errorf("exporting snapshot: %w", err)
		}
		fmt.Printf("snapshot written to %s\n", *out)
		return nil
	}

	if config.Backup.Bucket == "" {
		return fmt.Errorf("no backup bucket configured; set backup.bucket or use -out")
	}
	client, err := backup.NewS3Client(ctx, config.Backup.Region)
	if err != nil {
		return err
	}
	key, err := exporter.ExportToS3(ctx, client, config.Backup.Bucket, *userID)
	if err != nil {
		return err
	}
	fmt.Printf("snapshot uploaded to s3://%s/%s\n", config.Backup.Bucket, key)
	return nil
}

// buildService wires the store, resolver and record service from config.
func buildService(ctx context.Context, configPath string) (*records.Service, func(), error) {
	_, st, resolver, cleanup, err := buildResolver(ctx, configPath)
	if err != nil {
		return nil, nil, err
	}
	return records.NewService(st, resolver), cleanup, nil
}

// buildResolver opens the database and resolves the server secret from the
// environment (after loading the configured dotenv file, if any).
func buildResolver(ctx context.Context, configPath string) (*Config, *store.Store, *encryption.KeyResolver, func(), error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if config.DotenvPath != "" {
		if err := godotenv.Load(config.DotenvPath); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("loading dotenv file %s: %w", config.DotenvPath, err)
		}
	}

	secret, err := encryption.ResolveServerSecret(ctx, &envsecret.Source{})
	if err != nil {
		return nil, nil, nil, nil, err
	}
	cfg := encryption.Config{ServerSecret: secret}
	if secret == encryption.DevServerSecret {
		cfg.AllowDevSecret = true
		fmt.Fprintln(os.Stderr, "warning: using development encryption secret")
	}

	st, err := store.Open(config.DatabasePath)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	resolver, err := encryption.NewKeyResolver(st, cfg)
	if err != nil {
		st.Close()
		return nil, nil, nil, nil, err
	}
	return config, st, resolver, func() { st.Close() }, nil
}
