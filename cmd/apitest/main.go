// apitest runs a REST smoke test against a SelfDB backend: auth,
// table listing and a storage round trip.
// Usage: go run ./cmd/apitest --config configs/selfdb.example.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	selfdb "github.com/Selfdb-io/selfdb-go"
	"github.com/Selfdb-io/selfdb-go/database"
	"github.com/Selfdb-io/selfdb-go/internal/config"
	"github.com/Selfdb-io/selfdb-go/storage"
)

func main() {
	configPath := flag.String("config", "configs/selfdb.example.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	client, err := selfdb.New(selfdb.Config{
		BaseURL:    cfg.SelfDB.BaseURL,
		APIKey:     cfg.SelfDB.APIKey,
		Timeout:    cfg.SelfDB.Timeout,
		MaxRetries: cfg.SelfDB.MaxRetries,
	})
	if err != nil {
		log.Fatalf("create client: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// Test 1: Login
	fmt.Println("=== Testing Login ===")
	if cfg.SelfDB.Email == "" {
		log.Fatal("selfdb.email and selfdb.password are required for apitest")
	}
	session, err := client.Auth.Login(ctx, cfg.SelfDB.Email, cfg.SelfDB.Password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	fmt.Printf("Logged in as: %s\n", session.Email)

	user, err := client.Auth.CurrentUser(ctx)
	if err != nil {
		log.Fatalf("CurrentUser failed: %v", err)
	}
	fmt.Printf("User ID: %s (active: %v)\n", user.ID, user.IsActive)

	// Test 2: List tables
	fmt.Println("\n=== Testing ListTables ===")
	tables, err := client.Database.ListTables(ctx)
	if err != nil {
		log.Fatalf("ListTables failed: %v", err)
	}
	fmt.Printf("Found %d tables\n", len(tables))
	for i, tbl := range tables {
		fmt.Printf("  %d. %s.%s\n", i+1, tbl.Schema, tbl.Name)
	}

	// Test 3: Read first table
	if len(tables) > 0 {
		name := tables[0].Name
		fmt.Printf("\n=== Testing ListRows (%s) ===\n", name)
		page, err := client.Database.ListRows(ctx, name, database.ListRowsOptions{PageSize: 5})
		if err != nil {
			log.Fatalf("ListRows failed: %v", err)
		}
		fmt.Printf("Fetched %d of %d rows\n", len(page.Rows), page.Total)
	}

	// Test 4: Storage round trip
	fmt.Println("\n=== Testing Storage ===")
	bucket, err := client.Storage.CreateBucket(ctx, fmt.Sprintf("apitest-%d", time.Now().Unix()), storage.CreateBucketOptions{})
	if err != nil {
		log.Fatalf("CreateBucket failed: %v", err)
	}
	fmt.Printf("Created bucket: %s\n", bucket.Name)

	info, err := client.Storage.Upload(ctx, bucket.ID, "hello.txt", "text/plain", strings.NewReader("hello selfdb"))
	if err != nil {
		log.Fatalf("Upload failed: %v", err)
	}
	fmt.Printf("Uploaded file: %s (%d bytes)\n", info.Filename, info.Size)

	if err := client.Storage.DeleteFile(ctx, info.ID); err != nil {
		log.Fatalf("DeleteFile failed: %v", err)
	}
	if err := client.Storage.DeleteBucket(ctx, bucket.ID); err != nil {
		log.Fatalf("DeleteBucket failed: %v", err)
	}
	fmt.Println("Cleaned up bucket and file")

	fmt.Println("\n=== All API tests passed! ===")
}
