// Command create_tables resets the analytics schema: it drops the five
// analytics tables and recreates them empty.
//
// The loader itself is append-only and never truncates, so re-running it
// against an already-loaded warehouse duplicates every dimension and fact
// row. Running this command first is the supported cleanup path.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"sparkify/internal/config"
	"sparkify/internal/schema"
	"sparkify/internal/storage/postgres"
)

func main() {
	cfgPath := flag.String("config", "configs/dwh.json", "run config JSON path")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, iss := range config.Validate(cfg) {
		if iss.Severity == config.SeverityError {
			fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
			os.Exit(1)
		}
	}

	ctx := context.Background()
	sess, err := postgres.Connect(ctx, postgres.Config{
		Host:     cfg.Cluster.Host,
		Port:     cfg.Cluster.Port,
		DBName:   cfg.Cluster.DBName,
		User:     cfg.Cluster.User,
		Password: cfg.Cluster.Password,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer sess.Close(ctx)

	for _, stmt := range schema.DropAnalyticsTables {
		if err := sess.Exec(ctx, stmt); err != nil {
			log.Fatalf("drop: %v", err)
		}
	}
	for _, stmt := range schema.CreateAnalyticsTables {
		if err := sess.Exec(ctx, stmt); err != nil {
			log.Fatalf("create: %v", err)
		}
	}
	if err := sess.Commit(ctx); err != nil {
		log.Fatalf("commit: %v", err)
	}

	log.Printf("analytics tables reset (%d dropped, %d created)",
		len(schema.DropAnalyticsTables), len(schema.CreateAnalyticsTables))
}
