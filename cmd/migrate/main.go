package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"path"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/dropDatabas3/turnero/internal/config"
	migrations "github.com/dropDatabas3/turnero/migrations/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path al YAML de configuración (opcional)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if cfg.Storage.DSN == "" {
		log.Fatal("storage.dsn vacío (o STORAGE_DSN)")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
	if err != nil {
		log.Fatalf("pgxpool: %v", err)
	}
	defer pool.Close()

	files, err := listSQL()
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}
	if len(files) == 0 {
		log.Println("No embedded migrations found. Nothing to do.")
		return
	}

	log.Printf("Applying %d migration(s)...", len(files))
	for _, f := range files {
		if err := execSQL(ctx, pool, f); err != nil {
			log.Fatalf("exec %s: %v", f, err)
		}
	}
	log.Println("Migrations completed.")
}

// listSQL devuelve los archivos embebidos en orden lexicográfico.
func listSQL() ([]string, error) {
	entries, err := migrations.FS.ReadDir(migrations.Dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			out = append(out, path.Join(migrations.Dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

func execSQL(ctx context.Context, pool *pgxpool.Pool, file string) error {
	b, err := migrations.FS.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	start := time.Now()
	if _, err := pool.Exec(ctx, string(b)); err != nil {
		return fmt.Errorf("exec: %w", err)
	}
	log.Printf("OK %s (%s)", path.Base(file), time.Since(start).Truncate(time.Millisecond))
	return nil
}
