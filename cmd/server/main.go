package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"route-collection-service/internal/adapters/notify"
	"route-collection-service/internal/adapters/render"
	"route-collection-service/internal/adapters/snapshot"
	"route-collection-service/internal/api"
	"route-collection-service/internal/config"
	"route-collection-service/internal/platform/db"
	"route-collection-service/internal/ports"
	"route-collection-service/internal/routes"
)

// main is the application composition root.
// It wires concrete adapters (renderer, notifier, snapshot store) behind
// ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(config.Get("CONFIG_PATH", "config.yml"))
	if err != nil {
		log.Fatal(err)
	}

	port := config.Get("PORT", fmt.Sprintf("%d", cfg.Server.Port))

	repo, closeDB, err := openSnapshotRepo(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeDB()

	notifier, closeNotifier := buildNotifier(cfg)
	defer closeNotifier()

	renderer := render.NewGeoJSONRenderer()
	factory := &routes.RouteLayerFactory{}
	manager := routes.NewCollectionManager(factory, renderer, notifier)

	router := api.NewRouter(manager, renderer, repo)

	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openSnapshotRepo picks the snapshot backend: Postgres when DATABASE_URL
// (or the postgres driver) is configured, a local SQLite file otherwise.
func openSnapshotRepo(cfg config.AppConfig) (ports.SnapshotRepository, func(), error) {
	databaseURL := config.Get("DATABASE_URL", cfg.Snapshot.DatabaseURL)

	if cfg.Snapshot.Driver == "postgres" || databaseURL != "" {
		pg, err := db.OpenPostgres(databaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := snapshot.InitSQLSchema(pg); err != nil {
			return nil, nil, err
		}
		return snapshot.NewSQLSnapshotRepository(pg), func() { pg.Close() }, nil
	}

	path := config.Get("DB_PATH", cfg.Snapshot.Path)
	lite, err := db.OpenSqlite(path)
	if err != nil {
		return nil, nil, err
	}
	if err := snapshot.InitSqliteSchema(lite); err != nil {
		return nil, nil, err
	}
	return snapshot.NewSqliteSnapshotRepository(lite), func() { lite.Close() }, nil
}

// buildNotifier picks the change sink: redis pub/sub when an address is
// configured, process log otherwise.
func buildNotifier(cfg config.AppConfig) (ports.ChangeNotifier, func()) {
	addr := config.Get("REDIS_ADDR", cfg.Notifier.RedisAddr)
	if addr == "" {
		return notify.LogNotifier{}, func() {}
	}

	rn := notify.NewRedisNotifier(addr, cfg.Notifier.Channel)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rn.Ping(ctx); err != nil {
		log.Fatal(err)
	}
	return rn, func() { rn.Close() }
}
