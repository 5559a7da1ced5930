package main

import (
	"flag"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/examprep/internal/config"
	"github.com/yourusername/examprep/internal/questionbank"
	pgRepo "github.com/yourusername/examprep/internal/repository/postgres"
	"github.com/yourusername/examprep/pkg/database"
)

// seed загружает банк вопросов из .xlsx или .yaml в базу.
//
//	CONFIG_PATH=config/config.yaml go run ./cmd/seed -file questions.xlsx
func main() {
	file := flag.String("file", "", "path to a question bank (.xlsx, .yaml, .yml)")
	dryRun := flag.Bool("dry-run", false, "validate the file without writing to the database")
	flag.Parse()

	if *file == "" {
		log.Printf("Usage: seed -file <questions.xlsx|questions.yaml> [-dry-run]")
		os.Exit(2)
	}

	questions, err := questionbank.LoadFile(*file)
	if err != nil {
		log.Printf("Failed to load question bank: %v", err)
		os.Exit(1)
	}
	log.Printf("[Seed] Прочитано %d вопросов из %s", len(questions), *file)

	if *dryRun {
		log.Println("[Seed] Dry run: база данных не изменена")
		return
	}
	if len(questions) == 0 {
		log.Println("[Seed] Нечего загружать")
		return
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}
	if err := cfg.ValidateDatabase(); err != nil {
		log.Printf("Invalid configuration: %v", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), gin.Mode() == gin.ReleaseMode)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	if sqlDB, err := database.GetSQLDB(db); err == nil {
		defer sqlDB.Close()
	}

	if err := database.MigrateDB(db, cfg.Server.MigrationsPath); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	if err := pgRepo.NewQuestionRepo(db).CreateBatch(questions); err != nil {
		log.Printf("Failed to insert questions: %v", err)
		os.Exit(1)
	}
	log.Printf("[Seed] Загружено %d вопросов", len(questions))
}
