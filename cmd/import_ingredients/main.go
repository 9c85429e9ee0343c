package main

import (
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/models"
)

// Imports the ingredient catalog from a CSV file with
// "name,measurement_unit" rows. Safe to re-run: existing (name, unit)
// pairs are left untouched.
func main() {
	path := flag.String("file", "data/ingredients.csv", "path to the ingredients CSV file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	file, err := os.Open(*path)
	if err != nil {
		slog.Error("failed to open CSV file", "path", *path, "error", err)
		os.Exit(1)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = 2

	imported := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Error("failed to read CSV row", "error", err)
			os.Exit(1)
		}

		ingredient := models.Ingredient{Name: row[0], MeasurementUnit: row[1]}
		res := db.Where("name = ? AND measurement_unit = ?", row[0], row[1]).
			FirstOrCreate(&ingredient)
		if res.Error != nil {
			slog.Error("failed to import ingredient", "name", row[0], "error", res.Error)
			os.Exit(1)
		}
		if res.RowsAffected > 0 {
			imported++
		}
	}

	slog.Info("ingredient import finished", "imported", imported)
}
