package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/cryptotribes/server/internal/models"
)

// Imports barbarian village seeds from a spreadsheet. Expected columns:
// Name | X | Y | Wood | Clay | Iron | Food. The first row is a header.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: import_world <villages.xlsx>")
	}

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"), os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"), os.Getenv("DB_PORT"))

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect database:", err)
	}

	f, err := excelize.OpenFile(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	totalImported := 0

	for _, sheetName := range f.GetSheetList() {
		fmt.Printf("Importing sheet: %s\n", sheetName)
		rows, err := f.GetRows(sheetName)
		if err != nil {
			fmt.Printf("Error reading sheet %s: %v\n", sheetName, err)
			continue
		}

		for i, row := range rows {
			if i == 0 || len(row) < 7 { // Skip header or invalid rows
				continue
			}

			x, errX := strconv.Atoi(row[1])
			y, errY := strconv.Atoi(row[2])
			if errX != nil || errY != nil {
				fmt.Printf("Invalid coordinates in row %d\n", i)
				continue
			}

			village := models.Village{
				Name: row[0],
				X:    x,
				Y:    y,
				Resources: models.Resources{
					Wood: parseFloat(row[3]),
					Clay: parseFloat(row[4]),
					Iron: parseFloat(row[5]),
					Food: parseFloat(row[6]),
				},
				LastReconciledAt: time.Now().UTC(),
			}

			err := db.Transaction(func(tx *gorm.DB) error {
				if err := tx.Create(&village).Error; err != nil {
					return err
				}

				buildings := make([]models.Building, 0, len(models.AllBuildingTypes))
				for _, bt := range models.AllBuildingTypes {
					level := 0
					if bt == models.BuildingHall || bt == models.BuildingWarehouse {
						level = 1
					}
					buildings = append(buildings, models.Building{VillageID: village.ID, Type: bt, Level: level})
				}
				if err := tx.Create(&buildings).Error; err != nil {
					return err
				}

				troops := make([]models.TroopStock, 0, len(models.AllTroopTypes))
				for _, tt := range models.AllTroopTypes {
					troops = append(troops, models.TroopStock{VillageID: village.ID, Type: tt})
				}
				return tx.Create(&troops).Error
			})
			if err != nil {
				fmt.Printf("Error creating village in row %d: %v\n", i, err)
			} else {
				totalImported++
			}
		}
	}

	fmt.Printf("Imported %d villages\n", totalImported)
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
