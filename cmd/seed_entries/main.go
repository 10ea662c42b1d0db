package main

import (
	"context"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/snapcal/backend/internal/database"
	"github.com/snapcal/backend/internal/kvstore"
	"github.com/snapcal/backend/internal/service"
	"github.com/snapcal/backend/internal/types"
)

// Seeds a week of demo meals plus a matching profile and goal so a freshly
// paired dashboard has something to show. DATABASE_URL selects Postgres;
// without it the seeder writes to the SQLite file the dev server uses.

type meal struct {
	hour  int
	foods []types.FoodItem
}

func main() {
	db, err := openDatabase()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	storage := service.NewStorageService(kvstore.NewGormStore(db))

	// Demo profile matching the seeded intake
	age := 30
	profile := types.UserProfile{
		PersonalInfo: types.PersonalInfo{
			Age:    &age,
			Gender: "male",
			Height: &types.Measurement{Value: 180, Unit: "cm"},
			Weight: &types.Measurement{Value: 80, Unit: "kg"},
		},
		Activity: types.ActivityInfo{Level: "moderate"},
		Goals:    types.GoalInfo{Primary: "maintenance"},
	}
	if existing := storage.GetUserProfile(ctx); existing != nil {
		log.Println("Profile already exists, skipping...")
	} else if err := storage.MarkOnboardingComplete(ctx, profile); err != nil {
		log.Fatalf("Failed to seed profile: %v", err)
	} else {
		log.Println("✅ Seeded demo profile (30y male, 180cm, 80kg, moderate)")
	}

	if _, err := storage.UpdateDailyGoal(ctx, 2200); err != nil {
		log.Fatalf("Failed to set daily goal: %v", err)
	}
	log.Println("✅ Daily goal set to 2200 kcal")

	log.Println("Seeding a week of demo meals...")

	var seededDays, seededEntries int
	now := time.Now()
	for daysAgo := 6; daysAgo >= 0; daysAgo-- {
		day := now.AddDate(0, 0, -daysAgo)
		date := day.Format("2006-01-02")

		// One save per day already present means the day was seeded before
		if existing := storage.GetDailyEntries(ctx, date); len(existing) > 0 {
			log.Printf("Entries for %s already exist, skipping...", date)
			continue
		}

		for _, m := range mealsFor(daysAgo) {
			ts := time.Date(day.Year(), day.Month(), day.Day(), m.hour, 15, 0, 0, day.Location())
			entry := types.FoodEntry{Timestamp: ts, Foods: m.foods}
			if _, err := storage.SaveFoodEntry(ctx, entry); err != nil {
				log.Printf("Failed to seed entry on %s: %v", date, err)
				continue
			}
			seededEntries++
		}
		seededDays++
		log.Printf("✅ Seeded meals for %s", date)
	}

	log.Println("\n📋 Seed Summary:")
	log.Println("================")
	log.Printf("📅 Days seeded: %d", seededDays)
	log.Printf("🍽️ Entries created: %d", seededEntries)
	log.Println("\nDemo data seeded successfully!")
}

func openDatabase() (*gorm.DB, error) {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return gorm.Open(postgres.Open(dbURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}
	path := os.Getenv("SQLITE_PATH")
	if path == "" {
		path = "snapcal.db"
	}
	return database.NewSQLite(path)
}

// mealsFor varies the menu across the week so the dashboard charts are not
// flat. daysAgo counts back from today.
func mealsFor(daysAgo int) []meal {
	breakfasts := [][]types.FoodItem{
		{
			{Name: "Oatmeal with banana", Calories: 310, Quantity: "1 bowl", Confidence: 0.93, Macros: &types.Macros{Protein: 9, Carbs: 58, Fat: 6, Fiber: 7}},
			{Name: "Black coffee", Calories: 5, Quantity: "1 cup", Confidence: 0.97},
		},
		{
			{Name: "Scrambled eggs", Calories: 220, Quantity: "2 eggs", Confidence: 0.95, Macros: &types.Macros{Protein: 14, Carbs: 2, Fat: 17}},
			{Name: "Whole wheat toast", Calories: 140, Quantity: "2 slices", Confidence: 0.92, Macros: &types.Macros{Protein: 6, Carbs: 24, Fat: 2, Fiber: 4}},
		},
		{
			{Name: "Greek yogurt with berries", Calories: 180, Quantity: "1 cup", Confidence: 0.91, Macros: &types.Macros{Protein: 17, Carbs: 21, Fat: 3}},
		},
	}
	lunches := [][]types.FoodItem{
		{
			{Name: "Grilled chicken salad", Calories: 420, Quantity: "1 plate", Confidence: 0.89, Macros: &types.Macros{Protein: 38, Carbs: 18, Fat: 22, Fiber: 5}},
		},
		{
			{Name: "Turkey sandwich", Calories: 380, Quantity: "1 sandwich", Confidence: 0.9, Macros: &types.Macros{Protein: 24, Carbs: 42, Fat: 12}},
			{Name: "Apple", Calories: 95, Quantity: "1 medium", Confidence: 0.96, Macros: &types.Macros{Protein: 0, Carbs: 25, Fat: 0, Fiber: 4}},
		},
		{
			{Name: "Vegetable stir fry with rice", Calories: 510, Quantity: "1 plate", Confidence: 0.86, Macros: &types.Macros{Protein: 14, Carbs: 78, Fat: 15, Fiber: 6}},
		},
	}
	dinners := [][]types.FoodItem{
		{
			{Name: "Salmon with roasted vegetables", Calories: 540, Quantity: "1 plate", Confidence: 0.88, Macros: &types.Macros{Protein: 36, Carbs: 28, Fat: 30}},
		},
		{
			{Name: "Spaghetti bolognese", Calories: 650, Quantity: "1 plate", Confidence: 0.91, Macros: &types.Macros{Protein: 28, Carbs: 82, Fat: 22, Fiber: 6}},
		},
		{
			{Name: "Chicken burrito bowl", Calories: 620, Quantity: "1 bowl", Confidence: 0.87, Macros: &types.Macros{Protein: 34, Carbs: 68, Fat: 24, Fiber: 9}},
		},
	}

	meals := []meal{
		{hour: 8, foods: breakfasts[daysAgo%len(breakfasts)]},
		{hour: 12, foods: lunches[daysAgo%len(lunches)]},
	}
	// A couple of light days keep the weekly chart honest
	if daysAgo != 2 && daysAgo != 5 {
		meals = append(meals, meal{hour: 19, foods: dinners[daysAgo%len(dinners)]})
	}
	return meals
}
