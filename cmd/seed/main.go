// Command main runs the database seeder for Mikromatter.
package main

import (
	"flag"
	"log"

	"mikromatter/internal/config"
	"mikromatter/internal/database"
	"mikromatter/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numPosts := flag.Int("posts", 200, "Number of posts to create")
	numBookclubs := flag.Int("bookclubs", 10, "Number of bookclubs to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	s := seed.NewSeeder(db)
	if err := s.Run(seed.Options{
		NumUsers:     *numUsers,
		NumPosts:     *numPosts,
		NumBookclubs: *numBookclubs,
		ShouldClean:  *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
