// Command main runs the database seeder for the governance engine.
package main

import (
	"flag"
	"log"

	"github.com/PluraGate/SyriaHub-sub004/internal/config"
	"github.com/PluraGate/SyriaHub-sub004/internal/database"
	"github.com/PluraGate/SyriaHub-sub004/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numContent := flag.Int("content", 200, "Number of content items to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d content items, clean=%v\n", *numUsers, *numContent, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	users, err := s.SeedUsers(*numUsers)
	if err != nil {
		log.Fatalf("User seeding failed: %v", err)
	}
	if err := s.SeedContent(users, *numContent); err != nil {
		log.Fatalf("Content seeding failed: %v", err)
	}
	if err := s.SeedAppeals(cfg.JurySize); err != nil {
		log.Fatalf("Appeal seeding failed: %v", err)
	}
	if err := s.SeedPromotions(users); err != nil {
		log.Fatalf("Promotion seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
