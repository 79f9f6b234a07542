package main

import (
	"log"

	"ai-study-assist-be/internal/config"
	"ai-study-assist-be/internal/model"
	"ai-study-assist-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}
	if cfg.Annotation.Store != config.AnnotationStorePostgres {
		log.Printf("Warn: ANNOTATION_STORE=%s, the server will not read this database", cfg.Annotation.Store)
	}

	// 2. Connect
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true, database.DefaultPool)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	// 3. Annotation table
	log.Println("Step 1: Migrating student_annotations...")
	if err := db.AutoMigrate(&model.Annotation{}); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 4. Listing index (student, course, newest first)
	log.Println("Step 2: Creating listing index...")
	listingIndex := `CREATE INDEX IF NOT EXISTS idx_student_annotations_listing
		ON student_annotations (student_id, course_id, created_at DESC, id DESC);`
	if err := db.Exec(listingIndex).Error; err != nil {
		log.Printf("Warn: Failed to create listing index: %v", err)
	}

	log.Println("✅ Annotation schema is up to date")
}
