package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/wahegurunursing/classes-api/model"
	"github.com/wahegurunursing/classes-api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// RunSeeds runs all seed functions against the given database
func RunSeeds(db *gorm.DB) error {
	return NewSeeder(db).SeedAll()
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedInstructor(); err != nil {
		return fmt.Errorf("failed to seed instructor: %w", err)
	}

	if err := s.SeedCourses(); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	log.Println("Database seeding completed")
	return nil
}

// SeedAdminUser creates the admin account from ADMIN_EMAIL / ADMIN_PASSWORD.
// Skipped when the variables are not set or the user already exists.
func (s *Seeder) SeedAdminUser() error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var existing model.User
	if err := s.db.Where("email = ?", model.NormalizeEmail(email)).First(&existing).Error; err == nil {
		log.Println("Admin user already exists, skipping")
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := model.User{
		FirstName:       "Site",
		LastName:        "Admin",
		Email:           email,
		PasswordHash:    hash,
		Phone:           "+10000000000",
		Role:            model.RoleAdmin,
		IsActive:        true,
		IsEmailVerified: true,
	}
	return s.db.Create(&admin).Error
}

// SeedInstructor creates a default instructor account for the seeded courses
func (s *Seeder) SeedInstructor() error {
	var existing model.User
	if err := s.db.Where("email = ?", "instructor@wahegurunursingclasses.com").First(&existing).Error; err == nil {
		return nil
	}

	hash, err := auth.HashPassword("Instructor1!")
	if err != nil {
		return err
	}

	instructor := model.User{
		FirstName:       "Lead",
		LastName:        "Instructor",
		Email:           "instructor@wahegurunursingclasses.com",
		PasswordHash:    hash,
		Phone:           "+10000000001",
		Role:            model.RoleInstructor,
		IsActive:        true,
		IsEmailVerified: true,
	}
	return s.db.Create(&instructor).Error
}

// SeedCourses creates the initial published catalog if it is empty
func (s *Seeder) SeedCourses() error {
	var count int64
	if err := s.db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Courses already seeded, skipping")
		return nil
	}

	var instructor model.User
	if err := s.db.Where("role = ?", model.RoleInstructor).First(&instructor).Error; err != nil {
		return fmt.Errorf("no instructor available for course seed: %w", err)
	}

	start := time.Now().AddDate(0, 1, 0)
	courses := []model.Course{
		{
			Title:        "NCLEX-RN Complete Preparation",
			Description:  "Full preparation program for the NCLEX-RN examination covering all client need categories.",
			Category:     model.CategoryNCLEXUSA,
			Level:        model.LevelIntermediate,
			Duration:     120,
			Price:        499,
			Currency:     "USD",
			InstructorID: instructor.ID,
			MaxStudents:  50,
			Status:       model.CourseStatusPublished,
			IsActive:     true,
			IsOpen:       true,
			Featured:     true,
			StartDate:    &start,
			Modules: []model.CourseModule{
				{
					Title:    "Safe and Effective Care Environment",
					Duration: 30,
					Position: 1,
					Lessons: []model.Lesson{
						{Title: "Management of Care", Type: model.LessonTypeVideo, Duration: 45, Position: 1},
						{Title: "Safety and Infection Control", Type: model.LessonTypeVideo, Duration: 40, Position: 2},
						{Title: "Unit Quiz", Type: model.LessonTypeQuiz, Duration: 20, Position: 3},
					},
				},
				{
					Title:    "Physiological Integrity",
					Duration: 40,
					Position: 2,
					Lessons: []model.Lesson{
						{Title: "Basic Care and Comfort", Type: model.LessonTypeText, Duration: 30, Position: 1},
						{Title: "Pharmacological Therapies", Type: model.LessonTypeVideo, Duration: 60, Position: 2},
					},
				},
			},
		},
		{
			Title:        "OSCE-CBT Crash Course",
			Description:  "Intensive OSCE and CBT preparation for internationally educated nurses.",
			Category:     model.CategoryOSCECBT,
			Level:        model.LevelAdvanced,
			Duration:     60,
			Price:        299,
			Currency:     "GBP",
			InstructorID: instructor.ID,
			MaxStudents:  30,
			Status:       model.CourseStatusPublished,
			IsActive:     true,
			IsOpen:       true,
			StartDate:    &start,
		},
	}

	for i := range courses {
		c := &courses[i]
		c.TotalLessons, c.TotalDuration = model.ComputeContentTotals(c.Modules)
		if err := s.db.Create(c).Error; err != nil {
			return err
		}
	}
	return nil
}
