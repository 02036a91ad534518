package main

import (
	"context"
	"fmt"
	"time"

	"github.com/stemsi/tms-backend/internal/config"
	"github.com/stemsi/tms-backend/internal/criteria"
	"github.com/stemsi/tms-backend/internal/database"
	"github.com/stemsi/tms-backend/internal/logger"
	"github.com/stemsi/tms-backend/internal/model"
	"github.com/stemsi/tms-backend/internal/points"
	"github.com/stemsi/tms-backend/internal/repository"
)

const (
	sheetCount   = 6
	studentCount = 30
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	tutorialRepo := repository.NewTutorialRepository(pool)
	sheetRepo := repository.NewSheetRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)

	fmt.Println("=== Seeding Course ===")

	// Weekly tutorial dates starting with the semester.
	start := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	tutorial := &model.Tutorial{Slot: fmt.Sprintf("T%02d", 1)}
	for w := 0; w < 12; w++ {
		tutorial.Dates = append(tutorial.Dates, start.AddDate(0, 0, 7*w))
	}
	if err := tutorialRepo.Create(ctx, tutorial); err != nil {
		log.Fatal().Err(err).Msg("Failed to create tutorial")
	}

	sheets := make([]*model.Sheet, 0, sheetCount)
	for i := 1; i <= sheetCount; i++ {
		sheet := &model.Sheet{
			SheetNo: i,
			Bonus:   i == sheetCount,
			Exercises: []points.Exercise{
				{ID: "1", Name: "Exercise 1", MaxPoints: 10},
				{ID: "2", Name: "Exercise 2", Subexercises: []points.Subexercise{
					{ID: "a", Name: "a)", MaxPoints: 5},
					{ID: "b", Name: "b)", MaxPoints: 5},
					{ID: "c", Name: "c)", MaxPoints: 2, Bonus: true},
				}},
			},
		}
		if err := sheetRepo.Create(ctx, sheet); err != nil {
			log.Fatal().Err(err).Int("sheet_no", i).Msg("Failed to create sheet")
		}
		sheets = append(sheets, sheet)
	}

	exam := &model.ScheinExam{
		ExamNo: 1,
		Date:   start.AddDate(0, 3, 0),
		Exercises: []points.Exercise{
			{ID: "1", Name: "Exercise 1", MaxPoints: 10},
			{ID: "2", Name: "Exercise 2", MaxPoints: 20},
		},
	}
	if err := examRepo.Create(ctx, exam); err != nil {
		log.Fatal().Err(err).Msg("Failed to create exam")
	}

	successCount := 0
	for i := 0; i < studentCount; i++ {
		student := &model.Student{
			FirstName:       fmt.Sprintf("Student%02d", i+1),
			LastName:        "Seed",
			MatriculationNo: fmt.Sprintf("%07d", 2600000+i),
			TutorialID:      &tutorial.ID,
			Presentations:   map[string]int{},
			Attendances:     map[string]criteria.AttendanceState{},
		}

		sheetPoints := points.NewPointMap()
		for _, s := range sheets {
			sheetPoints.SetPointEntry(points.NewPointID(s.ID.String(), "1"), points.PointMapEntry{Points: float64(i % 11)})
			sheetPoints.SetPointEntry(points.NewPointID(s.ID.String(), "2"), points.PointMapEntry{
				Breakdown: map[string]float64{"a": float64(i % 6), "b": 3, "c": float64(i % 3)},
			})
		}
		if student.SheetPoints, err = sheetPoints.ToDTO(); err != nil {
			log.Fatal().Err(err).Msg("Failed to encode sheet points")
		}

		examPoints := points.NewPointMap()
		examPoints.SetPointEntry(points.NewPointID(exam.ID.String(), "1"), points.PointMapEntry{Points: float64(i % 11)})
		examPoints.SetPointEntry(points.NewPointID(exam.ID.String(), "2"), points.PointMapEntry{Points: float64(i % 21)})
		examDTO, err := examPoints.ToDTO()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to encode exam points")
		}
		student.ExamResults = map[string]points.PointMapDTO{exam.ID.String(): examDTO}

		for w, d := range tutorial.Dates {
			state := criteria.AttendancePresent
			switch {
			case (i+w)%7 == 0:
				state = criteria.AttendanceUnexcused
			case (i+w)%5 == 0:
				state = criteria.AttendanceExcused
			}
			student.Attendances[d.Format("2006-01-02")] = state
		}
		student.Presentations[sheets[i%len(sheets)].ID.String()] = 1 + i%2

		if err := studentRepo.Create(ctx, student); err != nil {
			fmt.Printf("Error creating student %s: %v\n", student.FirstName, err)
			continue
		}
		successCount++
		if (i+1)%10 == 0 {
			fmt.Printf("Created %d students...\n", i+1)
		}
	}

	// Catalogue changed: cached summaries are stale.
	if err := repository.NewSummaryCache(rdb, cfg.SummaryCacheTTL).Bump(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate cached summaries")
	}

	fmt.Printf("\nSeed completed! Added %d sheets, 1 exam and %d/%d students.\n", len(sheets), successCount, studentCount)
}
