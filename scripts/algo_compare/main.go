// Command algo_compare runs the exact engine and the greedy heuristic
// against the same request fixture and reports coverage, qualification
// quality and timing side by side. Useful when tuning the solver limits.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/kelaskita/timetable-engine/internal/dto"
	"github.com/kelaskita/timetable-engine/internal/models"
	"github.com/kelaskita/timetable-engine/internal/service"
)

type runReport struct {
	Algorithm   string
	Assignments int
	Expected    int
	MinorMatch  int
	Conflicts   int
	Duration    time.Duration
	Status      string
}

func main() {
	var (
		inputPath string
		timeLimit time.Duration
		gapRel    float64
	)

	flag.StringVar(&inputPath, "input", "request.json", "Path to a JSON schedule request")
	flag.DurationVar(&timeLimit, "time-limit", 15*time.Second, "Exact solver wall-clock limit")
	flag.Float64Var(&gapRel, "gap", 0.3, "Exact solver relative optimality gap")
	flag.Parse()

	req, err := loadRequest(inputPath)
	if err != nil {
		log.Fatalf("failed to load request: %v", err)
	}
	cfg := req.Config()
	expected := 0
	for _, c := range req.Classes {
		expected += c.TimesPerWeek
	}

	exact := service.NewExactEngine(timeLimit, gapRel, nil, nil)
	start := time.Now()
	exactSchedule, status, err := exact.Solve(context.Background(), req.Teachers, req.Rooms, req.Classes, cfg)
	if err != nil {
		log.Fatalf("exact solve rejected input: %v", err)
	}
	exactReport := buildReport("exact", exactSchedule, expected, req.Teachers, time.Since(start))
	exactReport.Status = status.String()

	greedy := service.NewGreedyScheduler(nil, nil)
	start = time.Now()
	greedySchedule := greedy.Schedule(req.Teachers, req.Rooms, req.Classes, cfg)
	greedyReport := buildReport("greedy", greedySchedule, expected, req.Teachers, time.Since(start))
	greedyReport.Status = "heuristic"

	printReport(exactReport)
	printReport(greedyReport)

	if exactReport.Conflicts > 0 || greedyReport.Conflicts > 0 {
		os.Exit(1)
	}
}

func loadRequest(path string) (dto.ScheduleRequest, error) {
	var req dto.ScheduleRequest
	raw, err := os.ReadFile(path)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("parse %s: %w", path, err)
	}
	return req, nil
}

func buildReport(name string, schedule []models.Assignment, expected int, teachers []models.Teacher, elapsed time.Duration) runReport {
	majors := make(map[string]string, len(teachers))
	for _, t := range teachers {
		majors[t.ID] = t.Major
	}

	minor := 0
	conflicts := 0
	teacherSlots := make(map[string]bool, len(schedule))
	roomSlots := make(map[string]bool, len(schedule))
	for _, a := range schedule {
		if majors[a.TeacherID] != a.Subject {
			minor++
		}
		tKey := a.TeacherID + "|" + a.Day + "|" + a.Period
		rKey := a.RoomID + "|" + a.Day + "|" + a.Period
		if teacherSlots[tKey] || roomSlots[rKey] {
			conflicts++
		}
		teacherSlots[tKey] = true
		roomSlots[rKey] = true
	}

	return runReport{
		Algorithm:   name,
		Assignments: len(schedule),
		Expected:    expected,
		MinorMatch:  minor,
		Conflicts:   conflicts,
		Duration:    elapsed,
	}
}

func printReport(r runReport) {
	fmt.Printf("%-8s status=%-10s assignments=%d/%d minor_qualified=%d conflicts=%d elapsed=%s\n",
		r.Algorithm, r.Status, r.Assignments, r.Expected, r.MinorMatch, r.Conflicts, r.Duration)
}
