package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/NzamaE/Footprint-Logger-Fullstack/models"
)

// Minimum in-period activities before a user appears on the leaderboard.
const leaderboardMinActivities = 5

type AnalyticsService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: db, now: time.Now}
}

// ---------- Dashboard ----------

type WeeklyBucket struct {
	Week            string  `json:"week"`
	Emissions       float64 `json:"emissions"`
	ActivitiesCount int     `json:"activitiesCount"`
}

type CategoryEmission struct {
	Type      string  `json:"type"`
	Emissions float64 `json:"emissions"`
}

type DashboardSummary struct {
	TotalEmissions        float64            `json:"totalEmissions"`
	CommunityAverage      float64            `json:"communityAverage"`
	WeeklyBreakdown       []WeeklyBucket     `json:"weeklyBreakdown"`
	ActivitiesCount       int                `json:"activitiesCount"`
	ComparisonToCommunity float64            `json:"comparisonToCommunity"`
	EmissionsByCategory   []CategoryEmission `json:"emissionsByCategory"`
	PerformanceScore      string             `json:"performanceScore"`
}

// Dashboard aggregates the user's activities over the trailing window and
// compares them against the community. The community average is the mean of
// per-user totals, not a flat average over activity rows; averaging rows
// would skew toward users who log often.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID uint, windowDays int) (*DashboardSummary, error) {
	now := s.now()
	since := now.AddDate(0, 0, -windowDays)

	var activities []models.Activity
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Find(&activities).Error; err != nil {
		return nil, err
	}

	var totalEmissions float64
	byCategory := map[string]float64{}
	for _, a := range activities {
		totalEmissions += a.CarbonFootprint
		byCategory[a.Type] += a.CarbonFootprint
	}

	communityAverage, err := s.communityAverage(ctx, since)
	if err != nil {
		return nil, err
	}

	// Last four 7-day windows ending today, oldest first.
	weekly := make([]WeeklyBucket, 0, 4)
	for i := 3; i >= 0; i-- {
		start := dayStartUTC(now.AddDate(0, 0, -(i*7 + 6)))
		end := dayEndUTC(now.AddDate(0, 0, -i*7))

		var sum float64
		var count int
		for _, a := range activities {
			if !a.Date.Before(start) && !a.Date.After(end) {
				sum += a.CarbonFootprint
				count++
			}
		}
		weekly = append(weekly, WeeklyBucket{
			Week:            fmt.Sprintf("Week %d", 4-i),
			Emissions:       round2(sum),
			ActivitiesCount: count,
		})
	}

	categories := make([]CategoryEmission, 0, len(byCategory))
	for activityType, emissions := range byCategory {
		categories = append(categories, CategoryEmission{Type: activityType, Emissions: round2(emissions)})
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Emissions != categories[j].Emissions {
			return categories[i].Emissions > categories[j].Emissions
		}
		return categories[i].Type < categories[j].Type
	})

	// Label intentionally reads inverted: equal-or-below the community mean
	// reports "Above Average". Kept as the product defined it.
	score := "Below Average"
	if totalEmissions <= communityAverage {
		score = "Above Average"
	}

	return &DashboardSummary{
		TotalEmissions:        round2(totalEmissions),
		CommunityAverage:      round2(communityAverage),
		WeeklyBreakdown:       weekly,
		ActivitiesCount:       len(activities),
		ComparisonToCommunity: round2(totalEmissions - communityAverage),
		EmissionsByCategory:   categories,
		PerformanceScore:      score,
	}, nil
}

// communityAverage is the mean of per-user emission totals across every user
// with at least one activity since the cutoff.
func (s *AnalyticsService) communityAverage(ctx context.Context, since time.Time) (float64, error) {
	var totals []struct {
		UserID uint
		Total  float64
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Activity{}).
		Select("user_id, SUM(carbon_footprint) AS total").
		Where("date >= ?", since).
		Group("user_id").
		Scan(&totals).Error; err != nil {
		return 0, err
	}
	if len(totals) == 0 {
		return 0, nil
	}
	var sum float64
	for _, t := range totals {
		sum += t.Total
	}
	return sum / float64(len(totals)), nil
}

// ---------- Streaks ----------

type WeeklyActivitySummary struct {
	Week            int     `json:"week"`
	DaysActive      int     `json:"daysActive"`
	TotalActivities int     `json:"totalActivities"`
	TotalEmissions  float64 `json:"totalEmissions"`
}

type StreakInfo struct {
	CurrentStreak           int                     `json:"currentStreak"`
	LongestStreak           int                     `json:"longestStreak"`
	WeeklySummary           []WeeklyActivitySummary `json:"weeklySummary"`
	TotalDays               int                     `json:"totalDays"`
	AverageActivitiesPerDay float64                 `json:"averageActivitiesPerDay"`
}

// Streak looks back 90 days. A day counts as active when at least one
// activity falls on that UTC calendar date. The current streak walks
// backward from today and is zero when today has no activity yet.
func (s *AnalyticsService) Streak(ctx context.Context, userID uint) (*StreakInfo, error) {
	const lookbackDays = 90
	now := s.now()
	since := now.AddDate(0, 0, -lookbackDays)

	var activities []models.Activity
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order("date DESC").
		Find(&activities).Error; err != nil {
		return nil, err
	}

	perDay := map[string]int{}
	for _, a := range activities {
		perDay[dayKeyUTC(a.Date)]++
	}

	currentStreak := 0
	for i := 0; i < lookbackDays; i++ {
		if perDay[dayKeyUTC(now.AddDate(0, 0, -i))] == 0 {
			break
		}
		currentStreak++
	}

	days := make([]string, 0, len(perDay))
	for key := range perDay {
		days = append(days, key)
	}
	sort.Strings(days)

	longestStreak := 0
	run := 0
	var prev time.Time
	for i, key := range days {
		day, _ := time.Parse("2006-01-02", key)
		if i > 0 && day.Sub(prev) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longestStreak {
			longestStreak = run
		}
		prev = day
	}

	weekly := make([]WeeklyActivitySummary, 0, 4)
	for i := 3; i >= 0; i-- {
		start := dayStartUTC(now.AddDate(0, 0, -(i*7 + 6)))
		end := dayEndUTC(now.AddDate(0, 0, -i*7))

		daysActive := map[string]struct{}{}
		var count int
		var emissions float64
		for _, a := range activities {
			if !a.Date.Before(start) && !a.Date.After(end) {
				daysActive[dayKeyUTC(a.Date)] = struct{}{}
				count++
				emissions += a.CarbonFootprint
			}
		}
		weekly = append(weekly, WeeklyActivitySummary{
			Week:            4 - i,
			DaysActive:      len(daysActive),
			TotalActivities: count,
			TotalEmissions:  round2(emissions),
		})
	}

	totalDays := len(perDay)
	avgPerDay := 0.0
	if totalDays > 0 {
		avgPerDay = round2(float64(len(activities)) / float64(totalDays))
	}

	return &StreakInfo{
		CurrentStreak:           currentStreak,
		LongestStreak:           longestStreak,
		WeeklySummary:           weekly,
		TotalDays:               totalDays,
		AverageActivitiesPerDay: avgPerDay,
	}, nil
}

// ---------- Leaderboard ----------

type LeaderboardEntry struct {
	Rank               int     `json:"rank"`
	Username           string  `json:"username"`
	TotalEmissions     float64 `json:"totalEmissions"`
	ActivityCount      int     `json:"activityCount"`
	AveragePerActivity float64 `json:"averagePerActivity"`
}

type LeaderboardResult struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	CurrentUser *LeaderboardEntry  `json:"currentUser"`
	Period      string             `json:"period"`
}

// Leaderboard ranks qualifying users (>= 5 activities in the period) by
// ascending total emissions. Ties break on activity count (more activities
// for the same total ranks first), then user id, so the ordering is
// deterministic.
func (s *AnalyticsService) Leaderboard(ctx context.Context, userID uint, periodDays int) (*LeaderboardResult, error) {
	since := s.now().AddDate(0, 0, -periodDays)

	var rows []struct {
		UserID        uint
		Username      string
		Total         float64
		ActivityCount int
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Activity{}).
		Select("activities.user_id, users.username, SUM(activities.carbon_footprint) AS total, COUNT(*) AS activity_count").
		Joins("JOIN users ON users.id = activities.user_id").
		Where("activities.date >= ?", since).
		Group("activities.user_id, users.username").
		Having("COUNT(*) >= ?", leaderboardMinActivities).
		Order("total ASC, activity_count DESC, activities.user_id ASC").
		Limit(10).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	leaderboard := make([]LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		leaderboard = append(leaderboard, LeaderboardEntry{
			Rank:               i + 1,
			Username:           row.Username,
			TotalEmissions:     round2(row.Total),
			ActivityCount:      row.ActivityCount,
			AveragePerActivity: round2(row.Total / float64(row.ActivityCount)),
		})
	}

	currentUser, err := s.currentUserEntry(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	return &LeaderboardResult{
		Leaderboard: leaderboard,
		CurrentUser: currentUser,
		Period:      fmt.Sprintf("%d days", periodDays),
	}, nil
}

// currentUserEntry computes the requester's own stats and rank independently
// of the top-10 cut. Rank is the number of qualifying users with a strictly
// lower total, plus one. Nil when the requester has no in-period activities.
func (s *AnalyticsService) currentUserEntry(ctx context.Context, userID uint, since time.Time) (*LeaderboardEntry, error) {
	var own struct {
		Total         float64
		ActivityCount int
	}
	result := s.db.WithContext(ctx).
		Model(&models.Activity{}).
		Select("SUM(carbon_footprint) AS total, COUNT(*) AS activity_count").
		Where("user_id = ? AND date >= ?", userID, since).
		Group("user_id").
		Scan(&own)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 || own.ActivityCount == 0 {
		return nil, nil
	}

	perUser := s.db.WithContext(ctx).
		Model(&models.Activity{}).
		Select("user_id, SUM(carbon_footprint) AS total, COUNT(*) AS activity_count").
		Where("date >= ?", since).
		Group("user_id")

	var better int64
	if err := s.db.WithContext(ctx).
		Table("(?) AS per_user", perUser).
		Where("per_user.activity_count >= ? AND per_user.total < ?", leaderboardMinActivities, own.Total).
		Count(&better).Error; err != nil {
		return nil, err
	}

	return &LeaderboardEntry{
		Rank:               int(better) + 1,
		TotalEmissions:     round2(own.Total),
		ActivityCount:      own.ActivityCount,
		AveragePerActivity: round2(own.Total / float64(own.ActivityCount)),
	}, nil
}

// ---------- Per-category stats ----------

type CategoryStats struct {
	Type             string  `json:"type"`
	Count            int     `json:"count"`
	TotalEmissions   float64 `json:"totalEmissions"`
	AverageEmissions float64 `json:"averageEmissions"`
}

type OverallStats struct {
	TotalActivities  int     `json:"totalActivities"`
	TotalEmissions   float64 `json:"totalEmissions"`
	AverageEmissions float64 `json:"averageEmissions"`
	MinEmissions     float64 `json:"minEmissions"`
	MaxEmissions     float64 `json:"maxEmissions"`
}

type UserStats struct {
	ByCategory []CategoryStats `json:"byCategory"`
	Overall    OverallStats    `json:"overall"`
	Period     string          `json:"period"`
}

func (s *AnalyticsService) Stats(ctx context.Context, userID uint, periodDays int) (*UserStats, error) {
	since := s.now().AddDate(0, 0, -periodDays)

	var rows []struct {
		Type  string
		Count int
		Total float64
		Avg   float64
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Activity{}).
		Select("type, COUNT(*) AS count, SUM(carbon_footprint) AS total, AVG(carbon_footprint) AS avg").
		Where("user_id = ? AND date >= ?", userID, since).
		Group("type").
		Order("total DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	byCategory := make([]CategoryStats, 0, len(rows))
	overall := OverallStats{}
	for _, row := range rows {
		byCategory = append(byCategory, CategoryStats{
			Type:             row.Type,
			Count:            row.Count,
			TotalEmissions:   round2(row.Total),
			AverageEmissions: round2(row.Avg),
		})
		overall.TotalActivities += row.Count
		overall.TotalEmissions += row.Total
	}

	if overall.TotalActivities == 0 {
		return &UserStats{
			ByCategory: byCategory,
			Overall:    OverallStats{},
			Period:     fmt.Sprintf("%d days", periodDays),
		}, nil
	}

	var bounds struct {
		Min float64
		Max float64
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Activity{}).
		Select("MIN(carbon_footprint) AS min, MAX(carbon_footprint) AS max").
		Where("user_id = ? AND date >= ?", userID, since).
		Scan(&bounds).Error; err != nil {
		return nil, err
	}

	overall.AverageEmissions = round2(overall.TotalEmissions / float64(overall.TotalActivities))
	overall.TotalEmissions = round2(overall.TotalEmissions)
	overall.MinEmissions = round2(bounds.Min)
	overall.MaxEmissions = round2(bounds.Max)

	return &UserStats{
		ByCategory: byCategory,
		Overall:    overall,
		Period:     fmt.Sprintf("%d days", periodDays),
	}, nil
}

// ---------- shared helpers ----------

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func dayKeyUTC(t time.Time) string { return t.UTC().Format("2006-01-02") }

func dayStartUTC(t time.Time) time.Time {
	tt := t.UTC()
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, time.UTC)
}

func dayEndUTC(t time.Time) time.Time {
	tt := t.UTC()
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}
