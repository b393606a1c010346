package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/NzamaE/Footprint-Logger-Fullstack/models"
)

// Weekly totals within 5% of each other count as stable.
const trendStableThresholdPct = 5.0

type InsightsService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewInsightsService(db *gorm.DB) *InsightsService {
	return &InsightsService{db: db, now: time.Now}
}

// ---------- Weekly analysis ----------

type Insight struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Category   string `json:"category,omitempty"`
	Priority   string `json:"priority"`
	Actionable bool   `json:"actionable"`
}

type WeeklyTip struct {
	Category        string  `json:"category,omitempty"`
	Tip             string  `json:"tip"`
	PotentialSaving float64 `json:"potentialSaving"`
	Difficulty      string  `json:"difficulty"`
}

type ReductionTarget struct {
	Category            string  `json:"category"`
	CurrentEmissions    float64 `json:"currentEmissions"`
	TargetReduction     float64 `json:"targetReduction"`
	TargetEmissions     float64 `json:"targetEmissions"`
	ReductionPercentage float64 `json:"reductionPercentage"`
}

type CategoryBreakdown struct {
	Category           string  `json:"category"`
	TotalEmissions     float64 `json:"totalEmissions"`
	ActivityCount      int     `json:"activityCount"`
	AveragePerActivity float64 `json:"averagePerActivity"`
	Percentage         float64 `json:"percentage"`
}

type WeeklyAnalysis struct {
	Period                  string              `json:"period"`
	TotalWeeklyEmissions    float64             `json:"totalWeeklyEmissions"`
	HighestEmissionCategory string              `json:"highestEmissionCategory"`
	CategoryBreakdown       []CategoryBreakdown `json:"categoryBreakdown"`
	Insights                []Insight           `json:"insights"`
	WeeklyTips              []WeeklyTip         `json:"weeklyTips"`
	ReductionTargets        []ReductionTarget   `json:"reductionTargets"`
	ActivitiesThisWeek      int                 `json:"activitiesThisWeek"`
}

func (s *InsightsService) WeeklyAnalysis(ctx context.Context, userID uint) (*WeeklyAnalysis, error) {
	since := s.now().AddDate(0, 0, -7)

	var activities []models.Activity
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Find(&activities).Error; err != nil {
		return nil, err
	}

	type categoryAcc struct {
		total float64
		count int
	}
	perCategory := map[string]*categoryAcc{}
	categoryTotals := map[string]float64{}
	var total float64
	for _, a := range activities {
		acc := perCategory[a.Type]
		if acc == nil {
			acc = &categoryAcc{}
			perCategory[a.Type] = acc
		}
		acc.total += a.CarbonFootprint
		acc.count++
		categoryTotals[a.Type] += a.CarbonFootprint
		total += a.CarbonFootprint
	}

	highestCategory := ""
	var highest float64
	for category, acc := range perCategory {
		if acc.total > highest || (acc.total == highest && highestCategory != "" && category < highestCategory) {
			highest = acc.total
			highestCategory = category
		}
	}

	breakdown := make([]CategoryBreakdown, 0, len(perCategory))
	for category, acc := range perCategory {
		pct := 0.0
		if total > 0 {
			pct = round1(acc.total / total * 100)
		}
		breakdown = append(breakdown, CategoryBreakdown{
			Category:           category,
			TotalEmissions:     round2(acc.total),
			ActivityCount:      acc.count,
			AveragePerActivity: round2(acc.total / float64(acc.count)),
			Percentage:         pct,
		})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].TotalEmissions != breakdown[j].TotalEmissions {
			return breakdown[i].TotalEmissions > breakdown[j].TotalEmissions
		}
		return breakdown[i].Category < breakdown[j].Category
	})

	return &WeeklyAnalysis{
		Period:                  "Last 7 days",
		TotalWeeklyEmissions:    round2(total),
		HighestEmissionCategory: highestCategory,
		CategoryBreakdown:       breakdown,
		Insights:                buildInsights(categoryTotals, highestCategory, total),
		WeeklyTips:              buildWeeklyTips(highestCategory),
		ReductionTargets:        buildReductionTargets(categoryTotals),
		ActivitiesThisWeek:      len(activities),
	}, nil
}

func buildInsights(categoryTotals map[string]float64, highestCategory string, total float64) []Insight {
	if total == 0 {
		return []Insight{{
			Type:     "info",
			Title:    "Start Your Journey",
			Message:  "No activities logged this week. Start tracking your carbon footprint to get personalized insights!",
			Priority: "high",
		}}
	}

	insights := []Insight{}
	if highestCategory != "" {
		share := categoryTotals[highestCategory] / total * 100
		insights = append(insights, Insight{
			Type:  "alert",
			Title: fmt.Sprintf("%s is your biggest contributor", titleCase(highestCategory)),
			Message: fmt.Sprintf("%.0f%% of your emissions (%.1f kg CO₂) come from %s activities.",
				share, categoryTotals[highestCategory], highestCategory),
			Category:   highestCategory,
			Priority:   "high",
			Actionable: true,
		})
	}

	// Rough global benchmark of 35 kg CO2 per person per week.
	switch {
	case total > 50:
		insights = append(insights, Insight{
			Type:       "warning",
			Title:      "High Weekly Emissions",
			Message:    fmt.Sprintf("Your weekly emissions (%.1f kg CO₂) are above the global average of 35 kg per week.", total),
			Priority:   "medium",
			Actionable: true,
		})
	case total < 20:
		insights = append(insights, Insight{
			Type:     "success",
			Title:    "Great Progress!",
			Message:  fmt.Sprintf("Your weekly emissions (%.1f kg CO₂) are well below the global average.", total),
			Priority: "low",
		})
	}
	return insights
}

var categoryTips = map[string][]WeeklyTip{
	models.TypeTransport: {
		{Tip: "Try cycling or walking for trips under 5km this week", PotentialSaving: 3.5, Difficulty: "medium"},
		{Tip: "Use public transport twice instead of driving", PotentialSaving: 2.8, Difficulty: "easy"},
		{Tip: "Combine multiple errands into one trip", PotentialSaving: 1.5, Difficulty: "easy"},
	},
	models.TypeFood: {
		{Tip: "Try 2 plant-based meals this week", PotentialSaving: 4.2, Difficulty: "medium"},
		{Tip: "Reduce red meat consumption by one meal", PotentialSaving: 6.8, Difficulty: "easy"},
		{Tip: "Buy local, seasonal produce", PotentialSaving: 2.1, Difficulty: "easy"},
	},
	models.TypeEnergy: {
		{Tip: "Lower the thermostat by 2°C when not home", PotentialSaving: 3.2, Difficulty: "easy"},
		{Tip: "Unplug devices when not in use", PotentialSaving: 1.8, Difficulty: "easy"},
		{Tip: "Use cold water for washing clothes", PotentialSaving: 2.5, Difficulty: "easy"},
	},
	models.TypeWaste: {
		{Tip: "Start composting organic waste", PotentialSaving: 1.2, Difficulty: "medium"},
		{Tip: "Recycle all eligible materials", PotentialSaving: 0.8, Difficulty: "easy"},
	},
}

func buildWeeklyTips(highestCategory string) []WeeklyTip {
	if highestCategory == "" {
		return []WeeklyTip{{
			Category:   "general",
			Tip:        "Start logging daily activities to get personalized reduction tips!",
			Difficulty: "easy",
		}}
	}
	tips := categoryTips[highestCategory]
	if len(tips) > 3 {
		tips = tips[:3]
	}
	out := make([]WeeklyTip, len(tips))
	for i, tip := range tips {
		tip.Category = highestCategory
		out[i] = tip
	}
	return out
}

func buildReductionTargets(categoryTotals map[string]float64) []ReductionTarget {
	const reductionPct = 15.0
	targets := make([]ReductionTarget, 0, len(categoryTotals))
	for category, emissions := range categoryTotals {
		reduction := emissions * reductionPct / 100
		targets = append(targets, ReductionTarget{
			Category:            category,
			CurrentEmissions:    round2(emissions),
			TargetReduction:     round2(reduction),
			TargetEmissions:     round2(emissions - reduction),
			ReductionPercentage: reductionPct,
		})
	}
	sort.Slice(targets, func(i, j int) bool {
		if targets[i].CurrentEmissions != targets[j].CurrentEmissions {
			return targets[i].CurrentEmissions > targets[j].CurrentEmissions
		}
		return targets[i].Category < targets[j].Category
	})
	return targets
}

// ---------- Trends ----------

type WeeklyTrend struct {
	WeekStart      string             `json:"weekStart"`
	TotalEmissions float64            `json:"totalEmissions"`
	ActivityCount  int                `json:"activityCount"`
	ByCategory     map[string]float64 `json:"byCategory"`
}

type TrendDirection struct {
	Direction        string  `json:"direction"`
	Change           float64 `json:"change"`
	PercentageChange float64 `json:"percentageChange"`
}

type TrendReport struct {
	Period         string         `json:"period"`
	WeeklyTrends   []WeeklyTrend  `json:"weeklyTrends"`
	TrendDirection TrendDirection `json:"trendDirection"`
	TotalWeeks     int            `json:"totalWeeks"`
}

// Trends groups the user's activities by UTC week (Sunday start) and
// classifies the movement between the two most recent weeks. Changes within
// the stable threshold report as "stable".
func (s *InsightsService) Trends(ctx context.Context, userID uint, periodDays int) (*TrendReport, error) {
	if periodDays < 7 {
		periodDays = 7
	}
	if periodDays > 365 {
		periodDays = 365
	}
	since := s.now().AddDate(0, 0, -periodDays)

	var activities []models.Activity
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Order("date ASC").
		Find(&activities).Error; err != nil {
		return nil, err
	}

	weeks := map[string]*WeeklyTrend{}
	for _, a := range activities {
		key := weekStartUTC(a.Date).Format("2006-01-02")
		trend := weeks[key]
		if trend == nil {
			trend = &WeeklyTrend{WeekStart: key, ByCategory: map[string]float64{}}
			weeks[key] = trend
		}
		trend.TotalEmissions += a.CarbonFootprint
		trend.ActivityCount++
		trend.ByCategory[a.Type] += a.CarbonFootprint
	}

	trends := make([]WeeklyTrend, 0, len(weeks))
	for _, trend := range weeks {
		trend.TotalEmissions = round2(trend.TotalEmissions)
		for category, emissions := range trend.ByCategory {
			trend.ByCategory[category] = round2(emissions)
		}
		trends = append(trends, *trend)
	}
	sort.Slice(trends, func(i, j int) bool { return trends[i].WeekStart < trends[j].WeekStart })

	return &TrendReport{
		Period:         fmt.Sprintf("%d days", periodDays),
		WeeklyTrends:   trends,
		TrendDirection: classifyTrend(trends),
		TotalWeeks:     len(trends),
	}, nil
}

func classifyTrend(trends []WeeklyTrend) TrendDirection {
	if len(trends) < 2 {
		return TrendDirection{Direction: "stable"}
	}
	previous := trends[len(trends)-2].TotalEmissions
	latest := trends[len(trends)-1].TotalEmissions
	change := latest - previous

	pctChange := 0.0
	if previous > 0 {
		pctChange = change / previous * 100
	}

	direction := "stable"
	if pctChange > trendStableThresholdPct {
		direction = "increasing"
	} else if pctChange < -trendStableThresholdPct {
		direction = "decreasing"
	}

	return TrendDirection{
		Direction:        direction,
		Change:           round2(change),
		PercentageChange: round1(pctChange),
	}
}

func weekStartUTC(t time.Time) time.Time {
	tt := t.UTC()
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -int(tt.Weekday()))
}

// ---------- Weekly goals ----------

type SetGoalInput struct {
	TargetReduction float64 `json:"targetReduction"`
	Category        string  `json:"category"`
	GoalType        string  `json:"goalType"`
}

// SetWeeklyGoal derives a baseline from the prior week (days 14..7 ago) and
// stores the target. A user's previous goal, if any, is replaced.
func (s *InsightsService) SetWeeklyGoal(ctx context.Context, userID uint, input SetGoalInput) (*models.WeeklyGoal, error) {
	if input.TargetReduction <= 0 {
		return nil, invalid("target reduction must be a positive number")
	}
	if input.GoalType != "percentage" && input.GoalType != "absolute" {
		return nil, invalid("goal type must be percentage or absolute")
	}
	if input.Category == "" {
		input.Category = "all"
	}
	if input.Category != "all" && !models.ValidActivityType(input.Category) {
		return nil, invalidf("category must be 'all' or one of: %s", strings.Join(models.ActivityTypes, ", "))
	}

	now := s.now()
	baseline, err := s.windowEmissions(ctx, userID, input.Category, now.AddDate(0, 0, -14), now.AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}

	target := baseline - input.TargetReduction
	if input.GoalType == "percentage" {
		target = baseline * (1 - input.TargetReduction/100)
	}

	goal := models.WeeklyGoal{
		UserID:            userID,
		Category:          input.Category,
		GoalType:          input.GoalType,
		TargetReduction:   input.TargetReduction,
		BaselineEmissions: round2(baseline),
		TargetEmissions:   round2(target),
		StartDate:         now,
		EndDate:           now.AddDate(0, 0, 7),
		Status:            "active",
	}

	// Hard delete: a soft-deleted row would still occupy the unique index on
	// user_id and block the insert.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", userID).Delete(&models.WeeklyGoal{}).Error; err != nil {
			return err
		}
		return tx.Create(&goal).Error
	})
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

type GoalProgress struct {
	CurrentEmissions   float64 `json:"currentEmissions"`
	TargetEmissions    float64 `json:"targetEmissions"`
	BaselineEmissions  float64 `json:"baselineEmissions"`
	ReductionAchieved  float64 `json:"reductionAchieved"`
	ProgressPercentage float64 `json:"progressPercentage"`
	IsOnTrack          bool    `json:"isOnTrack"`
	DaysRemaining      int     `json:"daysRemaining"`
	ActivitiesLogged   int     `json:"activitiesLogged"`
}

type GoalStatus struct {
	HasActiveGoal bool               `json:"hasActiveGoal"`
	Message       string             `json:"message,omitempty"`
	Goal          *models.WeeklyGoal `json:"goal,omitempty"`
	Progress      *GoalProgress      `json:"progress,omitempty"`
}

func (s *InsightsService) WeeklyGoalProgress(ctx context.Context, userID uint) (*GoalStatus, error) {
	now := s.now()

	var goal models.WeeklyGoal
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && now.After(goal.EndDate)) {
		return &GoalStatus{HasActiveGoal: false, Message: "No active weekly goal found"}, nil
	}
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("user_id = ? AND date >= ?", userID, goal.StartDate)
	if goal.Category != "all" {
		query = query.Where("type = ?", goal.Category)
	}

	var current struct {
		Total float64
		Count int
	}
	if err := query.
		Select("COALESCE(SUM(carbon_footprint), 0) AS total, COUNT(*) AS count").
		Scan(&current).Error; err != nil {
		return nil, err
	}

	progressPct := 0.0
	if goal.BaselineEmissions > 0 {
		progressPct = round1((goal.BaselineEmissions - current.Total) / goal.BaselineEmissions * 100)
	}
	daysRemaining := int(math.Ceil(goal.EndDate.Sub(now).Hours() / 24))

	return &GoalStatus{
		HasActiveGoal: true,
		Goal:          &goal,
		Progress: &GoalProgress{
			CurrentEmissions:   round2(current.Total),
			TargetEmissions:    goal.TargetEmissions,
			BaselineEmissions:  goal.BaselineEmissions,
			ReductionAchieved:  round2(goal.BaselineEmissions - current.Total),
			ProgressPercentage: progressPct,
			IsOnTrack:          current.Total <= goal.TargetEmissions,
			DaysRemaining:      daysRemaining,
			ActivitiesLogged:   current.Count,
		},
	}, nil
}

func (s *InsightsService) windowEmissions(ctx context.Context, userID uint, category string, from, to time.Time) (float64, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to)
	if category != "all" {
		query = query.Where("type = ?", category)
	}
	var total float64
	err := query.Select("COALESCE(SUM(carbon_footprint), 0)").Scan(&total).Error
	return total, err
}

// ---------- Recommendations ----------

type Recommendation struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Actions     []string `json:"actions"`
	Impact      string   `json:"impact"`
	Difficulty  string   `json:"difficulty"`
}

type RecommendationReport struct {
	Recommendations         []Recommendation `json:"recommendations"`
	AnalysisPeriod          string           `json:"analysisPeriod"`
	TotalActivitiesAnalyzed int              `json:"totalActivitiesAnalyzed"`
}

// Recommendations inspects 30 days of logging patterns and returns canned
// suggestion cards for the dominant ones.
func (s *InsightsService) Recommendations(ctx context.Context, userID uint) (*RecommendationReport, error) {
	since := s.now().AddDate(0, 0, -30)

	var activities []models.Activity
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, since).
		Find(&activities).Error; err != nil {
		return nil, err
	}

	var total float64
	perCategory := map[string]float64{}
	for _, a := range activities {
		total += a.CarbonFootprint
		perCategory[a.Type] += a.CarbonFootprint
	}

	recommendations := []Recommendation{}
	if perCategory[models.TypeTransport] > total*0.4 {
		recommendations = append(recommendations, Recommendation{
			Type:        models.TypeTransport,
			Title:       "Optimize Your Transportation",
			Description: "Your transport emissions are high. Consider alternative modes of transport.",
			Actions: []string{
				"Use public transport 2 days per week",
				"Walk or cycle for trips under 3km",
				"Plan combined trips to reduce total distance",
			},
			Impact:     "high",
			Difficulty: "medium",
		})
	}
	if perCategory[models.TypeFood] > total*0.3 {
		recommendations = append(recommendations, Recommendation{
			Type:        models.TypeFood,
			Title:       "Sustainable Diet Choices",
			Description: "Food choices significantly impact your carbon footprint.",
			Actions: []string{
				"Try plant-based meals 3 times per week",
				"Buy local and seasonal produce",
				"Reduce food waste by meal planning",
			},
			Impact:     "high",
			Difficulty: "easy",
		})
	}
	if len(activities) < 14 {
		recommendations = append(recommendations, Recommendation{
			Type:        "tracking",
			Title:       "Improve Activity Tracking",
			Description: "More consistent logging will give you better insights.",
			Actions: []string{
				"Set daily reminders to log activities",
				"Use quick-add templates for common activities",
				"Review and update your log weekly",
			},
			Impact:     "medium",
			Difficulty: "easy",
		})
	}

	return &RecommendationReport{
		Recommendations:         recommendations,
		AnalysisPeriod:          "30 days",
		TotalActivitiesAnalyzed: len(activities),
	}, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
