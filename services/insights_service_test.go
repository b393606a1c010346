package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/NzamaE/Footprint-Logger-Fullstack/models"
)

func insightsAt(t *testing.T, svc *InsightsService, at time.Time) *InsightsService {
	t.Helper()
	svc.now = func() time.Time { return at }
	return svc
}

func TestWeeklyAnalysisBreakdown(t *testing.T) {
	db := newTestDB(t)
	svc := insightsAt(t, NewInsightsService(db), fixedNow)
	user := seedUser(t, db, "alice")
	ctx := context.Background()

	seedActivity(t, db, user.ID, models.TypeTransport, 20, fixedNow.AddDate(0, 0, -1))
	seedActivity(t, db, user.ID, models.TypeTransport, 10, fixedNow.AddDate(0, 0, -2))
	seedActivity(t, db, user.ID, models.TypeFood, 10, fixedNow.AddDate(0, 0, -3))
	// Older than a week, excluded.
	seedActivity(t, db, user.ID, models.TypeEnergy, 500, fixedNow.AddDate(0, 0, -10))

	analysis, err := svc.WeeklyAnalysis(ctx, user.ID)
	require.NoError(t, err)

	require.Equal(t, 40.0, analysis.TotalWeeklyEmissions)
	require.Equal(t, 3, analysis.ActivitiesThisWeek)
	require.Equal(t, models.TypeTransport, analysis.HighestEmissionCategory)

	require.Len(t, analysis.CategoryBreakdown, 2)
	require.Equal(t, models.TypeTransport, analysis.CategoryBreakdown[0].Category)
	require.Equal(t, 30.0, analysis.CategoryBreakdown[0].TotalEmissions)
	require.Equal(t, 2, analysis.CategoryBreakdown[0].ActivityCount)
	require.Equal(t, 15.0, analysis.CategoryBreakdown[0].AveragePerActivity)
	require.Equal(t, 75.0, analysis.CategoryBreakdown[0].Percentage)

	require.NotEmpty(t, analysis.Insights)
	require.Equal(t, "alert", analysis.Insights[0].Type)
	require.Equal(t, models.TypeTransport, analysis.Insights[0].Category)

	require.Len(t, analysis.WeeklyTips, 3)
	for _, tip := range analysis.WeeklyTips {
		require.Equal(t, models.TypeTransport, tip.Category)
	}

	require.Len(t, analysis.ReductionTargets, 2)
	require.Equal(t, models.TypeTransport, analysis.ReductionTargets[0].Category)
	require.Equal(t, 4.5, analysis.ReductionTargets[0].TargetReduction)
	require.Equal(t, 25.5, analysis.ReductionTargets[0].TargetEmissions)
}

func TestWeeklyAnalysisEmptyWeek(t *testing.T) {
	db := newTestDB(t)
	svc := insightsAt(t, NewInsightsService(db), fixedNow)
	user := seedUser(t, db, "alice")

	analysis, err := svc.WeeklyAnalysis(context.Background(), user.ID)
	require.NoError(t, err)
	require.Zero(t, analysis.TotalWeeklyEmissions)
	require.Empty(t, analysis.HighestEmissionCategory)
	require.Len(t, analysis.Insights, 1)
	require.Equal(t, "Start Your Journey", analysis.Insights[0].Title)
	require.Len(t, analysis.WeeklyTips, 1)
	require.Equal(t, "general", analysis.WeeklyTips[0].Category)
	require.Empty(t, analysis.ReductionTargets)
}

func TestTrendsClassification(t *testing.T) {
	// fixedNow is a Wednesday; this week started Sunday 2025-06-15 and the
	// prior week Sunday 2025-06-08.
	prevWeek := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	thisWeek := time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		latestTotal   float64
		wantDirection string
		wantPct       float64
	}{
		{name: "within threshold is stable", latestTotal: 104, wantDirection: "stable", wantPct: 4},
		{name: "rise above threshold", latestTotal: 110, wantDirection: "increasing", wantPct: 10},
		{name: "drop below threshold", latestTotal: 80, wantDirection: "decreasing", wantPct: -20},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			db := newTestDB(t)
			svc := insightsAt(t, NewInsightsService(db), fixedNow)
			user := seedUser(t, db, "alice")

			seedActivity(t, db, user.ID, models.TypeFood, 100, prevWeek)
			seedActivity(t, db, user.ID, models.TypeFood, testCase.latestTotal, thisWeek)

			report, err := svc.Trends(context.Background(), user.ID, 30)
			require.NoError(t, err)
			require.Equal(t, 2, report.TotalWeeks)
			require.Equal(t, "2025-06-08", report.WeeklyTrends[0].WeekStart)
			require.Equal(t, "2025-06-15", report.WeeklyTrends[1].WeekStart)
			require.Equal(t, testCase.wantDirection, report.TrendDirection.Direction)
			require.Equal(t, testCase.wantPct, report.TrendDirection.PercentageChange)
		})
	}
}

func TestTrendsSingleWeekIsStable(t *testing.T) {
	db := newTestDB(t)
	svc := insightsAt(t, NewInsightsService(db), fixedNow)
	user := seedUser(t, db, "alice")

	seedActivity(t, db, user.ID, models.TypeFood, 10, fixedNow.AddDate(0, 0, -1))

	report, err := svc.Trends(context.Background(), user.ID, 30)
	require.NoError(t, err)
	require.Equal(t, 1, report.TotalWeeks)
	require.Equal(t, "stable", report.TrendDirection.Direction)
	require.Zero(t, report.TrendDirection.Change)
}

func TestTrendsClampsPeriod(t *testing.T) {
	db := newTestDB(t)
	svc := insightsAt(t, NewInsightsService(db), fixedNow)
	user := seedUser(t, db, "alice")

	report, err := svc.Trends(context.Background(), user.ID, 2)
	require.NoError(t, err)
	require.Equal(t, "7 days", report.Period)

	report, err = svc.Trends(context.Background(), user.ID, 9999)
	require.NoError(t, err)
	require.Equal(t, "365 days", report.Period)
}

func TestSetWeeklyGoalPercentage(t *testing.T) {
	db := newTestDB(t)
	svc := insightsAt(t, NewInsightsService(db), fixedNow)
	user := seedUser(t, db, "alice")
	ctx := context.Background()

	// Baseline week is days 14..7 ago.
	seedActivity(t, db, user.ID, models.TypeFood, 50, fixedNow.AddDate(0, 0, -10))

	goal, err := svc.SetWeeklyGoal(ctx, user.ID, SetGoalInput{
		TargetReduction: 10,
		GoalType:        "percentage",
	})
	require.NoError(t, err)
	require.Equal(t, "all", goal.Category)
	require.Equal(t, 50.0, goal.BaselineEmissions)
	require.Equal(t, 45.0, goal.TargetEmissions)
	require.Equal(t, "active", goal.Status)
	require.Equal(t, fixedNow.AddDate(0, 0, 7), goal.EndDate)
}

func TestSetWeeklyGoalAbsoluteAndReplace(t *testing.T) {
	db := newTestDB(t)
	svc := insightsAt(t, NewInsightsService(db), fixedNow)
	user := seedUser(t, db, "alice")
	ctx := context.Background()

	seedActivity(t, db, user.ID, models.TypeFood, 50, fixedNow.AddDate(0, 0, -10))

	_, err := svc.SetWeeklyGoal(ctx, user.ID, SetGoalInput{TargetReduction: 10, GoalType: "percentage"})
	require.NoError(t, err)

	goal, err := svc.SetWeeklyGoal(ctx, user.ID, SetGoalInput{TargetReduction: 5, GoalType: "absolute"})
	require.NoError(t, err)
	require.Equal(t, 45.0, goal.TargetEmissions)

	var count int64
	require.NoError(t, db.Model(&models.WeeklyGoal{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.Equal(t, int64(1), count, "setting a new goal replaces the old one")

	// The superseded goal must be gone for real, not soft-deleted, or it
	// would still hold the unique index on user_id.
	require.NoError(t, db.Unscoped().Model(&models.WeeklyGoal{}).Where("user_id = ?", user.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestSetWeeklyGoalValidation(t *testing.T) {
	db := newTestDB(t)
	svc := insightsAt(t, NewInsightsService(db), fixedNow)
	user := seedUser(t, db, "alice")
	ctx := context.Background()

	tests := []struct {
		name  string
		input SetGoalInput
	}{
		{name: "zero reduction", input: SetGoalInput{TargetReduction: 0, GoalType: "percentage"}},
		{name: "bad goal type", input: SetGoalInput{TargetReduction: 5, GoalType: "weekly"}},
		{name: "bad category", input: SetGoalInput{TargetReduction: 5, GoalType: "absolute", Category: "shopping"}},
	}
	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := svc.SetWeeklyGoal(ctx, user.ID, testCase.input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestWeeklyGoalProgress(t *testing.T) {
	db := newTestDB(t)
	svc := insightsAt(t, NewInsightsService(db), fixedNow)
	user := seedUser(t, db, "alice")
	ctx := context.Background()

	seedActivity(t, db, user.ID, models.TypeFood, 50, fixedNow.AddDate(0, 0, -10))
	_, err := svc.SetWeeklyGoal(ctx, user.ID, SetGoalInput{TargetReduction: 10, GoalType: "percentage"})
	require.NoError(t, err)

	seedActivity(t, db, user.ID, models.TypeFood, 20, fixedNow.Add(2*time.Hour))

	status, err := svc.WeeklyGoalProgress(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, status.HasActiveGoal)
	require.Equal(t, 20.0, status.Progress.CurrentEmissions)
	require.Equal(t, 45.0, status.Progress.TargetEmissions)
	require.Equal(t, 30.0, status.Progress.ReductionAchieved)
	require.Equal(t, 60.0, status.Progress.ProgressPercentage)
	require.True(t, status.Progress.IsOnTrack)
	require.Equal(t, 7, status.Progress.DaysRemaining)
	require.Equal(t, 1, status.Progress.ActivitiesLogged)
}

func TestWeeklyGoalProgressCategoryFilter(t *testing.T) {
	db := newTestDB(t)
	svc := insightsAt(t, NewInsightsService(db), fixedNow)
	user := seedUser(t, db, "alice")
	ctx := context.Background()

	seedActivity(t, db, user.ID, models.TypeFood, 40, fixedNow.AddDate(0, 0, -10))
	_, err := svc.SetWeeklyGoal(ctx, user.ID, SetGoalInput{
		TargetReduction: 5,
		GoalType:        "absolute",
		Category:        models.TypeFood,
	})
	require.NoError(t, err)

	seedActivity(t, db, user.ID, models.TypeFood, 10, fixedNow.Add(time.Hour))
	seedActivity(t, db, user.ID, models.TypeTransport, 99, fixedNow.Add(time.Hour))

	status, err := svc.WeeklyGoalProgress(ctx, user.ID)
	require.NoError(t, err)
	require.True(t, status.HasActiveGoal)
	require.Equal(t, 10.0, status.Progress.CurrentEmissions)
	require.Equal(t, 1, status.Progress.ActivitiesLogged)
}

func TestWeeklyGoalProgressNoGoal(t *testing.T) {
	db := newTestDB(t)
	svc := insightsAt(t, NewInsightsService(db), fixedNow)
	user := seedUser(t, db, "alice")

	status, err := svc.WeeklyGoalProgress(context.Background(), user.ID)
	require.NoError(t, err)
	require.False(t, status.HasActiveGoal)
	require.Nil(t, status.Progress)
}

func TestWeeklyGoalProgressExpiredGoal(t *testing.T) {
	db := newTestDB(t)
	svc := insightsAt(t, NewInsightsService(db), fixedNow)
	user := seedUser(t, db, "alice")
	ctx := context.Background()

	_, err := svc.SetWeeklyGoal(ctx, user.ID, SetGoalInput{TargetReduction: 5, GoalType: "absolute"})
	require.NoError(t, err)

	later := insightsAt(t, NewInsightsService(db), fixedNow.AddDate(0, 0, 8))
	status, err := later.WeeklyGoalProgress(ctx, user.ID)
	require.NoError(t, err)
	require.False(t, status.HasActiveGoal)
}

func TestRecommendationsPatterns(t *testing.T) {
	db := newTestDB(t)
	svc := insightsAt(t, NewInsightsService(db), fixedNow)
	user := seedUser(t, db, "alice")
	ctx := context.Background()

	// Transport dominates and fewer than 14 activities are logged, so both
	// the transport and the tracking cards fire; food stays quiet.
	seedActivity(t, db, user.ID, models.TypeTransport, 50, fixedNow.AddDate(0, 0, -1))
	seedActivity(t, db, user.ID, models.TypeFood, 5, fixedNow.AddDate(0, 0, -2))
	seedActivity(t, db, user.ID, models.TypeEnergy, 5, fixedNow.AddDate(0, 0, -3))

	report, err := svc.Recommendations(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, 3, report.TotalActivitiesAnalyzed)
	require.Len(t, report.Recommendations, 2)
	require.Equal(t, models.TypeTransport, report.Recommendations[0].Type)
	require.Equal(t, "tracking", report.Recommendations[1].Type)
}
