package models

import (
	"time"

	"gorm.io/gorm"
)

// WeeklyGoal is a 7-day reduction target. A user has at most one; setting a
// new goal supersedes the previous one.
type WeeklyGoal struct {
	gorm.Model
	UserID            uint      `gorm:"uniqueIndex;not null" json:"userId"`
	Category          string    `gorm:"default:all" json:"category"`
	GoalType          string    `gorm:"not null" json:"goalType"` // percentage | absolute
	TargetReduction   float64   `gorm:"not null" json:"targetReduction"`
	BaselineEmissions float64   `json:"baselineEmissions"`
	TargetEmissions   float64   `json:"targetEmissions"`
	StartDate         time.Time `json:"startDate"`
	EndDate           time.Time `json:"endDate"`
	Status            string    `gorm:"default:active" json:"status"`
}
