package models

import (
	"time"

	"gorm.io/gorm"
)

// Activity type enumeration. Validation and persistence both read from here;
// nothing else in the codebase re-declares these values.
const (
	TypeTransport = "transport"
	TypeEnergy    = "energy"
	TypeFood      = "food"
	TypeWaste     = "waste"
	TypeOther     = "other"
)

var ActivityTypes = []string{TypeTransport, TypeEnergy, TypeFood, TypeWaste, TypeOther}

func ValidActivityType(t string) bool {
	for _, v := range ActivityTypes {
		if v == t {
			return true
		}
	}
	return false
}

// AllowedUnits is the full set of quantity units an activity may carry.
// Whether a unit makes sense for a given activity type is decided by the
// emission calculator.
var AllowedUnits = []string{
	"km", "miles", "m", // distance
	"L", "gallons", "ml", // volume
	"hours", "minutes", "days", // time
	"kg", "lbs", "g", // weight
	"kWh", "MWh", "BTU", // energy
	"items", "pieces", "servings", // count
}

func ValidUnit(u string) bool {
	for _, v := range AllowedUnits {
		if v == u {
			return true
		}
	}
	return false
}

type Quantity struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// ActivityDetails holds the type-specific sub-record. Only the fields for
// the activity's own type are expected to be set.
type ActivityDetails struct {
	Distance     float64 `json:"distance,omitempty"`
	FuelType     string  `json:"fuelType,omitempty"`
	VehicleType  string  `json:"vehicleType,omitempty"`
	EnergyUsage  float64 `json:"energyUsage,omitempty"`
	EnergySource string  `json:"energySource,omitempty"`
	MealType     string  `json:"mealType,omitempty"`
	FoodCategory string  `json:"foodCategory,omitempty"`
	WasteAmount  float64 `json:"wasteAmount,omitempty"`
	WasteType    string  `json:"wasteType,omitempty"`
}

type Activity struct {
	gorm.Model
	UserID          uint            `gorm:"index:idx_activities_user_date;not null" json:"userId"`
	Type            string          `gorm:"index;not null" json:"type"`
	Name            string          `gorm:"size:100;not null" json:"name"`
	Description     string          `gorm:"size:500" json:"description"`
	Quantity        Quantity        `gorm:"embedded;embeddedPrefix:quantity_" json:"quantity"`
	CarbonFootprint float64         `gorm:"not null" json:"carbonFootprint"`
	// EmissionFactor is the factor the calculator applied; zero when the
	// client supplied the footprint directly.
	EmissionFactor float64 `json:"emissionFactor"`
	Date            time.Time       `gorm:"index:idx_activities_user_date;not null" json:"date"`
	Details         ActivityDetails `gorm:"embedded;embeddedPrefix:detail_" json:"details"`
}
