package services

import (
	"errors"
	"testing"

	"github.com/NzamaE/Footprint-Logger-Fullstack/models"
)

func TestCalculateEmission(t *testing.T) {
	tests := []struct {
		name          string
		activityType  string
		quantity      models.Quantity
		details       models.ActivityDetails
		wantFootprint float64
		wantFactor    float64
	}{
		{
			name:          "gasoline car per km",
			activityType:  models.TypeTransport,
			quantity:      models.Quantity{Value: 100, Unit: "km"},
			details:       models.ActivityDetails{VehicleType: "car", FuelType: "gasoline"},
			wantFootprint: 21,
			wantFactor:    0.21,
		},
		{
			name:          "miles convert to km",
			activityType:  models.TypeTransport,
			quantity:      models.Quantity{Value: 10, Unit: "miles"},
			details:       models.ActivityDetails{VehicleType: "car", FuelType: "gasoline"},
			wantFootprint: 3.38,
			wantFactor:    0.21,
		},
		{
			name:          "car defaults to gasoline",
			activityType:  models.TypeTransport,
			quantity:      models.Quantity{Value: 10, Unit: "km"},
			details:       models.ActivityDetails{VehicleType: "car"},
			wantFootprint: 2.1,
			wantFactor:    0.21,
		},
		{
			name:          "no details falls back to type average",
			activityType:  models.TypeTransport,
			quantity:      models.Quantity{Value: 10, Unit: "km"},
			wantFootprint: 1.5,
			wantFactor:    0.15,
		},
		{
			name:          "walking is free",
			activityType:  models.TypeTransport,
			quantity:      models.Quantity{Value: 5, Unit: "km"},
			details:       models.ActivityDetails{FuelType: "walking"},
			wantFootprint: 0,
			wantFactor:    0,
		},
		{
			name:          "coal electricity per kWh",
			activityType:  models.TypeEnergy,
			quantity:      models.Quantity{Value: 10, Unit: "kWh"},
			details:       models.ActivityDetails{EnergySource: "coal"},
			wantFootprint: 9.5,
			wantFactor:    0.95,
		},
		{
			name:          "MWh scales up",
			activityType:  models.TypeEnergy,
			quantity:      models.Quantity{Value: 0.5, Unit: "MWh"},
			details:       models.ActivityDetails{EnergySource: "wind"},
			wantFootprint: 5.5,
			wantFactor:    0.011,
		},
		{
			name:          "meat meal per serving",
			activityType:  models.TypeFood,
			quantity:      models.Quantity{Value: 2, Unit: "servings"},
			details:       models.ActivityDetails{FoodCategory: "meat"},
			wantFootprint: 10,
			wantFactor:    5.0,
		},
		{
			name:          "waste in grams",
			activityType:  models.TypeWaste,
			quantity:      models.Quantity{Value: 500, Unit: "g"},
			details:       models.ActivityDetails{WasteType: "general"},
			wantFootprint: 0.29,
			wantFactor:    0.58,
		},
		{
			name:          "other uses flat factor",
			activityType:  models.TypeOther,
			quantity:      models.Quantity{Value: 3, Unit: "items"},
			wantFootprint: 0.9,
			wantFactor:    0.3,
		},
		{
			name:          "zero quantity yields zero",
			activityType:  models.TypeFood,
			quantity:      models.Quantity{Value: 0, Unit: "servings"},
			details:       models.ActivityDetails{FoodCategory: "meat"},
			wantFootprint: 0,
			wantFactor:    5.0,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			footprint, factor, err := CalculateEmission(testCase.activityType, testCase.quantity, testCase.details)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if footprint != testCase.wantFootprint {
				t.Fatalf("footprint = %v, want %v", footprint, testCase.wantFootprint)
			}
			if factor != testCase.wantFactor {
				t.Fatalf("factor = %v, want %v", factor, testCase.wantFactor)
			}
		})
	}
}

func TestCalculateEmissionRejectsBadInput(t *testing.T) {
	tests := []struct {
		name         string
		activityType string
		quantity     models.Quantity
		details      models.ActivityDetails
	}{
		{
			name:         "unknown activity type",
			activityType: "aviation",
			quantity:     models.Quantity{Value: 1, Unit: "km"},
		},
		{
			name:         "unit not in allowed set",
			activityType: models.TypeTransport,
			quantity:     models.Quantity{Value: 1, Unit: "furlongs"},
		},
		{
			name:         "unit incompatible with type",
			activityType: models.TypeTransport,
			quantity:     models.Quantity{Value: 1, Unit: "kWh"},
		},
		{
			name:         "negative quantity",
			activityType: models.TypeWaste,
			quantity:     models.Quantity{Value: -1, Unit: "kg"},
		},
		{
			name:         "unknown sub-category",
			activityType: models.TypeEnergy,
			quantity:     models.Quantity{Value: 1, Unit: "kWh"},
			details:      models.ActivityDetails{EnergySource: "geothermal"},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			_, _, err := CalculateEmission(testCase.activityType, testCase.quantity, testCase.details)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
		})
	}
}

func TestCalculateEmissionIsDeterministic(t *testing.T) {
	quantity := models.Quantity{Value: 42.5, Unit: "km"}
	details := models.ActivityDetails{VehicleType: "train"}

	first, firstFactor, err := CalculateEmission(models.TypeTransport, quantity, details)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, secondFactor, err := CalculateEmission(models.TypeTransport, quantity, details)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second || firstFactor != secondFactor {
		t.Fatalf("same input produced different outputs: %v/%v vs %v/%v", first, firstFactor, second, secondFactor)
	}
}
