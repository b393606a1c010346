package services

import (
	"strings"

	"github.com/NzamaE/Footprint-Logger-Fullstack/models"
)

// Emission factors in kg CO2 per canonical unit of the activity type:
// transport per km, energy per kWh, food per serving, waste per kg,
// other per item/hour.
var emissionFactors = map[string]map[string]float64{
	models.TypeTransport: {
		"car_gasoline":     0.21,
		"car_diesel":       0.17,
		"car_hybrid":       0.12,
		"car_electric":     0.05,
		"bus":              0.10,
		"train":            0.04,
		"plane":            0.25,
		"public_transport": 0.10,
		"bike":             0,
		"cycling":          0,
		"walking":          0,
	},
	models.TypeEnergy: {
		"coal":        0.95,
		"natural_gas": 0.45,
		"mixed":       0.38,
		"solar":       0.05,
		"hydro":       0.02,
		"nuclear":     0.012,
		"wind":        0.011,
	},
	models.TypeFood: {
		"meat":       5.0,
		"dairy":      1.9,
		"processed":  1.8,
		"grains":     0.6,
		"organic":    0.5,
		"vegetables": 0.4,
		"local":      0.3,
	},
	models.TypeWaste: {
		"general":   0.58,
		"recycling": 0.09,
		"compost":   0.05,
		"hazardous": 1.2,
	},
}

// Average factor per type, used when no sub-category is given.
var defaultFactors = map[string]float64{
	models.TypeTransport: 0.15,
	models.TypeEnergy:    0.38,
	models.TypeFood:      1.5,
	models.TypeWaste:     0.5,
	models.TypeOther:     0.3,
}

// Conversion into the canonical unit of each type.
var unitConversions = map[string]map[string]float64{
	models.TypeTransport: {"km": 1, "miles": 1.60934, "m": 0.001},
	models.TypeEnergy:    {"kWh": 1, "MWh": 1000, "BTU": 0.000293071},
	models.TypeFood:      {"servings": 1, "items": 1, "pieces": 1},
	models.TypeWaste:     {"kg": 1, "lbs": 0.453592, "g": 0.001},
	models.TypeOther: {
		"items": 1, "pieces": 1, "servings": 1,
		"hours": 1, "minutes": 1.0 / 60.0, "days": 24,
	},
}

// CalculateEmission converts a quantity into kilograms of CO2 for the given
// activity type and details. It is a pure lookup: same inputs, same outputs.
// The factor actually applied is returned alongside the footprint.
func CalculateEmission(activityType string, quantity models.Quantity, details models.ActivityDetails) (float64, float64, error) {
	if !models.ValidActivityType(activityType) {
		return 0, 0, invalidf("activity type must be one of: %s", strings.Join(models.ActivityTypes, ", "))
	}
	if quantity.Value < 0 {
		return 0, 0, invalid("quantity value cannot be negative")
	}
	if !models.ValidUnit(quantity.Unit) {
		return 0, 0, invalidf("quantity unit must be one of: %s", strings.Join(models.AllowedUnits, ", "))
	}

	conversions := unitConversions[activityType]
	scale, ok := conversions[quantity.Unit]
	if !ok {
		return 0, 0, invalidf("unit %q is not valid for %s activities", quantity.Unit, activityType)
	}

	factor, err := resolveFactor(activityType, details)
	if err != nil {
		return 0, 0, err
	}

	return round2(quantity.Value * scale * factor), factor, nil
}

// resolveFactor picks the (type, sub-category) factor, falling back to the
// per-type average when the details carry no sub-category.
func resolveFactor(activityType string, details models.ActivityDetails) (float64, error) {
	sub := subCategory(activityType, details)
	if sub == "" {
		return defaultFactors[activityType], nil
	}
	factor, ok := emissionFactors[activityType][sub]
	if !ok {
		return 0, invalidf("unknown %s sub-category %q", activityType, sub)
	}
	return factor, nil
}

func subCategory(activityType string, details models.ActivityDetails) string {
	switch activityType {
	case models.TypeTransport:
		// Human-powered modes win outright; a car is further keyed by fuel.
		switch details.FuelType {
		case "walking", "cycling", "public_transport":
			return details.FuelType
		}
		if details.VehicleType == "car" {
			if details.FuelType == "" {
				return "car_gasoline"
			}
			return "car_" + details.FuelType
		}
		return details.VehicleType
	case models.TypeEnergy:
		return details.EnergySource
	case models.TypeFood:
		return details.FoodCategory
	case models.TypeWaste:
		return details.WasteType
	default:
		return ""
	}
}
