// Package nutrition provides the pure calculations behind profile setup and
// the calorie target recomputed before a meal plan generation job is
// dispatched.
package nutrition

import "math"

const (
	cmPerInch   = 2.54
	lbsPerKg    = 2.20462
	inchPerFoot = 12
)

// HeightToImperial converts centimeters to inches.
func HeightToImperial(cm float64) float64 {
	return round1(cm / cmPerInch)
}

// HeightToMetric converts inches to centimeters.
func HeightToMetric(inches float64) float64 {
	return round1(inches * cmPerInch)
}

// WeightToImperial converts kilograms to pounds.
func WeightToImperial(kg float64) float64 {
	return round1(kg * lbsPerKg)
}

// WeightToMetric converts pounds to kilograms.
func WeightToMetric(lbs float64) float64 {
	return round1(lbs / lbsPerKg)
}

// BMI computes the body mass index from metric inputs.
func BMI(weightKg, heightCm float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	heightM := heightCm / 100
	return round1(weightKg / (heightM * heightM))
}

// BasalMetabolicRateHarrisBenedict computes BMR (kcal/day) with the revised
// Harris-Benedict equation. Metric inputs.
func BasalMetabolicRateHarrisBenedict(weightKg, heightCm float64, age int, biologicalSex string) float64 {
	if biologicalSex == "male" {
		return 88.362 + 13.397*weightKg + 4.799*heightCm - 5.677*float64(age)
	}
	return 447.593 + 9.247*weightKg + 3.098*heightCm - 4.330*float64(age)
}

// BasalMetabolicRateMifflinStJeor computes BMR (kcal/day) with the
// Mifflin-St Jeor equation. Metric inputs.
func BasalMetabolicRateMifflinStJeor(weightKg, heightCm float64, age int, biologicalSex string) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if biologicalSex == "male" {
		return base + 5
	}
	return base - 161
}

// BasalMetabolicRate averages the two supported BMR equations, which smooths
// the bias either formula shows at the extremes.
func BasalMetabolicRate(weightKg, heightCm float64, age int, biologicalSex string) int {
	hb := BasalMetabolicRateHarrisBenedict(weightKg, heightCm, age, biologicalSex)
	msj := BasalMetabolicRateMifflinStJeor(weightKg, heightCm, age, biologicalSex)
	return int(math.Round((hb + msj) / 2))
}

// activityFactors maps activity levels to total-energy multipliers.
var activityFactors = map[string]float64{
	"sedentary":         1.2,
	"lightly_active":    1.375,
	"moderately_active": 1.55,
	"very_active":       1.725,
	"extra_active":      1.9,
}

// CaloriesGoalByActivityLevel scales a BMR by the user's activity level.
// Unknown levels fall back to sedentary.
func CaloriesGoalByActivityLevel(bmr int, activityLevel string) int {
	factor, ok := activityFactors[activityLevel]
	if !ok {
		factor = activityFactors["sedentary"]
	}
	return int(math.Round(float64(bmr) * factor))
}

// goalAdjustments maps goal types to daily calorie deltas.
var goalAdjustments = map[string]int{
	"lose_weight":     -500,
	"maintain_weight": 0,
	"gain_weight":     500,
	"build_muscle":    250,
}

// CaloriesGoalByGoalType adjusts an activity-scaled calorie budget for the
// user's stated goal. Unknown goals leave the budget unchanged.
func CaloriesGoalByGoalType(calories int, goal string) int {
	return calories + goalAdjustments[goal]
}

// RoundCaloriesGoal rounds a calorie goal to the nearest 100, which is the
// granularity the generation workers plan against.
func RoundCaloriesGoal(calories int) int {
	return int(math.Round(float64(calories)/100) * 100)
}

// DailyCaloriesGoal runs the full pipeline: averaged BMR, activity scaling,
// goal adjustment, rounding.
func DailyCaloriesGoal(weightKg, heightCm float64, age int, biologicalSex, activityLevel, goal string) int {
	bmr := BasalMetabolicRate(weightKg, heightCm, age, biologicalSex)
	calories := CaloriesGoalByActivityLevel(bmr, activityLevel)
	calories = CaloriesGoalByGoalType(calories, goal)
	return RoundCaloriesGoal(calories)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
