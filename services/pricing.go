package services

import (
	"bikerent-server/models"
	"fmt"
)

var rentalPlans = map[string]models.Plan{
	"hourly": {
		Key:         "hourly",
		Name:        "Por Hora",
		Description: "Ideal para passeios curtos pela cidade",
		Price:       15.00,
		Unit:        "hora",
	},
	"daily": {
		Key:         "daily",
		Name:        "Diária",
		Description: "Perfeito para um dia inteiro de aventura",
		Price:       80.00,
		Unit:        "dia",
	},
	"weekly": {
		Key:         "weekly",
		Name:        "Semanal",
		Description: "Para quem quer usar a bike por uma semana",
		Price:       300.00,
		Unit:        "semana",
	},
}

var planOrder = []string{"hourly", "daily", "weekly"}

// LookupPlan returns the plan for key or ErrInvalidPlan.
func LookupPlan(key string) (models.Plan, error) {
	plan, exists := rentalPlans[key]
	if !exists {
		return models.Plan{}, fmt.Errorf("%w: %q", ErrInvalidPlan, key)
	}

	return plan, nil
}

// Plans lists every plan from shortest to longest period.
func Plans() []models.Plan {
	plans := make([]models.Plan, 0, len(planOrder))
	for _, key := range planOrder {
		plans = append(plans, rentalPlans[key])
	}

	return plans
}
