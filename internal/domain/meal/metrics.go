package meal

type Metrics struct {
	TotalMeals         int `json:"totalMeals"`
	TotalMealsOnDiet   int `json:"totalMealsOnDiet"`
	TotalMealsOffDiet  int `json:"totalMealsOffDiet"`
	BestSequenceOnDiet int `json:"bestSequenceOnDiet"`
}

// ComputeMetrics expects meals already ordered ascending by Date. The best
// streak is the longest run of consecutive on-diet meals in that order,
// reset by any off-diet meal.
func ComputeMetrics(meals []Meal) Metrics {
	m := Metrics{TotalMeals: len(meals)}

	current := 0

	for _, entry := range meals {
		if entry.IsOnDiet {
			m.TotalMealsOnDiet++
			current++

			if current > m.BestSequenceOnDiet {
				m.BestSequenceOnDiet = current
			}
		} else {
			current = 0
		}
	}

	m.TotalMealsOffDiet = m.TotalMeals - m.TotalMealsOnDiet

	return m
}
