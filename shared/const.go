package shared

const (
	// DailyLoginBonus is credited at most once per UTC calendar day.
	DailyLoginBonus = 10
)
