package calendar

// Day is one calendar date in a contribution calendar
type Day struct {
	Date              string `json:"date"` // YYYY-MM-DD
	ContributionCount int    `json:"contributionCount"`
	Color             string `json:"color"`
	Weekday           int    `json:"weekday"` // 0-6, Sunday first
}

// Week is a run of 1-7 consecutive days. Only the first and last week
// of a period are shorter than 7.
type Week struct {
	FirstDay         string `json:"firstDay"`
	ContributionDays []Day  `json:"contributionDays"`
}

// Calendar is one (username, period) contribution calendar as reported by
// the provider. TotalContributions is the provider's figure and is never
// recomputed locally.
type Calendar struct {
	TotalContributions int    `json:"totalContributions"`
	Weeks              []Week `json:"weeks"`
}

// FindDay returns the day with the given date
func (c *Calendar) FindDay(date string) (Day, bool) {
	if c == nil {
		return Day{}, false
	}
	for _, w := range c.Weeks {
		for _, d := range w.ContributionDays {
			if d.Date == date {
				return d, true
			}
		}
	}
	return Day{}, false
}
