package github

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yashith03/portfolio/internal/calendar"
)

const contributionsQuery = `
	query($username: String!, $from: DateTime, $to: DateTime) {
		user(login: $username) {
			contributionsCollection(from: $from, to: $to) {
				contributionCalendar {
					totalContributions
					weeks {
						firstDay
						contributionDays {
							date
							contributionCount
							color
							weekday
						}
					}
				}
			}
		}
	}
`

// YearWindow returns the UTC bounds of a calendar year as GraphQL DateTime strings
func YearWindow(year int) (from, to string) {
	return fmt.Sprintf("%04d-01-01T00:00:00Z", year), fmt.Sprintf("%04d-12-31T23:59:59Z", year)
}

// FetchContributions fetches the contribution calendar of username for a
// calendar year. A year <= 0 leaves the window to the provider, which
// defaults to the trailing 12 months. One request per call, no caching.
func (c *GraphQLClient) FetchContributions(ctx context.Context, username string, year int) (*calendar.Calendar, error) {
	variables := map[string]any{
		"username": username,
	}
	if year > 0 {
		from, to := YearWindow(year)
		variables["from"] = from
		variables["to"] = to
	}

	resp, err := c.doQuery(ctx, contributionsQuery, variables)
	if err != nil {
		return nil, err
	}

	// Pointers distinguish a missing path from an empty calendar
	var result struct {
		User *struct {
			ContributionsCollection *struct {
				ContributionCalendar *calendar.Calendar `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	}

	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return nil, &DataError{Message: "response has no data"}
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return nil, &DataError{Message: "failed to parse contribution calendar", Err: err}
	}

	if result.User == nil {
		return nil, &DataError{Message: fmt.Sprintf("user %q not found", username)}
	}
	if result.User.ContributionsCollection == nil || result.User.ContributionsCollection.ContributionCalendar == nil {
		return nil, &DataError{Message: "contribution calendar missing from response"}
	}

	cal := result.User.ContributionsCollection.ContributionCalendar
	if cal.Weeks == nil {
		cal.Weeks = []calendar.Week{}
	}
	return cal, nil
}
