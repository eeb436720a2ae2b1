package statistics

import (
	"sort"
	"time"

	"internet-cafe-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const hoursPerDay = 24

// DefaultTopUsers and DefaultPeakHours bound the ranked lists.
const (
	DefaultTopUsers  = 10
	DefaultPeakHours = 5
)

// ZeroFillDays returns one entry per UTC day in [from, to], using zero for days without revenue.
func ZeroFillDays(from, to time.Time, amounts []DayAmount) []model.DailyRevenue {
	byDay := make(map[time.Time]decimal.Decimal, len(amounts))
	for _, a := range amounts {
		day := truncateDay(a.Day)
		byDay[day] = byDay[day].Add(a.Amount)
	}

	days := []model.DailyRevenue{}
	for day := truncateDay(from); !day.After(to); day = day.AddDate(0, 0, 1) {
		amount, ok := byDay[day]
		if !ok {
			amount = decimal.Zero
		}
		days = append(days, model.DailyRevenue{Date: day, Amount: amount})
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TotalRevenue sums daily amounts.
func TotalRevenue(days []model.DailyRevenue) decimal.Decimal {
	total := decimal.Zero
	for _, d := range days {
		total = total.Add(d.Amount)
	}
	return total
}

// UsageByHour counts, for each UTC hour of the day, the sessions that overlap it.
// A session counts at most once per hour bucket. Running sessions are measured up to now.
func UsageByHour(sessions []SessionRecord, now time.Time) []model.HourlyUsage {
	usage := make([]model.HourlyUsage, hoursPerDay)
	for h := range usage {
		usage[h].Hour = h
	}

	for _, s := range sessions {
		end := now
		if s.EndTime != nil {
			end = *s.EndTime
		}
		start := s.StartTime.UTC()
		end = end.UTC()
		if end.Before(start) {
			end = start
		}

		var seen [hoursPerDay]bool
		hour := start.Truncate(time.Hour)
		for i := 0; i < hoursPerDay && (i == 0 || hour.Before(end)); i++ {
			h := hour.Hour()
			if !seen[h] {
				seen[h] = true
				usage[h].Count++
			}
			hour = hour.Add(time.Hour)
		}
	}
	return usage
}

// PeakHours returns the n busiest hours, busiest first. Empty hours are left out.
func PeakHours(usage []model.HourlyUsage, n int) []model.HourlyUsage {
	peaks := make([]model.HourlyUsage, 0, len(usage))
	for _, u := range usage {
		if u.Count > 0 {
			peaks = append(peaks, u)
		}
	}
	sort.SliceStable(peaks, func(i, j int) bool {
		if peaks[i].Count != peaks[j].Count {
			return peaks[i].Count > peaks[j].Count
		}
		return peaks[i].Hour < peaks[j].Hour
	})
	if n >= 0 && len(peaks) > n {
		peaks = peaks[:n]
	}
	return peaks
}

// AverageMinutes is the mean duration of completed sessions in minutes, rounded to two places.
func AverageMinutes(sessions []SessionRecord) decimal.Decimal {
	var total, count int64
	for _, s := range sessions {
		if s.Status != model.SessionCompleted {
			continue
		}
		total += s.DurationSeconds
		count++
	}
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(total).Div(decimal.NewFromInt(count * 60)).Round(2)
}

// TopUsers ranks users by total session cost. Time counts closed sessions only.
func TopUsers(sessions []SessionRecord, limit int) []model.TopUser {
	if limit <= 0 {
		limit = DefaultTopUsers
	}

	byUser := map[uuid.UUID]*model.TopUser{}
	for _, s := range sessions {
		u, ok := byUser[s.UserID]
		if !ok {
			u = &model.TopUser{UserID: s.UserID, UserName: s.UserName, TotalSpent: decimal.Zero}
			byUser[s.UserID] = u
		}
		u.TotalSpent = u.TotalSpent.Add(s.TotalCost)
		if s.EndTime != nil {
			u.TotalSeconds += s.DurationSeconds
		}
	}

	users := make([]model.TopUser, 0, len(byUser))
	for _, u := range byUser {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool {
		if c := users[i].TotalSpent.Cmp(users[j].TotalSpent); c != 0 {
			return c > 0
		}
		return users[i].UserName < users[j].UserName
	})
	if len(users) > limit {
		users = users[:limit]
	}
	return users
}

// Average divides total by count, returning zero for an empty population.
func Average(total decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count))).Round(2)
}
