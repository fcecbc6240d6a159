package analytics

import (
	"time"

	"logistics-admin-service/shipments/models"
)

const (
	monthLayout   = "2006-01"
	otherStatuses = "other"
)

type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Report is the dashboard's chart data. Buckets are zero-filled so charts keep their axes.
type Report struct {
	Total       int       `json:"total"`
	ByStatus    []Bucket  `json:"byStatus"`
	ByMonth     []Bucket  `json:"byMonth"`
	OnTime      int       `json:"onTime"`
	Late        int       `json:"late"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Build buckets shipments by status and by creation month over the months ending at now.
func Build(shipments []models.Shipment, now time.Time, months int) Report {
	if months < 1 {
		months = 1
	}

	report := Report{
		Total:       len(shipments),
		ByStatus:    make([]Bucket, len(models.Statuses)),
		ByMonth:     make([]Bucket, months),
		GeneratedAt: now,
	}

	statusIndex := make(map[models.ShipmentStatus]int, len(models.Statuses))
	for i, status := range models.Statuses {
		report.ByStatus[i] = Bucket{Label: string(status)}
		statusIndex[status] = i
	}

	firstMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(months - 1), 0)
	monthIndex := make(map[string]int, months)
	for i := 0; i < months; i++ {
		label := firstMonth.AddDate(0, i, 0).Format(monthLayout)
		report.ByMonth[i] = Bucket{Label: label}
		monthIndex[label] = i
	}

	other := 0
	for _, s := range shipments {
		if i, ok := statusIndex[s.Status]; ok {
			report.ByStatus[i].Count++
		} else {
			other++
		}

		if i, ok := monthIndex[s.CreatedAt.In(now.Location()).Format(monthLayout)]; ok {
			report.ByMonth[i].Count++
		}

		if s.Status == models.StatusDelivered && s.ActualDelivery != nil && s.ScheduledDelivery != nil {
			if s.ActualDelivery.After(*s.ScheduledDelivery) {
				report.Late++
			} else {
				report.OnTime++
			}
		}
	}

	if other > 0 {
		report.ByStatus = append(report.ByStatus, Bucket{Label: otherStatuses, Count: other})
	}

	return report
}
