package service

import (
	"errors"
	"testing"
	"time"

	"pennyjar/internal/models"
)

func TestCheckEligibility(t *testing.T) {
	// A Wednesday at 09:00
	now := time.Date(2026, time.August, 26, 9, 0, 0, 0, time.UTC)
	wednesday := int(time.Wednesday)
	thursday := int(time.Thursday)

	paidYesterday := now.Add(-24 * time.Hour)
	paidLastWeek := now.Add(-8 * 24 * time.Hour)

	tests := []struct {
		name    string
		child   models.Child
		wantErr error
	}{
		{
			name: "paused",
			child: models.Child{
				WeeklyAllowance: dec("5"),
				AllowancePaused: true,
			},
			wantErr: ErrAllowancePaused,
		},
		{
			name:    "no allowance configured",
			child:   models.Child{WeeklyAllowance: dec("0")},
			wantErr: ErrNoAllowanceSet,
		},
		{
			name: "fixed day matches and never paid",
			child: models.Child{
				WeeklyAllowance: dec("5"),
				AllowanceDay:    &wednesday,
			},
			wantErr: nil,
		},
		{
			name: "fixed day does not match",
			child: models.Child{
				WeeklyAllowance: dec("5"),
				AllowanceDay:    &thursday,
			},
			wantErr: ErrNotAllowanceDay,
		},
		{
			name: "fixed day but paid within the week",
			child: models.Child{
				WeeklyAllowance: dec("5"),
				AllowanceDay:    &wednesday,
				LastAllowanceAt: &paidYesterday,
			},
			wantErr: ErrAlreadyPaid,
		},
		{
			name: "fixed day and last payment over a week ago",
			child: models.Child{
				WeeklyAllowance: dec("5"),
				AllowanceDay:    &wednesday,
				LastAllowanceAt: &paidLastWeek,
			},
			wantErr: nil,
		},
		{
			name: "rolling window never paid",
			child: models.Child{
				WeeklyAllowance: dec("5"),
			},
			wantErr: nil,
		},
		{
			name: "rolling window paid recently",
			child: models.Child{
				WeeklyAllowance: dec("5"),
				LastAllowanceAt: &paidYesterday,
			},
			wantErr: ErrAlreadyPaid,
		},
		{
			name: "rolling window due again",
			child: models.Child{
				WeeklyAllowance: dec("5"),
				LastAllowanceAt: &paidLastWeek,
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkEligibility(&tt.child, now)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("checkEligibility() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
