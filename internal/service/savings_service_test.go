package service

import (
	"testing"
	"time"

	"pennyjar/internal/models"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMilestoneTargets(t *testing.T) {
	milestones := milestoneTargets(dec("99.99"))

	if len(milestones) != 4 {
		t.Fatalf("expected 4 milestones, got %d", len(milestones))
	}

	expected := map[int]string{25: "25", 50: "50", 75: "74.99", 100: "99.99"}
	for _, m := range milestones {
		want, ok := expected[m.Percent]
		if !ok {
			t.Fatalf("unexpected milestone percent %d", m.Percent)
		}
		if m.TargetAmount.String() != want {
			t.Errorf("milestone %d%% target = %s, want %s", m.Percent, m.TargetAmount, want)
		}
	}
}

func TestComputeMatch(t *testing.T) {
	tests := []struct {
		name    string
		rule    models.ParentMatchingRule
		deposit string
		want    string
	}{
		{
			name: "ratio match",
			rule: models.ParentMatchingRule{
				Type:           models.MatchRatio,
				Ratio:          dec("0.5"),
				MaxMatchAmount: dec("100"),
			},
			deposit: "10",
			want:    "5",
		},
		{
			name: "percent match rounds to cents",
			rule: models.ParentMatchingRule{
				Type:           models.MatchPercent,
				Percent:        dec("33"),
				MaxMatchAmount: dec("100"),
			},
			deposit: "10.10",
			want:    "3.33",
		},
		{
			name: "capped by remaining headroom",
			rule: models.ParentMatchingRule{
				Type:               models.MatchRatio,
				Ratio:              dec("1"),
				MaxMatchAmount:     dec("20"),
				TotalMatchedAmount: dec("18.50"),
			},
			deposit: "10",
			want:    "1.5",
		},
		{
			name: "exhausted rule matches nothing",
			rule: models.ParentMatchingRule{
				Type:               models.MatchRatio,
				Ratio:              dec("1"),
				MaxMatchAmount:     dec("20"),
				TotalMatchedAmount: dec("20"),
			},
			deposit: "10",
			want:    "0",
		},
		{
			name: "unknown type matches nothing",
			rule: models.ParentMatchingRule{
				Type:           "bogus",
				MaxMatchAmount: dec("100"),
			},
			deposit: "10",
			want:    "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeMatch(&tt.rule, dec(tt.deposit))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("computeMatch() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPickMilestones(t *testing.T) {
	now := time.Now()
	// Milestones for a 100.00 goal
	fresh := func() []models.GoalMilestone {
		return []models.GoalMilestone{
			{ID: 1, Percent: 25, TargetAmount: dec("25")},
			{ID: 2, Percent: 50, TargetAmount: dec("50")},
			{ID: 3, Percent: 75, TargetAmount: dec("75")},
			{ID: 4, Percent: 100, TargetAmount: dec("100")},
		}
	}

	tests := []struct {
		name         string
		milestones   []models.GoalMilestone
		newAmount    string
		wantPercents []int
	}{
		{
			name:         "below first milestone",
			milestones:   fresh(),
			newAmount:    "10",
			wantPercents: nil,
		},
		{
			name:         "reaches first milestone",
			milestones:   fresh(),
			newAmount:    "25",
			wantPercents: []int{25},
		},
		{
			name:         "large deposit unlocks one intermediate milestone",
			milestones:   fresh(),
			newAmount:    "80",
			wantPercents: []int{25},
		},
		{
			name:         "full amount unlocks lowest plus 100",
			milestones:   fresh(),
			newAmount:    "100",
			wantPercents: []int{25, 100},
		},
		{
			name: "next unachieved milestone after earlier ones",
			milestones: []models.GoalMilestone{
				{ID: 1, Percent: 25, TargetAmount: dec("25"), AchievedAt: &now},
				{ID: 2, Percent: 50, TargetAmount: dec("50"), AchievedAt: &now},
				{ID: 3, Percent: 75, TargetAmount: dec("75")},
				{ID: 4, Percent: 100, TargetAmount: dec("100")},
			},
			newAmount:    "76",
			wantPercents: []int{75},
		},
		{
			name: "only 100 left",
			milestones: []models.GoalMilestone{
				{ID: 1, Percent: 25, TargetAmount: dec("25"), AchievedAt: &now},
				{ID: 2, Percent: 50, TargetAmount: dec("50"), AchievedAt: &now},
				{ID: 3, Percent: 75, TargetAmount: dec("75"), AchievedAt: &now},
				{ID: 4, Percent: 100, TargetAmount: dec("100")},
			},
			newAmount:    "101",
			wantPercents: []int{100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, percents := pickMilestones(tt.milestones, dec(tt.newAmount))
			if len(percents) != len(tt.wantPercents) {
				t.Fatalf("pickMilestones() percents = %v, want %v", percents, tt.wantPercents)
			}
			for i := range percents {
				if percents[i] != tt.wantPercents[i] {
					t.Errorf("pickMilestones() percents = %v, want %v", percents, tt.wantPercents)
					break
				}
			}
		})
	}
}

func TestValidateTransferConfig(t *testing.T) {
	tests := []struct {
		name         string
		transferType string
		amount       string
		percent      int
		wantErr      bool
	}{
		{"none", "", "0", 0, false},
		{"fixed positive", models.TransferFixed, "5", 0, false},
		{"fixed zero", models.TransferFixed, "0", 0, true},
		{"percent in range", models.TransferPercent, "0", 50, false},
		{"percent out of range", models.TransferPercent, "0", 101, true},
		{"unknown type", "weekly", "5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTransferConfig(tt.transferType, dec(tt.amount), tt.percent)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateTransferConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
