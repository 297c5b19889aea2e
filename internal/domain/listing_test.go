package domain

import "testing"

func TestSalaryCeiling(t *testing.T) {
	tests := []struct {
		name string
		min  float64
		max  float64
		want float64
	}{
		{name: "max wins", min: 30000, max: 45000, want: 45000},
		{name: "min only", min: 30000, want: 30000},
		{name: "no data", want: 0},
		{name: "max below min", min: 50000, max: 10, want: 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Listing{SalaryMin: tt.min, SalaryMax: tt.max}
			if got := l.SalaryCeiling(); got != tt.want {
				t.Errorf("SalaryCeiling() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnnualSalaryMin(t *testing.T) {
	tests := []struct {
		period SalaryPeriod
		min    float64
		want   float64
	}{
		{period: PeriodHour, min: 20, want: 41600},
		{period: PeriodDay, min: 150, want: 39000},
		{period: PeriodWeek, min: 800, want: 41600},
		{period: PeriodMonth, min: 4000, want: 48000},
		{period: PeriodYear, min: 55000, want: 55000},
		{period: "", min: 55000, want: 55000},
	}

	for _, tt := range tests {
		l := Listing{SalaryMin: tt.min, SalaryPeriod: tt.period}
		if got := l.AnnualSalaryMin(); got != tt.want {
			t.Errorf("AnnualSalaryMin(%q, %v) = %v, want %v", tt.period, tt.min, got, tt.want)
		}
	}
}

func TestHasSalary(t *testing.T) {
	if (&Listing{}).HasSalary() {
		t.Error("empty listing should not report a salary")
	}
	if !(&Listing{SalaryMax: 1000}).HasSalary() {
		t.Error("max-only listing should report a salary")
	}
}
