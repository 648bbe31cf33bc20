package progress

import "github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"

// Reports fall back to these series until a doctor records real entries.

var patientBaseline = []types.WeeklyPoint{
	{Week: "Week 1", HealthScore: 75, Symptoms: 3},
	{Week: "Week 2", HealthScore: 78, Symptoms: 2},
	{Week: "Week 3", HealthScore: 82, Symptoms: 2},
	{Week: "Week 4", HealthScore: 85, Symptoms: 1},
	{Week: "Week 5", HealthScore: 88, Symptoms: 1},
	{Week: "Week 6", HealthScore: 90, Symptoms: 0},
}

var doctorBaseline = []types.WeeklyPoint{
	{Week: "Week 1", HealthScore: 65, Symptoms: 4},
	{Week: "Week 2", HealthScore: 70, Symptoms: 3},
	{Week: "Week 3", HealthScore: 75, Symptoms: 3},
	{Week: "Week 4", HealthScore: 80, Symptoms: 2},
	{Week: "Week 5", HealthScore: 85, Symptoms: 1},
	{Week: "Week 6", HealthScore: 88, Symptoms: 1},
}

var baselineVitals = []types.VitalSign{
	{Date: "2024-01-01", HeartRate: 72, BloodPressure: 120},
	{Date: "2024-01-08", HeartRate: 75, BloodPressure: 118},
	{Date: "2024-01-15", HeartRate: 70, BloodPressure: 115},
	{Date: "2024-01-22", HeartRate: 68, BloodPressure: 112},
	{Date: "2024-01-29", HeartRate: 70, BloodPressure: 110},
}

func clonePoints(points []types.WeeklyPoint) []types.WeeklyPoint {
	out := make([]types.WeeklyPoint, len(points))
	copy(out, points)
	return out
}

func cloneVitals(vitals []types.VitalSign) []types.VitalSign {
	out := make([]types.VitalSign, len(vitals))
	copy(out, vitals)
	return out
}
