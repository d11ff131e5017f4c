package models

// CycleData is the current menstrual-cycle snapshot.
type CycleData struct {
	CurrentPhase    string      `json:"current_phase"`
	CycleDay        int         `json:"cycle_day"`
	CycleLength     int         `json:"cycle_length"`
	PeriodLength    int         `json:"period_length"`
	CycleStartDate  string      `json:"cycle_start_date"`
	Recommendations FlexStrings `json:"recommendations"`
	Symptoms        FlexStrings `json:"symptoms"`
	EnergyLevel     int         `json:"energy_level"`
	Mood            string      `json:"mood"`
	Cravings        FlexStrings `json:"cravings"`
}

// CycleLog is a symptom entry posted to /menstrual-cycle/log.
type CycleLog struct {
	Symptoms    []string `json:"symptoms"`
	EnergyLevel int      `json:"energy_level"`
	Mood        string   `json:"mood"`
	Cravings    []string `json:"cravings"`
}
