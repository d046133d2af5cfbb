package triage

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Medically defined acceptance ranges for intake fields. Boundaries are
// inclusive.
const (
	ageMin = 0
	ageMax = 150

	heartRateMin = 30
	heartRateMax = 250

	systolicMin = 60
	systolicMax = 300

	diastolicMin = 30
	diastolicMax = 200

	temperatureMin = 90.0
	temperatureMax = 110.0

	oxygenSatMin = 70
	oxygenSatMax = 100
)

// Validate checks a raw intake submission and returns a map of field name to
// violation message. An empty map means the submission is valid. It is a pure
// function: unparsable numeric text counts as a range violation rather than
// an error, and nothing is mutated or stored.
func Validate(sub IntakeSubmission) map[string]string {
	errs := make(map[string]string)

	if age, ok := parseInt(sub.Age); !ok || age < ageMin || age > ageMax {
		errs["age"] = "Please enter a valid age (0-150)"
	}

	if strings.TrimSpace(sub.Symptoms) == "" {
		errs["symptoms"] = "Please describe the patient's symptoms"
	}

	// Vitals are only required for full assessments.
	if sub.ImmediateAccess {
		return errs
	}

	if hr, ok := parseInt(sub.HeartRate); !ok || hr < heartRateMin || hr > heartRateMax {
		errs["heart_rate"] = "Please enter a valid heart rate (30-250 bpm)"
	}
	if sys, ok := parseInt(sub.SystolicBP); !ok || sys < systolicMin || sys > systolicMax {
		errs["systolic_bp"] = "Please enter valid systolic BP (60-300 mmHg)"
	}
	if dia, ok := parseInt(sub.DiastolicBP); !ok || dia < diastolicMin || dia > diastolicMax {
		errs["diastolic_bp"] = "Please enter valid diastolic BP (30-200 mmHg)"
	}
	if temp, ok := parseFloat(sub.TemperatureF); !ok || temp < temperatureMin || temp > temperatureMax {
		errs["temperature_f"] = "Please enter valid temperature (90-110°F)"
	}
	if spo2, ok := parseInt(sub.OxygenSaturation); !ok || spo2 < oxygenSatMin || spo2 > oxygenSatMax {
		errs["oxygen_saturation"] = "Please enter valid oxygen saturation (70-100%)"
	}

	return errs
}

// Finalize converts a submission into an immutable PatientIntake. It must
// only be called after Validate returned an empty map; it assumes the numeric
// fields parse.
func Finalize(sub IntakeSubmission, now time.Time) PatientIntake {
	age, _ := parseInt(sub.Age)
	intake := PatientIntake{
		Age:             age,
		Symptoms:        strings.TrimSpace(sub.Symptoms),
		ImmediateAccess: sub.ImmediateAccess,
		SubmittedAt:     now.UTC(),
	}
	if sub.ImmediateAccess {
		return intake
	}

	hr, _ := parseInt(sub.HeartRate)
	sys, _ := parseInt(sub.SystolicBP)
	dia, _ := parseInt(sub.DiastolicBP)
	temp, _ := parseFloat(sub.TemperatureF)
	spo2, _ := parseInt(sub.OxygenSaturation)
	intake.Vitals = &Vitals{
		HeartRate:        hr,
		SystolicBP:       sys,
		DiastolicBP:      dia,
		TemperatureF:     temp,
		OxygenSaturation: spo2,
	}
	return intake
}

func parseInt(raw string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFloat(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	// ParseFloat accepts "NaN" and "Inf". NaN compares false against both
	// range bounds, so without this check it would slip through validation
	// and break JSON encoding of the intake later.
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
