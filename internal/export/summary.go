// Package export renders a finalized triage session as a flat-text summary
// suitable for download or printing. The export is lossless: every intake and
// result field appears under a fixed section header, so rendering the same
// session twice produces byte-identical output.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/acutecare/triage-assistant/internal/triage"
)

const generatorFooter = "AI-Powered Triage Assistant v1.0"

const timestampLayout = "1/2/2006, 3:04:05 PM"

// Filename returns the download filename for a session summary.
func Filename(intake triage.PatientIntake, generatedAt time.Time) string {
	prefix := "triage-assessment"
	if intake.ImmediateAccess {
		prefix = "immediate-access"
	}
	return fmt.Sprintf("%s-%d.txt", prefix, generatedAt.UnixMilli())
}

// Summary renders the plain-text export for a session. Immediate-access
// sessions use the service-request template; full assessments enumerate
// vitals and the numbered chatbot responses as well.
func Summary(snap triage.SessionSnapshot, generatedAt time.Time) string {
	if snap.Intake.ImmediateAccess {
		return immediateSummary(snap, generatedAt)
	}
	return assessmentSummary(snap, generatedAt)
}

func immediateSummary(snap triage.SessionSnapshot, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("IMMEDIATE ACCESS REQUEST SUMMARY\n")
	b.WriteString("===============================\n\n")

	b.WriteString("Patient Information:\n")
	fmt.Fprintf(&b, "- Age: %d years\n", snap.Intake.Age)
	fmt.Fprintf(&b, "- Service Requested: %s\n\n", snap.Intake.Symptoms)

	b.WriteString("REQUEST TYPE: IMMEDIATE ACCESS\n")
	fmt.Fprintf(&b, "Priority Level: %d\n", snap.Result.Priority)
	fmt.Fprintf(&b, "Estimated Processing Time: %s\n", snap.Result.EstimatedWaitTime)
	fmt.Fprintf(&b, "AI Confidence: %.1f%%\n\n", snap.Result.Confidence*100)

	b.WriteString("Service Details:\n")
	fmt.Fprintf(&b, "%s\n\n", snap.Result.Reasoning)

	b.WriteString("Next Steps:\n")
	writeBullets(&b, snap.Result.Recommendations)
	b.WriteString("\n")

	fmt.Fprintf(&b, "Assigned Provider: %s\n\n", snap.Result.Specialist)

	b.WriteString("Service Notes:\n")
	writeBullets(&b, snap.Result.RiskFactors)
	b.WriteString("\n")

	fmt.Fprintf(&b, "Generated: %s\n", generatedAt.Format(timestampLayout))
	b.WriteString(generatorFooter + "\n")
	return b.String()
}

func assessmentSummary(snap triage.SessionSnapshot, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("TRIAGE ASSESSMENT SUMMARY\n")
	b.WriteString("========================\n\n")

	b.WriteString("Patient Information:\n")
	fmt.Fprintf(&b, "- Age: %d years\n", snap.Intake.Age)
	fmt.Fprintf(&b, "- Symptoms: %s\n\n", snap.Intake.Symptoms)

	if v := snap.Intake.Vitals; v != nil {
		b.WriteString("Vital Signs:\n")
		fmt.Fprintf(&b, "- Heart Rate: %d bpm\n", v.HeartRate)
		fmt.Fprintf(&b, "- Blood Pressure: %d/%d mmHg\n", v.SystolicBP, v.DiastolicBP)
		fmt.Fprintf(&b, "- Temperature: %.1f°F\n", v.TemperatureF)
		fmt.Fprintf(&b, "- Oxygen Saturation: %d%%\n\n", v.OxygenSaturation)
	}

	fmt.Fprintf(&b, "TRIAGE RESULT: %s\n", strings.ToUpper(snap.Result.Level))
	fmt.Fprintf(&b, "Priority Level: %d\n", snap.Result.Priority)
	fmt.Fprintf(&b, "Estimated Wait Time: %s\n", snap.Result.EstimatedWaitTime)
	fmt.Fprintf(&b, "AI Confidence: %.1f%%\n\n", snap.Result.Confidence*100)

	b.WriteString("Reasoning:\n")
	fmt.Fprintf(&b, "%s\n\n", snap.Result.Reasoning)

	b.WriteString("Recommendations:\n")
	writeBullets(&b, snap.Result.Recommendations)
	b.WriteString("\n")

	fmt.Fprintf(&b, "Recommended Specialist: %s\n\n", snap.Result.Specialist)

	b.WriteString("Risk Factors:\n")
	writeBullets(&b, snap.Result.RiskFactors)
	b.WriteString("\n")

	b.WriteString("Chatbot Responses:\n")
	for i, response := range snap.Responses {
		fmt.Fprintf(&b, "%d. %s\n", i+1, response)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Generated: %s\n", generatedAt.Format(timestampLayout))
	b.WriteString(generatorFooter + "\n")
	return b.String()
}

func writeBullets(b *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}
