package rosterinput

import (
	"fmt"
	"io"
	"strings"

	"github.com/jakechorley/geo-placer/pkg/core/placement"
)

// IMCUOverrideMarker after a location sends the patient to the IMCU teams whatever the room
const IMCUOverrideMarker = "*"

// PatientBatch is a parsed list of new admissions
type PatientBatch struct {
	Patients   []placement.Patient
	Duplicates int
	Warnings   []ParseWarning
}

// NewPatient builds a patient from a raw location, honouring the IMCU override marker.
// The raw location keeps the marker so it shows up in output.
func NewPatient(id, location, clinician string) placement.Patient {
	location = strings.TrimSpace(location)
	base, override := strings.CutSuffix(location, IMCUOverrideMarker)
	base = strings.TrimSpace(base)

	patient := placement.NewPatient(id, base)
	if override {
		patient.Floor = placement.FloorIMCU
		patient.RawLocation = base + IMCUOverrideMarker
	}
	patient.Clinician = strings.TrimSpace(clinician)
	return patient
}

// ParsePatientLocations reads one location per line, optionally followed by
// "| clinician". Patients are numbered Pt1, Pt2, ... in input order. Repeated
// locations (case-insensitive) are skipped.
func ParsePatientLocations(r io.Reader) (*PatientBatch, error) {
	batch := &PatientBatch{
		Patients: []placement.Patient{},
		Warnings: []ParseWarning{},
	}
	seen := make(map[string]bool)

	err := scanLines(r, func(lineNo int, line string) {
		location, clinician, _ := strings.Cut(line, "|")
		location = strings.TrimSpace(location)
		if location == "" {
			batch.Warnings = append(batch.Warnings, ParseWarning{Line: lineNo, Text: line, Message: "no location before the clinician tag"})
			return
		}

		key := strings.ToUpper(strings.TrimSpace(strings.TrimSuffix(location, IMCUOverrideMarker)))
		if seen[key] {
			batch.Duplicates++
			batch.Warnings = append(batch.Warnings, ParseWarning{Line: lineNo, Text: line, Message: "duplicate location, skipped"})
			return
		}
		seen[key] = true

		id := fmt.Sprintf("Pt%d", len(batch.Patients)+1)
		batch.Patients = append(batch.Patients, NewPatient(id, location, clinician))
	})
	if err != nil {
		return nil, err
	}

	return batch, nil
}
