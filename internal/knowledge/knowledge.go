// Package knowledge holds the static clinic dataset: a symptom-to-department
// mapping and the doctor roster. It is loaded once at startup and read-only
// afterwards.
package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Doctor is one roster entry.
type Doctor struct {
	Name       string `json:"name"`
	Specialty  string `json:"specialty"`
	Experience string `json:"experience"`
}

// Hospital describes the facility itself.
type Hospital struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Base is the full clinic dataset.
type Base struct {
	Hospital       Hospital            `json:"hospital"`
	CommonSymptoms map[string][]string `json:"common_symptoms"`
	Doctors        []Doctor            `json:"doctors"`
}

// Load reads and decodes the dataset from path.
func Load(path string) (*Base, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read clinic data: %w", err)
	}
	var base Base
	if err := json.Unmarshal(b, &base); err != nil {
		return nil, fmt.Errorf("decode clinic data: %w", err)
	}
	return &base, nil
}

// MatchDepartments returns the departments whose listed symptoms appear in
// the free-text input. Matching is case-insensitive substring containment;
// results are sorted for stable output.
func (b *Base) MatchDepartments(input string) []string {
	lower := strings.ToLower(input)
	var matched []string
	for department, symptoms := range b.CommonSymptoms {
		for _, symptom := range symptoms {
			if strings.Contains(lower, strings.ToLower(symptom)) {
				matched = append(matched, department)
				break
			}
		}
	}
	sort.Strings(matched)
	return matched
}

// DoctorsBySpecialty returns the roster entries whose specialty contains the
// query, case-insensitively.
func (b *Base) DoctorsBySpecialty(query string) []Doctor {
	lower := strings.ToLower(query)
	var out []Doctor
	for _, d := range b.Doctors {
		if strings.Contains(strings.ToLower(d.Specialty), lower) {
			out = append(out, d)
		}
	}
	return out
}

// DoctorsForDepartment returns the roster entries for an exact department
// name, used when carrying a triage recommendation into booking.
func (b *Base) DoctorsForDepartment(department string) []Doctor {
	var out []Doctor
	for _, d := range b.Doctors {
		if strings.EqualFold(d.Specialty, department) {
			out = append(out, d)
		}
	}
	return out
}

// Render flattens the dataset into the textual form handed to the knowledge
// model alongside triage and information queries.
func (b *Base) Render() string {
	var sb strings.Builder
	if b.Hospital.Name != "" {
		sb.WriteString(b.Hospital.Name)
		sb.WriteString("\n")
	}
	if b.Hospital.Description != "" {
		sb.WriteString(b.Hospital.Description)
		sb.WriteString("\n")
	}

	sb.WriteString("\nDepartments and common symptoms:\n")
	departments := make([]string, 0, len(b.CommonSymptoms))
	for department := range b.CommonSymptoms {
		departments = append(departments, department)
	}
	sort.Strings(departments)
	for _, department := range departments {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", department, strings.Join(b.CommonSymptoms[department], ", ")))
	}

	sb.WriteString("\nDoctors:\n")
	for _, d := range b.Doctors {
		sb.WriteString(fmt.Sprintf("- %s, %s (%s)\n", d.Name, d.Specialty, d.Experience))
	}
	return sb.String()
}
